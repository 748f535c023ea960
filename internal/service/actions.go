package service

import (
	"strconv"
	"strings"

	"github.com/helpdesk-labs/support-bot/internal/domain"
	"github.com/helpdesk-labs/support-bot/internal/gateway"
	apperrors "github.com/helpdesk-labs/support-bot/pkg/util/errorutil"
)

// ActionKind names what an inline button does.
type ActionKind string

const (
	ActionVerify ActionKind = "verify"
	ActionTake   ActionKind = "take"
	ActionFinish ActionKind = "finish"
	ActionRate   ActionKind = "rate"
)

// Action is decoded button data.
type Action struct {
	Kind     ActionKind
	TicketID string
	Score    int
}

func verifyData() string {
	return string(ActionVerify)
}

func takeData(ticketID string) string {
	return string(ActionTake) + "_" + ticketID
}

func finishData(ticketID string) string {
	return string(ActionFinish) + "_" + ticketID
}

func rateData(ticketID string, score int) string {
	return string(ActionRate) + "_" + ticketID + "_" + strconv.Itoa(score)
}

// ParseAction decodes button data produced by this package.
func ParseAction(data string) (Action, error) {
	parts := strings.Split(data, "_")
	kind := ActionKind(parts[0])
	switch {
	case kind == ActionVerify && len(parts) == 1:
		return Action{Kind: kind}, nil
	case (kind == ActionTake || kind == ActionFinish) && len(parts) == 2 && parts[1] != "":
		return Action{Kind: kind, TicketID: parts[1]}, nil
	case kind == ActionRate && len(parts) == 3 && parts[1] != "":
		score, err := strconv.Atoi(parts[2])
		if err != nil {
			return Action{}, apperrors.NewValidationError("invalid rating", map[string]any{"data": data})
		}
		return Action{Kind: kind, TicketID: parts[1], Score: score}, nil
	}
	return Action{}, apperrors.NewValidationError("unknown action", map[string]any{"data": data})
}

func ratingKeyboard(ticketID string) gateway.Keyboard {
	row := make([]gateway.Button, 0, domain.MaxRatingScore)
	for score := domain.MinRatingScore; score <= domain.MaxRatingScore; score++ {
		row = append(row, gateway.Button{Text: strconv.Itoa(score), Data: rateData(ticketID, score)})
	}
	return gateway.Row(row...)
}
