package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/helpdesk-labs/support-bot/pkg/util/errorutil"
)

func TestParseAction(t *testing.T) {
	cases := []struct {
		data string
		want Action
	}{
		{verifyData(), Action{Kind: ActionVerify}},
		{takeData("abc-1"), Action{Kind: ActionTake, TicketID: "abc-1"}},
		{finishData("abc-1"), Action{Kind: ActionFinish, TicketID: "abc-1"}},
		{rateData("abc-1", 4), Action{Kind: ActionRate, TicketID: "abc-1", Score: 4}},
	}
	for _, tc := range cases {
		got, err := ParseAction(tc.data)
		require.NoError(t, err, tc.data)
		assert.Equal(t, tc.want, got, tc.data)
	}
}

func TestParseActionRejectsUnknownData(t *testing.T) {
	for _, data := range []string{"", "take", "take_", "rate_abc", "rate_abc_x", "verify_1", "close_abc"} {
		_, err := ParseAction(data)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation), data)
	}
}

func TestRatingKeyboard(t *testing.T) {
	kb := ratingKeyboard("t1")
	require.Len(t, kb, 1)
	require.Len(t, kb[0], 5)
	assert.Equal(t, "1", kb[0][0].Text)
	assert.Equal(t, "rate_t1_5", kb[0][4].Data)
}

func TestExplain(t *testing.T) {
	assert.Equal(t, textTicketNotFound, explain(apperrors.NewNotFound("ticket", nil)))
	assert.Equal(t, textContentRejected, explain(apperrors.NewContentRejected("vpn")))
	assert.Equal(t, "Dialogue already finished.", explain(apperrors.NewInvalidState("dialogue already finished", nil)))
}
