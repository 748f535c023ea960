package service

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/helpdesk-labs/support-bot/internal/domain"
	apperrors "github.com/helpdesk-labs/support-bot/pkg/util/errorutil"
)

const (
	textVerifyButton     = "I'm not a bot"
	textTakeButton       = "Take ticket"
	textFinishButton     = "Finish"
	textStartFirst       = "Start with the /start command."
	textVerifyFirst      = "Tap the button above to confirm you are not a bot."
	textAskQuestion      = "Write your question and a moderator will answer soon."
	textAlreadyOpen      = "You already have an open request. Just write your message here."
	textRateFirst        = "Please rate the moderator's work using the buttons above."
	textWaiting          = "Waiting for a moderator..."
	textContentRejected  = "Messages about VPN are not allowed."
	textNoActiveTickets  = "You have no active tickets."
	textFinishPrompt     = "If you have no more questions, tap 'Finish'."
	textRatePrompt       = "Rate the moderator's work (1-5):"
	textRateThanks       = "Thank you for your rating! The dialogue is closed."
	textNotYourTicket    = "You cannot rate this ticket."
	textModeratorsOnly   = "This command is for moderators only."
	textNoTickets        = "No active tickets."
	textTicketNotFound   = "Ticket not found."
	textTicketListHeader = "Active tickets:"
)

func welcomeText(brand string, user domain.Participant) string {
	return fmt.Sprintf("Hi, %s! I am the %s support bot.\n"+
		"Tap the button below to confirm you are not a bot, then write your question and a moderator will answer soon.\n"+
		"When all your questions are solved, tap 'Finish' to close the ticket. Thank you!",
		displayName(user), brand)
}

func helpText(brand string) string {
	return fmt.Sprintf("I am the %s support bot.\n"+
		"- Send /start to ask a question.\n"+
		"- After a moderator answers, tap 'Finish' and rate the work.\n"+
		"- Moderators can list tickets with /active_tickets.", brand)
}

func claimOfferText(user domain.Participant) string {
	handle := user.Username
	if handle == "" {
		handle = "no username"
	}
	return fmt.Sprintf("New request from %s (@%s)", displayName(user), handle)
}

func claimedText(ticket *domain.Ticket) string {
	return fmt.Sprintf("You took the ticket from %s. Write your answer here.", ticket.Username)
}

func moderatorAssignedText(ticket *domain.Ticket) string {
	return fmt.Sprintf("Moderator @%s took your request.", ticket.ModeratorName())
}

func ratingSummaryText(ticket *domain.Ticket, score int) string {
	return fmt.Sprintf("%s rated moderator @%s %d/5.", ticket.Username, ticket.ModeratorName(), score)
}

func ticketListText(tickets []domain.Ticket) string {
	var b strings.Builder
	b.WriteString(textTicketListHeader)
	for _, t := range tickets {
		assigned := "No moderator"
		if t.HasModerator() {
			assigned = "Moderator: @" + t.ModeratorName()
		}
		fmt.Fprintf(&b, "\n- %s (%s): %s", t.Username, t.Status, assigned)
	}
	return b.String()
}

func displayName(p domain.Participant) string {
	if p.FirstName != "" {
		return p.FirstName
	}
	return p.Username
}

// explain turns a recoverable error into a chat reply.
func explain(err error) string {
	domainErr := apperrors.ToDomainError(err)
	switch domainErr.Code {
	case apperrors.CodeNotFound:
		return textTicketNotFound
	case apperrors.CodeContentRejected:
		return textContentRejected
	}
	return sentence(domainErr.Message)
}

func sentence(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	s = string(unicode.ToUpper(r)) + s[size:]
	if !strings.HasSuffix(s, ".") {
		s += "."
	}
	return s
}
