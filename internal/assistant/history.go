package assistant

import (
	"strings"
	"time"

	"github.com/glowdesk/receptionist/internal/booking"
)

// TimestampLayout matches the serialized chat history timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// Exchange is one prior user/assistant turn.
type Exchange struct {
	User      string `json:"user"`
	Bot       string `json:"bot"`
	Timestamp string `json:"timestamp"`
}

// appendExchange returns history with the new exchange added.
func appendExchange(history []Exchange, user, bot string, now time.Time) []Exchange {
	return append(history, Exchange{
		User:      user,
		Bot:       bot,
		Timestamp: now.Format(TimestampLayout),
	})
}

// recentContext renders the last n exchanges the way the conversation
// prompt expects them.
func recentContext(history []Exchange, n int) string {
	if n <= 0 {
		n = 10
	}
	start := len(history) - n
	if start < 0 {
		start = 0
	}
	var b strings.Builder
	for _, ex := range history[start:] {
		b.WriteString("User: " + ex.User + "\nBot: " + ex.Bot + "\n\n")
	}
	return b.String()
}

// slotRejections maps rejection fragments in bot replies to the slot they
// re-ask. A rejection keeps its slot open the same way the original
// question does. The two date-format rejections share a prefix, so the
// fragments start at their diverging "Please provide" tails.
var slotRejections = []struct {
	fragment string
	slot     booking.Slot
}{
	{"Please provide your date of birth in YYYY-MM-DD", booking.SlotBirthDate},
	{"Please provide a date in YYYY-MM-DD", booking.SlotDate},
	{"Sorry, you cannot book appointments in the past", booking.SlotDate},
	{"Sorry, you can only book appointments up to", booking.SlotDate},
	{"I couldn't understand that time format", booking.SlotTime},
	{"Sorry, that time slot is not available", booking.SlotTime},
	{"Sorry, there are no available time slots", booking.SlotTime},
	{"There was an error processing your time selection", booking.SlotTime},
}

// confirmRetryFragment is the reply sent when all slots were collected but
// persisting the appointment failed.
const confirmRetryFragment = "There was an error confirming your booking"

// slotForBotMessage maps a bot message to the slot it is asking for,
// whether it asks with the original question or with a rejection that
// re-asks it. The service rejection embeds the service question itself, so
// the prompt pass covers it.
func slotForBotMessage(bot string) (booking.Slot, bool) {
	for _, slot := range booking.SlotOrder() {
		if strings.Contains(bot, slot.Prompt()) {
			return slot, true
		}
	}
	for _, r := range slotRejections {
		if strings.Contains(bot, r.fragment) {
			return r.slot, true
		}
	}
	return "", false
}

// reconstructSession re-derives booking state from serialized history.
// Best effort only: the serialized session store is the primary carrier,
// and this path runs when no stored session exists. The scan walks
// backward so the most recent evidence for each slot is seen first; the
// first binding for a slot wins and later duplicates are ignored.
func reconstructSession(history []Exchange, resolveService func(string) (string, bool)) *booking.Session {
	session := booking.NewSession()
	if len(history) == 0 {
		return session
	}

	lastBot := history[len(history)-1].Bot
	_, awaitingSlot := slotForBotMessage(lastBot)
	pendingConfirm := strings.Contains(lastBot, confirmRetryFragment)
	if !awaitingSlot && !pendingConfirm &&
		!strings.Contains(lastBot, startBookingMarker) &&
		!strings.Contains(lastBot, continueBookingMarker) {
		return session
	}

	// A question in exchange i is answered by the user utterance of
	// exchange i+1. The final exchange's question is the still-open one,
	// so it has no answer to bind. When the reply to an answer re-asks
	// the same slot, the answer was rejected and must not be bound.
	for i := len(history) - 1; i >= 0; i-- {
		ex := history[i]
		if strings.Contains(ex.Bot, "Great! I'll help you book") {
			if hint, ok := extractServiceHint(ex.User); ok {
				if canonical, resolved := resolveService(hint); resolved {
					session.Bind(booking.SlotService, canonical)
				}
			}
		}
		slot, ok := slotForBotMessage(ex.Bot)
		if !ok || i+1 >= len(history) {
			continue
		}
		if replySlot, reAsked := slotForBotMessage(history[i+1].Bot); reAsked && replySlot == slot {
			continue
		}
		answer := history[i+1].User
		switch slot {
		case booking.SlotService:
			if canonical, resolved := resolveService(answer); resolved {
				session.Bind(booking.SlotService, canonical)
			}
		case booking.SlotName:
			if !isAffirmation(answer) {
				session.Bind(booking.SlotName, booking.NormalizeName(answer))
			}
		default:
			session.Bind(slot, answer)
		}
	}

	// Booking was signalled but nothing bound yet: the last bot message
	// was the service question (or a bare marker).
	if session.State == booking.StateIdle {
		session.State = booking.StateAwaitingSlot
	}
	if pendingConfirm && session.State == booking.StateComplete {
		session.Persisted = false
	}
	return session
}

// isAffirmation reports whether the utterance is a bare agreement rather
// than an answer.
func isAffirmation(utterance string) bool {
	switch strings.ToLower(strings.TrimSpace(utterance)) {
	case "ok", "okay", "yes", "sure":
		return true
	}
	return false
}
