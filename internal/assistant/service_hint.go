package assistant

import (
	"regexp"
	"strings"
)

// generalBookingPhrases mark a request for "an appointment" with no
// service named. They are checked before the specific phrases so "book an
// appointment" never yields the hint "appointment".
var generalBookingPhrases = []string{
	"book an appointment",
	"schedule an appointment",
	"like to book an appointment",
	"want to book an appointment",
	"make an appointment",
	"get an appointment",
}

// specificBookingPhrases precede a service mention ("book the massage").
var specificBookingPhrases = []string{
	"book the", "book a", "book an",
	"schedule the", "schedule a", "schedule an",
	"like to book", "want to book",
	"like to schedule", "want to schedule",
}

// trailingBookingWords strips endings like "appointment" or "session"
// from an extracted hint.
var trailingBookingWords = regexp.MustCompile(`\s*(appointment|session|booking).*$`)

// extractServiceHint pulls a service mention out of a booking request.
// Returns ("", false) for generic requests and for messages without a
// booking phrase.
func extractServiceHint(message string) (string, bool) {
	message = strings.ToLower(message)

	for _, phrase := range generalBookingPhrases {
		if strings.Contains(message, phrase) {
			return "", false
		}
	}

	for _, phrase := range specificBookingPhrases {
		idx := strings.Index(message, phrase)
		if idx < 0 {
			continue
		}
		hint := strings.TrimSpace(message[idx+len(phrase):])
		hint = strings.TrimSpace(trailingBookingWords.ReplaceAllString(hint, ""))
		if hint == "" {
			return "", false
		}
		return hint, true
	}
	return "", false
}

// latestServiceHint scans the user side of the history, newest first, for
// a booking phrase naming a service. Utterances are scanned one at a time
// so a hint never spans turns or picks up bot text.
func latestServiceHint(history []Exchange) (string, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		if hint, ok := extractServiceHint(history[i].User); ok {
			return hint, true
		}
	}
	return "", false
}
