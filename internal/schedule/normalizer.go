// Package schedule turns free-text date and time expressions into calendar
// values and validates candidate slots against business rules and existing
// appointments.
package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	dateparser "github.com/markusmobius/go-dateparser"

	"github.com/glowdesk/receptionist/internal/llm"
)

const (
	// DateLayout is the wire format for calendar dates.
	DateLayout = "2006-01-02"
	// TimeLayout is the wire format for clock times.
	TimeLayout = "15:04"
)

// Clock supplies the reference "today" so tests can pin it.
type Clock func() time.Time

// Candidate is the transient result of a normalizer: either a resolved
// value, or a rejection with a user-facing clarification. Never both.
type Candidate struct {
	Value     string
	Rejection string
}

// Accepted reports whether the normalizer produced a usable value.
func (c Candidate) Accepted() bool {
	return c.Rejection == ""
}

func accept(value string) Candidate {
	return Candidate{Value: value}
}

func reject(message string) Candidate {
	return Candidate{Rejection: message}
}

// strategy attempts one normalization tier. It returns the normalized value
// and true, or false for "no opinion". Strategies never fail loudly; the
// chain simply moves on.
type strategy func(ctx context.Context, utterance string) (string, bool)

// DateNormalizer resolves natural-language date expressions to YYYY-MM-DD
// and enforces the booking window policy.
type DateNormalizer struct {
	model       llm.Client
	now         Clock
	horizonDays int
	chain       []strategy
}

// NewDateNormalizer builds the date resolution chain: literal keywords,
// deterministic parsing, model-assisted normalization, raw fallback. model
// may be nil, in which case the assisted tier is skipped.
func NewDateNormalizer(model llm.Client, now Clock, horizonDays int) *DateNormalizer {
	if now == nil {
		now = time.Now
	}
	if horizonDays <= 0 {
		horizonDays = 90
	}
	n := &DateNormalizer{model: model, now: now, horizonDays: horizonDays}
	n.chain = []strategy{n.keywordDate, n.parseDate, n.assistedDate}
	return n
}

// Resolve normalizes an appointment-date utterance and applies the booking
// window policy. Past dates and dates beyond the horizon are rejected with
// a concrete remedy.
func (n *DateNormalizer) Resolve(ctx context.Context, utterance string) Candidate {
	value := utterance
	for _, tier := range n.chain {
		if v, ok := tier(ctx, utterance); ok {
			value = v
			break
		}
	}

	selected, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return reject("I couldn't understand that date format. Please provide a date in YYYY-MM-DD format.")
	}

	today := truncateToDay(n.now())
	if selected.Before(today) {
		return reject("Sorry, you cannot book appointments in the past. Please select a future date.")
	}
	maxDate := today.AddDate(0, 0, n.horizonDays)
	if selected.After(maxDate) {
		return reject(fmt.Sprintf("Sorry, you can only book appointments up to %s. Please select an earlier date.", maxDate.Format(DateLayout)))
	}

	return accept(selected.Format(DateLayout))
}

// ResolveBirthDate normalizes a date-of-birth utterance. Only the
// deterministic parser applies; there is no policy window and no model
// assistance for personal data.
func (n *DateNormalizer) ResolveBirthDate(_ context.Context, utterance string) Candidate {
	parsed, err := dateparser.Parse(&dateparser.Configuration{CurrentTime: n.now()}, strings.TrimSpace(utterance))
	if err != nil || parsed.Time.IsZero() {
		return reject("I couldn't understand that date format. Please provide your date of birth in YYYY-MM-DD format.")
	}
	return accept(parsed.Time.Format(DateLayout))
}

// keywordDate maps the literal relative-day expressions without touching
// any parser or collaborator.
func (n *DateNormalizer) keywordDate(_ context.Context, utterance string) (string, bool) {
	today := truncateToDay(n.now())
	switch strings.ToLower(strings.TrimSpace(utterance)) {
	case "today":
		return today.Format(DateLayout), true
	case "tomorrow":
		return today.AddDate(0, 0, 1).Format(DateLayout), true
	case "day after tomorrow", "the day after tomorrow":
		return today.AddDate(0, 0, 2).Format(DateLayout), true
	}
	return "", false
}

func (n *DateNormalizer) parseDate(_ context.Context, utterance string) (string, bool) {
	parsed, err := dateparser.Parse(&dateparser.Configuration{CurrentTime: n.now()}, strings.TrimSpace(utterance))
	if err != nil || parsed.Time.IsZero() {
		return "", false
	}
	return parsed.Time.Format(DateLayout), true
}

const assistedDatePrompt = `Convert the following natural language date into a YYYY-MM-DD format based on today's date (%s):
"%s"
Only return the date in YYYY-MM-DD format.`

// assistedDate asks the model to normalize what the deterministic parser
// could not, then re-parses the answer deterministically. A model that
// errors or rambles is treated as "no opinion".
func (n *DateNormalizer) assistedDate(ctx context.Context, utterance string) (string, bool) {
	if n.model == nil {
		return "", false
	}
	today := truncateToDay(n.now())
	resp, err := n.model.Complete(ctx, llm.Request{
		Messages: []llm.ChatMessage{{
			Role:    llm.ChatRoleUser,
			Content: fmt.Sprintf(assistedDatePrompt, today.Format(DateLayout), utterance),
		}},
		MaxTokens:   32,
		Temperature: 0,
	})
	if err != nil || strings.TrimSpace(resp.Text) == "" {
		return "", false
	}
	return n.parseDate(ctx, resp.Text)
}

// TimeNormalizer resolves clock-time expressions to HH:MM. Parsing is
// purely textual; business-hours validation belongs to the Checker.
type TimeNormalizer struct {
	model llm.Client
	now   Clock
}

// NewTimeNormalizer builds a time normalizer. model may be nil.
func NewTimeNormalizer(model llm.Client, now Clock) *TimeNormalizer {
	if now == nil {
		now = time.Now
	}
	return &TimeNormalizer{model: model, now: now}
}

// Resolve normalizes a time utterance ("2pm", "14:30", "half past two").
func (n *TimeNormalizer) Resolve(ctx context.Context, utterance string) Candidate {
	trimmed := strings.TrimSpace(utterance)
	if parsed, err := dateparser.Parse(&dateparser.Configuration{CurrentTime: n.now()}, trimmed); err == nil && !parsed.Time.IsZero() {
		return accept(parsed.Time.Format(TimeLayout))
	}
	if v, ok := n.assistedTime(ctx, trimmed); ok {
		return accept(v)
	}
	return reject("I couldn't understand that time format. Please provide a time in HH:MM format (e.g., 14:30).")
}

const assistedTimePrompt = `Convert the following natural language time of day into 24-hour HH:MM format:
"%s"
Only return the time in HH:MM format.`

func (n *TimeNormalizer) assistedTime(ctx context.Context, utterance string) (string, bool) {
	if n.model == nil {
		return "", false
	}
	resp, err := n.model.Complete(ctx, llm.Request{
		Messages: []llm.ChatMessage{{
			Role:    llm.ChatRoleUser,
			Content: fmt.Sprintf(assistedTimePrompt, utterance),
		}},
		MaxTokens:   16,
		Temperature: 0,
	})
	if err != nil {
		return "", false
	}
	candidate := strings.TrimSpace(resp.Text)
	if t, err := time.Parse(TimeLayout, candidate); err == nil {
		return t.Format(TimeLayout), true
	}
	if parsed, err := dateparser.Parse(&dateparser.Configuration{CurrentTime: n.now()}, candidate); err == nil && !parsed.Time.IsZero() {
		return parsed.Time.Format(TimeLayout), true
	}
	return "", false
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
