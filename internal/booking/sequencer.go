package booking

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/glowdesk/receptionist/internal/appointments"
	"github.com/glowdesk/receptionist/internal/catalog"
	"github.com/glowdesk/receptionist/internal/schedule"
	"github.com/glowdesk/receptionist/pkg/logging"
)

// Sequencer drives a Session through the ordered slots, delegating each
// utterance to the resolver for the current slot. Rejections leave the
// session untouched; the rejection text is the turn's response.
type Sequencer struct {
	catalog *catalog.Catalog
	dates   *schedule.DateNormalizer
	times   *schedule.TimeNormalizer
	checker *schedule.Checker
	store   appointments.Store
	logger  *logging.Logger

	session *Session
}

// NewSequencer wires the three resolvers and the appointments store around
// a session. A nil session starts idle.
func NewSequencer(
	cat *catalog.Catalog,
	dates *schedule.DateNormalizer,
	times *schedule.TimeNormalizer,
	checker *schedule.Checker,
	store appointments.Store,
	session *Session,
	logger *logging.Logger,
) *Sequencer {
	if logger == nil {
		logger = logging.Default()
	}
	if session == nil {
		session = NewSession()
	}
	return &Sequencer{
		catalog: cat,
		dates:   dates,
		times:   times,
		checker: checker,
		store:   store,
		session: session,
		logger:  logger,
	}
}

// Session exposes the underlying session for serialization.
func (q *Sequencer) Session() *Session {
	return q.session
}

// StartBooking begins a booking attempt. With an empty hint it asks for a
// service; with a hint that resolves it pre-fills the service slot and
// moves straight to the name question.
func (q *Sequencer) StartBooking(hint string) string {
	q.session.State = StateAwaitingSlot
	q.session.Cursor = 0
	q.session.Fields = make(map[Slot]string)
	q.session.Persisted = false

	hint = strings.TrimSpace(hint)
	if hint == "" {
		return q.servicesPrompt()
	}

	res := q.catalog.Resolve(hint)
	if !res.Resolved() {
		return res.Rejection
	}

	q.session.set(SlotService, res.Service)
	return fmt.Sprintf("Great! I'll help you book a %s.\n\n%s", res.Service, SlotName.Prompt())
}

// Advance consumes one utterance for the current slot and returns the next
// prompt, a rejection, or the terminal confirmation.
func (q *Sequencer) Advance(ctx context.Context, utterance string) string {
	if q.session.State == StateComplete {
		if !q.session.Persisted {
			return q.confirm(ctx)
		}
		return q.confirmationText()
	}

	slot := q.session.CurrentSlot()
	if slot == "" {
		return q.servicesPrompt()
	}

	switch slot {
	case SlotService:
		res := q.catalog.Resolve(utterance)
		if !res.Resolved() {
			return res.Rejection
		}
		q.session.set(SlotService, res.Service)

	case SlotName:
		name := NormalizeName(strings.TrimSpace(utterance))
		if name == "" {
			return SlotName.Prompt()
		}
		q.session.set(SlotName, name)

	case SlotBirthDate:
		c := q.dates.ResolveBirthDate(ctx, utterance)
		if !c.Accepted() {
			return c.Rejection
		}
		q.session.set(SlotBirthDate, c.Value)

	case SlotDate:
		c := q.dates.Resolve(ctx, utterance)
		if !c.Accepted() {
			return c.Rejection
		}
		q.session.set(SlotDate, c.Value)

	case SlotTime:
		c := q.times.Resolve(ctx, utterance)
		if !c.Accepted() {
			return c.Rejection
		}
		if msg, ok := q.checkSlot(ctx, c.Value); !ok {
			return msg
		}
		q.session.set(SlotTime, c.Value)
	}

	if q.session.State == StateComplete {
		return q.confirm(ctx)
	}
	return q.NextPrompt()
}

// NextPrompt returns the question for the first unset slot in order, or ""
// when the session is complete. Calling it twice without an intervening
// Advance returns the identical string.
func (q *Sequencer) NextPrompt() string {
	if q.session.State == StateComplete {
		return ""
	}
	for _, slot := range slotOrder {
		if q.session.Fields[slot] == "" {
			return slot.Prompt()
		}
	}
	return ""
}

// checkSlot validates the candidate time against business hours and stored
// appointments, composing the alternatives message on conflict.
func (q *Sequencer) checkSlot(ctx context.Context, timeStr string) (string, bool) {
	date := q.session.Fields[SlotDate]
	service := q.session.Fields[SlotService]

	available, err := q.checker.IsAvailable(ctx, date, timeStr, service)
	if err != nil {
		q.logger.Error("availability check failed", "error", err, "date", date, "time", timeStr)
		return "There was an error processing your time selection. Please try again with a time in HH:MM format.", false
	}
	if available {
		return "", true
	}

	alternatives, err := q.checker.SuggestAlternatives(ctx, date, service)
	if err != nil {
		q.logger.Error("alternative lookup failed", "error", err, "date", date)
		return "There was an error processing your time selection. Please try again with a time in HH:MM format.", false
	}
	if len(alternatives) == 0 {
		return fmt.Sprintf("Sorry, there are no available time slots on %s. Please try a different date.", date), false
	}
	return fmt.Sprintf("Sorry, that time slot is not available. Available times on %s are: %s. Please select one.", date, strings.Join(alternatives, ", ")), false
}

// confirm appends the completed booking to the store. On persistence
// failure the session stays complete but unpersisted, and a later Advance
// retries the append instead of re-asking slots.
func (q *Sequencer) confirm(ctx context.Context) string {
	record := appointments.Record{
		Service:   q.session.Fields[SlotService],
		Name:      q.session.Fields[SlotName],
		BirthDate: q.session.Fields[SlotBirthDate],
		Date:      q.session.Fields[SlotDate],
		Time:      q.session.Fields[SlotTime],
	}

	stored, err := q.store.Append(ctx, record)
	if err != nil {
		q.logger.Error("failed to persist appointment", "error", err, "service", record.Service)
		return "There was an error confirming your booking. Please try again later."
	}

	q.session.Persisted = true
	q.logger.Info("appointment confirmed",
		"appointment_id", stored.ID,
		"service", stored.Service,
		"date", stored.Date,
		"time", stored.Time,
	)
	return q.confirmationText()
}

func (q *Sequencer) confirmationText() string {
	return fmt.Sprintf(`Your appointment has been successfully booked!

Booking Details:
- Service: %s
- Name: %s
- DOB: %s
- Date: %s
- Time: %s

Thank you for booking with us!`,
		q.session.Fields[SlotService],
		q.session.Fields[SlotName],
		q.session.Fields[SlotBirthDate],
		q.session.Fields[SlotDate],
		q.session.Fields[SlotTime],
	)
}

func (q *Sequencer) servicesPrompt() string {
	return fmt.Sprintf("Here are our available services:\n\n%s\n\n%s", q.catalog.BulletList(), SlotService.Prompt())
}

// NormalizeName uppercases the first letter of each space-separated word, the
// way the booking form expects names to be written.
func NormalizeName(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
