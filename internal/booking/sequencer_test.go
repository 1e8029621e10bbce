package booking

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/glowdesk/receptionist/internal/appointments"
	"github.com/glowdesk/receptionist/internal/catalog"
	"github.com/glowdesk/receptionist/internal/schedule"
)

var testNow = func() time.Time {
	return time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
}

// flakyStore fails Append a configured number of times, then delegates to
// the wrapped store.
type flakyStore struct {
	inner    appointments.Store
	failures int
}

func (f *flakyStore) List(ctx context.Context) ([]appointments.Record, error) {
	return f.inner.List(ctx)
}

func (f *flakyStore) Append(ctx context.Context, r appointments.Record) (appointments.Record, error) {
	if f.failures > 0 {
		f.failures--
		return appointments.Record{}, errors.New("disk full")
	}
	return f.inner.Append(ctx, r)
}

func newTestSequencer(t *testing.T, store appointments.Store) *Sequencer {
	t.Helper()
	cat, err := catalog.Parse("Massage Therapy\nFacial Treatment")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if store == nil {
		store = appointments.NewMemoryStore()
	}
	return NewSequencer(
		cat,
		schedule.NewDateNormalizer(nil, testNow, 90),
		schedule.NewTimeNormalizer(nil, testNow),
		schedule.NewChecker(store, 9, 17),
		store,
		nil,
		nil,
	)
}

func TestStartBookingWithoutHint(t *testing.T) {
	seq := newTestSequencer(t, nil)
	got := seq.StartBooking("")

	if !strings.Contains(got, "- Facial Treatment") || !strings.Contains(got, "- Massage Therapy") {
		t.Errorf("StartBooking() = %q, want service list", got)
	}
	if seq.Session().CurrentSlot() != SlotService {
		t.Errorf("current slot = %q, want service", seq.Session().CurrentSlot())
	}
}

func TestStartBookingWithHintSkipsServiceSlot(t *testing.T) {
	seq := newTestSequencer(t, nil)
	got := seq.StartBooking("massage")

	if !strings.Contains(got, "Great! I'll help you book a Massage Therapy.") {
		t.Errorf("StartBooking(massage) = %q", got)
	}
	if !strings.Contains(got, SlotName.Prompt()) {
		t.Errorf("StartBooking(massage) missing name prompt: %q", got)
	}
	if seq.Session().Fields[SlotService] != "Massage Therapy" {
		t.Errorf("service = %q", seq.Session().Fields[SlotService])
	}
	if seq.Session().CurrentSlot() != SlotName {
		t.Errorf("current slot = %q, want name", seq.Session().CurrentSlot())
	}
}

func TestStartBookingWithUnknownHint(t *testing.T) {
	seq := newTestSequencer(t, nil)
	got := seq.StartBooking("underwater basket weaving")

	if !strings.Contains(got, "I couldn't find an exact match") {
		t.Errorf("StartBooking(unknown) = %q", got)
	}
	if seq.Session().CurrentSlot() != SlotService {
		t.Errorf("current slot = %q, want service", seq.Session().CurrentSlot())
	}
}

func TestRejectionDoesNotAdvance(t *testing.T) {
	seq := newTestSequencer(t, nil)
	seq.StartBooking("")

	got := seq.Advance(context.Background(), "a thing you do not offer at all")
	if !strings.Contains(got, "I couldn't find an exact match") {
		t.Errorf("Advance(unknown service) = %q", got)
	}
	if seq.Session().CurrentSlot() != SlotService {
		t.Error("rejection advanced the cursor")
	}
	if seq.Session().Fields[SlotService] != "" {
		t.Error("rejection bound a field")
	}
}

func TestNextPromptIdempotent(t *testing.T) {
	seq := newTestSequencer(t, nil)
	seq.StartBooking("massage")

	first := seq.NextPrompt()
	second := seq.NextPrompt()
	if first != second {
		t.Errorf("NextPrompt() not idempotent: %q vs %q", first, second)
	}
	if first != SlotName.Prompt() {
		t.Errorf("NextPrompt() = %q", first)
	}
}

func TestFullBookingRoundTrip(t *testing.T) {
	store := appointments.NewMemoryStore()
	seq := newTestSequencer(t, store)
	ctx := context.Background()

	seq.StartBooking("massage")
	seq.Advance(ctx, "john doe")
	seq.Advance(ctx, "1990-01-01")
	seq.Advance(ctx, "tomorrow")
	got := seq.Advance(ctx, "10:00")

	if !strings.Contains(got, "successfully booked") {
		t.Fatalf("final Advance() = %q", got)
	}
	if !strings.Contains(got, "- Name: John Doe") {
		t.Errorf("confirmation missing title-cased name: %q", got)
	}
	if seq.Session().State != StateComplete {
		t.Errorf("state = %q, want complete", seq.Session().State)
	}
	if seq.NextPrompt() != "" {
		t.Errorf("NextPrompt() after completion = %q, want empty", seq.NextPrompt())
	}

	records, _ := store.List(ctx)
	if len(records) != 1 {
		t.Fatalf("store has %d records, want 1", len(records))
	}
	r := records[0]
	if r.ID != 1 {
		t.Errorf("ID = %d, want 1", r.ID)
	}
	if r.Date != testNow().AddDate(0, 0, 1).Format(schedule.DateLayout) {
		t.Errorf("Date = %q", r.Date)
	}

	// Completed sessions accept no further slot input.
	again := seq.Advance(ctx, "change my name to something else")
	if !strings.Contains(again, "successfully booked") {
		t.Errorf("post-completion Advance() = %q", again)
	}
	if records, _ := store.List(ctx); len(records) != 1 {
		t.Error("post-completion Advance() appended a record")
	}
}

func TestDoubleBookingSuggestsAlternatives(t *testing.T) {
	store := appointments.NewMemoryStore()
	ctx := context.Background()
	date := testNow().AddDate(0, 0, 1).Format(schedule.DateLayout)

	first := newTestSequencer(t, store)
	first.StartBooking("massage")
	first.Advance(ctx, "john doe")
	first.Advance(ctx, "1990-01-01")
	first.Advance(ctx, date)
	if got := first.Advance(ctx, "10:00"); !strings.Contains(got, "successfully booked") {
		t.Fatalf("first booking failed: %q", got)
	}

	second := newTestSequencer(t, store)
	second.StartBooking("facial")
	second.Advance(ctx, "jane roe")
	second.Advance(ctx, "1988-06-15")
	second.Advance(ctx, date)
	got := second.Advance(ctx, "10:00")

	if !strings.Contains(got, "that time slot is not available") {
		t.Fatalf("conflicting Advance() = %q", got)
	}
	// Alternatives are in-policy, unconflicted, ascending.
	want := "09:00, 11:00, 12:00, 13:00, 14:00, 15:00, 16:00"
	if !strings.Contains(got, want) {
		t.Errorf("alternatives = %q, want %q", got, want)
	}
	if second.Session().Fields[SlotTime] != "" {
		t.Error("conflicting time was bound")
	}

	// Second booking succeeds on an open slot; identifier increments.
	if got := second.Advance(ctx, "11:00"); !strings.Contains(got, "successfully booked") {
		t.Fatalf("retry Advance() = %q", got)
	}
	records, _ := store.List(ctx)
	if len(records) != 2 || records[1].ID != 2 {
		t.Errorf("records = %+v", records)
	}
}

func TestOutOfHoursRejected(t *testing.T) {
	seq := newTestSequencer(t, nil)
	ctx := context.Background()

	seq.StartBooking("massage")
	seq.Advance(ctx, "john doe")
	seq.Advance(ctx, "1990-01-01")
	seq.Advance(ctx, "tomorrow")
	got := seq.Advance(ctx, "18:00")

	if !strings.Contains(got, "that time slot is not available") {
		t.Errorf("Advance(18:00) = %q", got)
	}
	if seq.Session().State == StateComplete {
		t.Error("out-of-hours time completed the session")
	}
}

func TestPastDateRejected(t *testing.T) {
	seq := newTestSequencer(t, nil)
	ctx := context.Background()

	seq.StartBooking("massage")
	seq.Advance(ctx, "john doe")
	seq.Advance(ctx, "1990-01-01")
	got := seq.Advance(ctx, "2026-03-01")

	if !strings.Contains(got, "cannot book appointments in the past") {
		t.Errorf("Advance(past date) = %q", got)
	}
	if seq.Session().CurrentSlot() != SlotDate {
		t.Error("past date advanced the cursor")
	}
}

func TestPersistenceFailureIsRecoverable(t *testing.T) {
	store := &flakyStore{inner: appointments.NewMemoryStore(), failures: 1}
	seq := newTestSequencer(t, store)
	ctx := context.Background()

	seq.StartBooking("massage")
	seq.Advance(ctx, "john doe")
	seq.Advance(ctx, "1990-01-01")
	seq.Advance(ctx, "tomorrow")
	got := seq.Advance(ctx, "10:00")

	if !strings.Contains(got, "error confirming your booking") {
		t.Fatalf("Advance() with failing store = %q", got)
	}
	if seq.Session().State != StateComplete || seq.Session().Persisted {
		t.Fatalf("session = %+v, want complete and unpersisted", seq.Session())
	}

	// The next turn retries the append rather than re-asking slots.
	retry := seq.Advance(ctx, "is it booked now?")
	if !strings.Contains(retry, "successfully booked") {
		t.Fatalf("retry Advance() = %q", retry)
	}
	records, _ := store.List(ctx)
	if len(records) != 1 {
		t.Errorf("store has %d records, want 1", len(records))
	}
}

func TestSessionFieldValues(t *testing.T) {
	seq := newTestSequencer(t, nil)
	seq.StartBooking("massage")

	values := seq.Session().FieldValues()
	if values["service"] != "Massage Therapy" {
		t.Errorf("service = %q", values["service"])
	}
	for _, key := range []string{"name", "dob", "date", "time"} {
		if values[key] != "" {
			t.Errorf("%s = %q, want unset", key, values[key])
		}
	}
}
