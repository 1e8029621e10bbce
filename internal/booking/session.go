// Package booking owns the slot-filling state machine that collects the
// five fields required to confirm an appointment.
package booking

import "strings"

// State names the phase of a booking session.
type State string

const (
	// StateIdle means no booking has started.
	StateIdle State = "idle"
	// StateAwaitingSlot means the session is waiting for the user to
	// answer the current slot's question.
	StateAwaitingSlot State = "awaiting_slot"
	// StateComplete means all five slots are filled. The session may still
	// be awaiting a successful persistence attempt.
	StateComplete State = "complete"
)

// Slot is one of the five required booking fields.
type Slot string

const (
	SlotService   Slot = "service"
	SlotName      Slot = "name"
	SlotBirthDate Slot = "dob"
	SlotDate      Slot = "date"
	SlotTime      Slot = "time"
)

// slotOrder fixes the sequence in which slots are collected.
var slotOrder = [5]Slot{SlotService, SlotName, SlotBirthDate, SlotDate, SlotTime}

// slotPrompts maps each slot to the question the assistant asks for it.
var slotPrompts = map[Slot]string{
	SlotService:   "Which service would you like to book?",
	SlotName:      "Could you please provide your full name?",
	SlotBirthDate: "What is your date of birth? (YYYY-MM-DD)",
	SlotDate:      "What date would you prefer for your appointment? (YYYY-MM-DD)",
	SlotTime:      "What time would you prefer? (HH:MM)",
}

// Prompt returns the question asked for a slot.
func (s Slot) Prompt() string {
	return slotPrompts[s]
}

// SlotOrder returns the collection sequence.
func SlotOrder() []Slot {
	return slotOrder[:]
}

// Session is the per-conversation booking state. It serializes to JSON so
// it can be carried across process boundaries; scanning chat history is
// only the fallback when no serialized session exists.
type Session struct {
	State     State           `json:"state"`
	Cursor    int             `json:"cursor"`
	Fields    map[Slot]string `json:"fields"`
	Persisted bool            `json:"persisted"`
}

// NewSession creates an idle session with all slots unset.
func NewSession() *Session {
	return &Session{
		State:  StateIdle,
		Fields: make(map[Slot]string),
	}
}

// Active reports whether the session is collecting slots or awaiting a
// pending persistence retry.
func (s *Session) Active() bool {
	if s == nil {
		return false
	}
	return s.State == StateAwaitingSlot || (s.State == StateComplete && !s.Persisted)
}

// CurrentSlot returns the slot the session is waiting on, or "" when not
// awaiting one.
func (s *Session) CurrentSlot() Slot {
	if s.State != StateAwaitingSlot {
		return ""
	}
	if s.Cursor < 0 || s.Cursor >= len(slotOrder) {
		return ""
	}
	return slotOrder[s.Cursor]
}

// set binds a slot value and advances the cursor past every filled slot,
// keeping the invariant that all slots at or beyond the cursor are unset.
func (s *Session) set(slot Slot, value string) {
	if s.Fields == nil {
		s.Fields = make(map[Slot]string)
	}
	s.Fields[slot] = value
	for s.Cursor < len(slotOrder) && s.Fields[slotOrder[s.Cursor]] != "" {
		s.Cursor++
	}
	if s.Cursor >= len(slotOrder) {
		s.State = StateComplete
	}
}

// Bind records an externally recovered slot value without validation and
// without regressing past already-bound slots. Used by history
// reconstruction; the first evidence for a slot wins.
func (s *Session) Bind(slot Slot, value string) {
	value = strings.TrimSpace(value)
	if value == "" || s.Fields[slot] != "" {
		return
	}
	s.State = StateAwaitingSlot
	s.set(slot, value)
	if s.State == StateComplete {
		// A fully reconstructed session was already persisted by the turn
		// that completed it.
		s.Persisted = true
	}
}

// FieldValues exposes the partial booking values keyed by slot name, with
// unset slots present as empty strings.
func (s *Session) FieldValues() map[string]string {
	out := make(map[string]string, len(slotOrder))
	for _, slot := range slotOrder {
		if s == nil {
			out[string(slot)] = ""
			continue
		}
		out[string(slot)] = s.Fields[slot]
	}
	return out
}
