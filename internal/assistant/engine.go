package assistant

import (
	"context"
	"strings"
	"time"

	"github.com/glowdesk/receptionist/internal/appointments"
	"github.com/glowdesk/receptionist/internal/booking"
	"github.com/glowdesk/receptionist/internal/catalog"
	"github.com/glowdesk/receptionist/internal/llm"
	"github.com/glowdesk/receptionist/internal/observability/metrics"
	"github.com/glowdesk/receptionist/internal/schedule"
	"github.com/glowdesk/receptionist/pkg/logging"
)

// emptyUtteranceReply answers turns that carry no user text.
const emptyUtteranceReply = "How may I assist you today?"

// modelFailureReply answers turns where the generative model errored.
const modelFailureReply = "I apologize, but I'm having trouble processing that. Could you try rephrasing?"

// genericBookingPrefix precedes the service list when the user asked to
// book without naming a service.
const genericBookingPrefix = "I'll help you book an appointment. "

// EngineOptions tune the per-turn behavior. Zero values fall back to the
// defaults used in production.
type EngineOptions struct {
	RecentExchanges    int
	BookingHorizonDays int
	OpeningHour        int
	ClosingHour        int
	MaxTokens          int32
	Temperature        float32
	Clock              schedule.Clock
}

// Engine routes each turn either to the generative model (free-form Q&A)
// or to the slot sequencer (active booking). It owns no per-conversation
// state: the session travels through the SessionStore, with chat history
// reconstruction as the fallback carrier.
type Engine struct {
	model    llm.Client
	sessions *SessionStore
	metrics  *metrics.EngineMetrics
	logger   *logging.Logger

	recentExchanges int
	horizonDays     int
	openingHour     int
	closingHour     int
	maxTokens       int32
	temperature     float32
	now             schedule.Clock
}

func NewEngine(model llm.Client, sessions *SessionStore, m *metrics.EngineMetrics, logger *logging.Logger, opts EngineOptions) *Engine {
	if model == nil {
		panic("assistant: llm client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if opts.RecentExchanges <= 0 {
		opts.RecentExchanges = 10
	}
	if opts.BookingHorizonDays <= 0 {
		opts.BookingHorizonDays = 90
	}
	if opts.ClosingHour <= opts.OpeningHour {
		opts.OpeningHour = 9
		opts.ClosingHour = 17
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1024
	}
	if opts.Temperature <= 0 {
		opts.Temperature = 0.4
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Engine{
		model:           model,
		sessions:        sessions,
		metrics:         m,
		logger:          logger,
		recentExchanges: opts.RecentExchanges,
		horizonDays:     opts.BookingHorizonDays,
		openingHour:     opts.OpeningHour,
		closingHour:     opts.ClosingHour,
		maxTokens:       opts.MaxTokens,
		temperature:     opts.Temperature,
		now:             opts.Clock,
	}
}

// TurnRequest carries everything one turn needs. Catalog and Store are
// supplied per request because the prompt material is tenant data.
type TurnRequest struct {
	ConversationID string
	Message        string
	Knowledge      KnowledgeConfig
	Catalog        *catalog.Catalog
	Store          appointments.Store
	History        []Exchange
}

// TurnResult is the full turn outcome returned to the transport layer.
type TurnResult struct {
	Message           string
	Success           bool
	BookingInProgress bool
	BookingFields     map[string]string
	Appointments      []appointments.Record
	History           []Exchange
}

// ProcessTurn runs one conversation turn end to end.
func (e *Engine) ProcessTurn(ctx context.Context, req TurnRequest) (TurnResult, error) {
	session, err := e.loadSession(ctx, req)
	if err != nil {
		return TurnResult{}, err
	}
	seq := e.newSequencer(req, session)

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return e.finishTurn(ctx, req, seq, e.greetingReply(ctx, req), true, "chat", "greeting")
	}

	if session.Active() {
		reply := e.bookingTurn(ctx, seq, message)
		outcome := "slot"
		if session.State == booking.StateComplete && session.Persisted {
			outcome = "confirmed"
			e.metrics.ObserveBookingConfirmed()
		}
		return e.finishTurn(ctx, req, seq, reply, true, "booking", outcome)
	}

	completion, err := e.model.Complete(ctx, llm.Request{
		Messages: []llm.ChatMessage{{
			Role:    llm.ChatRoleUser,
			Content: conversationPrompt(req.Knowledge, recentContext(req.History, e.recentExchanges), message),
		}},
		MaxTokens:   e.maxTokens,
		Temperature: e.temperature,
	})
	if err != nil {
		e.logger.Error("model completion failed", "conversation_id", req.ConversationID, "error", err)
		return e.finishTurn(ctx, req, seq, modelFailureReply, false, "chat", "model_error")
	}
	reply := strings.TrimSpace(completion.Text)

	switch {
	case strings.Contains(reply, startBookingMarker):
		reply = e.startBooking(seq, message)
		return e.finishTurn(ctx, req, seq, reply, true, "chat", "booking_started")

	case strings.Contains(reply, continueBookingMarker):
		hint, ok := latestServiceHint(req.History)
		if !ok {
			hint, _ = extractServiceHint(message)
		}
		reply = seq.StartBooking(hint)
		return e.finishTurn(ctx, req, seq, reply, true, "chat", "booking_resumed")
	}

	success := !strings.Contains(reply, restrictedPrefix)
	outcome := "answered"
	if !success {
		outcome = "restricted"
	}
	return e.finishTurn(ctx, req, seq, reply, success, "chat", outcome)
}

// Greet produces the first-contact welcome message from the knowledge
// base.
func (e *Engine) Greet(ctx context.Context, cfg KnowledgeConfig) (string, error) {
	completion, err := e.model.Complete(ctx, llm.Request{
		Messages: []llm.ChatMessage{{
			Role:    llm.ChatRoleUser,
			Content: initialPrompt(cfg),
		}},
		MaxTokens:   e.maxTokens,
		Temperature: e.temperature,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(completion.Text), nil
}

// greetingReply handles empty utterances. The very first blank turn of a
// conversation gets the model-rendered welcome; later ones get the fixed
// nudge.
func (e *Engine) greetingReply(ctx context.Context, req TurnRequest) string {
	if len(req.History) > 0 {
		return emptyUtteranceReply
	}
	greeting, err := e.Greet(ctx, req.Knowledge)
	if err != nil || greeting == "" {
		return emptyUtteranceReply
	}
	return greeting
}

// bookingTurn advances an active session by one utterance. A bare
// affirmation at the name question re-asks rather than booking a client
// literally named "ok".
func (e *Engine) bookingTurn(ctx context.Context, seq *booking.Sequencer, message string) string {
	session := seq.Session()
	if isAffirmation(message) && session.State == booking.StateAwaitingSlot && session.CurrentSlot() == booking.SlotName {
		return booking.SlotName.Prompt()
	}
	return seq.Advance(ctx, message)
}

// startBooking handles a fresh start marker: generic requests get the
// full services list behind a lead-in, specific ones jump ahead.
func (e *Engine) startBooking(seq *booking.Sequencer, message string) string {
	hint, ok := extractServiceHint(message)
	if !ok {
		return genericBookingPrefix + seq.StartBooking("")
	}
	return seq.StartBooking(hint)
}

// finishTurn records the exchange, persists session state, and assembles
// the result. Session persistence failures are logged, not fatal: the
// history fallback still carries the state.
func (e *Engine) finishTurn(ctx context.Context, req TurnRequest, seq *booking.Sequencer, reply string, success bool, mode, outcome string) (TurnResult, error) {
	session := seq.Session()
	history := appendExchange(req.History, req.Message, reply, e.now())

	if e.sessions != nil {
		var err error
		if session.Active() {
			err = e.sessions.Save(ctx, req.ConversationID, session)
		} else {
			err = e.sessions.Clear(ctx, req.ConversationID)
		}
		if err != nil {
			e.logger.Error("session persistence failed", "conversation_id", req.ConversationID, "error", err)
		}
	}

	records, err := req.Store.List(ctx)
	if err != nil {
		e.logger.Error("listing appointments failed", "conversation_id", req.ConversationID, "error", err)
		records = nil
	}

	e.metrics.ObserveTurn(mode, outcome)
	return TurnResult{
		Message:           reply,
		Success:           success,
		BookingInProgress: session.Active(),
		BookingFields:     session.FieldValues(),
		Appointments:      records,
		History:           history,
	}, nil
}

// loadSession fetches the stored session, falling back to history
// reconstruction when nothing is stored.
func (e *Engine) loadSession(ctx context.Context, req TurnRequest) (*booking.Session, error) {
	if e.sessions != nil {
		session, err := e.sessions.Load(ctx, req.ConversationID)
		if err != nil {
			e.logger.Error("session load failed", "conversation_id", req.ConversationID, "error", err)
		} else if session != nil {
			return session, nil
		}
	}
	return reconstructSession(req.History, func(hint string) (string, bool) {
		res := req.Catalog.Resolve(hint)
		if !res.Resolved() {
			return "", false
		}
		return res.Service, true
	}), nil
}

func (e *Engine) newSequencer(req TurnRequest, session *booking.Session) *booking.Sequencer {
	dates := schedule.NewDateNormalizer(e.model, e.now, e.horizonDays)
	times := schedule.NewTimeNormalizer(e.model, e.now)
	checker := schedule.NewChecker(req.Store, e.openingHour, e.closingHour)
	return booking.NewSequencer(req.Catalog, dates, times, checker, req.Store, session, e.logger)
}
