package assistant

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/glowdesk/receptionist/internal/booking"
)

func newTestSessionStore(t *testing.T) *SessionStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionStore(client, time.Hour)
}

func TestSessionStoreRoundTrip(t *testing.T) {
	store := newTestSessionStore(t)
	ctx := context.Background()

	session := booking.NewSession()
	session.Bind(booking.SlotService, "Massage")
	session.Bind(booking.SlotName, "Jane Doe")

	require.NoError(t, store.Save(ctx, "conv-1", session))

	loaded, err := store.Load(ctx, "conv-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Equal(t, booking.StateAwaitingSlot, loaded.State)
	require.Equal(t, "Massage", loaded.Fields[booking.SlotService])
	require.Equal(t, "Jane Doe", loaded.Fields[booking.SlotName])
	require.Equal(t, booking.SlotBirthDate, loaded.CurrentSlot())
}

func TestSessionStoreLoadMissing(t *testing.T) {
	store := newTestSessionStore(t)

	loaded, err := store.Load(context.Background(), "nope")
	require.NoError(t, err)
	require.Nil(t, loaded)
}

func TestSessionStoreClear(t *testing.T) {
	store := newTestSessionStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "conv-1", booking.NewSession()))
	require.NoError(t, store.Clear(ctx, "conv-1"))

	loaded, err := store.Load(ctx, "conv-1")
	require.NoError(t, err)
	require.Nil(t, loaded)
}

// The stored session, not chat history, is the primary state carrier:
// a turn served with empty history must still resume mid-booking.
func TestEngineResumesFromStoredSession(t *testing.T) {
	store := newTestSessionStore(t)
	model := &scriptedModel{replies: []string{"Great! I'll help you book the massage. " + startBookingMarker}}
	engine := newTestEngine(t, model, store)
	ctx := context.Background()

	req := newTurnRequest(t, "I want to book the massage", nil)
	result, err := engine.ProcessTurn(ctx, req)
	require.NoError(t, err)
	require.True(t, result.BookingInProgress)
	require.Equal(t, 1, model.calls)

	// Second turn arrives with no history at all.
	req = newTurnRequest(t, "Jane Doe", nil)
	result, err = engine.ProcessTurn(ctx, req)
	require.NoError(t, err)
	require.Equal(t, 1, model.calls, "model must not run while booking is active")
	require.Equal(t, booking.SlotBirthDate.Prompt(), result.Message)
	require.Equal(t, "Massage", result.BookingFields["service"])
	require.Equal(t, "Jane Doe", result.BookingFields["name"])
}
