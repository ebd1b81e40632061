package room

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/hollowstate/internal/game"
	"github.com/peterkuimelis/hollowstate/internal/net"
)

func newRunning(t *testing.T, cfg game.Config) *Runtime {
	t.Helper()
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	rt := NewRuntime("test", cfg, 10*time.Millisecond, nil)
	go rt.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-rt.Done()
	})
	return rt
}

func recv(t *testing.T, ch <-chan net.ServerMessage) net.ServerMessage {
	t.Helper()
	select {
	case msg, ok := <-ch:
		require.True(t, ok, "subscription closed")
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message within 2s")
	}
	return net.ServerMessage{}
}

func join(t *testing.T, rt *Runtime, name string) string {
	t.Helper()
	res := rt.Apply(context.Background(), Intent{Kind: net.MsgJoin, Name: name})
	require.NoError(t, res.Err)
	require.NotEmpty(t, res.PlayerID)
	return res.PlayerID
}

// TestSubscribePushesStateAtOnce: a new subscriber gets the current snapshot
// with its private view, and sees itself online.
func TestSubscribePushesStateAtOnce(t *testing.T) {
	rt := newRunning(t, game.Config{})
	alice := join(t, rt, "Alice")

	ch, err := rt.Subscribe(context.Background(), alice)
	require.NoError(t, err)
	msg := recv(t, ch)
	assert.Equal(t, net.MsgState, msg.Type)
	require.NotNil(t, msg.State)
	require.NotNil(t, msg.Private)
	assert.Equal(t, alice, msg.Private.ID)
	require.Len(t, msg.State.Players, 1)
	assert.True(t, msg.State.Players[0].Online)

	_, err = rt.Subscribe(context.Background(), "ghost")
	assert.ErrorIs(t, err, game.ErrNotFound)
}

// TestIntentsBroadcastState: an accepted intent reaches every subscriber.
func TestIntentsBroadcastState(t *testing.T) {
	rt := newRunning(t, game.Config{})
	alice := join(t, rt, "Alice")
	bob := join(t, rt, "Bob")
	chA, err := rt.Subscribe(context.Background(), alice)
	require.NoError(t, err)
	recv(t, chA)
	chB, err := rt.Subscribe(context.Background(), bob)
	require.NoError(t, err)
	recv(t, chB)
	recv(t, chA) // bob came online

	res := rt.Apply(context.Background(), Intent{Kind: net.MsgChat, PlayerID: alice, Text: "hi all"})
	require.NoError(t, res.Err)
	for _, ch := range []<-chan net.ServerMessage{chA, chB} {
		msg := recv(t, ch)
		last := msg.State.Log[len(msg.State.Log)-1]
		assert.Equal(t, "Alice: hi all", last.Details)
	}
}

// TestApplyRejections: rule errors, unseated players and unknown intents come
// back as errors without a broadcast.
func TestApplyRejections(t *testing.T) {
	rt := newRunning(t, game.Config{})
	alice := join(t, rt, "Alice")
	ctx := context.Background()

	res := rt.Apply(ctx, Intent{Kind: net.MsgStart, PlayerID: alice})
	assert.ErrorIs(t, res.Err, game.ErrIllegalState)

	res = rt.Apply(ctx, Intent{Kind: net.MsgChat, PlayerID: "ghost", Text: "boo"})
	assert.ErrorIs(t, res.Err, game.ErrNotFound)

	res = rt.Apply(ctx, Intent{Kind: "dance", PlayerID: alice})
	assert.Error(t, res.Err)

	res = rt.Apply(ctx, Intent{Kind: net.MsgAction, PlayerID: alice, Action: "FLY"})
	assert.ErrorIs(t, res.Err, game.ErrIllegalState)
}

// TestAddBotsAndStart: bots are seated and the game starts on request.
func TestAddBotsAndStart(t *testing.T) {
	rt := newRunning(t, game.Config{})
	alice := join(t, rt, "Alice")
	ctx := context.Background()

	res := rt.Apply(ctx, Intent{Kind: net.MsgAddBots, PlayerID: alice, Count: 2})
	require.NoError(t, res.Err)
	assert.Len(t, res.BotIDs, 2)
	require.NoError(t, rt.Apply(ctx, Intent{Kind: net.MsgStart, PlayerID: alice}).Err)

	msg, err := rt.Snapshot(ctx, alice)
	require.NoError(t, err)
	assert.True(t, msg.State.Started)
	assert.Equal(t, "PLOTTING", msg.State.Phase)
	assert.Len(t, msg.Private.Hand, 5)

	assert.Eventually(t, func() bool {
		s := rt.Summary()
		return s.Started && s.Players == 3 && s.Humans == 1
	}, 2*time.Second, 10*time.Millisecond)
}

// TestTicksAdvancePhases: the loop's timer scan moves an expired phase on.
func TestTicksAdvancePhases(t *testing.T) {
	timings := game.DefaultTimings()
	timings.Plotting = 30 * time.Millisecond
	timings.BotDelay = time.Hour
	rt := newRunning(t, game.Config{Timings: timings})
	alice := join(t, rt, "Alice")
	ctx := context.Background()
	require.NoError(t, rt.Apply(ctx, Intent{Kind: net.MsgAddBots, PlayerID: alice, Count: 1}).Err)
	require.NoError(t, rt.Apply(ctx, Intent{Kind: net.MsgStart, PlayerID: alice}).Err)

	assert.Eventually(t, func() bool {
		msg, err := rt.Snapshot(ctx, "")
		return err == nil && msg.State.Phase != "PLOTTING"
	}, 2*time.Second, 10*time.Millisecond)
}

// TestPingResendsState: ping_state pushes a snapshot even when nothing
// changed.
func TestPingResendsState(t *testing.T) {
	rt := newRunning(t, game.Config{})
	alice := join(t, rt, "Alice")
	ch, err := rt.Subscribe(context.Background(), alice)
	require.NoError(t, err)
	recv(t, ch)

	require.NoError(t, rt.Apply(context.Background(), Intent{Kind: net.MsgPing, PlayerID: alice}).Err)
	msg := recv(t, ch)
	assert.Equal(t, net.MsgState, msg.Type)
}

// TestLeaveClosesSubscription: leaving unseats the player, closes their
// channel and reports an empty room.
func TestLeaveClosesSubscription(t *testing.T) {
	rt := newRunning(t, game.Config{})
	alice := join(t, rt, "Alice")
	ch, err := rt.Subscribe(context.Background(), alice)
	require.NoError(t, err)
	recv(t, ch)

	res := rt.Apply(context.Background(), Intent{Kind: net.MsgLeave, PlayerID: alice})
	require.NoError(t, res.Err)
	assert.True(t, res.Empty)
	for range ch {
	}
	assert.Eventually(t, func() bool { return rt.Summary().Players == 0 }, 2*time.Second, 10*time.Millisecond)
}

// TestDisconnectTerminatesRunningGame: a departure mid-game ends it for the
// remaining players.
func TestDisconnectTerminatesRunningGame(t *testing.T) {
	rt := newRunning(t, game.Config{})
	alice := join(t, rt, "Alice")
	bob := join(t, rt, "Bob")
	ctx := context.Background()
	require.NoError(t, rt.Apply(ctx, Intent{Kind: net.MsgStart, PlayerID: alice}).Err)

	res := rt.Apply(ctx, Intent{Kind: net.MsgLeave, PlayerID: alice})
	require.NoError(t, res.Err)
	assert.False(t, res.Empty)

	msg, err := rt.Snapshot(ctx, bob)
	require.NoError(t, err)
	require.NotNil(t, msg.State.Outcome)
	assert.Equal(t, "terminated", msg.State.Outcome.Reason)
	assert.Equal(t, "END", msg.State.Phase)
}

// TestClosedRuntime: after the loop stops, calls fail and subscriptions are
// closed.
func TestClosedRuntime(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rt := NewRuntime("closing", game.Config{Seed: 1}, 10*time.Millisecond, nil)
	go rt.Run(ctx)

	res := rt.Apply(context.Background(), Intent{Kind: net.MsgJoin, Name: "Alice"})
	require.NoError(t, res.Err)
	ch, err := rt.Subscribe(context.Background(), res.PlayerID)
	require.NoError(t, err)

	cancel()
	<-rt.Done()
	for range ch {
	}
	res = rt.Apply(context.Background(), Intent{Kind: net.MsgPing, PlayerID: res.PlayerID})
	assert.ErrorIs(t, res.Err, ErrClosed)
}

// TestIntentFrom: protocol fields map onto the intent.
func TestIntentFrom(t *testing.T) {
	in := IntentFrom("p1", net.ClientMessage{Type: net.MsgAction, ActionKey: "PLAY_FACEDOWN", TargetID: "p2", Amount: 3})
	assert.Equal(t, Intent{Kind: net.MsgAction, PlayerID: "p1", Action: "PLAY_FACEDOWN", TargetID: "p2", Amount: 3}, in)
}
