// Package room runs each game table as a single-owner actor and keeps the
// registry of live rooms.
package room

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/peterkuimelis/hollowstate/internal/game"
	"github.com/peterkuimelis/hollowstate/internal/net"
)

// SubscriberBuffer is the per-connection backlog of state messages.
const SubscriberBuffer = 16

// ErrClosed is returned once a room's loop has stopped.
var ErrClosed = errors.New("room closed")

// Intent is one inbound player request. Kind is a net.Msg* client type.
type Intent struct {
	Kind     string
	PlayerID string

	Name     string
	Count    int
	CardID   string
	TargetID string
	Tag      string
	Text     string
	Action   string
	Choice   string
	Amount   int
}

// IntentFrom maps a protocol message onto an intent for playerID.
func IntentFrom(playerID string, m net.ClientMessage) Intent {
	return Intent{
		Kind:     m.Type,
		PlayerID: playerID,
		Name:     m.Name,
		Count:    m.Count,
		CardID:   m.CardID,
		TargetID: m.TargetID,
		Tag:      m.Tag,
		Text:     m.Text,
		Action:   m.ActionKey,
		Choice:   m.Choice,
		Amount:   m.Amount,
	}
}

// Result is the outcome of one intent. Err is nil when it was accepted.
type Result struct {
	PlayerID string   // the seated player, set by join
	BotIDs   []string // seats added by add_ai
	Empty    bool     // no human players remain after a leave
	Err      error
}

// Summary is the lobby listing entry for a room.
type Summary struct {
	ID      string `json:"id"`
	Phase   string `json:"phase"`
	Round   int    `json:"round"`
	Started bool   `json:"started"`
	Players int    `json:"players"`
	Humans  int    `json:"humans"`
}

// Runtime owns one table. Every intent, subscription change and timer tick
// runs on its loop goroutine.
type Runtime struct {
	id    string
	table *game.Table
	zap   *zap.Logger
	tick  time.Duration

	cmds chan func()
	done chan struct{}

	// loop-owned
	subs    map[string]chan net.ServerMessage
	lastRev int
	dirty   bool

	mu      sync.Mutex
	summary Summary
}

// NewRuntime creates a room around a fresh table. Run must be called to start
// its loop.
func NewRuntime(id string, cfg game.Config, tick time.Duration, zl *zap.Logger) *Runtime {
	if zl == nil {
		zl = zap.NewNop()
	}
	cfg.Zap = zl
	rt := &Runtime{
		id:    id,
		table: game.NewTable(id, cfg),
		zap:   zl.With(zap.String("room", id)),
		tick:  tick,
		cmds:  make(chan func()),
		done:  make(chan struct{}),
		subs:  make(map[string]chan net.ServerMessage),
	}
	rt.summarize()
	return rt
}

// ID returns the room id.
func (rt *Runtime) ID() string {
	return rt.id
}

// Done is closed when the loop has stopped.
func (rt *Runtime) Done() <-chan struct{} {
	return rt.done
}

// Run drives the room until ctx is cancelled. Subscriber channels are closed
// on exit.
func (rt *Runtime) Run(ctx context.Context) {
	defer close(rt.done)
	ticker := time.NewTicker(rt.tick)
	defer ticker.Stop()

	rt.zap.Info("room loop started")
	for {
		select {
		case <-ctx.Done():
			for id, ch := range rt.subs {
				close(ch)
				delete(rt.subs, id)
			}
			rt.zap.Info("room loop stopped")
			return
		case fn := <-rt.cmds:
			fn()
		case <-ticker.C:
			rt.table.Tick()
		}
		rt.publish()
	}
}

// do runs fn on the loop and waits for it.
func (rt *Runtime) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	select {
	case rt.cmds <- func() { fn(); close(finished) }:
	case <-rt.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Apply executes an intent against the table.
func (rt *Runtime) Apply(ctx context.Context, in Intent) Result {
	var res Result
	if err := rt.do(ctx, func() { res = rt.apply(in) }); err != nil {
		return Result{PlayerID: in.PlayerID, Err: err}
	}
	return res
}

func (rt *Runtime) apply(in Intent) Result {
	t := rt.table
	res := Result{PlayerID: in.PlayerID}
	if in.Kind != net.MsgJoin && t.Room.Player(in.PlayerID) == nil {
		res.Err = fmt.Errorf("%w: not seated at this table", game.ErrNotFound)
		return res
	}

	switch in.Kind {
	case net.MsgJoin:
		res.PlayerID, res.Err = t.Join(in.Name)
	case net.MsgAddBots:
		res.BotIDs, res.Err = t.AddBots(in.Count)
	case net.MsgStart:
		res.Err = t.Start()
	case net.MsgSetFacedown:
		res.Err = t.SetFacedown(in.PlayerID, in.CardID)
	case net.MsgDeclare:
		res.Err = t.Declare(in.PlayerID, in.Tag, in.Text)
	case net.MsgChallenge:
		res.Err = t.Challenge(in.PlayerID, in.TargetID)
	case net.MsgAction:
		kind, err := game.ParseAction(in.Action)
		if err == nil {
			err = t.Act(in.PlayerID, kind, in.TargetID)
		}
		res.Err = err
	case net.MsgVote:
		res.Err = t.Vote(in.PlayerID, game.ParseVote(in.Choice))
	case net.MsgFundCrisis:
		res.Err = t.FundCrisis(in.PlayerID, in.Amount)
	case net.MsgContributeCoup:
		res.Err = t.ContributeCoup(in.PlayerID, in.Amount)
	case net.MsgReaction:
		res.Err = t.PlayReaction(in.PlayerID, in.CardID)
	case net.MsgAcceptAlliance:
		res.Err = t.AcceptAlliance(in.PlayerID)
	case net.MsgChat:
		res.Err = t.Chat(in.PlayerID, in.Text)
	case net.MsgPing:
		rt.send(in.PlayerID, rt.stateFor(in.PlayerID, rt.public()))
	case net.MsgLeave:
		rt.drop(in.PlayerID)
		if _, res.Err = t.Leave(in.PlayerID); res.Err == nil {
			res.Empty = t.Room.Humans() == 0
		}
	default:
		res.Err = fmt.Errorf("unknown message type %q", in.Kind)
	}

	if res.Err != nil {
		rt.zap.Debug("intent rejected", zap.String("intent", in.Kind), zap.String("player", in.PlayerID), zap.Error(res.Err))
	}
	return res
}

// Subscribe registers a connection for playerID and pushes the current state
// at once. A previous subscription for the same player is closed.
func (rt *Runtime) Subscribe(ctx context.Context, playerID string) (<-chan net.ServerMessage, error) {
	var (
		ch  chan net.ServerMessage
		err error
	)
	doErr := rt.do(ctx, func() {
		if rt.table.Room.Player(playerID) == nil {
			err = fmt.Errorf("%w: unknown player %q", game.ErrNotFound, playerID)
			return
		}
		rt.drop(playerID)
		ch = make(chan net.ServerMessage, SubscriberBuffer)
		rt.subs[playerID] = ch
		rt.dirty = true
	})
	if doErr != nil {
		return nil, doErr
	}
	return ch, err
}

// Unsubscribe closes the player's subscription, if any.
func (rt *Runtime) Unsubscribe(ctx context.Context, playerID string) {
	_ = rt.do(ctx, func() { rt.drop(playerID) })
}

// Snapshot returns the current state as seen by playerID. An empty or unknown
// id gets the public view only.
func (rt *Runtime) Snapshot(ctx context.Context, playerID string) (net.ServerMessage, error) {
	var msg net.ServerMessage
	err := rt.do(ctx, func() { msg = rt.stateFor(playerID, rt.public()) })
	return msg, err
}

// Inspect runs fn against the table on the loop.
func (rt *Runtime) Inspect(ctx context.Context, fn func(*game.Table)) error {
	return rt.do(ctx, func() { fn(rt.table) })
}

// Summary returns the latest listing entry without touching the loop.
func (rt *Runtime) Summary() Summary {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.summary
}

func (rt *Runtime) drop(playerID string) {
	if ch, ok := rt.subs[playerID]; ok {
		close(ch)
		delete(rt.subs, playerID)
		rt.dirty = true
	}
}

func (rt *Runtime) online() map[string]bool {
	m := make(map[string]bool, len(rt.subs))
	for id := range rt.subs {
		m[id] = true
	}
	return m
}

func (rt *Runtime) public() *net.PublicView {
	return net.BuildPublicView(rt.table, rt.online())
}

func (rt *Runtime) stateFor(playerID string, pub *net.PublicView) net.ServerMessage {
	return net.ServerMessage{Type: net.MsgState, State: pub, Private: net.BuildPrivateView(rt.table, playerID)}
}

// publish broadcasts to every subscriber when the table or the set of
// connections changed since the last broadcast.
func (rt *Runtime) publish() {
	rev := rt.table.Revision()
	if rev == rt.lastRev && !rt.dirty {
		return
	}
	rt.lastRev = rev
	rt.dirty = false
	rt.summarize()

	pub := rt.public()
	for id := range rt.subs {
		rt.send(id, rt.stateFor(id, pub))
	}
}

func (rt *Runtime) send(playerID string, msg net.ServerMessage) {
	ch, ok := rt.subs[playerID]
	if !ok {
		return
	}
	select {
	case ch <- msg:
	default:
		rt.zap.Warn("subscriber channel full", zap.String("player", playerID))
	}
}

func (rt *Runtime) summarize() {
	r := rt.table.Room
	s := Summary{
		ID:      rt.id,
		Phase:   r.Phase.String(),
		Round:   r.Round,
		Started: r.Started,
		Players: len(r.Players),
		Humans:  r.Humans(),
	}
	rt.mu.Lock()
	rt.summary = s
	rt.mu.Unlock()
}
