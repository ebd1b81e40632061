package mcp

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/peterkuimelis/hollowstate/internal/net"
	"github.com/peterkuimelis/hollowstate/internal/room"
)

var (
	errNotSeated     = errors.New("not seated at a table; use join_table first")
	errAlreadySeated = errors.New("already seated; use leave_table first")
)

// ToolResponse is the JSON envelope returned by all MCP tools.
type ToolResponse struct {
	RoomID   string           `json:"room_id"`
	PlayerID string           `json:"player_id"`
	Events   []net.EventView  `json:"events"` // room log lines since the previous response
	State    *net.PublicView  `json:"state,omitempty"`
	Me       *net.PrivateView `json:"me,omitempty"`
	GameOver bool             `json:"game_over"`
	BotIDs   []string         `json:"bot_ids,omitempty"`
}

// Session is the agent's seat. There is one per stdio process; the agent
// plays in rooms of the shared registry alongside websocket players.
type Session struct {
	reg *room.Registry
	zap *zap.Logger

	mu       sync.Mutex
	rt       *room.Runtime
	playerID string
	lastSeq  int
	changed  chan struct{}
}

// NewSession creates an unseated session.
func NewSession(reg *room.Registry, zl *zap.Logger) *Session {
	if zl == nil {
		zl = zap.NewNop()
	}
	return &Session{reg: reg, zap: zl}
}

// Join seats the agent in a room, creating the room when needed.
func (s *Session) Join(ctx context.Context, roomID, name string) (ToolResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rt != nil {
		return ToolResponse{}, errAlreadySeated
	}

	rt, created, err := s.reg.GetOrCreate(roomID)
	if err != nil {
		return ToolResponse{}, err
	}
	res := rt.Apply(ctx, room.Intent{Kind: net.MsgJoin, Name: name})
	if res.Err != nil {
		if created {
			s.reg.Delete(rt.ID())
		}
		return ToolResponse{}, res.Err
	}
	sub, err := rt.Subscribe(ctx, res.PlayerID)
	if err != nil {
		rt.Apply(ctx, room.Intent{Kind: net.MsgLeave, PlayerID: res.PlayerID})
		return ToolResponse{}, err
	}

	s.rt, s.playerID, s.lastSeq = rt, res.PlayerID, 0
	s.changed = make(chan struct{}, 1)
	go watch(sub, s.changed)
	s.zap.Info("agent joined", zap.String("room", rt.ID()), zap.String("player", res.PlayerID))
	return s.snapshotLocked(ctx)
}

// watch keeps the agent's subscription drained, so the seat counts as
// online, and flags every pushed state.
func watch(sub <-chan net.ServerMessage, changed chan<- struct{}) {
	for range sub {
		select {
		case changed <- struct{}{}:
		default:
		}
	}
	close(changed)
}

// Do applies one intent for the agent and returns the resulting state. A
// rejected intent returns the rule error.
func (s *Session) Do(ctx context.Context, in room.Intent) (ToolResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rt == nil {
		return ToolResponse{}, errNotSeated
	}
	in.PlayerID = s.playerID
	res := s.rt.Apply(ctx, in)
	if res.Err != nil {
		return ToolResponse{}, res.Err
	}
	resp, err := s.snapshotLocked(ctx)
	resp.BotIDs = res.BotIDs
	return resp, err
}

// State returns the current snapshot without acting.
func (s *Session) State(ctx context.Context) (ToolResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rt == nil {
		return ToolResponse{}, errNotSeated
	}
	return s.snapshotLocked(ctx)
}

// peek returns the current snapshot without marking its events as seen.
func (s *Session) peek(ctx context.Context) (net.ServerMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rt == nil {
		return net.ServerMessage{}, errNotSeated
	}
	return s.rt.Snapshot(ctx, s.playerID)
}

// Wait blocks until the room pushes a new state or the timeout passes, then
// returns the snapshot.
func (s *Session) Wait(ctx context.Context, timeout time.Duration) (ToolResponse, error) {
	s.mu.Lock()
	changed := s.changed
	s.mu.Unlock()
	if changed == nil {
		return ToolResponse{}, errNotSeated
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-changed:
	case <-timer.C:
	case <-ctx.Done():
		return ToolResponse{}, ctx.Err()
	}
	return s.State(ctx)
}

// Leave unseats the agent. A room left without humans is dropped.
func (s *Session) Leave(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rt == nil {
		return errNotSeated
	}
	res := s.rt.Apply(ctx, room.Intent{Kind: net.MsgLeave, PlayerID: s.playerID})
	if res.Err != nil && !errors.Is(res.Err, room.ErrClosed) {
		return res.Err
	}
	if res.Empty {
		s.reg.Delete(s.rt.ID())
	}
	s.zap.Info("agent left", zap.String("room", s.rt.ID()))
	s.rt, s.playerID, s.changed = nil, "", nil
	return nil
}

func (s *Session) snapshotLocked(ctx context.Context) (ToolResponse, error) {
	msg, err := s.rt.Snapshot(ctx, s.playerID)
	if err != nil {
		return ToolResponse{}, err
	}
	resp := ToolResponse{
		RoomID:   s.rt.ID(),
		PlayerID: s.playerID,
		State:    msg.State,
		Me:       msg.Private,
		Events:   []net.EventView{},
	}
	for _, ev := range msg.State.Log {
		if ev.Seq > s.lastSeq {
			resp.Events = append(resp.Events, ev)
		}
	}
	if n := len(resp.Events); n > 0 {
		s.lastSeq = resp.Events[n-1].Seq
	}
	resp.GameOver = msg.State.Outcome != nil
	return resp, nil
}
