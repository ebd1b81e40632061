// Package web serves the websocket game endpoint and the JSON lobby API.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"

	"github.com/peterkuimelis/hollowstate/internal/game"
	"github.com/peterkuimelis/hollowstate/internal/net"
	"github.com/peterkuimelis/hollowstate/internal/room"
)

const (
	defaultPingInterval = 30 * time.Second
	leaveTimeout        = 5 * time.Second
	resultBuffer        = 8
)

// CardInfo is the JSON representation of a card kind for /api/catalog.
type CardInfo struct {
	Name   string      `json:"name"`
	Type   string      `json:"type"`
	Tag    string      `json:"tag"`
	Effect string      `json:"effect"`
	Params game.Params `json:"params"`
	Copies int         `json:"copies"`
	Text   string      `json:"text"`
}

// AgendaInfo is the JSON representation of an agenda for /api/catalog.
type AgendaInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Text       string `json:"text"`
	CrisisNeed int    `json:"crisisNeed"`
	CrisisText string `json:"crisisText"`
}

// CatalogInfo is the /api/catalog response.
type CatalogInfo struct {
	Cards   []CardInfo   `json:"cards"`
	Agendas []AgendaInfo `json:"agendas"`
}

// Server is the hollowstate HTTP server.
type Server struct {
	reg          *room.Registry
	catalog      CatalogInfo
	zap          *zap.Logger
	mux          *http.ServeMux
	pingInterval time.Duration
}

// NewServer creates a server over the given registry. cat is the catalog the
// registry's rooms play with; nil means the built-in one.
func NewServer(reg *room.Registry, cat *game.Catalog, zl *zap.Logger) *Server {
	if cat == nil {
		cat = game.DefaultCatalog()
	}
	if zl == nil {
		zl = zap.NewNop()
	}
	s := &Server{
		reg:          reg,
		catalog:      catalogInfo(cat),
		zap:          zl,
		mux:          http.NewServeMux(),
		pingInterval: defaultPingInterval,
	}
	s.setupRoutes()
	return s
}

func catalogInfo(cat *game.Catalog) CatalogInfo {
	info := CatalogInfo{}
	for _, spec := range cat.Cards {
		copies := spec.Copies
		if copies <= 0 {
			copies = 1
		}
		info.Cards = append(info.Cards, CardInfo{
			Name:   spec.Name,
			Type:   spec.Type.String(),
			Tag:    spec.Tag.String(),
			Effect: spec.Effect,
			Params: spec.Params,
			Copies: copies,
			Text:   spec.Text,
		})
	}
	for _, a := range cat.Agendas {
		info.Agendas = append(info.Agendas, AgendaInfo{
			ID:         a.ID,
			Name:       a.Name,
			Text:       a.Text,
			CrisisNeed: a.CrisisNeed,
			CrisisText: a.CrisisText,
		})
	}
	return info
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	// API endpoints
	s.mux.HandleFunc("GET /api/catalog", s.handleCatalog)
	s.mux.HandleFunc("GET /api/rooms", s.handleRooms)

	// Game connections
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.catalog)
}

func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.reg.List())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// handleWebSocket seats the connection at a table. The first message must be
// a join; afterwards every message is an intent answered with a result, and
// state snapshots are pushed as the room changes. Closing the connection
// leaves the table.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow connections from any origin
	})
	if err != nil {
		s.zap.Warn("websocket accept", zap.Error(err))
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(net.ReadLimit)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var first net.ClientMessage
	if err := wsjson.Read(ctx, conn, &first); err != nil {
		return
	}
	if first.Type != net.MsgJoin {
		conn.Close(websocket.StatusPolicyViolation, "expected join message")
		return
	}

	rt, created, err := s.reg.GetOrCreate(first.RoomID)
	if err != nil {
		wsjson.Write(ctx, conn, net.NewError(err))
		conn.Close(websocket.StatusInternalError, "room unavailable")
		return
	}
	res := rt.Apply(ctx, room.Intent{Kind: net.MsgJoin, Name: first.Name})
	if res.Err != nil {
		if created {
			s.reg.Delete(rt.ID())
		}
		wsjson.Write(ctx, conn, net.NewError(res.Err))
		conn.Close(websocket.StatusNormalClosure, "join rejected")
		return
	}
	playerID := res.PlayerID
	log := s.zap.With(zap.String("room", rt.ID()), zap.String("player", playerID))
	log.Info("websocket joined")

	snap, err := rt.Snapshot(ctx, playerID)
	if err == nil {
		err = wsjson.Write(ctx, conn, net.ServerMessage{
			Type:     net.MsgJoined,
			PlayerID: playerID,
			RoomID:   rt.ID(),
			State:    snap.State,
			Private:  snap.Private,
		})
	}
	var sub <-chan net.ServerMessage
	if err == nil {
		sub, err = rt.Subscribe(ctx, playerID)
	}
	if err != nil {
		s.leave(rt, playerID)
		return
	}

	results := make(chan net.ServerMessage, resultBuffer)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		defer cancel()
		ping := time.NewTicker(s.pingInterval)
		defer ping.Stop()
		for {
			var msg net.ServerMessage
			select {
			case <-ctx.Done():
				return
			case m, ok := <-sub:
				if !ok {
					return
				}
				msg = m
			case msg = <-results:
			case <-ping.C:
				if err := conn.Ping(ctx); err != nil {
					return
				}
				continue
			}
			if err := wsjson.Write(ctx, conn, msg); err != nil {
				return
			}
		}
	}()

	var leaveErr error
	left := false
	for {
		var msg net.ClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			break
		}
		if msg.Type == net.MsgLeave {
			res := rt.Apply(ctx, room.IntentFrom(playerID, msg))
			leaveErr, left = res.Err, res.Err == nil
			if res.Empty {
				s.reg.Delete(rt.ID())
			}
			break
		}
		var res room.Result
		if msg.Type == net.MsgJoin {
			res.Err = errors.New("already joined")
		} else {
			res = rt.Apply(ctx, room.IntentFrom(playerID, msg))
		}
		select {
		case results <- net.NewResult(msg.Type, res.Err):
		case <-ctx.Done():
		}
	}

	cancel()
	<-writerDone
	if !left {
		s.leave(rt, playerID)
	}
	if leaveErr != nil || left {
		writeCtx, writeCancel := context.WithTimeout(context.Background(), leaveTimeout)
		wsjson.Write(writeCtx, conn, net.NewResult(net.MsgLeave, leaveErr))
		writeCancel()
	}
	log.Info("websocket closed")
	conn.Close(websocket.StatusNormalClosure, "")
}

// leave unseats a disconnected player and drops the room once it is empty.
func (s *Server) leave(rt *room.Runtime, playerID string) {
	ctx, cancel := context.WithTimeout(context.Background(), leaveTimeout)
	defer cancel()
	res := rt.Apply(ctx, room.Intent{Kind: net.MsgLeave, PlayerID: playerID})
	if res.Err == nil && res.Empty {
		s.reg.Delete(rt.ID())
	}
}

// ListenAndServe serves HTTP on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.zap.Info("http listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
