package game

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peterkuimelis/hollowstate/internal/log"
)

const (
	maxNameRunes = 18
	maxDeclRunes = 60
	maxChatRunes = 200
	maxBotsAdded = 3
)

// Table orchestrates a single room: every intent and every tick runs through
// it. It is not safe for concurrent use; callers serialise access.
type Table struct {
	Room   *Room
	Logger log.EventLogger

	cfg      Config
	rng      *rand.Rand
	zap      *zap.Logger
	now      func() time.Time
	rev      int
	botPhase map[string]int // bot id → phase sequence it last acted in
}

// NewTable creates a table in the lobby.
func NewTable(id string, cfg Config) *Table {
	cfg = cfg.withDefaults()
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Table{
		Room:     NewRoom(id),
		Logger:   cfg.Logger,
		cfg:      cfg,
		rng:      rand.New(rand.NewSource(seed)),
		zap:      cfg.Zap.With(zap.String("room", id)),
		now:      cfg.Clock,
		botPhase: make(map[string]int),
	}
}

// Config returns the effective configuration.
func (t *Table) Config() Config {
	return t.cfg
}

// Revision increments on every observable change.
func (t *Table) Revision() int {
	return t.rev
}

func (t *Table) touch() {
	t.rev++
}

// emit stamps the event with the current round and phase and logs it.
func (t *Table) emit(ev log.GameEvent) {
	ev.Round = t.Room.Round
	ev.Phase = t.Room.Phase.String()
	t.Logger.Log(ev)
	t.touch()
}

func (t *Table) note(typ log.EventType, playerID, format string, args ...any) {
	t.emit(log.GameEvent{Player: playerID, Type: typ, Details: fmt.Sprintf(format, args...)})
}

func (t *Table) name(id string) string {
	if p := t.Room.Player(id); p != nil {
		return p.Name
	}
	return "?"
}

// --- Lobby ---

// Join seats a human player and returns their id.
func (t *Table) Join(name string) (string, error) {
	r := t.Room
	if r.Started {
		return "", illegal("game already started")
	}
	if r.Humans() >= t.cfg.MaxHumans {
		return "", illegal("room is full (at most %d human players)", t.cfg.MaxHumans)
	}
	if len(r.Players) >= t.cfg.MaxSeats {
		return "", illegal("room is full (at most %d seats)", t.cfg.MaxSeats)
	}
	name = truncate(strings.TrimSpace(name), maxNameRunes)
	if name == "" {
		name = "Player"
	}
	p := t.seat(name, false)
	t.zap.Info("player joined", zap.String("player", p.ID), zap.String("name", p.Name))
	return p.ID, nil
}

// AddBots seats between 1 and 3 automated players, limited by free seats.
func (t *Table) AddBots(count int) ([]string, error) {
	r := t.Room
	if r.Started {
		return nil, illegal("game already started")
	}
	free := t.cfg.MaxSeats - len(r.Players)
	if free <= 0 {
		return nil, illegal("room is full (at most %d seats)", t.cfg.MaxSeats)
	}
	count = min(clamp(count, 1, maxBotsAdded), free)
	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		p := t.seat(fmt.Sprintf("AI_%d", len(r.Players)+1), true)
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func (t *Table) seat(name string, bot bool) *Player {
	p := &Player{ID: uuid.NewString(), Name: name, Bot: bot}
	t.Room.Players = append(t.Room.Players, p)
	t.Room.byID[p.ID] = p
	t.emit(log.NewJoinEvent(p.ID, p.Name, bot))
	return p
}

// Leave removes a player. A departure during a running game terminates it.
// empty reports whether the room has no players left.
func (t *Table) Leave(playerID string) (empty bool, err error) {
	r := t.Room
	p := r.Player(playerID)
	if p == nil {
		return len(r.Players) == 0, notFound("unknown player %q", playerID)
	}
	seat := r.Seat(playerID)
	r.Players = append(r.Players[:seat], r.Players[seat+1:]...)
	delete(r.byID, playerID)
	t.emit(log.NewLeaveEvent(p.ID, p.Name))
	t.zap.Info("player left", zap.String("player", p.ID))
	if len(r.Players) == 0 {
		return true, nil
	}
	if r.Started && !r.Over() {
		t.endGame(nil, EndTerminated, p.Name+" left the table")
	}
	return false, nil
}

// Chat appends a message to the room log.
func (t *Table) Chat(playerID, text string) error {
	p := t.Room.Player(playerID)
	if p == nil {
		return notFound("unknown player %q", playerID)
	}
	text = truncate(strings.TrimSpace(text), maxChatRunes)
	if text == "" {
		return illegal("empty message")
	}
	t.emit(log.NewChatEvent(p.ID, p.Name, text))
	return nil
}

// --- Game start and round flow ---

// Start begins the game: decks are built, metrics set, roles assigned and the
// first round opens.
func (t *Table) Start() error {
	r := t.Room
	if r.Started {
		return illegal("game already started")
	}
	if len(r.Players) < 2 {
		return illegal("at least 2 players are needed (add automated players)")
	}

	r.Started = true
	r.Actions = NewDeck(t.cfg.Catalog.BuildActionDeck(), t.rng)
	r.Agendas = NewDeck(t.cfg.Catalog.Agendas, t.rng)
	r.Threshold = t.cfg.ElectionThreshold

	for _, p := range r.Players {
		p.Support = t.cfg.StartSupport
		p.Stability = t.cfg.StartStability
		p.Money = t.cfg.StartMoney
		p.Hand = nil
		p.Untrusted = 0
		p.AllyID = ""
		p.Threat = 0
		p.Exposed = false
		p.Role = RoleNormal
	}

	strong := r.Players[t.rng.Intn(len(r.Players))]
	strong.Role = RolePopulist
	if t.rng.Intn(2) == 1 {
		strong.Role = RoleAutocrat
	}
	r.PresidentID = r.Players[t.rng.Intn(len(r.Players))].ID

	t.zap.Info("game started", zap.Int("players", len(r.Players)))
	t.startRound()
	return nil
}

// startRound clears round-scoped state and opens PLOTTING.
func (t *Table) startRound() {
	r := t.Room
	if r.Round > 0 {
		next := (r.Seat(r.PresidentID) + 1) % len(r.Players)
		r.PresidentID = r.Players[next].ID
	}
	r.Round++

	for target, c := range r.Challenges {
		t.note(log.EventChallengeSettle, c.ChallengerID, "challenge against %s lapsed; the %d pot is forfeited", t.name(target), c.Pot)
	}
	clear(r.Challenges)
	clear(r.Votes)
	clear(r.Crisis)
	clear(r.acted)
	clear(r.allyBonus)
	r.Offer = nil
	r.Coup = nil
	r.reaction = nil
	r.CurrentID = r.PresidentID

	for _, p := range r.Players {
		p.FacedownID = ""
		p.Declaration = TagBluff
		p.DeclText = ""
		p.cancelNextLoss = false
	}

	r.Agenda, _ = r.Agendas.DrawOnce(t.rng)
	t.dealHands()

	t.enterPhase(PhasePlotting, t.cfg.Timings.Plotting)
	t.emit(log.NewRoundStartEvent(r.Round, r.PresidentID, t.name(r.PresidentID)))
	if r.Agenda != nil {
		t.note(log.EventAgendaEffect, "", "Agenda: %s. %s", r.Agenda.Name, r.Agenda.Text)
	}
}

// dealHands tops every hand up to the hand size.
func (t *Table) dealHands() {
	for _, p := range t.Room.Players {
		t.fillHand(p)
	}
}

func (t *Table) fillHand(p *Player) {
	for len(p.Hand) < t.cfg.HandSize {
		c, ok := t.Room.Actions.Draw(t.rng)
		if !ok {
			return
		}
		p.Hand = append(p.Hand, c)
	}
}

// enterPhase switches phase and arms its timer. d <= 0 means no timer.
func (t *Table) enterPhase(phase Phase, d time.Duration) {
	r := t.Room
	changed := r.Phase != phase
	r.Phase = phase
	r.PhaseEntered = t.now()
	r.PhaseDeadline = time.Time{}
	if d > 0 {
		r.PhaseDeadline = r.PhaseEntered.Add(d)
	}
	r.phaseSeq++
	if changed {
		t.emit(log.NewPhaseChangeEvent(phase.String()))
	} else {
		t.touch()
	}
}

// moveToAction ends PLOTTING. Players without a facedown card get their first
// Action card.
func (t *Table) moveToAction() {
	r := t.Room
	for _, p := range r.Players {
		if p.FacedownID != "" {
			continue
		}
		for _, c := range p.Hand {
			if c.Type == CardAction {
				p.FacedownID = c.ID
				break
			}
		}
	}
	clear(r.acted)
	r.reaction = nil
	r.CurrentID = r.PresidentID
	t.enterPhase(PhaseAction, t.cfg.Timings.Action)
	t.emit(log.NewTurnEvent(r.CurrentID, t.name(r.CurrentID)))
}

// finishAction marks actorID's turn complete and hands the turn to the next
// player in seat order who has not acted, or opens VOTE.
func (t *Table) finishAction(actorID string) {
	r := t.Room
	if actorID != "" {
		r.acted[actorID] = true
	}
	r.reaction = nil

	if len(r.acted) >= len(r.Players) {
		t.enterPhase(PhaseVote, t.cfg.Timings.Vote)
		return
	}

	base := r.Seat(actorID)
	if base < 0 {
		base = r.Seat(r.CurrentID)
	}
	r.CurrentID = t.nextUnacted(base)
	t.enterPhase(PhaseAction, t.cfg.Timings.Action)
	t.emit(log.NewTurnEvent(r.CurrentID, t.name(r.CurrentID)))
}

func (t *Table) nextUnacted(from int) string {
	r := t.Room
	n := len(r.Players)
	for step := 1; step <= n; step++ {
		p := r.Players[(from+step+n)%n]
		if !r.acted[p.ID] {
			return p.ID
		}
	}
	return r.Players[(from+n)%n].ID
}

// openReaction opens a REACTION window after actorID's turn action.
func (t *Table) openReaction(actorID string, d time.Duration) {
	t.Room.reaction = &reactionContext{kind: reactionAfterAction, actorID: actorID}
	t.enterPhase(PhaseReaction, d)
}

// cleanup trims hands, checks the election, and either ends the game or
// starts the next round.
func (t *Table) cleanup() {
	r := t.Room
	t.enterPhase(PhaseCleanup, 0)
	for _, p := range r.Players {
		trimmed := 0
		for len(p.Hand) > t.cfg.HandSize {
			c := p.Hand[len(p.Hand)-1]
			p.Hand = p.Hand[:len(p.Hand)-1]
			r.Actions.Put(c)
			trimmed++
		}
		if trimmed > 0 {
			t.note(log.EventHandTrim, p.ID, "%s discards %d card(s) down to %d", p.Name, trimmed, t.cfg.HandSize)
		}
	}

	if t.checkWin() {
		return
	}
	if r.Round >= t.cfg.MaxRounds {
		w := t.leader()
		t.endGame(w, EndMaxRounds, "time ran out; highest Support, then Stability, then Money")
		return
	}
	t.startRound()
}

// leader returns the player ranked first by Support, then Stability, then
// Money, keeping seat order among exact ties.
func (t *Table) leader() *Player {
	var best *Player
	for _, p := range t.Room.Players {
		if best == nil || ranksAbove(p, best) {
			best = p
		}
	}
	return best
}

func ranksAbove(a, b *Player) bool {
	if a.Support != b.Support {
		return a.Support > b.Support
	}
	if a.Stability != b.Stability {
		return a.Stability > b.Stability
	}
	return a.Money > b.Money
}

// checkWin ends the game when any player reaches the election threshold.
func (t *Table) checkWin() bool {
	r := t.Room
	if r.Over() {
		return true
	}
	for _, p := range r.Players {
		if p.Support >= r.Threshold {
			t.endGame(p, EndElection, "reached the election threshold")
			return true
		}
	}
	return false
}

// endGame moves the room to END. winner is nil for a terminated game.
func (t *Table) endGame(winner *Player, reason EndReason, text string) {
	r := t.Room
	out := &Outcome{Reason: reason, Text: text}
	r.Coup = nil
	r.Offer = nil
	r.reaction = nil
	t.enterPhase(PhaseEnd, 0)
	if winner != nil {
		out.WinnerID = winner.ID
		t.emit(log.NewWinEvent(winner.ID, winner.Name, text))
	} else {
		t.note(log.EventWin, "", "game over: %s", text)
	}
	r.Outcome = out
	t.zap.Info("game over", zap.String("reason", reason.String()), zap.String("winner", out.WinnerID))
}

// Tick advances timers. Coup and alliance-offer deadlines are checked before
// the phase deadline; automated players act afterwards.
func (t *Table) Tick() {
	r := t.Room
	if !r.Started || r.Over() {
		return
	}
	now := t.now()

	if r.Coup != nil && (r.Coup.BlockedByCard || !now.Before(r.Coup.Deadline)) {
		t.finalizeCoup()
		t.runBots()
		return
	}

	if r.Offer != nil && !now.Before(r.Offer.Deadline) {
		from := r.PendingOfferFrom()
		t.expireOffer()
		if from != "" {
			t.finishAction(from)
			t.runBots()
			return
		}
	}

	if r.Phase == PhaseVote && len(r.Votes) >= len(r.Players) {
		t.resolveVote()
		t.moveToCrisis()
	} else if !r.PhaseDeadline.IsZero() && !now.Before(r.PhaseDeadline) {
		t.expirePhase()
	}
	t.runBots()
}

func (t *Table) expirePhase() {
	r := t.Room
	switch r.Phase {
	case PhasePlotting:
		t.moveToAction()
	case PhaseAction:
		t.emit(log.GameEvent{Player: r.CurrentID, Type: log.EventPass, Details: t.name(r.CurrentID) + " ran out of time"})
		t.finishAction(r.CurrentID)
	case PhaseReaction:
		actor := r.CurrentID
		if r.reaction != nil {
			actor = r.reaction.actorID
		}
		if r.PendingOfferFrom() != "" {
			t.expireOffer()
		}
		t.finishAction(actor)
	case PhaseVote:
		t.resolveVote()
		t.moveToCrisis()
	case PhaseCrisis:
		t.resolveCrisis()
		t.cleanup()
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
