package log

import (
	"fmt"
	"io"
	"strings"
)

// EventLogger is the interface for logging room events.
type EventLogger interface {
	Log(event GameEvent)
	Events() []GameEvent
}

// --- MemoryLogger: stores events in memory for snapshots and test assertions ---

type MemoryLogger struct {
	events []GameEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event GameEvent) {
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
}

func (l *MemoryLogger) Events() []GameEvent {
	return l.events
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []GameEvent {
	var result []GameEvent
	for _, e := range l.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() GameEvent {
	if len(l.events) == 0 {
		return GameEvent{}
	}
	return l.events[len(l.events)-1]
}

// Tail returns a copy of the last n events, oldest first.
func (l *MemoryLogger) Tail(n int) []GameEvent {
	return Tail(l.events, n)
}

// Tail returns a copy of the last n entries of events.
func Tail(events []GameEvent, n int) []GameEvent {
	if n <= 0 {
		return nil
	}
	start := len(events) - n
	if start < 0 {
		start = 0
	}
	out := make([]GameEvent, len(events)-start)
	copy(out, events[start:])
	return out
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)
	fmt.Fprintln(l.w, FormatEvent(event))
}

// --- Formatting ---

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e GameEvent) string {
	phase := e.Phase
	for len(phase) < 10 {
		phase += " "
	}
	return fmt.Sprintf("R%-2d %s| %s", e.Round, phase, e.Details)
}

// FormatAll formats all events as a multi-line string.
func FormatAll(events []GameEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --- Helper constructors for common events ---
//
// Round and Phase are stamped by the engine when the event is emitted.

func NewPhaseChangeEvent(phase string) GameEvent {
	return GameEvent{
		Type:    EventPhaseChange,
		Details: fmt.Sprintf("Phase → %s", phase),
	}
}

func NewRoundStartEvent(round int, presidentID, presidentName string) GameEvent {
	return GameEvent{
		Player:  presidentID,
		Type:    EventRoundStart,
		Details: fmt.Sprintf("=== Round %d (president %s) ===", round, presidentName),
	}
}

func NewTurnEvent(playerID, name string) GameEvent {
	return GameEvent{
		Player:  playerID,
		Type:    EventTurn,
		Details: fmt.Sprintf("%s to act", name),
	}
}

func NewJoinEvent(playerID, name string, bot bool) GameEvent {
	kind := "player"
	if bot {
		kind = "bot"
	}
	return GameEvent{
		Player:  playerID,
		Type:    EventJoin,
		Details: fmt.Sprintf("%s joined as %s", name, kind),
	}
}

func NewLeaveEvent(playerID, name string) GameEvent {
	return GameEvent{
		Player:  playerID,
		Type:    EventLeave,
		Details: fmt.Sprintf("%s left the table", name),
	}
}

func NewDeclareEvent(playerID, name, tag, text string) GameEvent {
	d := fmt.Sprintf("%s declares [%s]", name, tag)
	if text != "" {
		d += fmt.Sprintf(" %q", text)
	}
	return GameEvent{
		Player:  playerID,
		Type:    EventDeclare,
		Details: d,
	}
}

func NewPlayEvent(playerID, name, card, target string) GameEvent {
	d := fmt.Sprintf("%s plays %s", name, card)
	if target != "" {
		d += " on " + target
	}
	return GameEvent{
		Player:  playerID,
		Type:    EventPlay,
		Card:    card,
		Details: d,
	}
}

// NewMetricEvent records a clamped metric change. t must be one of
// EventSupport, EventStability or EventMoney.
func NewMetricEvent(t EventType, playerID, name string, before, after int, reason string) GameEvent {
	d := fmt.Sprintf("%s %s %d → %d", name, t, before, after)
	if reason != "" {
		d += " (" + reason + ")"
	}
	return GameEvent{
		Player:  playerID,
		Type:    t,
		Details: d,
	}
}

func NewChallengeOpenEvent(challengerID, challengerName, targetName string, stake int) GameEvent {
	return GameEvent{
		Player:  challengerID,
		Type:    EventChallengeOpen,
		Details: fmt.Sprintf("%s challenges %s's declaration (stake %d)", challengerName, targetName, stake),
	}
}

func NewChallengeSettleEvent(winnerID, winnerName string, pot int, truthful bool) GameEvent {
	verdict := "bluff exposed"
	if truthful {
		verdict = "declaration held"
	}
	return GameEvent{
		Player:  winnerID,
		Type:    EventChallengeSettle,
		Details: fmt.Sprintf("%s: %s takes the %d pot", verdict, winnerName, pot),
	}
}

func NewCoupLaunchEvent(leaderID, leaderName, coupType string) GameEvent {
	return GameEvent{
		Player:  leaderID,
		Type:    EventCoupLaunch,
		Details: fmt.Sprintf("%s launches a %s coup", leaderName, coupType),
	}
}

func NewVoteEvent(playerID, name, vote string) GameEvent {
	return GameEvent{
		Player:  playerID,
		Type:    EventVote,
		Details: fmt.Sprintf("%s votes %s", name, vote),
	}
}

func NewChatEvent(playerID, name, text string) GameEvent {
	return GameEvent{
		Player:  playerID,
		Type:    EventChat,
		Details: fmt.Sprintf("%s: %s", name, text),
	}
}

func NewWinEvent(winnerID, winnerName, reason string) GameEvent {
	return GameEvent{
		Player:  winnerID,
		Type:    EventWin,
		Details: fmt.Sprintf("%s wins (%s)", winnerName, reason),
	}
}
