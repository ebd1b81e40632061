package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMemoryLoggerSequence: events are numbered in arrival order.
func TestMemoryLoggerSequence(t *testing.T) {
	l := NewMemoryLogger()
	l.Log(NewJoinEvent("p1", "Alice", false))
	l.Log(NewJoinEvent("b1", "Bot 1", true))
	l.Log(NewChatEvent("p1", "Alice", "hello"))

	events := l.Events()
	require.Len(t, events, 3)
	for i, e := range events {
		assert.Equal(t, i+1, e.Seq)
	}
	assert.Equal(t, "Bot 1 joined as bot", events[1].Details)
	assert.Equal(t, "Alice: hello", l.LastEvent().Details)
	assert.Len(t, l.EventsOfType(EventJoin), 2)
	assert.Empty(t, l.EventsOfType(EventWin))
}

// TestTail: tail copies the newest entries and tolerates short logs.
func TestTail(t *testing.T) {
	l := NewMemoryLogger()
	assert.Equal(t, GameEvent{}, l.LastEvent())
	assert.Nil(t, l.Tail(0))

	for i := 0; i < 5; i++ {
		l.Log(NewTurnEvent("p1", "Alice"))
	}
	tail := l.Tail(2)
	require.Len(t, tail, 2)
	assert.Equal(t, 4, tail[0].Seq)
	assert.Equal(t, 5, tail[1].Seq)

	tail[0].Details = "changed"
	assert.Equal(t, "Alice to act", l.Events()[3].Details)
	assert.Len(t, l.Tail(50), 5)
}

// TestTextLogger: lines carry round and padded phase.
func TestTextLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf)
	e := NewDeclareEvent("p1", "Alice", "MONEY", "trust me")
	e.Round, e.Phase = 2, "PLOTTING"
	l.Log(e)

	assert.Equal(t, "R2  PLOTTING  | Alice declares [MONEY] \"trust me\"\n", buf.String())
	assert.Len(t, l.Events(), 1)
	assert.Equal(t, buf.String(), FormatAll(l.Events()))
}
