package net

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/hollowstate/internal/game"
)

func startedTable(t *testing.T) (*game.Table, string, string) {
	t.Helper()
	tbl := game.NewTable("r1", game.Config{Seed: 5})
	alice, err := tbl.Join("Alice")
	require.NoError(t, err)
	bots, err := tbl.AddBots(1)
	require.NoError(t, err)
	require.NoError(t, tbl.Start())
	return tbl, alice, bots[0]
}

// TestPublicViewLobby: before the start the snapshot lists seats and the
// configured threshold, with no declarations.
func TestPublicViewLobby(t *testing.T) {
	tbl := game.NewTable("r1", game.Config{Seed: 5})
	alice, err := tbl.Join("Alice")
	require.NoError(t, err)

	v := BuildPublicView(tbl, map[string]bool{alice: true})
	assert.Equal(t, "r1", v.RoomID)
	assert.False(t, v.Started)
	assert.Equal(t, "LOBBY", v.Phase)
	assert.Equal(t, 8, v.ElectionThreshold)
	require.Len(t, v.Players, 1)
	assert.True(t, v.Players[0].Online)
	assert.Equal(t, "human", v.Players[0].Kind)
	assert.Empty(t, v.Players[0].Declaration)
	assert.Zero(t, v.PhaseEndsAt)
}

// TestPublicViewHidesRoles: roles and hands stay private until exposure.
func TestPublicViewHidesRoles(t *testing.T) {
	tbl, alice, bot := startedTable(t)

	v := BuildPublicView(tbl, nil)
	assert.Equal(t, "PLOTTING", v.Phase)
	assert.NotZero(t, v.PhaseEndsAt)
	require.NotNil(t, v.Agenda)
	require.Len(t, v.Players, 2)
	for _, p := range v.Players {
		assert.Empty(t, p.Role)
		assert.Equal(t, 5, p.HandCount)
		assert.Equal(t, "BLUFF", p.Declaration)
	}
	assert.False(t, v.Players[0].Online, "human without a connection")
	assert.True(t, v.Players[1].Online, "automated seats are always online")
	assert.Equal(t, "ai", v.Players[1].Kind)

	tbl.Room.Player(bot).Exposed = true
	v = BuildPublicView(tbl, map[string]bool{alice: true})
	assert.Equal(t, tbl.Room.Player(bot).Role.String(), v.Players[1].Role)

	raw, err := json.Marshal(v)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"hand"`)
}

// TestPublicViewLogTail: only the most recent events are carried.
func TestPublicViewLogTail(t *testing.T) {
	tbl, alice, _ := startedTable(t)
	for i := 0; i < LogTail+10; i++ {
		require.NoError(t, tbl.Chat(alice, "hello"))
	}
	v := BuildPublicView(tbl, nil)
	require.Len(t, v.Log, LogTail)
	last := v.Log[len(v.Log)-1]
	assert.Equal(t, "Alice: hello", last.Details)
	assert.Greater(t, last.Seq, v.Log[0].Seq)
}

// TestPrivateView: the owner sees role, hand and facedown selection.
func TestPrivateView(t *testing.T) {
	tbl, alice, _ := startedTable(t)
	p := tbl.Room.Player(alice)
	require.NotEmpty(t, p.Hand)
	var pick *game.Card
	for _, c := range p.Hand {
		if c.Type == game.CardAction {
			pick = c
			break
		}
	}
	if pick != nil {
		require.NoError(t, tbl.SetFacedown(alice, pick.ID))
	}

	v := BuildPrivateView(tbl, alice)
	require.NotNil(t, v)
	assert.Equal(t, p.Role.String(), v.Role)
	assert.Len(t, v.Hand, len(p.Hand))
	assert.Equal(t, p.Hand[0].ID, v.Hand[0].ID)
	if pick != nil {
		assert.Equal(t, pick.ID, v.FacedownID)
	}
	assert.Nil(t, BuildPrivateView(tbl, "nobody"))
}

// TestNewResult: accepted and rejected intents carry an explicit ok flag.
func TestNewResult(t *testing.T) {
	ok := NewResult(MsgVote, nil)
	require.NotNil(t, ok.OK)
	assert.True(t, *ok.OK)
	assert.Empty(t, ok.Error)

	bad := NewResult(MsgVote, assert.AnError)
	require.NotNil(t, bad.OK)
	assert.False(t, *bad.OK)
	assert.Equal(t, assert.AnError.Error(), bad.Error)

	raw, err := json.Marshal(bad)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"ok":false`)
}
