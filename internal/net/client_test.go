package net

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleViews() (*PublicView, *PrivateView) {
	pub := &PublicView{
		Phase: "ACTION",
		Players: []PlayerView{
			{ID: "p-alice", Name: "Alice"},
			{ID: "p-bob", Name: "Bob"},
			{ID: "p-ai", Name: "AI_3", Kind: "ai"},
		},
	}
	priv := &PrivateView{
		ID: "p-alice",
		Hand: []CardView{
			{ID: "C4", Name: "Fundraiser", Tag: "MONEY"},
			{ID: "C38", Name: "Damage Control", Type: "REACTION"},
		},
	}
	return pub, priv
}

// TestParseCommand: REPL lines map to protocol messages with seats and hand
// positions resolved.
func TestParseCommand(t *testing.T) {
	pub, priv := sampleViews()
	cases := []struct {
		line string
		want ClientMessage
	}{
		{"ai 2", ClientMessage{Type: MsgAddBots, Count: 2}},
		{"ai", ClientMessage{Type: MsgAddBots, Count: 1}},
		{"start", ClientMessage{Type: MsgStart}},
		{"fd 1", ClientMessage{Type: MsgSetFacedown, CardID: "C4"}},
		{"fd c38", ClientMessage{Type: MsgSetFacedown, CardID: "C38"}},
		{"declare money  cash is king", ClientMessage{Type: MsgDeclare, Tag: "MONEY", Text: "cash is king"}},
		{"declare ally", ClientMessage{Type: MsgDeclare, Tag: "ALLY"}},
		{"challenge 2", ClientMessage{Type: MsgChallenge, TargetID: "p-bob"}},
		{"challenge ai_3", ClientMessage{Type: MsgChallenge, TargetID: "p-ai"}},
		{"play", ClientMessage{Type: MsgAction, ActionKey: "PLAY_FACEDOWN"}},
		{"play bob", ClientMessage{Type: MsgAction, ActionKey: "PLAY_FACEDOWN", TargetID: "p-bob"}},
		{"prep", ClientMessage{Type: MsgAction, ActionKey: "PREP_COUP"}},
		{"launch", ClientMessage{Type: MsgAction, ActionKey: "LAUNCH_COUP"}},
		{"break", ClientMessage{Type: MsgAction, ActionKey: "BREAK_ALLIANCE"}},
		{"pass", ClientMessage{Type: MsgAction, ActionKey: "PASS"}},
		{"vote y", ClientMessage{Type: MsgVote, Choice: "YES"}},
		{"vote abstain", ClientMessage{Type: MsgVote, Choice: "ABSTAIN"}},
		{"fund 2", ClientMessage{Type: MsgFundCrisis, Amount: 2}},
		{"block 3", ClientMessage{Type: MsgContributeCoup, Amount: 3}},
		{"react 2", ClientMessage{Type: MsgReaction, CardID: "C38"}},
		{"accept", ClientMessage{Type: MsgAcceptAlliance}},
		{"say hello there", ClientMessage{Type: MsgChat, Text: "hello there"}},
		{"state", ClientMessage{Type: MsgPing}},
		{"quit", ClientMessage{Type: MsgLeave}},
	}
	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			got, err := parseCommand(tc.line, pub, priv)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// TestParseCommandErrors: bad arguments are reported locally and nothing is
// sent.
func TestParseCommandErrors(t *testing.T) {
	pub, priv := sampleViews()
	for _, line := range []string{
		"dance",
		"ai many",
		"fd",
		"fd 9",
		"fd C99",
		"challenge 4",
		"challenge nobody",
		"play 0",
		"vote",
		"fund -1",
		"block x",
		"react",
		"say",
		"declare",
	} {
		t.Run(line, func(t *testing.T) {
			_, err := parseCommand(line, pub, priv)
			assert.Error(t, err)
		})
	}

	_, err := parseCommand("challenge 1", nil, nil)
	assert.Error(t, err, "no snapshot yet")
	_, err = parseCommand("fd 1", pub, nil)
	assert.Error(t, err, "no hand yet")
}

// TestApplyStatePrintsNewEventsOnce: log lines already shown are not
// repeated and the game-over banner appears once.
func TestApplyStatePrintsNewEventsOnce(t *testing.T) {
	var out bytes.Buffer
	c := &Client{out: &out, playerID: "p-alice"}
	pub, priv := sampleViews()
	pub.Log = []EventView{{Seq: 1, Round: 1, Phase: "PLOTTING", Details: "first"}}
	c.applyState(pub, priv)

	pub2 := *pub
	pub2.Log = []EventView{
		{Seq: 1, Round: 1, Phase: "PLOTTING", Details: "first"},
		{Seq: 2, Round: 1, Phase: "ACTION", Details: "second"},
	}
	pub2.Outcome = &OutcomeView{Reason: "election", Text: "Alice wins"}
	c.applyState(&pub2, nil)
	c.applyState(&pub2, nil)

	s := out.String()
	assert.Equal(t, 1, bytes.Count([]byte(s), []byte("first")))
	assert.Equal(t, 1, bytes.Count([]byte(s), []byte("second")))
	assert.Equal(t, 1, bytes.Count([]byte(s), []byte("GAME OVER")))
	assert.Contains(t, s, "Alice")
	assert.Contains(t, s, "(you)")
}
