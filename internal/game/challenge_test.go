package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/hollowstate/internal/log"
)

// TestChallengeEscrowConservation: opening debits 1 from each side, settling
// credits the full pot to one side, and Money is conserved either way.
func TestChallengeEscrowConservation(t *testing.T) {
	cases := []struct {
		name           string
		declared       Tag
		actual         Tag
		challengerM    int
		targetM        int
		challengerS    int
		targetS        int
	}{
		{name: "truthful", declared: TagMoney, actual: TagMoney, challengerM: 2, targetM: 4, challengerS: 4, targetS: 5},
		{name: "bluff", declared: TagSupport, actual: TagAttack, challengerM: 4, targetM: 2, challengerS: 5, targetS: 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, 2, "").started()
			challenger, target := f.p(0), f.p(1)
			target.Declaration = tc.declared
			total := challenger.Money + target.Money

			require.NoError(t, f.table.Challenge(challenger.ID, target.ID))
			assert.Equal(t, 2, challenger.Money)
			assert.Equal(t, 2, target.Money)
			require.Contains(t, f.table.Room.Challenges, target.ID)
			assert.Equal(t, ChallengePot, f.table.Room.Challenges[target.ID].Pot)
			assert.Equal(t, total, challenger.Money+target.Money+ChallengePot)

			f.table.settleChallenge(target, tc.actual)
			assert.Equal(t, tc.challengerM, challenger.Money)
			assert.Equal(t, tc.targetM, target.Money)
			assert.Equal(t, total, challenger.Money+target.Money)
			assert.Equal(t, tc.challengerS, challenger.Support)
			assert.Equal(t, tc.targetS, target.Support)
			assert.Empty(t, f.table.Room.Challenges)
		})
	}
}

// TestChallengeRejections: every refused challenge leaves Money untouched.
func TestChallengeRejections(t *testing.T) {
	f := newFixture(t, 3, "").started()
	a, b, c := f.ids[0], f.ids[1], f.ids[2]

	assert.ErrorIs(t, f.table.Challenge(a, a), ErrIllegalState)
	assert.ErrorIs(t, f.table.Challenge(a, "ghost"), ErrNotFound)

	f.p(2).Money = 0
	assert.ErrorIs(t, f.table.Challenge(a, c), ErrInsufficient)
	assert.ErrorIs(t, f.table.Challenge(c, a), ErrInsufficient)

	require.NoError(t, f.table.Challenge(a, b))
	f.p(2).Money = 3
	assert.ErrorIs(t, f.table.Challenge(c, b), ErrIllegalState, "one challenge per target")

	assert.Equal(t, 2, f.p(0).Money)
	assert.Equal(t, 2, f.p(1).Money)
	assert.Equal(t, 3, f.p(2).Money)

	f.toAction()
	assert.ErrorIs(t, f.table.Challenge(c, a), ErrIllegalState, "only during plotting")
}

// TestPlayFacedownSettlesChallenge: the target's played card settles the pot
// against their declaration.
func TestPlayFacedownSettlesChallenge(t *testing.T) {
	f := newFixture(t, 2, "").started()
	card := f.give(1, actionCard("X1", "Media Spin", TagAttack, EffectShiftSupport, Params{S: 1}))
	require.NoError(t, f.table.SetFacedown(f.ids[1], card.ID))
	require.NoError(t, f.table.Declare(f.ids[1], "SUPPORT", "just campaigning"))
	require.NoError(t, f.table.Challenge(f.ids[0], f.ids[1]))

	f.toAction()
	require.NoError(t, f.table.Act(f.ids[0], ActPass, ""))
	require.NoError(t, f.table.Act(f.ids[1], ActPlayFacedown, f.ids[0]))

	// Media Spin: 0 → 4 Support, 1 → 6; then the bluff costs 1 → 5 and
	// the challenger takes the pot.
	assert.Equal(t, 4, f.p(0).Support)
	assert.Equal(t, 5, f.p(1).Support)
	assert.Equal(t, 4, f.p(0).Money)
	assert.Equal(t, 2, f.p(1).Money)
	assert.Empty(t, f.p(1).FacedownID)
	assert.Nil(t, f.p(1).HandCard("X1"))
	assert.Equal(t, PhaseReaction, f.table.Room.Phase)

	settled := f.logger.EventsOfType(log.EventChallengeSettle)
	require.Len(t, settled, 1)
	assert.Equal(t, f.ids[0], settled[0].Player)
}
