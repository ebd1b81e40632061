package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/hollowstate/internal/log"
)

// strongman turns seat i into a coup-ready leader of the given role.
func (f *fixture) strongman(i int, role Role, support, stability int) *Player {
	p := f.p(i)
	p.Role = role
	p.Threat = MaxThreat
	p.Support, p.Stability = support, stability
	return p
}

// TestPrepCoupRaisesThreat: a strongman pays 1 Money per threat level and
// opens a short reaction window.
func TestPrepCoupRaisesThreat(t *testing.T) {
	f := newFixture(t, 2, "").started()
	f.p(0).Role = RolePopulist
	f.toAction()

	require.NoError(t, f.table.Act(f.ids[0], ActPrepCoup, ""))
	assert.Equal(t, 1, f.p(0).Threat)
	assert.Equal(t, 2, f.p(0).Money)
	assert.Equal(t, PhaseReaction, f.table.Room.Phase)
	assert.Equal(t, f.table.Room.PhaseEntered.Add(8*time.Second), f.table.Room.PhaseDeadline)

	f.tick(8 * time.Second)
	assert.Equal(t, PhaseAction, f.table.Room.Phase)
	assert.Equal(t, f.ids[1], f.table.Room.CurrentID)
}

// TestPrepCoupRefusals: normal roles, empty purses and a full threat track
// are all refused without consuming the turn.
func TestPrepCoupRefusals(t *testing.T) {
	f := newFixture(t, 2, "").started()
	f.toAction()
	assert.ErrorIs(t, f.table.Act(f.ids[0], ActPrepCoup, ""), ErrIllegalState)

	f.p(0).Role = RoleAutocrat
	f.p(0).Money = 0
	assert.ErrorIs(t, f.table.Act(f.ids[0], ActPrepCoup, ""), ErrInsufficient)

	f.p(0).Money = 3
	f.p(0).Threat = MaxThreat
	assert.ErrorIs(t, f.table.Act(f.ids[0], ActPrepCoup, ""), ErrInsufficient)

	assert.Equal(t, PhaseAction, f.table.Room.Phase)
	assert.Equal(t, f.ids[0], f.table.Room.CurrentID)
	assert.Equal(t, 3, f.p(0).Money)
}

// TestLaunchCoupRequirements: each launch requirement is checked per coup type.
func TestLaunchCoupRequirements(t *testing.T) {
	cases := []struct {
		name      string
		role      Role
		threat    int
		support   int
		stability int
		want      error
	}{
		{name: "normal role", role: RoleNormal, threat: 3, support: 9, stability: 9, want: ErrIllegalState},
		{name: "low threat", role: RolePopulist, threat: 2, support: 9, stability: 9, want: ErrInsufficient},
		{name: "violent low support", role: RolePopulist, threat: 3, support: 5, stability: 9, want: ErrInsufficient},
		{name: "violent low stability", role: RolePopulist, threat: 3, support: 6, stability: 1, want: ErrInsufficient},
		{name: "violent ready", role: RolePopulist, threat: 3, support: 6, stability: 2},
		{name: "military low support", role: RoleAutocrat, threat: 3, support: 6, stability: 9, want: ErrInsufficient},
		{name: "military low stability", role: RoleAutocrat, threat: 3, support: 7, stability: 3, want: ErrInsufficient},
		{name: "military ready", role: RoleAutocrat, threat: 3, support: 7, stability: 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &Player{Role: tc.role, Threat: tc.threat, Support: tc.support, Stability: tc.stability}
			err := CanLaunchCoup(p)
			if tc.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.want)
			}
		})
	}
}

// TestContributeCoupRefusals: only non-leaders with the Money may pledge, and
// only while a coup is open.
func TestContributeCoupRefusals(t *testing.T) {
	f := newFixture(t, 3, "").started()
	f.toAction()
	assert.ErrorIs(t, f.table.ContributeCoup(f.ids[1], 1), ErrIllegalState, "no coup")

	f.strongman(0, RolePopulist, 6, 5)
	require.NoError(t, f.table.Act(f.ids[0], ActLaunchCoup, ""))
	assert.Equal(t, PhaseCoupNegotiation, f.table.Room.Phase)

	assert.ErrorIs(t, f.table.ContributeCoup(f.ids[0], 1), ErrIllegalState, "leader")
	assert.ErrorIs(t, f.table.ContributeCoup(f.ids[1], 0), ErrIllegalState, "zero")
	assert.ErrorIs(t, f.table.ContributeCoup(f.ids[1], 4), ErrInsufficient)
	assert.ErrorIs(t, f.table.ContributeCoup("ghost", 1), ErrNotFound)
	assert.Equal(t, 0, f.table.Room.Coup.Total())
	assert.Equal(t, 3, f.p(1).Money)
}

// TestViolentCoupBlockedByTwoPledges: two players pledging 2 each block a
// violent coup; the leader loses 2 Support and the defenders gain 1.
func TestViolentCoupBlockedByTwoPledges(t *testing.T) {
	f := newFixture(t, 3, "").started()
	f.toAction()
	leader := f.strongman(0, RolePopulist, 6, 5)
	require.NoError(t, f.table.Act(f.ids[0], ActLaunchCoup, ""))
	require.NotNil(t, f.table.Room.Coup)
	assert.Len(t, f.logger.EventsOfType(log.EventCoupLaunch), 1)

	require.NoError(t, f.table.ContributeCoup(f.ids[1], 2))
	require.NoError(t, f.table.ContributeCoup(f.ids[2], 2))
	assert.Equal(t, 1, f.p(1).Money)
	assert.Equal(t, 1, f.p(2).Money)

	f.tick(29 * time.Second)
	require.NotNil(t, f.table.Room.Coup, "still negotiating")
	f.tick(time.Second)

	assert.Nil(t, f.table.Room.Coup)
	assert.Equal(t, 4, leader.Support)
	assert.Equal(t, 0, leader.Threat)
	assert.Equal(t, 6, f.p(1).Support)
	assert.Equal(t, 6, f.p(2).Support)
	assert.Equal(t, PhaseVote, f.table.Room.Phase)
	assert.Len(t, f.logger.EventsOfType(log.EventCoupBlocked), 1)
	f.dump()
}

// TestViolentCoupSucceedsWithOneDefender: a single pledge can never block.
func TestViolentCoupSucceedsWithOneDefender(t *testing.T) {
	f := newFixture(t, 3, "").started()
	f.toAction()
	f.strongman(0, RolePopulist, 6, 5)
	require.NoError(t, f.table.Act(f.ids[0], ActLaunchCoup, ""))
	require.NoError(t, f.table.ContributeCoup(f.ids[1], 3))

	f.tick(30 * time.Second)
	require.True(t, f.table.Room.Over())
	assert.Equal(t, EndViolentCoup, f.table.Room.Outcome.Reason)
	assert.Equal(t, f.ids[0], f.table.Room.Outcome.WinnerID)
}

// TestMilitaryCoupNotBlockedBelowThresholds: 2+2+1 from three contributors
// reaches neither the total of 6 nor two pledges of 3.
func TestMilitaryCoupNotBlockedBelowThresholds(t *testing.T) {
	f := newFixture(t, 4, "").started()
	f.toAction()
	f.strongman(0, RoleAutocrat, 7, 4)
	require.NoError(t, f.table.Act(f.ids[0], ActLaunchCoup, ""))
	assert.Equal(t, PhaseCoupReaction, f.table.Room.Phase)

	require.NoError(t, f.table.ContributeCoup(f.ids[1], 2))
	require.NoError(t, f.table.ContributeCoup(f.ids[2], 2))
	require.NoError(t, f.table.ContributeCoup(f.ids[3], 1))
	assert.Equal(t, 5, f.table.Room.Coup.Total())
	assert.Equal(t, 3, f.table.Room.Coup.Contributors())

	f.tick(12 * time.Second)
	require.True(t, f.table.Room.Over())
	assert.Equal(t, EndMilitaryCoup, f.table.Room.Outcome.Reason)
	assert.Equal(t, f.ids[0], f.table.Room.Outcome.WinnerID)
}

// TestMilitaryCoupBlockedExposesLeader: two pledges of 3 block a takeover;
// the leader loses 3 Stability and is exposed.
func TestMilitaryCoupBlockedExposesLeader(t *testing.T) {
	f := newFixture(t, 3, "").started()
	f.toAction()
	leader := f.strongman(0, RoleAutocrat, 7, 5)
	require.NoError(t, f.table.Act(f.ids[0], ActLaunchCoup, ""))
	require.NoError(t, f.table.ContributeCoup(f.ids[1], 3))
	require.NoError(t, f.table.ContributeCoup(f.ids[2], 3))

	f.tick(12 * time.Second)
	assert.False(t, f.table.Room.Over())
	assert.Equal(t, 2, leader.Stability)
	assert.True(t, leader.Exposed)
	assert.Equal(t, 0, leader.Threat)
	assert.Equal(t, 7, leader.Support)
	assert.Equal(t, PhaseVote, f.table.Room.Phase)
}

// TestBlockCardFinalizesOnNextTick: a matching block card ends the coup
// without waiting for the deadline.
func TestBlockCardFinalizesOnNextTick(t *testing.T) {
	f := newFixture(t, 2, "").started()
	f.toAction()
	leader := f.strongman(0, RolePopulist, 6, 5)
	rally := f.give(1, reactionCard("R1", "Counter-Coup Rally", EffectBlockViolent))
	require.NoError(t, f.table.Act(f.ids[0], ActLaunchCoup, ""))

	require.NoError(t, f.table.PlayReaction(f.ids[1], rally.ID))
	assert.True(t, f.table.Room.Coup.BlockedByCard)
	assert.Nil(t, f.p(1).HandCard(rally.ID))

	f.tick(time.Millisecond)
	assert.Nil(t, f.table.Room.Coup)
	assert.False(t, f.table.Room.Over())
	assert.Equal(t, 4, leader.Support)
	assert.Equal(t, PhaseVote, f.table.Room.Phase)
}

// TestWrongBlockCardIsSpent: a violent block card does nothing against a
// military takeover but still leaves the hand.
func TestWrongBlockCardIsSpent(t *testing.T) {
	f := newFixture(t, 2, "").started()
	f.toAction()
	f.strongman(0, RoleAutocrat, 7, 4)
	rally := f.give(1, reactionCard("R1", "Counter-Coup Rally", EffectBlockViolent))
	require.NoError(t, f.table.Act(f.ids[0], ActLaunchCoup, ""))

	require.NoError(t, f.table.PlayReaction(f.ids[1], rally.ID))
	assert.False(t, f.table.Room.Coup.BlockedByCard)
	assert.Nil(t, f.p(1).HandCard(rally.ID))
	assert.Contains(t, f.table.Room.Actions.Discard, rally)

	f.tick(12 * time.Second)
	assert.Equal(t, EndMilitaryCoup, f.table.Room.Outcome.Reason)
}
