package game

import (
	"github.com/peterkuimelis/hollowstate/internal/log"
)

// coupRule holds the per-type launch requirements and block thresholds.
type coupRule struct {
	minSupport   int
	minStability int
	blockTotal   int // total pledged that blocks, with at least two contributors
	blockEach    int // pledge that blocks when reached by two contributors
}

var coupRules = map[CoupType]coupRule{
	CoupViolent:  {minSupport: 6, minStability: 2, blockTotal: 4, blockEach: 2},
	CoupMilitary: {minSupport: 7, minStability: 4, blockTotal: 6, blockEach: 3},
}

func coupTypeOf(r Role) CoupType {
	if r == RoleAutocrat {
		return CoupMilitary
	}
	return CoupViolent
}

// prepCoup raises a strongman's threat by 1 for 1 Money.
func (t *Table) prepCoup(p *Player) error {
	if !p.Role.CoupCapable() {
		return illegal("only a strongman can prepare a coup")
	}
	if p.Money < 1 {
		return insufficient("preparing a coup costs 1 Money")
	}
	if p.Threat >= MaxThreat {
		return insufficient("coup threat is already at %d", MaxThreat)
	}
	t.debit(p, 1, "coup preparation")
	p.Threat++
	t.note(log.EventCoupThreat, p.ID, "%s raises the coup threat to %d", p.Name, p.Threat)
	return nil
}

// CanLaunchCoup reports whether p meets the launch requirements, with the
// reason when not.
func CanLaunchCoup(p *Player) error {
	if !p.Role.CoupCapable() {
		return illegal("only a strongman can launch a coup")
	}
	if p.Threat < MaxThreat {
		return insufficient("coup threat must be %d (is %d)", MaxThreat, p.Threat)
	}
	rule := coupRules[coupTypeOf(p.Role)]
	if p.Support < rule.minSupport {
		return insufficient("launching needs Support %d+", rule.minSupport)
	}
	if p.Stability < rule.minStability {
		return insufficient("launching needs Stability %d+", rule.minStability)
	}
	return nil
}

// launchCoup opens the coup window that preempts the round.
func (t *Table) launchCoup(p *Player) error {
	if err := CanLaunchCoup(p); err != nil {
		return err
	}
	r := t.Room
	typ := coupTypeOf(p.Role)
	phase, d := PhaseCoupNegotiation, t.cfg.Timings.ViolentCoup
	if typ == CoupMilitary {
		phase, d = PhaseCoupReaction, t.cfg.Timings.MilitaryCoup
	}
	r.reaction = nil
	r.Coup = &Coup{
		LeaderID:      p.ID,
		Type:          typ,
		Contributions: make(map[string]int),
		Deadline:      t.now().Add(d),
	}
	t.enterPhase(phase, d)
	t.emit(log.NewCoupLaunchEvent(p.ID, p.Name, typ.String()))
	return nil
}

// ContributeCoup pledges Money toward blocking the active coup. The amount is
// debited at once.
func (t *Table) ContributeCoup(playerID string, amount int) error {
	r := t.Room
	if !r.Started {
		return illegal("game has not started")
	}
	if r.Coup == nil || (r.Phase != PhaseCoupNegotiation && r.Phase != PhaseCoupReaction) {
		return illegal("there is no coup to block")
	}
	if playerID == r.Coup.LeaderID {
		return illegal("the coup leader cannot pay to block it")
	}
	p := r.Player(playerID)
	if p == nil {
		return notFound("unknown player %q", playerID)
	}
	amount = clamp(amount, 0, MetricMax)
	if amount <= 0 {
		return illegal("contribution must be positive")
	}
	if p.Money < amount {
		return insufficient("you have only %d Money", p.Money)
	}
	t.debit(p, amount, "pledged against the coup")
	r.Coup.Contributions[p.ID] += amount
	t.note(log.EventCoupContribute, p.ID, "%s pledges %d Money to stop the coup", p.Name, amount)
	return nil
}

// coupBlocked evaluates the block predicate for a coup.
func coupBlocked(c *Coup) bool {
	rule := coupRules[c.Type]
	return c.BlockedByCard ||
		(c.Total() >= rule.blockTotal && c.Contributors() >= 2) ||
		countAtLeast(c.Contributions, rule.blockEach) >= 2
}

// finalizeCoup resolves the active coup. Success ends the game; a blocked
// coup penalises the leader and opens VOTE.
func (t *Table) finalizeCoup() {
	r := t.Room
	c := r.Coup
	if c == nil {
		return
	}
	leader := r.Player(c.LeaderID)
	if leader == nil {
		r.Coup = nil
		t.enterPhase(PhaseVote, t.cfg.Timings.Vote)
		return
	}

	if !coupBlocked(c) {
		if c.Type == CoupMilitary {
			t.endGame(leader, EndMilitaryCoup, "military takeover succeeded")
		} else {
			t.endGame(leader, EndViolentCoup, "violent coup succeeded")
		}
		return
	}

	r.Coup = nil
	leader.Threat = 0
	if c.Type == CoupViolent {
		t.AdjustSupport(leader.ID, -2, "coup blocked")
		for _, p := range r.Players {
			if c.Contributions[p.ID] > 0 {
				t.AdjustSupport(p.ID, 1, "stood against the coup")
			}
		}
		t.note(log.EventCoupBlocked, leader.ID, "the violent coup is blocked")
	} else {
		t.AdjustStability(leader.ID, -3, "takeover blocked")
		leader.Exposed = true
		t.note(log.EventCoupBlocked, leader.ID, "the military takeover is blocked; %s is exposed", leader.Name)
	}
	t.enterPhase(PhaseVote, t.cfg.Timings.Vote)
}
