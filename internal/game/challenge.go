package game

import "github.com/peterkuimelis/hollowstate/internal/log"

// Challenge opens a bluff wager against targetID's declaration. Both sides
// put 1 Money into a pot that settles when the target plays.
func (t *Table) Challenge(challengerID, targetID string) error {
	c, err := t.inPhase(challengerID, PhasePlotting)
	if err != nil {
		return err
	}
	r := t.Room
	target := r.Player(targetID)
	if target == nil {
		return notFound("unknown target %q", targetID)
	}
	if c.ID == target.ID {
		return illegal("you cannot challenge yourself")
	}
	if c.Money < 1 {
		return insufficient("you need 1 Money to challenge")
	}
	if target.Money < 1 {
		return insufficient("%s has no Money to stake", target.Name)
	}
	if _, open := r.Challenges[target.ID]; open {
		return illegal("%s is already being challenged", target.Name)
	}

	t.debit(c, 1, "challenge stake")
	t.debit(target, 1, "challenge stake")
	r.Challenges[target.ID] = &Challenge{ChallengerID: c.ID, Pot: ChallengePot}
	t.emit(log.NewChallengeOpenEvent(c.ID, c.Name, target.Name, 1))
	return nil
}

// settleChallenge pays out the pot against target once their card resolved
// with tag actual. A truthful declaration wins the pot and costs the
// challenger 1 Support; a bluff does the reverse.
func (t *Table) settleChallenge(target *Player, actual Tag) {
	r := t.Room
	ch, ok := r.Challenges[target.ID]
	if !ok {
		return
	}
	delete(r.Challenges, target.ID)
	challenger := r.Player(ch.ChallengerID)
	if challenger == nil {
		return
	}

	if target.Declaration == actual {
		t.AdjustMoney(target.ID, ch.Pot, "won the challenge pot")
		t.AdjustSupport(challenger.ID, -1, "false accusation")
		t.emit(log.NewChallengeSettleEvent(target.ID, target.Name, ch.Pot, true))
		return
	}
	t.AdjustMoney(challenger.ID, ch.Pot, "won the challenge pot")
	t.AdjustSupport(target.ID, -1, "caught bluffing")
	t.emit(log.NewChallengeSettleEvent(challenger.ID, challenger.Name, ch.Pot, false))
}
