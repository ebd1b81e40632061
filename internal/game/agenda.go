package game

import "github.com/peterkuimelis/hollowstate/internal/log"

// Vote records a player's choice on the agenda. Players may change their vote
// until the tally.
func (t *Table) Vote(playerID string, choice VoteChoice) error {
	p, err := t.inPhase(playerID, PhaseVote)
	if err != nil {
		return err
	}
	t.Room.Votes[p.ID] = choice
	t.emit(log.NewVoteEvent(p.ID, p.Name, choice.String()))
	return nil
}

// resolveVote tallies the votes, defaulting absent players to ABSTAIN, and
// applies the pass or fail bundle.
func (t *Table) resolveVote() {
	r := t.Room
	yes, no := 0, 0
	for _, p := range r.Players {
		if _, ok := r.Votes[p.ID]; !ok {
			r.Votes[p.ID] = VoteAbstain
		}
		switch r.Votes[p.ID] {
		case VoteYes:
			yes++
		case VoteNo:
			no++
		}
	}
	passed := yes > no
	verdict := "fails"
	if passed {
		verdict = "passes"
	}
	t.note(log.EventVoteResult, "", "vote: YES %d / NO %d, the agenda %s", yes, no, verdict)
	if r.Agenda == nil {
		return
	}
	if passed {
		t.applyBundle(r.Agenda.Pass, "agenda passed")
	} else {
		t.applyBundle(r.Agenda.Fail, "agenda failed")
	}
}

// applyBundle applies an agenda bundle. Richest and most supported are picked
// before any delta lands.
func (t *Table) applyBundle(b *Bundle, reason string) {
	if b == nil {
		return
	}
	r := t.Room
	richest, top := r.richest(), r.topSupport()

	if b.YesVoters != nil || b.NoVoters != nil {
		for _, p := range r.Players {
			switch r.Votes[p.ID] {
			case VoteYes:
				t.applyDelta(p.ID, b.YesVoters, reason)
			case VoteNo:
				t.applyDelta(p.ID, b.NoVoters, reason)
			}
		}
	}
	if b.All != nil {
		for _, p := range r.Players {
			t.applyDelta(p.ID, b.All, reason)
		}
	}
	if b.President != nil {
		t.applyDelta(r.PresidentID, b.President, reason+" (president)")
	}
	if b.Richest != nil && richest != nil {
		t.applyDelta(richest.ID, b.Richest, reason+" (richest)")
	}
	if b.TopSupport != nil && top != nil {
		t.applyDelta(top.ID, b.TopSupport, reason+" (most supported)")
	}
	if b.Draw > 0 {
		for _, p := range r.Players {
			for i := 0; i < b.Draw; i++ {
				if c, ok := r.Actions.Draw(t.rng); ok {
					p.Hand = append(p.Hand, c)
				}
			}
		}
		t.note(log.EventDraw, "", "everyone draws %d card(s)", b.Draw)
	}
	if b.ElectionThreshold > 0 {
		r.Threshold = b.ElectionThreshold
		t.note(log.EventAgendaEffect, "", "the election threshold is now %d", r.Threshold)
	}
	if b.Rebuild {
		for _, p := range r.Players {
			p.Stability = t.cfg.StartStability
			t.fillHand(p)
		}
		t.note(log.EventAgendaEffect, "", "rebuild: everyone's Stability resets to %d and hands refill", t.cfg.StartStability)
	}
}

// moveToCrisis opens the funding window for the agenda's crisis.
func (t *Table) moveToCrisis() {
	t.enterPhase(PhaseCrisis, t.cfg.Timings.Crisis)
	if a := t.Room.Agenda; a != nil {
		t.note(log.EventAgendaEffect, "", "crisis: %d Money needed. %s", a.CrisisNeed, a.CrisisText)
	}
}

// FundCrisis pledges Money toward the crisis need. The amount is debited at
// once.
func (t *Table) FundCrisis(playerID string, amount int) error {
	p, err := t.inPhase(playerID, PhaseCrisis)
	if err != nil {
		return err
	}
	amount = clamp(amount, 0, MetricMax)
	if amount <= 0 {
		return illegal("contribution must be positive")
	}
	if p.Money < amount {
		return insufficient("you have only %d Money", p.Money)
	}
	t.debit(p, amount, "crisis funding")
	t.Room.Crisis[p.ID] += amount
	t.note(log.EventCrisisContribute, p.ID, "%s pledges %d Money to the crisis", p.Name, amount)
	return nil
}

// resolveCrisis applies the agenda's shortfall bundle when underfunded, or
// rewards contributors when funded.
func (t *Table) resolveCrisis() {
	r := t.Room
	a := r.Agenda
	if a == nil || a.CrisisNeed <= 0 {
		return
	}
	total := r.CrisisTotal()
	if total < a.CrisisNeed {
		t.note(log.EventCrisisResult, "", "crisis unmet (%d/%d): %s", total, a.CrisisNeed, a.CrisisText)
		t.applyBundle(a.Shortfall, "crisis unmet")
		return
	}

	t.note(log.EventCrisisResult, "", "crisis handled (%d/%d)", total, a.CrisisNeed)
	var best *Player
	for _, p := range r.Players {
		amt := r.Crisis[p.ID]
		if amt <= 0 {
			continue
		}
		t.AdjustStability(p.ID, 1, "funded the crisis")
		if best == nil || amt > r.Crisis[best.ID] {
			best = p
		}
	}
	if best != nil {
		t.AdjustSupport(best.ID, 1, "led the crisis response")
	}
}
