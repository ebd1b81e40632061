package game

import "github.com/peterkuimelis/hollowstate/internal/log"

// openOffer records an alliance proposal and holds the offerer's turn in a
// REACTION window until it is accepted or expires.
func (t *Table) openOffer(from, to *Player) {
	r := t.Room
	d := t.cfg.Timings.AllianceOffer
	r.Offer = &AllianceOffer{FromID: from.ID, ToID: to.ID, Deadline: t.now().Add(d)}
	r.reaction = &reactionContext{kind: reactionAllianceOffer, actorID: from.ID}
	t.enterPhase(PhaseReaction, d)
	t.note(log.EventAllianceOffer, from.ID, "%s offers %s an alliance (%ds to accept)", from.Name, to.Name, int(d.Seconds()))
}

// AcceptAlliance answers the pending offer addressed to playerID.
func (t *Table) AcceptAlliance(playerID string) error {
	r := t.Room
	if !r.Started {
		return illegal("game has not started")
	}
	if r.Phase != PhaseReaction || r.Offer == nil {
		return illegal("there is no alliance offer to accept")
	}
	if r.Offer.ToID != playerID {
		return illegal("the offer is not addressed to you")
	}
	from, to := r.Player(r.Offer.FromID), r.Player(r.Offer.ToID)
	if from == nil || to == nil {
		return notFound("alliance party has left")
	}
	if from.AllyID != "" || to.AllyID != "" {
		return illegal("%s or %s is already allied", from.Name, to.Name)
	}

	from.AllyID = to.ID
	to.AllyID = from.ID
	r.Offer = nil
	t.note(log.EventAllianceFormed, to.ID, "alliance formed: %s ⇄ %s", from.Name, to.Name)

	if offerer := r.PendingOfferFrom(); offerer != "" {
		t.finishAction(offerer)
	}
	return nil
}

// expireOffer cancels the pending offer without penalty.
func (t *Table) expireOffer() {
	r := t.Room
	if r.Offer == nil {
		return
	}
	t.note(log.EventAllianceExpired, r.Offer.FromID, "alliance offer %s → %s expired", t.name(r.Offer.FromID), t.name(r.Offer.ToID))
	r.Offer = nil
}

// breakAlliance removes the alliance edge on both sides.
func (t *Table) breakAlliance(p *Player) {
	ally := t.Room.Player(p.AllyID)
	allyName := "?"
	if ally != nil {
		ally.AllyID = ""
		allyName = ally.Name
	}
	p.AllyID = ""
	t.note(log.EventAllianceBroken, p.ID, "%s breaks the alliance with %s", p.Name, allyName)
}
