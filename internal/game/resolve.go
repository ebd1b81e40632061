package game

import (
	"strings"

	"go.uber.org/zap"

	"github.com/peterkuimelis/hollowstate/internal/log"
)

func or(v, d int) int {
	if v == 0 {
		return d
	}
	return v
}

// resolveAction applies an Action card's effect, discards the card and
// returns the card's declaration tag for challenge settlement. target may be
// nil; effects that need one fall back to the most supported other player.
func (t *Table) resolveAction(actor *Player, card *Card, target *Player) Tag {
	defer t.Room.Actions.Put(card)

	if card.Effect.NeedsTarget() && target == nil {
		target = t.Room.topSupportOther(actor.ID)
		if target == nil {
			t.note(log.EventPlay, actor.ID, "%s has no one to target", card.Name)
			return card.Tag
		}
	}
	prm := card.Params

	switch card.Effect {
	case EffectGainSupport:
		t.AdjustSupport(actor.ID, or(prm.S, 1), card.Name)

	case EffectGainStability:
		t.AdjustStability(actor.ID, or(prm.T, 1), card.Name)

	case EffectGainMoney:
		t.AdjustMoney(actor.ID, or(prm.M, 1), card.Name)

	case EffectGainSupportStability:
		t.AdjustSupport(actor.ID, or(prm.S, 1), card.Name)
		t.AdjustStability(actor.ID, or(prm.T, 1), card.Name)

	case EffectGainMoneyLoseStability:
		t.AdjustMoney(actor.ID, or(prm.M, 1), card.Name)
		t.AdjustStability(actor.ID, -or(prm.T, 1), card.Name)

	case EffectShiftSupport:
		n := or(prm.S, 1)
		t.AdjustSupport(target.ID, -n, card.Name+" (pressured)")
		t.AdjustSupport(actor.ID, n, card.Name+" (gained)")

	case EffectHitSupportStability:
		t.AdjustSupport(target.ID, -or(prm.S, 1), card.Name)
		t.AdjustStability(target.ID, -or(prm.T, 1), card.Name)

	case EffectStealMoney:
		take := min(or(prm.M, 2), target.Money)
		target.Money -= take
		actor.Money = clamp(actor.Money+take, MetricMin, MetricMax)
		t.note(log.EventSteal, actor.ID, "%s takes %d Money from %s with %s", actor.Name, take, target.Name, card.Name)

	case EffectStealCard:
		if len(target.Hand) == 0 {
			t.note(log.EventSteal, actor.ID, "%s finds nothing in %s's hand", actor.Name, target.Name)
			break
		}
		stolen := target.takeCard(target.Hand[t.rng.Intn(len(target.Hand))].ID)
		actor.Hand = append(actor.Hand, stolen)
		t.note(log.EventSteal, actor.ID, "%s steals a card from %s's hand", actor.Name, target.Name)

	case EffectBetray:
		t.AdjustSupport(actor.ID, or(prm.S, 2), card.Name)
		t.AdjustStability(actor.ID, -or(prm.T, 2), card.Name)
		actor.Untrusted = clamp(actor.Untrusted+1, 0, MaxUntrusted)
		t.note(log.EventBetray, actor.ID, "%s is now untrusted (%d)", actor.Name, actor.Untrusted)

	case EffectAssassinate:
		if target.Support < or(prm.Min, 4) {
			t.note(log.EventAssassinate, actor.ID, "%s's assassination fails: %s has under %d Support", actor.Name, target.Name, or(prm.Min, 4))
			break
		}
		t.note(log.EventAssassinate, actor.ID, "%s assassinates %s's support (%d → 0)", actor.Name, target.Name, target.Support)
		target.Support = 0
		t.AdjustStability(actor.ID, -or(prm.T, 3), card.Name)

	case EffectOfferAlliance:
		if actor.AllyID != "" || target.AllyID != "" {
			t.note(log.EventAllianceOffer, actor.ID, "alliance offer fails: %s or %s is already allied", actor.Name, target.Name)
			break
		}
		t.openOffer(actor, target)

	case EffectBreakAlliance:
		if actor.AllyID == "" {
			t.note(log.EventAllianceBroken, actor.ID, "%s has no alliance to break", actor.Name)
			break
		}
		t.breakAlliance(actor)

	default:
		t.note(log.EventUnknownEffect, actor.ID, "%s has no implemented effect (%s)", card.Name, card.EffectKey)
		t.zap.Warn("unknown card effect", zap.String("card", card.Name), zap.String("effect", card.EffectKey))
	}
	return card.Tag
}

// --- Plotting intents ---

// SetFacedown selects the Action card a player will play this round.
func (t *Table) SetFacedown(playerID, cardID string) error {
	p, err := t.inPhase(playerID, PhasePlotting)
	if err != nil {
		return err
	}
	c := p.HandCard(cardID)
	if c == nil {
		return notFound("card %q is not in your hand", cardID)
	}
	if c.Type != CardAction {
		return illegal("%s is a reaction card", c.Name)
	}
	p.FacedownID = c.ID
	t.touch()
	return nil
}

// Declare sets a player's public claim about their facedown card. Unknown
// tags become BLUFF.
func (t *Table) Declare(playerID, tag, text string) error {
	p, err := t.inPhase(playerID, PhasePlotting)
	if err != nil {
		return err
	}
	p.Declaration = ParseTag(tag)
	p.DeclText = truncate(strings.TrimSpace(text), maxDeclRunes)
	t.emit(log.NewDeclareEvent(p.ID, p.Name, p.Declaration.String(), p.DeclText))
	return nil
}

// inPhase validates that the game runs, is in phase and knows the player.
func (t *Table) inPhase(playerID string, phase Phase) (*Player, error) {
	r := t.Room
	if !r.Started {
		return nil, illegal("game has not started")
	}
	if r.Phase != phase {
		return nil, illegal("not allowed during %s (needs %s)", r.Phase, phase)
	}
	p := r.Player(playerID)
	if p == nil {
		return nil, notFound("unknown player %q", playerID)
	}
	return p, nil
}

// --- Turn actions ---

// Act performs the current actor's turn action. targetID is only read by
// ActPlayFacedown and may be empty.
func (t *Table) Act(playerID string, kind ActionKind, targetID string) error {
	actor, err := t.inPhase(playerID, PhaseAction)
	if err != nil {
		return err
	}
	r := t.Room
	if r.CurrentID != playerID {
		return illegal("it is %s's turn", t.name(r.CurrentID))
	}

	switch kind {
	case ActPlayFacedown:
		return t.playFacedown(actor, targetID)

	case ActPrepCoup:
		if err := t.prepCoup(actor); err != nil {
			return err
		}
		t.openReaction(actor.ID, t.cfg.Timings.ShortReaction)

	case ActLaunchCoup:
		return t.launchCoup(actor)

	case ActBreakAlliance:
		if actor.AllyID == "" {
			return illegal("you have no alliance")
		}
		t.breakAlliance(actor)
		t.openReaction(actor.ID, t.cfg.Timings.ShortReaction)

	case ActPass:
		t.emit(log.GameEvent{Player: actor.ID, Type: log.EventPass, Details: actor.Name + " passes"})
		t.finishAction(actor.ID)

	default:
		return illegal("unknown action %d", kind)
	}
	return nil
}

func (t *Table) playFacedown(actor *Player, targetID string) error {
	r := t.Room
	if actor.FacedownID == "" {
		return illegal("you have no facedown card")
	}
	card := actor.HandCard(actor.FacedownID)
	if card == nil {
		return notFound("your facedown card is no longer in your hand")
	}
	if card.Type != CardAction {
		return illegal("%s is not an action card", card.Name)
	}
	var target *Player
	if targetID != "" {
		if target = r.Player(targetID); target == nil {
			return notFound("unknown target %q", targetID)
		}
		if target.ID == actor.ID {
			return illegal("you cannot target yourself")
		}
	}

	actor.takeCard(card.ID)
	targetName := ""
	if target != nil && card.Effect.NeedsTarget() {
		targetName = target.Name
	}
	t.emit(log.NewPlayEvent(actor.ID, actor.Name, card.Name, targetName))

	tag := t.resolveAction(actor, card, target)
	t.settleChallenge(actor, tag)

	if t.checkWin() {
		return nil
	}
	if r.PendingOfferFrom() == actor.ID {
		return nil
	}
	t.openReaction(actor.ID, t.cfg.Timings.Reaction)
	return nil
}

// --- Reactions ---

// PlayReaction plays a Reaction card from hand during REACTION or a coup
// window. A coup block card of the wrong type is spent without effect.
func (t *Table) PlayReaction(playerID, cardID string) error {
	r := t.Room
	if !r.Started {
		return illegal("game has not started")
	}
	if !r.Phase.reactive() {
		return illegal("reaction cards cannot be played during %s", r.Phase)
	}
	p := r.Player(playerID)
	if p == nil {
		return notFound("unknown player %q", playerID)
	}
	card := p.HandCard(cardID)
	if card == nil {
		return notFound("card %q is not in your hand", cardID)
	}
	if card.Type != CardReaction {
		return illegal("%s is not a reaction card", card.Name)
	}

	p.takeCard(card.ID)
	defer r.Actions.Put(card)

	switch card.Effect {
	case EffectCancelStabilityLoss:
		p.cancelNextLoss = true
		t.note(log.EventReaction, p.ID, "%s plays %s: the next Stability loss is cancelled", p.Name, card.Name)

	case EffectBlockViolent, EffectBlockMilitary:
		want := CoupViolent
		if card.Effect == EffectBlockMilitary {
			want = CoupMilitary
		}
		if r.Coup != nil && r.Coup.Type == want {
			r.Coup.BlockedByCard = true
			t.note(log.EventReaction, p.ID, "%s plays %s: the %s coup will be blocked", p.Name, card.Name, strings.ToLower(want.String()))
		} else {
			t.note(log.EventReaction, p.ID, "%s plays %s, but there is no %s coup to block", p.Name, card.Name, strings.ToLower(want.String()))
		}

	default:
		t.note(log.EventUnknownEffect, p.ID, "%s has no implemented effect (%s)", card.Name, card.EffectKey)
		t.zap.Warn("unknown reaction effect", zap.String("card", card.Name), zap.String("effect", card.EffectKey))
	}
	return nil
}
