package game

import "github.com/peterkuimelis/hollowstate/internal/log"

// AdjustSupport applies a clamped Support change. The first positive change
// a player receives in a round also grants their ally +1 Support; the bonus
// is tracked by the receiving ally so it never chains.
func (t *Table) AdjustSupport(playerID string, delta int, reason string) {
	p := t.Room.Player(playerID)
	if p == nil || delta == 0 {
		return
	}
	before := p.Support
	p.Support = clamp(p.Support+delta, MetricMin, MetricMax)
	t.emit(log.NewMetricEvent(log.EventSupport, p.ID, p.Name, before, p.Support, reason))

	if delta < 0 || p.AllyID == "" {
		return
	}
	ally := t.Room.Player(p.AllyID)
	if ally == nil || t.Room.allyBonus[ally.ID] {
		return
	}
	t.Room.allyBonus[ally.ID] = true
	before = ally.Support
	ally.Support = clamp(ally.Support+1, MetricMin, MetricMax)
	t.note(log.EventAllyBonus, ally.ID, "%s rides along with their ally: Support %d → %d", ally.Name, before, ally.Support)
}

// AdjustStability applies a clamped Stability change. A loss is negated
// entirely when the player armed a cancellation; otherwise the player's ally
// takes a −1 penalty that does not propagate further.
func (t *Table) AdjustStability(playerID string, delta int, reason string) {
	p := t.Room.Player(playerID)
	if p == nil {
		return
	}
	t.adjustStability(p, delta, reason, true)
}

func (t *Table) adjustStability(p *Player, delta int, reason string, propagate bool) {
	if delta == 0 {
		return
	}
	if delta < 0 && p.cancelNextLoss {
		p.cancelNextLoss = false
		t.note(log.EventLossCancelled, p.ID, "%s's Damage Control cancels a Stability loss of %d", p.Name, -delta)
		return
	}
	before := p.Stability
	p.Stability = clamp(p.Stability+delta, MetricMin, MetricMax)
	t.emit(log.NewMetricEvent(log.EventStability, p.ID, p.Name, before, p.Stability, reason))

	if delta > 0 || !propagate || p.AllyID == "" {
		return
	}
	if ally := t.Room.Player(p.AllyID); ally != nil {
		t.adjustStability(ally, -1, "shares "+p.Name+"'s loss", false)
	}
}

// AdjustMoney applies a clamped Money change.
func (t *Table) AdjustMoney(playerID string, delta int, reason string) {
	p := t.Room.Player(playerID)
	if p == nil || delta == 0 {
		return
	}
	before := p.Money
	p.Money = clamp(p.Money+delta, MetricMin, MetricMax)
	t.emit(log.NewMetricEvent(log.EventMoney, p.ID, p.Name, before, p.Money, reason))
}

// debit moves amount out of a player's Money into an escrow or pledge. The
// caller has already checked the balance.
func (t *Table) debit(p *Player, amount int, reason string) {
	before := p.Money
	p.Money -= amount
	t.emit(log.NewMetricEvent(log.EventMoney, p.ID, p.Name, before, p.Money, reason))
}

// applyDelta applies a bundle delta to one player.
func (t *Table) applyDelta(playerID string, d *Delta, reason string) {
	if d == nil {
		return
	}
	t.AdjustSupport(playerID, d.S, reason)
	t.AdjustStability(playerID, d.T, reason)
	t.AdjustMoney(playerID, d.M, reason)
}
