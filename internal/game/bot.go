package game

import (
	"math/rand"

	"go.uber.org/zap"
)

// Tuning for the automated player policy.
const (
	botChallengeChance  = 0.25
	botAllyCardChance   = 0.25
	botLaunchChance     = 0.35
	botPrepChance       = 0.25
	botBlockCardChance  = 0.6
	botContributeChance = 0.55
	botAcceptChance     = 0.5
	botVoteYesChance    = 0.45
	botVoteNoChance     = 0.5
	botCrisisFundChance = 0.4
	botCoupContribution = 2
	botCrisisFundAmount = 1
)

// BotOpponent is what a bot sees of another player.
type BotOpponent struct {
	ID      string
	Support int
	Money   int
}

// BotView is a read-only projection of the room visible to one automated
// player.
type BotView struct {
	Phase       Phase
	MyTurn      bool
	Me          Player
	Hand        []*Card
	Others      []BotOpponent // seat order
	Challenged  map[string]bool
	Coup        *Coup
	OfferToMe   bool
	BotVote     string
	Voted       bool
	CrisisNeed  int
	CrisisTotal int
	CanLaunch   bool
}

// MoveKind identifies a bot decision.
type MoveKind int

const (
	MoveFacedown MoveKind = iota
	MoveDeclare
	MoveChallenge
	MoveAct
	MoveReaction
	MoveContribute
	MoveAccept
	MoveVote
	MoveFund
)

// BotMove is one intent chosen by the policy. It is applied through the same
// entry points a human uses.
type BotMove struct {
	Kind     MoveKind
	CardID   string
	TargetID string
	Tag      Tag
	Text     string
	Action   ActionKind
	Vote     VoteChoice
	Amount   int
}

// BuildBotView projects the room for playerID.
func BuildBotView(r *Room, playerID string) BotView {
	me := r.Player(playerID)
	v := BotView{
		Phase:      r.Phase,
		MyTurn:     r.Phase == PhaseAction && r.CurrentID == playerID,
		Me:         *me,
		Hand:       append([]*Card(nil), me.Hand...),
		Challenged: make(map[string]bool),
		OfferToMe:  r.PendingOfferFrom() != "" && r.Offer != nil && r.Offer.ToID == playerID,
		CanLaunch:  CanLaunchCoup(me) == nil,
	}
	v.Me.Hand = nil
	for _, p := range r.Players {
		if p.ID != playerID {
			v.Others = append(v.Others, BotOpponent{ID: p.ID, Support: p.Support, Money: p.Money})
		}
	}
	for target := range r.Challenges {
		v.Challenged[target] = true
	}
	if r.Coup != nil {
		c := *r.Coup
		v.Coup = &c
	}
	if r.Agenda != nil {
		v.BotVote = r.Agenda.BotVote
		v.CrisisNeed = r.Agenda.CrisisNeed
	}
	_, v.Voted = r.Votes[playerID]
	v.CrisisTotal = r.CrisisTotal()
	return v
}

// DecideBot returns the moves an automated player makes for the current
// phase. It never mutates the view; an empty result means the bot waits.
// During its ACTION turn it always returns exactly one move.
func DecideBot(v BotView, rng *rand.Rand) []BotMove {
	switch v.Phase {
	case PhasePlotting:
		return decidePlotting(v, rng)
	case PhaseAction:
		if v.MyTurn {
			return []BotMove{decideAction(v, rng)}
		}
	case PhaseReaction, PhaseCoupNegotiation, PhaseCoupReaction:
		return decideReaction(v, rng)
	case PhaseVote:
		if !v.Voted {
			return []BotMove{{Kind: MoveVote, Vote: decideVote(v, rng)}}
		}
	case PhaseCrisis:
		if v.CrisisTotal < v.CrisisNeed && v.Me.Money > 0 && rng.Float64() < botCrisisFundChance {
			return []BotMove{{Kind: MoveFund, Amount: min(botCrisisFundAmount, v.Me.Money)}}
		}
	}
	return nil
}

func decidePlotting(v BotView, rng *rand.Rand) []BotMove {
	var pick *Card
	if v.Me.AllyID == "" {
		for _, c := range v.Hand {
			if c.Type == CardAction && c.Effect == EffectOfferAlliance {
				if rng.Float64() < botAllyCardChance {
					pick = c
				}
				break
			}
		}
	}
	if pick == nil {
		for _, c := range v.Hand {
			if c.Type == CardAction {
				pick = c
				break
			}
		}
	}

	var moves []BotMove
	tag := TagBluff
	if pick != nil {
		moves = append(moves, BotMove{Kind: MoveFacedown, CardID: pick.ID})
		tag = pick.Tag
	}
	moves = append(moves, BotMove{Kind: MoveDeclare, Tag: tag, Text: botDeclText(tag)})

	if v.Me.Money >= 1 && rng.Float64() < botChallengeChance {
		for _, o := range v.Others {
			if o.Money >= 1 {
				if !v.Challenged[o.ID] {
					moves = append(moves, BotMove{Kind: MoveChallenge, TargetID: o.ID})
				}
				break
			}
		}
	}
	return moves
}

func decideAction(v BotView, rng *rand.Rand) BotMove {
	if v.CanLaunch && rng.Float64() < botLaunchChance {
		return BotMove{Kind: MoveAct, Action: ActLaunchCoup}
	}
	if v.Me.Role.CoupCapable() && v.Me.Money >= 1 && v.Me.Threat < MaxThreat && rng.Float64() < botPrepChance {
		return BotMove{Kind: MoveAct, Action: ActPrepCoup}
	}
	for _, c := range v.Hand {
		if c.ID == v.Me.FacedownID && c.Type == CardAction {
			return BotMove{Kind: MoveAct, Action: ActPlayFacedown, TargetID: topSupportOf(v.Others)}
		}
	}
	return BotMove{Kind: MoveAct, Action: ActPass}
}

func decideReaction(v BotView, rng *rand.Rand) []BotMove {
	if v.Coup != nil && v.Coup.LeaderID != v.Me.ID {
		want := EffectBlockViolent
		if v.Coup.Type == CoupMilitary {
			want = EffectBlockMilitary
		}
		for _, c := range v.Hand {
			if c.Type == CardReaction && c.Effect == want {
				if rng.Float64() < botBlockCardChance {
					return []BotMove{{Kind: MoveReaction, CardID: c.ID}}
				}
				break
			}
		}
		if v.Me.Money >= botCoupContribution && rng.Float64() < botContributeChance {
			return []BotMove{{Kind: MoveContribute, Amount: min(botCoupContribution, v.Me.Money)}}
		}
	}
	if v.OfferToMe && v.Me.AllyID == "" && rng.Float64() < botAcceptChance {
		return []BotMove{{Kind: MoveAccept}}
	}
	return nil
}

func decideVote(v BotView, rng *rand.Rand) VoteChoice {
	if v.BotVote != "" {
		return ParseVote(v.BotVote)
	}
	if rng.Float64() < botVoteYesChance {
		return VoteYes
	}
	if rng.Float64() < botVoteNoChance {
		return VoteNo
	}
	return VoteAbstain
}

func topSupportOf(others []BotOpponent) string {
	best := -1
	for i, o := range others {
		if best < 0 || o.Support > others[best].Support {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return others[best].ID
}

func botDeclText(tag Tag) string {
	switch tag {
	case TagAttack:
		return "Someone is going down"
	case TagSupport:
		return "Rallying the base"
	case TagMoney:
		return "Filling the war chest"
	case TagAlly:
		return "Looking for friends"
	case TagCoup:
		return "Big plans"
	default:
		return "I have a plan"
	}
}

// runBots lets every automated player decide once per phase entry, after the
// bot delay has passed.
func (t *Table) runBots() {
	r := t.Room
	if !r.Started || r.Over() {
		return
	}
	if t.now().Before(r.PhaseEntered.Add(t.cfg.Timings.BotDelay)) {
		return
	}
	seq := r.phaseSeq
	for _, p := range append([]*Player(nil), r.Players...) {
		if !p.Bot || t.botPhase[p.ID] == seq {
			continue
		}
		t.botPhase[p.ID] = seq
		for _, m := range DecideBot(BuildBotView(r, p.ID), t.rng) {
			if err := t.applyMove(p.ID, m); err != nil {
				t.zap.Debug("bot move rejected", zap.String("player", p.ID), zap.Int("move", int(m.Kind)), zap.Error(err))
				if m.Kind == MoveAct && r.CurrentID == p.ID && r.Phase == PhaseAction {
					_ = t.Act(p.ID, ActPass, "")
				}
			}
			if r.phaseSeq != seq {
				return
			}
		}
	}
}

func (t *Table) applyMove(playerID string, m BotMove) error {
	switch m.Kind {
	case MoveFacedown:
		return t.SetFacedown(playerID, m.CardID)
	case MoveDeclare:
		return t.Declare(playerID, m.Tag.String(), m.Text)
	case MoveChallenge:
		return t.Challenge(playerID, m.TargetID)
	case MoveAct:
		return t.Act(playerID, m.Action, m.TargetID)
	case MoveReaction:
		return t.PlayReaction(playerID, m.CardID)
	case MoveContribute:
		return t.ContributeCoup(playerID, m.Amount)
	case MoveAccept:
		return t.AcceptAlliance(playerID)
	case MoveVote:
		return t.Vote(playerID, m.Vote)
	case MoveFund:
		return t.FundCrisis(playerID, m.Amount)
	}
	return illegal("unknown bot move %d", m.Kind)
}
