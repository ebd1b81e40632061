package game

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// --- Enums ---

type Phase int

const (
	PhaseLobby Phase = iota
	PhasePlotting
	PhaseAction
	PhaseReaction
	PhaseVote
	PhaseCrisis
	PhaseCleanup
	PhaseCoupNegotiation
	PhaseCoupReaction
	PhaseEnd
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "LOBBY"
	case PhasePlotting:
		return "PLOTTING"
	case PhaseAction:
		return "ACTION"
	case PhaseReaction:
		return "REACTION"
	case PhaseVote:
		return "VOTE"
	case PhaseCrisis:
		return "CRISIS"
	case PhaseCleanup:
		return "CLEANUP"
	case PhaseCoupNegotiation:
		return "COUP_NEGOTIATION"
	case PhaseCoupReaction:
		return "COUP_REACTION"
	case PhaseEnd:
		return "END"
	default:
		return "UNKNOWN"
	}
}

// reactive reports whether reaction cards may be played in this phase.
func (p Phase) reactive() bool {
	return p == PhaseReaction || p == PhaseCoupNegotiation || p == PhaseCoupReaction
}

type Role int

const (
	RoleNormal Role = iota
	RolePopulist
	RoleAutocrat
)

func (r Role) String() string {
	switch r {
	case RolePopulist:
		return "POPULIST"
	case RoleAutocrat:
		return "AUTOCRAT"
	default:
		return "NORMAL"
	}
}

// CoupCapable reports whether the role may prepare and launch coups.
func (r Role) CoupCapable() bool {
	return r == RolePopulist || r == RoleAutocrat
}

type CardType int

const (
	CardAction CardType = iota
	CardReaction
)

func (t CardType) String() string {
	if t == CardReaction {
		return "REACTION"
	}
	return "ACTION"
}

func (t *CardType) UnmarshalYAML(n *yaml.Node) error {
	switch strings.ToUpper(n.Value) {
	case "ACTION":
		*t = CardAction
	case "REACTION":
		*t = CardReaction
	default:
		return fmt.Errorf("line %d: unknown card type %q", n.Line, n.Value)
	}
	return nil
}

// Tag is the declaration vocabulary used for bluff matching.
type Tag int

const (
	TagBluff Tag = iota
	TagSupport
	TagAttack
	TagMoney
	TagAlly
	TagCoup
	TagVote
)

// Tags lists every declaration tag in display order.
var Tags = []Tag{TagSupport, TagAttack, TagMoney, TagAlly, TagCoup, TagVote, TagBluff}

func (t Tag) String() string {
	switch t {
	case TagSupport:
		return "SUPPORT"
	case TagAttack:
		return "ATTACK"
	case TagMoney:
		return "MONEY"
	case TagAlly:
		return "ALLY"
	case TagCoup:
		return "COUP"
	case TagVote:
		return "VOTE"
	default:
		return "BLUFF"
	}
}

// ParseTag maps a declaration key to its tag. Unknown keys become TagBluff.
func ParseTag(s string) Tag {
	for _, t := range Tags {
		if strings.EqualFold(s, t.String()) {
			return t
		}
	}
	return TagBluff
}

func (t *Tag) UnmarshalYAML(n *yaml.Node) error {
	*t = ParseTag(n.Value)
	return nil
}

// EffectKind selects the resolution logic for a card.
type EffectKind int

const (
	EffectUnknown EffectKind = iota
	EffectGainSupport
	EffectGainSupportStability
	EffectGainStability
	EffectGainMoney
	EffectGainMoneyLoseStability
	EffectStealMoney
	EffectShiftSupport
	EffectHitSupportStability
	EffectStealCard
	EffectBetray
	EffectAssassinate
	EffectOfferAlliance
	EffectBreakAlliance
	EffectCancelStabilityLoss
	EffectBlockViolent
	EffectBlockMilitary
)

var effectKeys = map[string]EffectKind{
	"GAIN_S":               EffectGainSupport,
	"GAIN_S_GAIN_T":        EffectGainSupportStability,
	"GAIN_T":               EffectGainStability,
	"GAIN_M":               EffectGainMoney,
	"GAIN_M_LOSE_T":        EffectGainMoneyLoseStability,
	"STEAL_M":              EffectStealMoney,
	"SHIFT_S":              EffectShiftSupport,
	"HIT_ST":               EffectHitSupportStability,
	"STEAL_CARD":           EffectStealCard,
	"BETRAY":               EffectBetray,
	"ASSASSIN":             EffectAssassinate,
	"OFFER_ALLIANCE":       EffectOfferAlliance,
	"BREAK_ALLIANCE":       EffectBreakAlliance,
	"REACT_CANCEL_T_LOSS":  EffectCancelStabilityLoss,
	"REACT_BLOCK_VIOLENT":  EffectBlockViolent,
	"REACT_BLOCK_MILITARY": EffectBlockMilitary,
}

func (e EffectKind) String() string {
	for k, v := range effectKeys {
		if v == e {
			return k
		}
	}
	return "UNKNOWN"
}

// ParseEffect maps an effect key to its kind, returning EffectUnknown for
// keys this engine does not implement.
func ParseEffect(key string) EffectKind {
	if e, ok := effectKeys[strings.ToUpper(key)]; ok {
		return e
	}
	return EffectUnknown
}

// NeedsTarget reports whether the effect acts on another player.
func (e EffectKind) NeedsTarget() bool {
	switch e {
	case EffectStealMoney, EffectShiftSupport, EffectHitSupportStability,
		EffectStealCard, EffectAssassinate, EffectOfferAlliance:
		return true
	}
	return false
}

type CoupType int

const (
	CoupViolent CoupType = iota
	CoupMilitary
)

func (c CoupType) String() string {
	if c == CoupMilitary {
		return "MILITARY"
	}
	return "VIOLENT"
}

type VoteChoice int

const (
	VoteAbstain VoteChoice = iota
	VoteYes
	VoteNo
)

func (v VoteChoice) String() string {
	switch v {
	case VoteYes:
		return "YES"
	case VoteNo:
		return "NO"
	default:
		return "ABSTAIN"
	}
}

// ParseVote maps a vote string to a choice. Anything unrecognised abstains.
func ParseVote(s string) VoteChoice {
	switch strings.ToUpper(s) {
	case "YES":
		return VoteYes
	case "NO":
		return VoteNo
	default:
		return VoteAbstain
	}
}

// ActionKind is a turn action taken by the current actor during ACTION.
type ActionKind int

const (
	ActPlayFacedown ActionKind = iota
	ActPrepCoup
	ActLaunchCoup
	ActBreakAlliance
	ActPass
)

func (a ActionKind) String() string {
	switch a {
	case ActPlayFacedown:
		return "PLAY_FACEDOWN"
	case ActPrepCoup:
		return "PREP_COUP"
	case ActLaunchCoup:
		return "LAUNCH_COUP"
	case ActBreakAlliance:
		return "BREAK_ALLIANCE"
	case ActPass:
		return "PASS"
	default:
		return "UNKNOWN"
	}
}

// ParseAction maps an action key to its kind.
func ParseAction(s string) (ActionKind, error) {
	for _, a := range []ActionKind{ActPlayFacedown, ActPrepCoup, ActLaunchCoup, ActBreakAlliance, ActPass} {
		if strings.EqualFold(s, a.String()) {
			return a, nil
		}
	}
	return 0, illegal("unknown action %q", s)
}

// EndReason describes how a game finished.
type EndReason int

const (
	EndNone EndReason = iota
	EndElection
	EndViolentCoup
	EndMilitaryCoup
	EndMaxRounds
	EndTerminated
)

func (r EndReason) String() string {
	switch r {
	case EndElection:
		return "election"
	case EndViolentCoup:
		return "violent_coup"
	case EndMilitaryCoup:
		return "military_coup"
	case EndMaxRounds:
		return "max_rounds"
	case EndTerminated:
		return "terminated"
	default:
		return ""
	}
}

// reactionKind distinguishes why a REACTION window is open.
type reactionKind int

const (
	reactionAfterAction reactionKind = iota
	reactionAllianceOffer
)
