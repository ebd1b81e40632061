package log

// EventType enumerates all observable room events.
type EventType int

const (
	EventPhaseChange EventType = iota
	EventRoundStart
	EventTurn
	EventJoin
	EventLeave
	EventDeclare
	EventPlay
	EventSupport
	EventStability
	EventMoney
	EventAllyBonus
	EventAllyPenalty
	EventLossCancelled
	EventSteal
	EventBetray
	EventAssassinate
	EventChallengeOpen
	EventChallengeSettle
	EventAllianceOffer
	EventAllianceFormed
	EventAllianceExpired
	EventAllianceBroken
	EventCoupThreat
	EventCoupLaunch
	EventCoupContribute
	EventCoupBlocked
	EventReaction
	EventVote
	EventVoteResult
	EventAgendaEffect
	EventCrisisContribute
	EventCrisisResult
	EventDraw
	EventHandTrim
	EventUnknownEffect
	EventChat
	EventPass
	EventWin
)

func (e EventType) String() string {
	switch e {
	case EventPhaseChange:
		return "PhaseChange"
	case EventRoundStart:
		return "RoundStart"
	case EventTurn:
		return "Turn"
	case EventJoin:
		return "Join"
	case EventLeave:
		return "Leave"
	case EventDeclare:
		return "Declare"
	case EventPlay:
		return "Play"
	case EventSupport:
		return "Support"
	case EventStability:
		return "Stability"
	case EventMoney:
		return "Money"
	case EventAllyBonus:
		return "AllyBonus"
	case EventAllyPenalty:
		return "AllyPenalty"
	case EventLossCancelled:
		return "LossCancelled"
	case EventSteal:
		return "Steal"
	case EventBetray:
		return "Betray"
	case EventAssassinate:
		return "Assassinate"
	case EventChallengeOpen:
		return "ChallengeOpen"
	case EventChallengeSettle:
		return "ChallengeSettle"
	case EventAllianceOffer:
		return "AllianceOffer"
	case EventAllianceFormed:
		return "AllianceFormed"
	case EventAllianceExpired:
		return "AllianceExpired"
	case EventAllianceBroken:
		return "AllianceBroken"
	case EventCoupThreat:
		return "CoupThreat"
	case EventCoupLaunch:
		return "CoupLaunch"
	case EventCoupContribute:
		return "CoupContribute"
	case EventCoupBlocked:
		return "CoupBlocked"
	case EventReaction:
		return "Reaction"
	case EventVote:
		return "Vote"
	case EventVoteResult:
		return "VoteResult"
	case EventAgendaEffect:
		return "AgendaEffect"
	case EventCrisisContribute:
		return "CrisisContribute"
	case EventCrisisResult:
		return "CrisisResult"
	case EventDraw:
		return "Draw"
	case EventHandTrim:
		return "HandTrim"
	case EventUnknownEffect:
		return "UnknownEffect"
	case EventChat:
		return "Chat"
	case EventPass:
		return "Pass"
	case EventWin:
		return "Win"
	default:
		return "Unknown"
	}
}

// GameEvent represents a single observable event in a room.
type GameEvent struct {
	Seq     int       // monotonic sequence number
	Round   int       // which round (1-based, 0 in the lobby)
	Phase   string    // current phase name (e.g. "ACTION")
	Player  string    // acting player id, empty for room-wide events
	Type    EventType // event type
	Card    string    // card name (if applicable)
	Details string    // human-readable detail string
}
