package game

import "time"

const (
	MetricMin    = 0
	MetricMax    = 10
	MaxThreat    = 3
	MaxUntrusted = 9
	ChallengePot = 2
)

// Player represents one participant's entire state.
type Player struct {
	ID   string
	Name string
	Bot  bool

	Support   int
	Stability int
	Money     int

	Role        Role
	Hand        []*Card
	FacedownID  string
	Declaration Tag
	DeclText    string
	Untrusted   int
	AllyID      string
	Threat      int
	Exposed     bool

	// cancelNextLoss negates the next Stability loss this round.
	cancelNextLoss bool
}

// HandCard returns the card with the given id from the hand, or nil.
func (p *Player) HandCard(id string) *Card {
	for _, c := range p.Hand {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// takeCard removes a card from the hand by id, clearing the facedown
// selection if it pointed at that card.
func (p *Player) takeCard(id string) *Card {
	for i, c := range p.Hand {
		if c.ID == id {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			if p.FacedownID == id {
				p.FacedownID = ""
			}
			return c
		}
	}
	return nil
}

// CancelArmed reports whether the next Stability loss will be negated.
func (p *Player) CancelArmed() bool {
	return p.cancelNextLoss
}

// Challenge is an open bluff wager against a target's declaration.
type Challenge struct {
	ChallengerID string
	Pot          int
}

// AllianceOffer is the single pending alliance proposal of a room.
type AllianceOffer struct {
	FromID   string
	ToID     string
	Deadline time.Time
}

// Coup is the single active coup attempt of a room.
type Coup struct {
	LeaderID      string
	Type          CoupType
	Contributions map[string]int
	BlockedByCard bool
	Deadline      time.Time
}

// Total returns the Money pledged toward blocking.
func (c *Coup) Total() int {
	total := 0
	for _, amt := range c.Contributions {
		total += amt
	}
	return total
}

// Contributors returns the number of players who pledged more than zero.
func (c *Coup) Contributors() int {
	return countAtLeast(c.Contributions, 1)
}

type reactionContext struct {
	kind    reactionKind
	actorID string
}

// Outcome is the final result of a game.
type Outcome struct {
	WinnerID string
	Reason   EndReason
	Text     string
}

// Room holds the complete state of a single game session.
type Room struct {
	ID      string
	Started bool
	Round   int
	Phase   Phase

	// PhaseDeadline is zero when the phase has no timer.
	PhaseDeadline time.Time
	PhaseEntered  time.Time

	Players     []*Player // seat order
	byID        map[string]*Player
	PresidentID string
	CurrentID   string

	Actions   *Deck[*Card]
	Agendas   *Deck[*Agenda]
	Agenda    *Agenda
	Threshold int

	Challenges map[string]*Challenge // target id → challenge
	Offer      *AllianceOffer
	Votes      map[string]VoteChoice
	Crisis     map[string]int
	Coup       *Coup

	acted     map[string]bool
	allyBonus map[string]bool // allies already granted the +1 Support this round
	reaction  *reactionContext
	phaseSeq  int
	Outcome   *Outcome
}

// NewRoom creates an empty room in the lobby.
func NewRoom(id string) *Room {
	return &Room{
		ID:         id,
		Phase:      PhaseLobby,
		byID:       make(map[string]*Player),
		Challenges: make(map[string]*Challenge),
		Votes:      make(map[string]VoteChoice),
		Crisis:     make(map[string]int),
		acted:      make(map[string]bool),
		allyBonus:  make(map[string]bool),
	}
}

// Player returns the player with the given id, or nil.
func (r *Room) Player(id string) *Player {
	return r.byID[id]
}

// Seat returns the seat index of a player, or -1.
func (r *Room) Seat(id string) int {
	for i, p := range r.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Humans returns the number of non-automated players.
func (r *Room) Humans() int {
	n := 0
	for _, p := range r.Players {
		if !p.Bot {
			n++
		}
	}
	return n
}

// Acted reports whether a player has completed their turn this round.
func (r *Room) Acted(id string) bool {
	return r.acted[id]
}

// Over reports whether the game has ended.
func (r *Room) Over() bool {
	return r.Phase == PhaseEnd
}

// PendingOfferFrom returns the offering player id when a REACTION window is
// waiting on an alliance answer.
func (r *Room) PendingOfferFrom() string {
	if r.Phase == PhaseReaction && r.reaction != nil && r.reaction.kind == reactionAllianceOffer {
		return r.reaction.actorID
	}
	return ""
}

// CrisisTotal returns the Money pledged toward the current crisis.
func (r *Room) CrisisTotal() int {
	total := 0
	for _, amt := range r.Crisis {
		total += amt
	}
	return total
}

// PhaseSeq increments on every phase entry.
func (r *Room) PhaseSeq() int {
	return r.phaseSeq
}

// richest returns the first player in seat order with the most Money.
func (r *Room) richest() *Player {
	var best *Player
	for _, p := range r.Players {
		if best == nil || p.Money > best.Money {
			best = p
		}
	}
	return best
}

// topSupport returns the first player in seat order with the most Support.
func (r *Room) topSupport() *Player {
	var best *Player
	for _, p := range r.Players {
		if best == nil || p.Support > best.Support {
			best = p
		}
	}
	return best
}

// topSupportOther returns the most supported player other than id.
func (r *Room) topSupportOther(id string) *Player {
	var best *Player
	for _, p := range r.Players {
		if p.ID == id {
			continue
		}
		if best == nil || p.Support > best.Support {
			best = p
		}
	}
	return best
}

func countAtLeast(m map[string]int, floor int) int {
	n := 0
	for _, v := range m {
		if v >= floor {
			n++
		}
	}
	return n
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
