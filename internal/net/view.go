package net

import (
	"time"

	"github.com/peterkuimelis/hollowstate/internal/game"
	"github.com/peterkuimelis/hollowstate/internal/log"
)

// LogTail is the number of recent room events carried in a public snapshot.
const LogTail = 120

// PublicView is the room-wide snapshot every seat receives.
type PublicView struct {
	RoomID            string       `json:"roomId"`
	Started           bool         `json:"started"`
	Round             int          `json:"turn"`
	Phase             string       `json:"phase"`
	PhaseEndsAt       int64        `json:"phaseEndsAt,omitempty"` // unix millis, 0 when untimed
	PresidentID       string       `json:"presidentId,omitempty"`
	CurrentPlayerID   string       `json:"currentPlayerId,omitempty"`
	ElectionThreshold int          `json:"electionThreshold"`
	Agenda            *AgendaView  `json:"agenda,omitempty"`
	CrisisPledged     int          `json:"crisisPledged"`
	AllianceOffer     *OfferView   `json:"allianceOffer,omitempty"`
	Coup              *CoupView    `json:"coup,omitempty"`
	Players           []PlayerView `json:"players"`
	Log               []EventView  `json:"log"`
	Outcome           *OutcomeView `json:"outcome,omitempty"`
}

// AgendaView describes the agenda under vote this round.
type AgendaView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Text       string `json:"text"`
	CrisisNeed int    `json:"crisisNeed"`
	CrisisText string `json:"crisisText"`
}

// OfferView is the pending alliance proposal.
type OfferView struct {
	FromID string `json:"fromId"`
	ToID   string `json:"toId"`
	EndsAt int64  `json:"endsAt"`
}

// CoupView summarises the active coup attempt.
type CoupView struct {
	LeaderID      string `json:"leaderId"`
	Type          string `json:"type"`
	TotalContrib  int    `json:"totalContrib"`
	Contributors  int    `json:"contributors"`
	EndsAt        int64  `json:"endsAt"`
	BlockedByCard bool   `json:"blockedByCard"`
}

// PlayerView is one seat's public standing. Role is only shown once a failed
// military coup has exposed it.
type PlayerView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Kind         string `json:"kind"` // "human" or "ai"
	Online       bool   `json:"online"`
	Support      int    `json:"S"`
	Stability    int    `json:"T"`
	Money        int    `json:"M"`
	HandCount    int    `json:"handCount"`
	Declaration  string `json:"declaration,omitempty"`
	DeclText     string `json:"declarationText,omitempty"`
	ChallengedBy string `json:"challengedBy,omitempty"`
	Untrusted    int    `json:"untrusted"`
	AllyID       string `json:"allianceWith,omitempty"`
	Threat       int    `json:"coupW"`
	Exposed      bool   `json:"exposed"`
	Role         string `json:"role,omitempty"`
	Acted        bool   `json:"acted"`
	Voted        bool   `json:"voted"`
}

// EventView is a room log line for the client.
type EventView struct {
	Seq     int    `json:"seq"`
	Round   int    `json:"turn"`
	Phase   string `json:"phase"`
	Player  string `json:"player,omitempty"`
	Type    string `json:"type"`
	Card    string `json:"card,omitempty"`
	Details string `json:"details"`
}

// OutcomeView is the final result of a finished game.
type OutcomeView struct {
	WinnerID string `json:"winnerId,omitempty"`
	Reason   string `json:"reason"`
	Text     string `json:"text"`
}

// PrivateView is what only the owning player sees.
type PrivateView struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	Support     int        `json:"S"`
	Stability   int        `json:"T"`
	Money       int        `json:"M"`
	Untrusted   int        `json:"untrusted"`
	AllyID      string     `json:"allianceWith,omitempty"`
	Threat      int        `json:"coupW"`
	FacedownID  string     `json:"facedownId,omitempty"`
	Declaration string     `json:"declarationTag,omitempty"`
	DeclText    string     `json:"declarationText,omitempty"`
	Hand        []CardView `json:"hand"`
}

// CardView describes a card in hand.
type CardView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Tag    string `json:"tag"`
	Effect string `json:"effect"`
	Text   string `json:"text"`
}

// BuildPublicView projects the room into its public snapshot. online marks
// human seats with a live connection; automated seats are always online.
func BuildPublicView(t *game.Table, online map[string]bool) *PublicView {
	r := t.Room
	v := &PublicView{
		RoomID:            r.ID,
		Started:           r.Started,
		Round:             r.Round,
		Phase:             r.Phase.String(),
		PhaseEndsAt:       millis(r.PhaseDeadline),
		PresidentID:       r.PresidentID,
		CurrentPlayerID:   r.CurrentID,
		ElectionThreshold: r.Threshold,
		CrisisPledged:     r.CrisisTotal(),
		Players:           make([]PlayerView, 0, len(r.Players)),
	}
	if v.ElectionThreshold == 0 {
		v.ElectionThreshold = t.Config().ElectionThreshold
	}
	if a := r.Agenda; a != nil {
		v.Agenda = &AgendaView{ID: a.ID, Name: a.Name, Text: a.Text, CrisisNeed: a.CrisisNeed, CrisisText: a.CrisisText}
	}
	if o := r.Offer; o != nil {
		v.AllianceOffer = &OfferView{FromID: o.FromID, ToID: o.ToID, EndsAt: millis(o.Deadline)}
	}
	if c := r.Coup; c != nil {
		v.Coup = &CoupView{
			LeaderID:      c.LeaderID,
			Type:          c.Type.String(),
			TotalContrib:  c.Total(),
			Contributors:  c.Contributors(),
			EndsAt:        millis(c.Deadline),
			BlockedByCard: c.BlockedByCard,
		}
	}
	if out := r.Outcome; out != nil {
		v.Outcome = &OutcomeView{WinnerID: out.WinnerID, Reason: out.Reason.String(), Text: out.Text}
	}

	for _, p := range r.Players {
		pv := PlayerView{
			ID:        p.ID,
			Name:      p.Name,
			Kind:      "human",
			Online:    p.Bot || online[p.ID],
			Support:   p.Support,
			Stability: p.Stability,
			Money:     p.Money,
			HandCount: len(p.Hand),
			DeclText:  p.DeclText,
			Untrusted: p.Untrusted,
			AllyID:    p.AllyID,
			Threat:    p.Threat,
			Exposed:   p.Exposed,
			Acted:     r.Acted(p.ID),
		}
		if p.Bot {
			pv.Kind = "ai"
		}
		if r.Started {
			pv.Declaration = p.Declaration.String()
		}
		if ch := r.Challenges[p.ID]; ch != nil {
			pv.ChallengedBy = ch.ChallengerID
		}
		if p.Exposed {
			pv.Role = p.Role.String()
		}
		_, pv.Voted = r.Votes[p.ID]
		v.Players = append(v.Players, pv)
	}

	for _, ev := range log.Tail(t.Logger.Events(), LogTail) {
		v.Log = append(v.Log, EventView{
			Seq:     ev.Seq,
			Round:   ev.Round,
			Phase:   ev.Phase,
			Player:  ev.Player,
			Type:    ev.Type.String(),
			Card:    ev.Card,
			Details: ev.Details,
		})
	}
	return v
}

// BuildPrivateView projects one player's hidden state. It returns nil for an
// unknown player.
func BuildPrivateView(t *game.Table, playerID string) *PrivateView {
	p := t.Room.Player(playerID)
	if p == nil {
		return nil
	}
	v := &PrivateView{
		ID:         p.ID,
		Name:       p.Name,
		Role:       p.Role.String(),
		Support:    p.Support,
		Stability:  p.Stability,
		Money:      p.Money,
		Untrusted:  p.Untrusted,
		AllyID:     p.AllyID,
		Threat:     p.Threat,
		FacedownID: p.FacedownID,
		DeclText:   p.DeclText,
		Hand:       make([]CardView, 0, len(p.Hand)),
	}
	if t.Room.Started {
		v.Declaration = p.Declaration.String()
	}
	for _, c := range p.Hand {
		v.Hand = append(v.Hand, CardView{
			ID:     c.ID,
			Name:   c.Name,
			Type:   c.Type.String(),
			Tag:    c.Tag.String(),
			Effect: c.Effect.String(),
			Text:   c.Text,
		})
	}
	return v
}

func millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
