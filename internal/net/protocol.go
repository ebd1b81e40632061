package net

// Message types for the JSON protocol over websocket.

// --- Client → Server messages ---

const (
	MsgJoin           = "join"
	MsgAddBots        = "add_ai"
	MsgStart          = "start"
	MsgSetFacedown    = "plot_set_facedown"
	MsgDeclare        = "plot_set_declaration"
	MsgChallenge      = "challenge"
	MsgAction         = "action"
	MsgVote           = "vote"
	MsgFundCrisis     = "crisis_contribute"
	MsgContributeCoup = "coup_contribute"
	MsgReaction       = "reaction"
	MsgAcceptAlliance = "accept_alliance"
	MsgChat           = "chat"
	MsgPing           = "ping_state"
	MsgLeave          = "leave"
)

// ClientMessage is the envelope for all client-to-server messages. Only the
// fields relevant to Type are read.
type ClientMessage struct {
	Type string `json:"type"`

	// For "join"
	RoomID string `json:"roomId,omitempty"`
	Name   string `json:"name,omitempty"`

	// For "add_ai"
	Count int `json:"count,omitempty"`

	// For "plot_set_facedown" and "reaction"
	CardID string `json:"cardId,omitempty"`

	// For "plot_set_declaration" and "chat"
	Tag  string `json:"tag,omitempty"`
	Text string `json:"text,omitempty"`

	// For "challenge" and "action"
	TargetID  string `json:"targetId,omitempty"`
	ActionKey string `json:"actionKey,omitempty"`

	// For "vote"
	Choice string `json:"choice,omitempty"`

	// For "crisis_contribute" and "coup_contribute"
	Amount int `json:"amount,omitempty"`
}

// --- Server → Client messages ---

const (
	MsgJoined = "joined"
	MsgState  = "state"
	MsgResult = "result"
	MsgError  = "error"
)

// ServerMessage is the envelope for all server-to-client messages.
type ServerMessage struct {
	Type string `json:"type"`

	// For "joined"
	PlayerID string `json:"playerId,omitempty"`
	RoomID   string `json:"roomId,omitempty"`

	// For "result": the intent it answers and whether it was accepted
	Intent string `json:"intent,omitempty"`
	OK     *bool  `json:"ok,omitempty"`

	// For "result" and "error"
	Error string `json:"error,omitempty"`

	// For "joined" and "state"
	State   *PublicView  `json:"state,omitempty"`
	Private *PrivateView `json:"private,omitempty"`
}

// NewResult builds the per-intent acknowledgement sent to the originating
// connection only.
func NewResult(intent string, err error) ServerMessage {
	ok := err == nil
	msg := ServerMessage{Type: MsgResult, Intent: intent, OK: &ok}
	if err != nil {
		msg.Error = err.Error()
	}
	return msg
}

// NewError builds a protocol-level error that is not tied to a game intent.
func NewError(err error) ServerMessage {
	return ServerMessage{Type: MsgError, Error: err.Error()}
}
