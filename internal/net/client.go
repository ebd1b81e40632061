package net

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// ReadLimit caps a single websocket message; public snapshots carry the log
// tail and outgrow the library default.
const ReadLimit = 1 << 20

// Client connects to a game server and provides a terminal REPL.
type Client struct {
	conn *websocket.Conn
	out  io.Writer

	mu       sync.Mutex
	playerID string
	pub      *PublicView
	priv     *PrivateView
	lastSeq  int
	lastKey  string // phase and actor last announced
	gameOver bool
}

// Connect dials the server, joins the room and runs the REPL until the user
// quits or the connection drops.
func Connect(ctx context.Context, url, roomID, name string, in io.Reader, out io.Writer) error {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.CloseNow()
	conn.SetReadLimit(ReadLimit)

	if err := wsjson.Write(ctx, conn, ClientMessage{Type: MsgJoin, RoomID: roomID, Name: name}); err != nil {
		return fmt.Errorf("send join: %w", err)
	}

	c := &Client{conn: conn, out: out}
	err = c.RunREPL(ctx, in)
	conn.Close(websocket.StatusNormalClosure, "bye")
	return err
}

// RunREPL renders server messages as they arrive and turns input lines into
// intents.
func (c *Client) RunREPL(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	readErr := make(chan error, 1)
	go func() {
		for {
			var msg ServerMessage
			if err := wsjson.Read(ctx, c.conn, &msg); err != nil {
				readErr <- err
				return
			}
			c.handle(msg)
		}
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	fmt.Fprintln(c.out, "Connected. Type 'help' for commands.")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-readErr:
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil
			}
			return fmt.Errorf("read message: %w", err)

		case line, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(line)
			switch line {
			case "":
				continue
			case "help", "?":
				fmt.Fprint(c.out, helpText)
				continue
			}

			c.mu.Lock()
			msg, err := parseCommand(line, c.pub, c.priv)
			c.mu.Unlock()
			if err != nil {
				fmt.Fprintf(c.out, "  %v\n", err)
				continue
			}
			if err := wsjson.Write(ctx, c.conn, msg); err != nil {
				return fmt.Errorf("send %s: %w", msg.Type, err)
			}
			if msg.Type == MsgLeave {
				return nil
			}
		}
	}
}

func (c *Client) handle(msg ServerMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch msg.Type {
	case MsgJoined:
		c.playerID = msg.PlayerID
		fmt.Fprintf(c.out, "Joined room %s as %s\n", msg.RoomID, msg.PlayerID)
		c.applyState(msg.State, msg.Private)

	case MsgState:
		c.applyState(msg.State, msg.Private)

	case MsgResult:
		if msg.OK != nil && !*msg.OK {
			fmt.Fprintf(c.out, "  ✗ %s: %s\n", msg.Intent, msg.Error)
		}

	case MsgError:
		fmt.Fprintf(c.out, "  error: %s\n", msg.Error)
	}
}

func (c *Client) applyState(pub *PublicView, priv *PrivateView) {
	if priv != nil {
		c.priv = priv
	}
	if pub == nil {
		return
	}
	c.pub = pub
	for _, ev := range pub.Log {
		if ev.Seq <= c.lastSeq {
			continue
		}
		c.lastSeq = ev.Seq
		renderEvent(c.out, ev)
	}
	key := pub.Phase + "/" + pub.CurrentPlayerID
	if key != c.lastKey {
		c.lastKey = key
		renderStatus(c.out, pub, c.priv, c.playerID)
	}
	if pub.Outcome != nil && !c.gameOver {
		c.gameOver = true
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, "═══════════════════════════════════")
		fmt.Fprintln(c.out, "          GAME OVER")
		fmt.Fprintln(c.out, "═══════════════════════════════════")
		fmt.Fprintln(c.out, pub.Outcome.Text)
		fmt.Fprintln(c.out, "═══════════════════════════════════")
	}
}

func renderEvent(w io.Writer, ev EventView) {
	phase := ev.Phase
	for len(phase) < 16 {
		phase += " "
	}
	fmt.Fprintf(w, "R%-2d %s| %s\n", ev.Round, phase, ev.Details)
}

func renderStatus(w io.Writer, pub *PublicView, priv *PrivateView, me string) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "╔═ Round %d  %s  (threshold %d)\n", pub.Round, pub.Phase, pub.ElectionThreshold)
	if pub.Agenda != nil {
		fmt.Fprintf(w, "║  Agenda: %s (crisis needs %d, pledged %d)\n", pub.Agenda.Name, pub.Agenda.CrisisNeed, pub.CrisisPledged)
	}
	if pub.Coup != nil {
		fmt.Fprintf(w, "║  COUP (%s) by %s: %d pledged by %d\n", pub.Coup.Type, playerName(pub, pub.Coup.LeaderID), pub.Coup.TotalContrib, pub.Coup.Contributors)
	}
	for i, p := range pub.Players {
		mark := " "
		if p.ID == pub.CurrentPlayerID {
			mark = "▶"
		}
		extra := ""
		if p.ID == me {
			extra += " (you)"
		}
		if p.ID == pub.PresidentID {
			extra += " [president]"
		}
		if p.AllyID != "" {
			extra += " ally:" + playerName(pub, p.AllyID)
		}
		if p.Declaration != "" {
			extra += " says:" + p.Declaration
		}
		if p.Role != "" {
			extra += " role:" + p.Role
		}
		fmt.Fprintf(w, "║ %s%d %-18s S%-2d T%-2d M%-2d threat %d%s\n", mark, i+1, p.Name, p.Support, p.Stability, p.Money, p.Threat, extra)
	}
	if priv != nil {
		fmt.Fprintf(w, "║  You are %s.", priv.Role)
		if priv.FacedownID != "" {
			fmt.Fprintf(w, " Facedown: %s.", priv.FacedownID)
		}
		fmt.Fprintln(w)
		for i, card := range priv.Hand {
			fmt.Fprintf(w, "║   [%d] %s %-24s %-8s %s\n", i+1, card.ID, card.Name, card.Tag, card.Text)
		}
	}
	fmt.Fprintln(w, "╚══")
}

func playerName(pub *PublicView, id string) string {
	for _, p := range pub.Players {
		if p.ID == id {
			return p.Name
		}
	}
	return "?"
}

const helpText = `Commands:
  ai <n>                 add automated players (lobby)
  start                  start the game
  fd <card>              choose your facedown card (hand number or id)
  declare <tag> [text]   declare SUPPORT/ATTACK/MONEY/ALLY/COUP/VOTE/BLUFF
  challenge <player>     wager that a declaration is a bluff
  play [player]          play your facedown card, optionally at a player
  prep | launch          build coup threat or launch the coup
  break                  break your alliance
  pass                   end your turn without a card
  vote yes|no|abstain    vote on the agenda
  fund <n>               pledge Money to the crisis
  block <n>              pledge Money against the coup
  react <card>           play a reaction card
  accept                 accept the pending alliance offer
  say <text>             chat
  state                  refresh the snapshot
  quit                   leave the table
Players are named by seat number or name.
`

var errUsage = errors.New("usage")

// parseCommand turns a REPL line into a client message, resolving seat
// numbers and hand positions against the latest snapshot.
func parseCommand(line string, pub *PublicView, priv *PrivateView) (ClientMessage, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ClientMessage{}, errUsage
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	rest := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))

	switch cmd {
	case "ai", "bots":
		n := 1
		if len(args) > 0 {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return ClientMessage{}, fmt.Errorf("usage: ai <n>")
			}
			n = v
		}
		return ClientMessage{Type: MsgAddBots, Count: n}, nil

	case "start":
		return ClientMessage{Type: MsgStart}, nil

	case "fd", "facedown":
		if len(args) != 1 {
			return ClientMessage{}, fmt.Errorf("usage: fd <card>")
		}
		id, err := ResolveCard(args[0], priv)
		if err != nil {
			return ClientMessage{}, err
		}
		return ClientMessage{Type: MsgSetFacedown, CardID: id}, nil

	case "declare", "decl":
		if len(args) == 0 {
			return ClientMessage{}, fmt.Errorf("usage: declare <tag> [text]")
		}
		text := strings.TrimSpace(strings.TrimPrefix(rest, args[0]))
		return ClientMessage{Type: MsgDeclare, Tag: strings.ToUpper(args[0]), Text: text}, nil

	case "challenge":
		if len(args) != 1 {
			return ClientMessage{}, fmt.Errorf("usage: challenge <player>")
		}
		id, err := ResolvePlayer(args[0], pub)
		if err != nil {
			return ClientMessage{}, err
		}
		return ClientMessage{Type: MsgChallenge, TargetID: id}, nil

	case "play":
		msg := ClientMessage{Type: MsgAction, ActionKey: "PLAY_FACEDOWN"}
		if len(args) > 0 {
			id, err := ResolvePlayer(args[0], pub)
			if err != nil {
				return ClientMessage{}, err
			}
			msg.TargetID = id
		}
		return msg, nil

	case "prep":
		return ClientMessage{Type: MsgAction, ActionKey: "PREP_COUP"}, nil
	case "launch":
		return ClientMessage{Type: MsgAction, ActionKey: "LAUNCH_COUP"}, nil
	case "break":
		return ClientMessage{Type: MsgAction, ActionKey: "BREAK_ALLIANCE"}, nil
	case "pass":
		return ClientMessage{Type: MsgAction, ActionKey: "PASS"}, nil

	case "vote":
		if len(args) != 1 {
			return ClientMessage{}, fmt.Errorf("usage: vote yes|no|abstain")
		}
		choice := strings.ToUpper(args[0])
		switch choice {
		case "Y":
			choice = "YES"
		case "N":
			choice = "NO"
		}
		return ClientMessage{Type: MsgVote, Choice: choice}, nil

	case "fund", "block":
		if len(args) != 1 {
			return ClientMessage{}, fmt.Errorf("usage: %s <n>", cmd)
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return ClientMessage{}, fmt.Errorf("amount must be a positive number")
		}
		if cmd == "fund" {
			return ClientMessage{Type: MsgFundCrisis, Amount: n}, nil
		}
		return ClientMessage{Type: MsgContributeCoup, Amount: n}, nil

	case "react":
		if len(args) != 1 {
			return ClientMessage{}, fmt.Errorf("usage: react <card>")
		}
		id, err := ResolveCard(args[0], priv)
		if err != nil {
			return ClientMessage{}, err
		}
		return ClientMessage{Type: MsgReaction, CardID: id}, nil

	case "accept":
		return ClientMessage{Type: MsgAcceptAlliance}, nil

	case "say", "chat":
		if rest == "" {
			return ClientMessage{}, fmt.Errorf("usage: say <text>")
		}
		return ClientMessage{Type: MsgChat, Text: rest}, nil

	case "state":
		return ClientMessage{Type: MsgPing}, nil

	case "quit", "exit", "leave":
		return ClientMessage{Type: MsgLeave}, nil
	}
	return ClientMessage{}, fmt.Errorf("unknown command %q (try 'help')", cmd)
}

// ResolvePlayer accepts a 1-based seat number, a name or a player id.
func ResolvePlayer(arg string, pub *PublicView) (string, error) {
	if pub == nil {
		return "", fmt.Errorf("no table state yet")
	}
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(pub.Players) {
			return "", fmt.Errorf("no seat %d", n)
		}
		return pub.Players[n-1].ID, nil
	}
	for _, p := range pub.Players {
		if strings.EqualFold(p.Name, arg) || p.ID == arg {
			return p.ID, nil
		}
	}
	return "", fmt.Errorf("no player %q", arg)
}

// ResolveCard accepts a 1-based hand position or a card id.
func ResolveCard(arg string, priv *PrivateView) (string, error) {
	if priv == nil {
		return "", fmt.Errorf("no hand yet")
	}
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(priv.Hand) {
			return "", fmt.Errorf("no card at position %d", n)
		}
		return priv.Hand[n-1].ID, nil
	}
	for _, card := range priv.Hand {
		if strings.EqualFold(card.ID, arg) {
			return card.ID, nil
		}
	}
	return "", fmt.Errorf("card %q is not in your hand", arg)
}
