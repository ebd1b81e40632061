// Package mcp exposes a table seat to an MCP client as a set of tools.
package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/peterkuimelis/hollowstate/internal/net"
	"github.com/peterkuimelis/hollowstate/internal/room"
)

const maxWait = 60 * time.Second

// RegisterTools adds all game tools to the MCP server.
func (s *Session) RegisterTools(srv *server.MCPServer) {
	srv.AddTool(joinTableTool(), s.handleJoinTable)
	srv.AddTool(addBotsTool(), s.handleAddBots)
	srv.AddTool(startGameTool(), s.handleStartGame)
	srv.AddTool(getStateTool(), s.handleGetState)
	srv.AddTool(waitTool(), s.handleWait)
	srv.AddTool(setFacedownTool(), s.handleSetFacedown)
	srv.AddTool(declareTool(), s.handleDeclare)
	srv.AddTool(challengeTool(), s.handleChallenge)
	srv.AddTool(actTool(), s.handleAct)
	srv.AddTool(voteTool(), s.handleVote)
	srv.AddTool(fundCrisisTool(), s.handleFundCrisis)
	srv.AddTool(blockCoupTool(), s.handleBlockCoup)
	srv.AddTool(playReactionTool(), s.handlePlayReaction)
	srv.AddTool(acceptAllianceTool(), s.handleAcceptAlliance)
	srv.AddTool(chatTool(), s.handleChat)
	srv.AddTool(leaveTableTool(), s.handleLeaveTable)
}

// --- Tool definitions ---

func joinTableTool() mcp.Tool {
	return mcp.NewTool("join_table",
		mcp.WithDescription("Sit down at a Hollow State table. Humans join the same room with `hollowstate-cli --room <id>`. "+
			"Leave room_id empty to open a new room; its code is in the response."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Display name at the table (at most 18 characters)")),
		mcp.WithString("room_id", mcp.Description("Room code to join or create")),
	)
}

func addBotsTool() mcp.Tool {
	return mcp.NewTool("add_bots",
		mcp.WithDescription("Seat 1 to 3 automated players before the game starts."),
		mcp.WithNumber("count", mcp.Required(), mcp.Description("Number of automated players to add (1-3)")),
	)
}

func startGameTool() mcp.Tool {
	return mcp.NewTool("start_game",
		mcp.WithDescription("Start the game. Needs at least 2 seated players."),
	)
}

func getStateTool() mcp.Tool {
	return mcp.NewTool("get_state",
		mcp.WithDescription("Get the public table state, your private hand and role, and room events since the last call. Read-only."),
	)
}

func waitTool() mcp.Tool {
	return mcp.NewTool("wait",
		mcp.WithDescription("Block until the table changes (or the timeout passes) and return the new state. Use it between your decisions."),
		mcp.WithNumber("timeout_seconds", mcp.Description("Longest wait in seconds (default 10, max 60)")),
	)
}

func setFacedownTool() mcp.Tool {
	return mcp.NewTool("set_facedown",
		mcp.WithDescription("During PLOTTING, choose the Action card you will play this round."),
		mcp.WithString("card_id", mcp.Required(), mcp.Description("Card id from your hand (e.g. 'C12') or its 1-based position")),
	)
}

func declareTool() mcp.Tool {
	return mcp.NewTool("declare",
		mcp.WithDescription("During PLOTTING, publicly claim what kind of card you hold. The claim may be a bluff."),
		mcp.WithString("tag", mcp.Required(), mcp.Description("SUPPORT, ATTACK, MONEY, ALLY, COUP, VOTE or BLUFF")),
		mcp.WithString("text", mcp.Description("Optional speech to go with the claim (at most 60 characters)")),
	)
}

func challengeTool() mcp.Tool {
	return mcp.NewTool("challenge",
		mcp.WithDescription("During PLOTTING, wager 1 Money that a player's declaration is a bluff. They must match it."),
		mcp.WithString("target", mcp.Required(), mcp.Description("Player id, name or 1-based seat")),
	)
}

func actTool() mcp.Tool {
	return mcp.NewTool("act",
		mcp.WithDescription("On your ACTION turn: PLAY_FACEDOWN (optionally at a target), PREP_COUP, LAUNCH_COUP, BREAK_ALLIANCE or PASS."),
		mcp.WithString("action", mcp.Required(), mcp.Description("PLAY_FACEDOWN, PREP_COUP, LAUNCH_COUP, BREAK_ALLIANCE or PASS")),
		mcp.WithString("target", mcp.Description("Player id, name or 1-based seat for targeted cards")),
	)
}

func voteTool() mcp.Tool {
	return mcp.NewTool("vote",
		mcp.WithDescription("During VOTE, vote on the round's agenda."),
		mcp.WithString("choice", mcp.Required(), mcp.Description("YES, NO or ABSTAIN")),
	)
}

func fundCrisisTool() mcp.Tool {
	return mcp.NewTool("fund_crisis",
		mcp.WithDescription("During CRISIS, pledge Money toward the agenda's crisis need."),
		mcp.WithNumber("amount", mcp.Required(), mcp.Description("Money to pledge")),
	)
}

func blockCoupTool() mcp.Tool {
	return mcp.NewTool("block_coup",
		mcp.WithDescription("While a coup is underway, pledge Money to block it. The coup leader cannot pledge."),
		mcp.WithNumber("amount", mcp.Required(), mcp.Description("Money to pledge")),
	)
}

func playReactionTool() mcp.Tool {
	return mcp.NewTool("play_reaction",
		mcp.WithDescription("Play a Reaction card during REACTION or a coup window."),
		mcp.WithString("card_id", mcp.Required(), mcp.Description("Card id from your hand or its 1-based position")),
	)
}

func acceptAllianceTool() mcp.Tool {
	return mcp.NewTool("accept_alliance",
		mcp.WithDescription("Accept the alliance offered to you."),
	)
}

func chatTool() mcp.Tool {
	return mcp.NewTool("chat",
		mcp.WithDescription("Say something to the table."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Message (at most 200 characters)")),
	)
}

func leaveTableTool() mcp.Tool {
	return mcp.NewTool("leave_table",
		mcp.WithDescription("Leave the table. Leaving a running game ends it for everyone."),
	)
}

// --- Tool handlers ---

func (s *Session) handleJoinTable(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := strings.TrimSpace(request.GetString("name", ""))
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}
	resp, err := s.Join(ctx, request.GetString("room_id", ""), name)
	return respond(resp, err)
}

func (s *Session) handleAddBots(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	count := request.GetInt("count", 0)
	if count < 1 {
		return mcp.NewToolResultError("count must be >= 1"), nil
	}
	return respond(s.Do(ctx, room.Intent{Kind: net.MsgAddBots, Count: count}))
}

func (s *Session) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return respond(s.Do(ctx, room.Intent{Kind: net.MsgStart}))
}

func (s *Session) handleGetState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return respond(s.State(ctx))
}

func (s *Session) handleWait(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	timeout := time.Duration(request.GetInt("timeout_seconds", 10)) * time.Second
	if timeout <= 0 {
		timeout = time.Second
	}
	return respond(s.Wait(ctx, min(timeout, maxWait)))
}

func (s *Session) handleSetFacedown(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.card(ctx, request.GetString("card_id", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return respond(s.Do(ctx, room.Intent{Kind: net.MsgSetFacedown, CardID: id}))
}

func (s *Session) handleDeclare(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag := request.GetString("tag", "")
	if tag == "" {
		return mcp.NewToolResultError("tag is required"), nil
	}
	return respond(s.Do(ctx, room.Intent{Kind: net.MsgDeclare, Tag: tag, Text: request.GetString("text", "")}))
}

func (s *Session) handleChallenge(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, err := s.target(ctx, request.GetString("target", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return respond(s.Do(ctx, room.Intent{Kind: net.MsgChallenge, TargetID: target}))
}

func (s *Session) handleAct(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	action := strings.ToUpper(strings.TrimSpace(request.GetString("action", "")))
	if action == "" {
		return mcp.NewToolResultError("action is required"), nil
	}
	target := ""
	if arg := request.GetString("target", ""); arg != "" {
		id, err := s.target(ctx, arg)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		target = id
	}
	return respond(s.Do(ctx, room.Intent{Kind: net.MsgAction, Action: action, TargetID: target}))
}

func (s *Session) handleVote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	choice := strings.ToUpper(request.GetString("choice", ""))
	switch choice {
	case "YES", "NO", "ABSTAIN":
	default:
		return mcp.NewToolResultErrorf("choice must be YES, NO or ABSTAIN, got %q", choice), nil
	}
	return respond(s.Do(ctx, room.Intent{Kind: net.MsgVote, Choice: choice}))
}

func (s *Session) handleFundCrisis(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return respond(s.Do(ctx, room.Intent{Kind: net.MsgFundCrisis, Amount: request.GetInt("amount", 0)}))
}

func (s *Session) handleBlockCoup(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return respond(s.Do(ctx, room.Intent{Kind: net.MsgContributeCoup, Amount: request.GetInt("amount", 0)}))
}

func (s *Session) handlePlayReaction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.card(ctx, request.GetString("card_id", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return respond(s.Do(ctx, room.Intent{Kind: net.MsgReaction, CardID: id}))
}

func (s *Session) handleAcceptAlliance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return respond(s.Do(ctx, room.Intent{Kind: net.MsgAcceptAlliance}))
}

func (s *Session) handleChat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return respond(s.Do(ctx, room.Intent{Kind: net.MsgChat, Text: request.GetString("text", "")}))
}

func (s *Session) handleLeaveTable(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.Leave(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(`{"left":true}`), nil
}

// --- Helpers ---

// target resolves a player argument against the current snapshot.
func (s *Session) target(ctx context.Context, arg string) (string, error) {
	msg, err := s.peek(ctx)
	if err != nil {
		return "", err
	}
	return net.ResolvePlayer(strings.TrimSpace(arg), msg.State)
}

// card resolves a card argument against the agent's hand.
func (s *Session) card(ctx context.Context, arg string) (string, error) {
	msg, err := s.peek(ctx)
	if err != nil {
		return "", err
	}
	return net.ResolveCard(strings.TrimSpace(arg), msg.Private)
}

func respond(resp ToolResponse, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func respondJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return `{"error":"failed to marshal response"}`
	}
	return string(data)
}
