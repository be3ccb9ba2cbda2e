package server

import (
	"context"
	"fmt"
	"strconv"

	"github.com/chess-vn/chessd/internal/domains/dtos"
	"github.com/chess-vn/chessd/internal/domains/entities"
	"github.com/chess-vn/chessd/pkg/board"
	"github.com/chess-vn/chessd/pkg/logging"
	"go.uber.org/zap"
)

// handleWebSocketMessage routes one client request. Successful game actions are announced by the
// game itself through the hub; only failures and queries are answered directly.
func (s *Server) handleWebSocketMessage(ctx context.Context, c *client, p payload) {
	gameId := p.Data["gameId"]
	var err error
	switch p.Type {
	case "create_game":
		err = s.handleCreateGame(ctx, c, p)
	case "join_game":
		_, err = s.games.JoinGame(ctx, gameId, c.playerId)
		if err == nil {
			s.hub.watch(c, gameId)
		}
	case "watch":
		s.watchGame(ctx, c, gameId)
	case "move":
		var mv board.Move
		mv, err = board.ParseMove(p.Data["move"])
		if err == nil {
			_, err = s.games.MakeMove(ctx, gameId, c.playerId, mv)
		}
	case "resign":
		_, err = s.games.Resign(ctx, gameId, c.playerId)
	case "offer_draw":
		_, err = s.games.OfferDraw(ctx, gameId, c.playerId)
	case "accept_draw":
		_, err = s.games.AcceptDraw(ctx, gameId, c.playerId)
	case "decline_draw":
		_, err = s.games.DeclineDraw(ctx, gameId, c.playerId)
	case "abort":
		_, err = s.games.Abort(ctx, gameId, c.playerId)
	case "queue_join":
		err = s.handleQueueJoin(ctx, c, p)
	case "queue_leave":
		s.matchmaker.LeaveQueue(c.playerId)
		c.writeJson(dtos.Reply{Type: dtos.MessageQueueLeft})
	case "queue_status":
		s.handleQueueStatus(c)
	case "invitation_create":
		err = s.handleInvitationCreate(ctx, c, p)
	case "invitation_accept":
		var g entities.Game
		g, err = s.matchmaker.AcceptInvitation(ctx, p.Data["code"], c.playerId)
		if err == nil {
			s.hub.watch(c, g.Id)
		}
	case "invitation_cancel":
		err = s.matchmaker.CancelInvitation(ctx, p.Data["code"], c.playerId)
		if err == nil {
			c.writeJson(dtos.Reply{Type: dtos.MessageInvitationCancelled, Data: p.Data["code"]})
		}
	case "analyze":
		depth := 0
		if v := p.Data["depth"]; v != "" {
			depth, err = strconv.Atoi(v)
			if err != nil {
				err = fmt.Errorf("%w: depth %q", ErrInvalidPayload, v)
				break
			}
		}
		err = s.games.RequestAnalysis(ctx, gameId, depth)
	case "review":
		var n int
		n, err = s.games.RequestReview(ctx, gameId)
		if err == nil {
			c.writeJson(dtos.Reply{Type: dtos.MessageReviewQueued, GameId: gameId, Data: n})
		}
	default:
		err = fmt.Errorf("%w: unknown type %q", ErrInvalidPayload, p.Type)
	}
	if err != nil {
		s.replyError(c, gameId, err)
	}
}

func (s *Server) handleCreateGame(ctx context.Context, c *client, p payload) error {
	minutes, increment, err := timeControlOf(p)
	if err != nil {
		return err
	}
	g, err := s.games.CreateGame(ctx, c.playerId, minutes, increment)
	if err != nil {
		return err
	}
	s.hub.watch(c, g.Id)
	return nil
}

func (s *Server) handleQueueJoin(ctx context.Context, c *client, p payload) error {
	minutes, increment, err := timeControlOf(p)
	if err != nil {
		return err
	}
	entry, err := s.matchmaker.JoinQueue(ctx, c.playerId, minutes, increment)
	if err != nil {
		return err
	}
	c.writeJson(dtos.Reply{Type: dtos.MessageQueued, Data: entry})
	return nil
}

func (s *Server) handleQueueStatus(c *client) {
	resp := dtos.QueueStatusResponse{QueueSize: s.matchmaker.QueueSize()}
	if position, wait, ok := s.matchmaker.QueueStatus(c.playerId); ok {
		resp.Queued = true
		resp.Position = position
		resp.WaitSeconds = int64(wait.Seconds())
	}
	c.writeJson(dtos.Reply{Type: dtos.MessageQueueStatus, Data: resp})
}

func (s *Server) handleInvitationCreate(ctx context.Context, c *client, p payload) error {
	minutes, increment, err := timeControlOf(p)
	if err != nil {
		return err
	}
	inv, err := s.matchmaker.CreateInvitation(ctx, c.playerId, minutes, increment)
	if err != nil {
		return err
	}
	c.writeJson(dtos.Reply{Type: dtos.MessageInvitationCreated, Data: inv})
	return nil
}

// watchGame subscribes c to a game and sends it the current state.
func (s *Server) watchGame(ctx context.Context, c *client, gameId string) {
	g, err := s.games.GetGame(ctx, gameId)
	if err != nil {
		s.replyError(c, gameId, err)
		return
	}
	if !g.Status.IsTerminal() {
		s.hub.watch(c, gameId)
	}
	c.writeJson(dtos.Reply{
		Type:   dtos.MessageGameState,
		GameId: gameId,
		Data:   dtos.GameMessageFromEntity(dtos.MessageGameState, "", g),
	})
}

func (s *Server) replyError(c *client, gameId string, err error) {
	code := statusFor(err)
	if code == ErrStatusInternal {
		logging.Error("request failed",
			zap.String("player_id", c.playerId),
			zap.String("game_id", gameId),
			zap.Error(err),
		)
	}
	c.writeJson(dtos.ErrorMessage{
		Type:    dtos.MessageError,
		GameId:  gameId,
		Code:    code,
		Message: err.Error(),
	})
}

// timeControlOf reads "timeControl" (minutes) and "increment" (seconds). Range checks are left
// to the game and matchmaking layers.
func timeControlOf(p payload) (int, int, error) {
	minutes, err := strconv.Atoi(p.Data["timeControl"])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: timeControl %q", ErrInvalidPayload, p.Data["timeControl"])
	}
	increment := 0
	if v := p.Data["increment"]; v != "" {
		increment, err = strconv.Atoi(v)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: increment %q", ErrInvalidPayload, v)
		}
	}
	return minutes, increment, nil
}
