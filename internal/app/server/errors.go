package server

import (
	"errors"

	"github.com/chess-vn/chessd/internal/app/game"
	"github.com/chess-vn/chessd/internal/app/matchmaking"
	"github.com/chess-vn/chessd/internal/domains/entities"
	"github.com/chess-vn/chessd/pkg/board"
)

const (
	ErrStatusInvalidMove          string = "INVALID_MOVE"
	ErrStatusInvalidPlayerId      string = "INVALID_PLAYER_ID"
	ErrStatusWrongTurn            string = "WRONG_TURN"
	ErrStatusGameNotFound         string = "GAME_NOT_FOUND"
	ErrStatusGameNotActive        string = "GAME_NOT_ACTIVE"
	ErrStatusGameNotJoinable      string = "GAME_NOT_JOINABLE"
	ErrStatusSelfJoin             string = "SELF_JOIN"
	ErrStatusNoDrawOffer          string = "NO_DRAW_OFFER"
	ErrStatusOwnDrawOffer         string = "OWN_DRAW_OFFER"
	ErrStatusAbortTooLate         string = "ABORT_TOO_LATE"
	ErrStatusInvalidTimeControl   string = "INVALID_TIME_CONTROL"
	ErrStatusReviewUnavailable    string = "REVIEW_UNAVAILABLE"
	ErrStatusInvitationNotFound   string = "INVITATION_NOT_FOUND"
	ErrStatusSelfAccept           string = "SELF_ACCEPT"
	ErrStatusNotInvitationCreator string = "NOT_INVITATION_CREATOR"
	ErrStatusPlayerNotFound       string = "PLAYER_NOT_FOUND"
	ErrStatusUsernameTaken        string = "USERNAME_TAKEN"
	ErrStatusInvalidPayload       string = "INVALID_PAYLOAD"
	ErrStatusInternal             string = "INTERNAL_ERROR"
)

var (
	ErrInvalidPayload = errors.New("invalid payload")
	ErrUnauthorized   = errors.New("unauthorized")
)

var errorStatuses = []struct {
	err    error
	status string
}{
	{game.ErrIllegalMove, ErrStatusInvalidMove},
	{board.ErrMalformedMove, ErrStatusInvalidMove},
	{game.ErrNotYourTurn, ErrStatusWrongTurn},
	{game.ErrNotInGame, ErrStatusInvalidPlayerId},
	{game.ErrGameNotFound, ErrStatusGameNotFound},
	{game.ErrGameNotActive, ErrStatusGameNotActive},
	{game.ErrGameNotJoinable, ErrStatusGameNotJoinable},
	{game.ErrSelfJoin, ErrStatusSelfJoin},
	{game.ErrNoDrawOffer, ErrStatusNoDrawOffer},
	{game.ErrOwnDrawOffer, ErrStatusOwnDrawOffer},
	{game.ErrAbortTooLate, ErrStatusAbortTooLate},
	{game.ErrInvalidTimeControl, ErrStatusInvalidTimeControl},
	{game.ErrReviewUnavailable, ErrStatusReviewUnavailable},
	{matchmaking.ErrInvitationNotFound, ErrStatusInvitationNotFound},
	{matchmaking.ErrSelfAccept, ErrStatusSelfAccept},
	{matchmaking.ErrNotInvitationCreator, ErrStatusNotInvitationCreator},
	{entities.ErrPlayerNotFound, ErrStatusPlayerNotFound},
	{entities.ErrUsernameTaken, ErrStatusUsernameTaken},
	{ErrInvalidPayload, ErrStatusInvalidPayload},
}

// statusFor maps a rejected operation to its wire status code.
func statusFor(err error) string {
	for _, s := range errorStatuses {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	return ErrStatusInternal
}
