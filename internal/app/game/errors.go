package game

import "errors"

var (
	ErrGameNotFound       = errors.New("game not found")
	ErrGameNotJoinable    = errors.New("game is not open for joining")
	ErrSelfJoin           = errors.New("cannot join own game")
	ErrGameNotActive      = errors.New("game is not active")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrIllegalMove        = errors.New("illegal move")
	ErrNotInGame          = errors.New("player is not seated in this game")
	ErrNoDrawOffer        = errors.New("no pending draw offer")
	ErrOwnDrawOffer       = errors.New("cannot answer own draw offer")
	ErrAbortTooLate       = errors.New("game can no longer be aborted")
	ErrInvalidTimeControl = errors.New("invalid time control")
	ErrReviewUnavailable  = errors.New("game has no finished record to review")
)
