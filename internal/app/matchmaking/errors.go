package matchmaking

import "errors"

var (
	ErrInvitationNotFound   = errors.New("invitation not found")
	ErrSelfAccept           = errors.New("cannot accept own invitation")
	ErrNotInvitationCreator = errors.New("only the creator can cancel an invitation")

	errCodeInUse = errors.New("invitation code already in use")
)
