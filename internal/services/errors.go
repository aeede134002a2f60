package services

import (
	"errors"
)

// Domain errors surfaced by the service layer. Handlers map them to HTTP
// status codes with errors.Is.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrPredictionNotFound = errors.New("prediction not found")
	ErrCommentNotFound    = errors.New("comment not found")
	ErrItemNotFound       = errors.New("shop item not found")

	ErrInsufficientPoints = errors.New("insufficient points")
	ErrInvalidOption      = errors.New("option is not part of this prediction")
	ErrNoStakeOnWinner    = errors.New("no stake on the winning option")
	ErrPredictionResolved = errors.New("prediction is already resolved")
	ErrPredictionClosed   = errors.New("prediction no longer accepts votes")
	ErrInvalidAmount      = errors.New("amount must be at least 1")
	ErrDeadlineInPast     = errors.New("deadline must be in the future")
	ErrNotEnoughOptions   = errors.New("a prediction needs at least two options")
	ErrDuplicateOption    = errors.New("duplicate option name")
	ErrPredictionMismatch = errors.New("vote cannot move to another prediction")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotOwner           = errors.New("not the owner of this resource")
	ErrItemAlreadyOwned   = errors.New("item already owned")
	ErrItemNotOwned       = errors.New("item not owned")
)
