package services

import "errors"

// Shared errors used across services and HTTP status mapping.
var (
	// Validation and business rules. Malformed scores are rejected before
	// any write happens, so no partial state is ever produced.
	ErrValidationFailed = errors.New("validation failed")
	ErrMatchNotReady    = errors.New("match does not have both players assigned yet")
	ErrUnknownCourse    = errors.New("course code is not in the tournament course list")
	ErrInvalidTime      = errors.New("time must be formatted as M:SS.mmm")

	// Bracket lifecycle.
	ErrBracketResetNotRequired = errors.New("grand final was not taken by the losers-bracket champion")
	ErrGrandFinalNotCompleted  = errors.New("grand final has not been completed yet")
	ErrNoFinalsBracket         = errors.New("tournament has no finals bracket")

	// Rate limiting, mapped to 429 by the HTTP boundary.
	ErrRateLimited = errors.New("too many requests")
)
