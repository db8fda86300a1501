package service

import "errors"

// Engine error taxonomy. These are raised synchronously to the caller;
// asynchronous feedback updates log failures instead of surfacing them.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrFlowNotFound     = errors.New("flow not found")
	ErrNoActiveFlow     = errors.New("no active flow for this language")
	ErrFlowValidation   = errors.New("flow validation failed")
	ErrInvalidOfferType = errors.New("invalid offer type")
	ErrInvalidInput     = errors.New("invalid input")

	ErrInvalidCredentials = errors.New("invalid username or password")
)
