package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrUnknownProvider   = errors.New("unknown provider")
	ErrProviderFailure   = errors.New("provider failure")
	ErrIllegalTransition = errors.New("illegal task transition")
)

// ErrorKind is the closed taxonomy of enhancement failures.
type ErrorKind string

const (
	KindNone                   ErrorKind = ""
	KindUnsupportedInputFormat ErrorKind = "unsupportedInputFormat"
	KindSourceUnreachable      ErrorKind = "sourceUnreachable"
	KindInsufficientCredits    ErrorKind = "insufficientCredits"
	KindInvalidImageFormat     ErrorKind = "invalidImageFormat"
	KindNetwork                ErrorKind = "network"
	KindProviderOutOfCredits   ErrorKind = "providerOutOfCredits"
	KindTimeout                ErrorKind = "timeout"
	KindUnknown                ErrorKind = "unknown"
	// Raised by the façade before anything is submitted.
	KindInvalidRequest ErrorKind = "invalidRequest"
	KindItemBusy       ErrorKind = "itemBusy"
)
