package demo

import "errors"

var (
	// ErrQuotaExceeded means this device used up its demo starts.
	ErrQuotaExceeded = errors.New("demo limit reached")
	// ErrDemoNotConfigured means the chosen scenario has no assistant.
	ErrDemoNotConfigured = errors.New("demo not configured")
	// ErrInvalidTransition is returned for an action the current state
	// does not allow.
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrUnknownScenario   = errors.New("unknown scenario")
	ErrTokenRequired     = errors.New("token required")
	ErrTokenRejected     = errors.New("token rejected")
	ErrLeadRejected      = errors.New("lead rejected")
	ErrVoiceStart        = errors.New("voice session failed to start")
	ErrGateClosed        = errors.New("gate closed")
)

// Messages shown to the visitor.
const (
	MsgTokenRequired   = "Please enter your access token"
	MsgInvalidPassword = "Invalid password. Please try again."
	MsgInvalidToken    = "Invalid token. Please try again."
	MsgConfigError     = "Demo configuration error. Please try again later."
	MsgStartFailed     = "Demo couldn't start. Please refresh or try again."
	MsgAlreadySent     = "You have already submitted this information."
	MsgLeadFailed      = "Something went wrong. Please try again."
)
