package bluelink

import (
	"errors"
	"fmt"
	"net/http"
)

// Error exposes methods useful for categorizing errors.
type Error interface {
	error

	// MayHaveSucceeded returns true if the Error was triggered by a command that might have been
	// executed. For example, if a client times out while waiting for a response, then the client
	// cannot tell if the command was received.
	MayHaveSucceeded() bool

	// Temporary returns true if the Error might be the result of a transient condition. The
	// vendor backend routinely returns 5xx responses while a vehicle is waking up.
	Temporary() bool
}

var (
	// ErrInvalidConfig indicates the client was constructed with incomplete credentials.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrNotLoggedIn indicates an operation that requires a session was attempted before login.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrRegionNotSupported indicates the account's region has no full controller implementation.
	ErrRegionNotSupported = errors.New("region controller not implemented")
	// ErrPINRequired indicates the vendor rejected a command because no service PIN was configured.
	ErrPINRequired = errors.New("command requires the Bluelink service PIN")
	// ErrCommandTimeout indicates a remote command never reached a terminal state before the
	// caller's deadline elapsed. The command may still complete on the vendor side.
	ErrCommandTimeout = NewError("timed out waiting for command to complete", true, false)
)

// CommandError wraps an error with flags describing whether the underlying command may have
// executed and whether retrying is reasonable.
type CommandError struct {
	Err               error
	PossibleSuccess   bool
	PossibleTemporary bool
}

func NewError(message string, mayHaveSucceeded bool, temporary bool) error {
	return &CommandError{Err: errors.New(message), PossibleSuccess: mayHaveSucceeded, PossibleTemporary: temporary}
}

func (e *CommandError) Error() string {
	return e.Err.Error()
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

func (e *CommandError) MayHaveSucceeded() bool {
	return e.PossibleSuccess
}

func (e *CommandError) Temporary() bool {
	return e.PossibleTemporary
}

// AuthError indicates the vendor rejected the account's credentials or session. This covers bad
// passwords, region mismatches, expired refresh tokens, and vendor-side lockouts.
type AuthError struct {
	// StatusCode is the HTTP status returned by the identity endpoint, or zero if the failure
	// occurred before a response was received.
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("authentication failed: %s", e.Message)
	}
	if e.Message == "" {
		return fmt.Sprintf("authentication failed: %s", http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("authentication failed (%d): %s", e.StatusCode, e.Message)
}

func (e *AuthError) MayHaveSucceeded() bool { return false }

// Temporary is true for vendor-side throttling, which clears without user action.
func (e *AuthError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode == http.StatusServiceUnavailable
}

// IsAuthError returns true if err indicates rejected credentials or an invalidated session.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// HttpError wraps a non-OK response from a vendor REST endpoint.
type HttpError struct {
	Code    int
	Message string
}

func (e *HttpError) Error() string {
	if e.Message == "" {
		return http.StatusText(e.Code)
	}
	return e.Message
}

func (e *HttpError) MayHaveSucceeded() bool {
	if e.Code >= 400 && e.Code < 500 {
		return false
	}
	return e.Code != http.StatusServiceUnavailable
}

func (e *HttpError) Temporary() bool {
	return e.Code == http.StatusServiceUnavailable ||
		e.Code == http.StatusGatewayTimeout ||
		e.Code == http.StatusRequestTimeout ||
		e.Code == http.StatusTooManyRequests
}

// MayHaveSucceeded returns true if err indicates the command may have been executed but the client
// did not receive a confirmation from the vendor.
func MayHaveSucceeded(err error) bool {
	if commErr, ok := err.(Error); ok && commErr.MayHaveSucceeded() {
		return true
	}
	return false
}

// Temporary returns true if err indicates the command failed due to possibly transient conditions
// that do not require user action to resolve.
func Temporary(err error) bool {
	if commErr, ok := err.(Error); ok && commErr.Temporary() {
		return true
	}
	return false
}

// ShouldRetry returns true if the client should retry the command that triggered an error.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if e, ok := err.(Error); ok {
		if e.MayHaveSucceeded() {
			return false
		}
		if e.Temporary() {
			return true
		}
	}
	return false
}
