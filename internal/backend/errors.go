package backend

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the global response taxonomy. Every call through the
// client maps upstream failures onto exactly one of these, so handlers can
// branch with errors.Is instead of inspecting status codes.
var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("permission denied")
	ErrInactiveAccount = errors.New("account is deactivated")
	ErrNotFound        = errors.New("not found")
	ErrServer          = errors.New("server error")
	ErrUnavailable     = errors.New("backend unavailable")
)

// Error carries the upstream status and message alongside the sentinel it
// unwraps to.
type Error struct {
	Status  int
	Code    string
	Message string
	kind    error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend: status %d", e.Status)
}

func (e *Error) Unwrap() error { return e.kind }

// statusError classifies an upstream HTTP status. The inactive-account 403 is
// split out from generic permission denial: it drives a dedicated recovery
// flow (forced logout, contact-support messaging) rather than an error toast.
func statusError(status int, code, message string) error {
	var kind error
	switch {
	case status == 401:
		kind = ErrUnauthorized
	case status == 403 && inactiveAccount(code, message):
		kind = ErrInactiveAccount
	case status == 403:
		kind = ErrForbidden
	case status == 404:
		kind = ErrNotFound
	case status >= 500:
		kind = ErrServer
	default:
		kind = fmt.Errorf("unexpected status %d", status)
	}
	return &Error{Status: status, Code: code, Message: message, kind: kind}
}

func inactiveAccount(code, message string) bool {
	if strings.EqualFold(code, "ACCOUNT_INACTIVE") {
		return true
	}
	m := strings.ToLower(message)
	return strings.Contains(m, "inactive") || strings.Contains(m, "deactivated")
}
