package directory

import (
	"errors"
	"fmt"

	"github.com/go-ldap/ldap/v3"
)

var (
	// ErrNotAuthorized is returned when a principal authenticates successfully
	// but is not a member of the required administrative group.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrSessionExpired is returned when a supposedly-authenticated flow can no
	// longer re-bind with its stored credentials and must force a new login.
	ErrSessionExpired = errors.New("session expired")

	// ErrAccountNotFound is returned when an operation targets a distinguished
	// name that no longer resolves to an entry.
	ErrAccountNotFound = errors.New("account not found")
)

// AuthCause identifies which stage of session establishment failed. It is
// intended for operator logs only; AuthError.Error collapses all causes into
// one generic message so callers cannot distinguish them.
type AuthCause int

const (
	CauseUnknown AuthCause = iota
	CauseUnreachable
	CauseTLS
	CauseBadCredential
)

func (c AuthCause) String() string {
	switch c {
	case CauseUnreachable:
		return "unreachable"
	case CauseTLS:
		return "tls"
	case CauseBadCredential:
		return "bad_credential"
	default:
		return "unknown"
	}
}

// AuthError reports a failure to establish an authenticated directory session.
type AuthError struct {
	Cause AuthCause
	Err   error
}

// Error deliberately does not reveal whether the host, the TLS negotiation, or
// the credential was at fault.
func (e *AuthError) Error() string {
	return "directory authentication failed"
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// WriteError carries the directory server's native result code and description
// for a failed add or modify, verbatim, so an operator can diagnose it.
type WriteError struct {
	Op          string
	Code        uint16
	Description string
	Err         error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("directory %s failed: %s (code %d)", e.Op, e.Description, e.Code)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

func newWriteError(op string, err error) *WriteError {
	we := &WriteError{Op: op, Err: err}
	var le *ldap.Error
	if errors.As(err, &le) {
		we.Code = le.ResultCode
		we.Description = ldap.LDAPResultCodeMap[le.ResultCode]
		if le.Err != nil {
			we.Description = fmt.Sprintf("%s: %v", we.Description, le.Err)
		}
	} else {
		we.Description = err.Error()
	}
	return we
}

// DuplicateAccountError is returned when provisioning would collide with an
// existing login name. Creation is not attempted in that case.
type DuplicateAccountError struct {
	LoginName string
}

func (e *DuplicateAccountError) Error() string {
	return fmt.Sprintf("account %q already exists", e.LoginName)
}

// IsTimeout reports whether err stems from a network-level failure or timeout
// talking to the directory server.
func IsTimeout(err error) bool {
	return ldap.IsErrorWithCode(err, ldap.ErrorNetwork)
}
