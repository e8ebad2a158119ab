// Package sessionstore holds the credentials of logged-in operators for the
// lifetime of their browser session, so each privileged request can re-bind
// to the directory without re-prompting for a password.
//
// This is a deliberate trust boundary: secrets live only here, only until
// logout or expiry, and are never logged or written to disk by this process.
package sessionstore

import (
	"context"
	"errors"
	"time"
)

// ErrNoSession is returned when a session id is unknown or has expired; the
// caller must force a fresh login.
var ErrNoSession = errors.New("session expired or unknown")

// Credentials is the identifier/secret pair validated at login. The secret is
// a byte slice so implementations can zero it on removal.
type Credentials struct {
	Identifier string
	Secret     []byte
}

// Store maps opaque session identifiers to credentials with a fixed expiry
// chosen at construction.
type Store interface {
	Put(ctx context.Context, sessionID string, creds Credentials) error
	Get(ctx context.Context, sessionID string) (Credentials, error)
	Delete(ctx context.Context, sessionID string) error
	Close() error
}

// clock indirection for expiry tests.
var now = time.Now
