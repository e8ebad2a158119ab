package directory

import (
	"crypto/tls"
	"errors"
	"net"
	"time"

	"github.com/go-ldap/ldap/v3"
)

// Conn is the slice of *ldap.Conn the session layer uses. Tests substitute a
// fake that counts opens and closes.
type Conn interface {
	Bind(username, password string) error
	Search(req *ldap.SearchRequest) (*ldap.SearchResult, error)
	Add(req *ldap.AddRequest) error
	Modify(req *ldap.ModifyRequest) error
	SetTimeout(timeout time.Duration)
	Close() error
}

// Dialer produces an unauthenticated connection ready for binding. The error
// it returns must already be classified as an *AuthError so dial and TLS
// failures stay distinguishable in logs.
type Dialer func(cfg Config) (Conn, error)

// dialLDAP is the production dialer: TCP (or TLS for ldaps) with the
// configured timeout, then an optional StartTLS upgrade.
func dialLDAP(cfg Config) (Conn, error) {
	tlsCfg := &tls.Config{
		ServerName:         cfg.Host,
		InsecureSkipVerify: cfg.TLSSkipVerify,
	}

	opts := []ldap.DialOpt{
		ldap.DialWithDialer(&net.Dialer{Timeout: cfg.Timeout}),
	}
	if cfg.LDAPS {
		opts = append(opts, ldap.DialWithTLSConfig(tlsCfg))
	}

	conn, err := ldap.DialURL(cfg.URL(), opts...)
	if err != nil {
		// TLS negotiation happens during the dial for ldaps; a plain
		// network error still means the host was unreachable.
		cause := CauseUnreachable
		var nerr net.Error
		if cfg.LDAPS && !errors.As(err, &nerr) {
			cause = CauseTLS
		}
		return nil, &AuthError{Cause: cause, Err: err}
	}

	if cfg.StartTLS && !cfg.LDAPS {
		if err := conn.StartTLS(tlsCfg); err != nil {
			conn.Close()
			return nil, &AuthError{Cause: CauseTLS, Err: err}
		}
	}

	return conn, nil
}
