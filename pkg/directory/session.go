// Package directory implements the Active Directory access and authorization
// core: authenticated sessions, nested group membership, account provisioning
// and lifecycle management.
//
// A session owns exactly one bound connection for the lifetime of a single
// inbound request. It is opened with the acting principal's own credentials,
// used for one or more operations, and closed on every exit path. No session
// is shared between requests or held across them.
package directory

import (
	"context"
	"fmt"
	"time"

	"github.com/helpdeskops/adconsole/pkg/logger"

	"github.com/go-ldap/ldap/v3"
)

// Opener opens authenticated directory sessions. The zero Dial uses the real
// LDAP dialer; tests inject one backed by a fake connection.
type Opener struct {
	Config Config
	Dial   Dialer
}

// Session is one authenticated, encrypted connection to the directory server,
// bound as one principal.
type Session struct {
	cfg    Config
	conn   Conn
	closed bool
}

// Open establishes the transport, then performs a simple bind as
// DOMAIN\identifier. All failures come back as *AuthError with the stage
// recorded for operator logs; the error message itself stays generic.
func (o *Opener) Open(ctx context.Context, identifier, secret string) (*Session, error) {
	cfg := o.Config.withDefaults()

	// An empty secret would be treated as an anonymous bind by the server
	// and "succeed". Reject it before touching the network.
	if identifier == "" || secret == "" {
		return nil, &AuthError{Cause: CauseBadCredential, Err: fmt.Errorf("empty identifier or secret")}
	}

	if err := ctx.Err(); err != nil {
		return nil, &AuthError{Cause: CauseUnreachable, Err: err}
	}

	dial := o.Dial
	if dial == nil {
		dial = dialLDAP
	}

	start := time.Now()
	conn, err := dial(cfg)
	if err != nil {
		observeOp("open", start, err)
		return nil, err
	}
	conn.SetTimeout(cfg.Timeout)

	bindAs := cfg.NetBIOSDomain + `\` + identifier
	if err := conn.Bind(bindAs, secret); err != nil {
		conn.Close()
		observeOp("open", start, err)
		return nil, &AuthError{Cause: CauseBadCredential, Err: err}
	}
	observeOp("open", start, nil)

	logger.Ctx(ctx).Debug().
		Str("identifier", identifier).
		Str("server", cfg.URL()).
		Msg("directory session opened")

	return &Session{cfg: cfg, conn: conn}, nil
}

// Config returns the immutable configuration the session was opened with.
func (s *Session) Config() Config {
	return s.cfg
}

// Close releases the connection. It is safe to call more than once, so every
// operation sequence can defer it unconditionally.
func (s *Session) Close() {
	if s == nil || s.closed {
		return
	}
	s.closed = true
	s.conn.Close()
}

// Search runs a subtree search under baseDN. Zero matches is a valid result:
// an empty slice and a nil error.
func (s *Session) Search(baseDN, filter string, attrs []string) ([]Entry, error) {
	start := time.Now()
	res, err := s.conn.Search(ldap.NewSearchRequest(
		baseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0,
		int(s.cfg.Timeout/time.Second),
		false,
		filter,
		attrs,
		nil,
	))
	observeOp("search", start, err)
	if err != nil {
		return nil, fmt.Errorf("directory search: %w", err)
	}

	entries := make([]Entry, 0, len(res.Entries))
	for _, e := range res.Entries {
		entries = append(entries, entryFromLDAP(e))
	}
	return entries, nil
}

// Read fetches a single entry by its distinguished name. Returns
// ErrAccountNotFound when the DN no longer resolves.
func (s *Session) Read(dn string, attrs []string) (Entry, error) {
	start := time.Now()
	res, err := s.conn.Search(ldap.NewSearchRequest(
		dn,
		ldap.ScopeBaseObject,
		ldap.NeverDerefAliases,
		1,
		int(s.cfg.Timeout/time.Second),
		false,
		"(objectClass=*)",
		attrs,
		nil,
	))
	observeOp("read", start, err)
	if err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultNoSuchObject) {
			return Entry{}, ErrAccountNotFound
		}
		return Entry{}, fmt.Errorf("directory read %s: %w", dn, err)
	}
	if len(res.Entries) == 0 {
		return Entry{}, ErrAccountNotFound
	}
	return entryFromLDAP(res.Entries[0]), nil
}

// Add creates a new entry. Server refusals surface as *WriteError carrying
// the native result code and description.
func (s *Session) Add(dn string, objectClasses []string, attrs map[string][]string) error {
	req := ldap.NewAddRequest(dn, nil)
	req.Attribute("objectClass", objectClasses)
	for name, values := range attrs {
		req.Attribute(name, values)
	}

	start := time.Now()
	err := s.conn.Add(req)
	observeOp("add", start, err)
	if err != nil {
		return newWriteError("add", err)
	}
	return nil
}

// Modify applies replace-semantics changes to one or more attributes in a
// single protocol operation.
func (s *Session) Modify(dn string, replacements map[string][]string) error {
	req := ldap.NewModifyRequest(dn, nil)
	for name, values := range replacements {
		req.Replace(name, values)
	}

	start := time.Now()
	err := s.conn.Modify(req)
	observeOp("modify", start, err)
	if err != nil {
		return newWriteError("modify", err)
	}
	return nil
}

// SetPassword sets the account credential through the unicodePwd attribute,
// then zeroes pwdLastSet so the new credential counts as fresh. The two
// modifies are separate protocol exchanges; a crash between them leaves the
// password changed with a stale timestamp, which the next reset repairs.
func (s *Session) SetPassword(dn, secret string) error {
	encoded, err := encodePassword(secret)
	if err != nil {
		return err
	}
	if err := s.Modify(dn, map[string][]string{"unicodePwd": {encoded}}); err != nil {
		return err
	}
	return s.Modify(dn, map[string][]string{"pwdLastSet": {"0"}})
}
