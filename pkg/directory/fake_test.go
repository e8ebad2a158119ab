package directory

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-ldap/ldap/v3"
)

// fakeDirectory is an in-memory stand-in for a domain controller. It answers
// the exact filter shapes the production code emits and counts connection
// opens and closes so tests can assert the scoped-release guarantee.
type fakeDirectory struct {
	mu sync.Mutex

	// entries by distinguished name
	entries map[string]map[string][]string

	// bind user (DOMAIN\login) -> password
	passwords map[string]string

	opens  int
	closes int

	dialErr   error
	searchErr error

	lastFilter string
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		entries:   make(map[string]map[string][]string),
		passwords: make(map[string]string),
	}
}

func (d *fakeDirectory) addEntry(dn string, attrs map[string][]string) {
	cp := make(map[string][]string, len(attrs)+1)
	for k, v := range attrs {
		cp[k] = append([]string(nil), v...)
	}
	cp["distinguishedName"] = []string{dn}
	d.entries[dn] = cp
}

func (d *fakeDirectory) dial(cfg Config) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dialErr != nil {
		return nil, &AuthError{Cause: CauseUnreachable, Err: d.dialErr}
	}
	d.opens++
	return &fakeConn{dir: d}, nil
}

func (d *fakeDirectory) openCounts() (opens, closes int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opens, d.closes
}

// isTransitiveMember walks memberOf edges through group entries, the closure
// the matching-rule filter asks the server for.
func (d *fakeDirectory) isTransitiveMember(userDN, groupDN string) bool {
	seen := map[string]bool{}
	queue := append([]string(nil), d.entries[userDN]["memberOf"]...)
	for len(queue) > 0 {
		g := queue[0]
		queue = queue[1:]
		if seen[g] {
			continue
		}
		seen[g] = true
		if g == groupDN {
			return true
		}
		queue = append(queue, d.entries[g]["memberOf"]...)
	}
	return false
}

type fakeConn struct {
	dir    *fakeDirectory
	closed bool
}

func (c *fakeConn) SetTimeout(time.Duration) {}

func (c *fakeConn) Close() error {
	c.dir.mu.Lock()
	defer c.dir.mu.Unlock()
	if !c.closed {
		c.closed = true
		c.dir.closes++
	}
	return nil
}

func (c *fakeConn) Bind(username, password string) error {
	c.dir.mu.Lock()
	defer c.dir.mu.Unlock()
	if want, ok := c.dir.passwords[username]; ok && want == password {
		return nil
	}
	return ldap.NewError(ldap.LDAPResultInvalidCredentials, errors.New("invalid credentials"))
}

func (c *fakeConn) Add(req *ldap.AddRequest) error {
	c.dir.mu.Lock()
	defer c.dir.mu.Unlock()
	if _, exists := c.dir.entries[req.DN]; exists {
		return ldap.NewError(ldap.LDAPResultEntryAlreadyExists, errors.New("entry already exists"))
	}
	attrs := make(map[string][]string)
	for _, a := range req.Attributes {
		attrs[a.Type] = append([]string(nil), a.Vals...)
	}
	attrs["distinguishedName"] = []string{req.DN}
	c.dir.entries[req.DN] = attrs
	return nil
}

func (c *fakeConn) Modify(req *ldap.ModifyRequest) error {
	c.dir.mu.Lock()
	defer c.dir.mu.Unlock()
	entry, ok := c.dir.entries[req.DN]
	if !ok {
		return ldap.NewError(ldap.LDAPResultNoSuchObject, errors.New("no such object"))
	}
	for _, ch := range req.Changes {
		entry[ch.Modification.Type] = append([]string(nil), ch.Modification.Vals...)
	}
	return nil
}

func (c *fakeConn) Search(req *ldap.SearchRequest) (*ldap.SearchResult, error) {
	c.dir.mu.Lock()
	defer c.dir.mu.Unlock()
	if c.dir.searchErr != nil {
		return nil, c.dir.searchErr
	}
	c.dir.lastFilter = req.Filter

	if req.Scope == ldap.ScopeBaseObject {
		attrs, ok := c.dir.entries[req.BaseDN]
		if !ok {
			return &ldap.SearchResult{}, nil
		}
		return &ldap.SearchResult{Entries: []*ldap.Entry{toLDAPEntry(req.BaseDN, attrs)}}, nil
	}

	var matched []*ldap.Entry
	for dn, attrs := range c.dir.entries {
		if c.dir.matches(req.Filter, dn, attrs) {
			matched = append(matched, toLDAPEntry(dn, attrs))
		}
	}
	return &ldap.SearchResult{Entries: matched}, nil
}

func (d *fakeDirectory) matches(filter, dn string, attrs map[string][]string) bool {
	switch {
	case filter == "(objectClass=organizationalUnit)":
		return hasValue(attrs, "objectClass", "organizationalUnit")

	case strings.HasPrefix(filter, "(sAMAccountName=") && !strings.Contains(filter, "*"):
		want := unescapeFilterValue(strings.TrimSuffix(strings.TrimPrefix(filter, "(sAMAccountName="), ")"))
		return hasValue(attrs, "sAMAccountName", want)

	case strings.Contains(filter, "memberOf:"+matchingRuleInChain+":="):
		userDN, groupDN, ok := parseChainFilter(filter)
		if !ok {
			return false
		}
		return dn == userDN && d.isTransitiveMember(userDN, groupDN)

	case strings.HasPrefix(filter, "(&(objectClass=user)(objectCategory=person)"):
		if !hasValue(attrs, "objectClass", "user") || !hasValue(attrs, "objectCategory", "person") {
			return false
		}
		term, ok := parseWildcardTerm(filter)
		if !ok {
			return false
		}
		return containsFold(attrs["sAMAccountName"], term) || containsFold(attrs["cn"], term)
	}
	return false
}

// parseChainFilter splits the nested-membership filter back into its user DN
// and group DN operands.
func parseChainFilter(filter string) (userDN, groupDN string, ok bool) {
	const dnPrefix = "(&(distinguishedName="
	sep := ")(memberOf:" + matchingRuleInChain + ":="
	rest, found := strings.CutPrefix(filter, dnPrefix)
	if !found {
		return "", "", false
	}
	userRaw, groupRaw, found := strings.Cut(rest, sep)
	if !found {
		return "", "", false
	}
	groupRaw = strings.TrimSuffix(groupRaw, "))")
	return unescapeFilterValue(userRaw), unescapeFilterValue(groupRaw), true
}

// parseWildcardTerm extracts the escaped term from
// (|(sAMAccountName=*term*)(cn=*term*)).
func parseWildcardTerm(filter string) (string, bool) {
	_, rest, found := strings.Cut(filter, "(|(sAMAccountName=*")
	if !found {
		return "", false
	}
	raw, _, found := strings.Cut(rest, "*)")
	if !found {
		return "", false
	}
	return unescapeFilterValue(raw), true
}

// unescapeFilterValue reverses ldap.EscapeFilter's \XX hex sequences.
func unescapeFilterValue(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+2 < len(s) {
			if n, err := strconv.ParseUint(s[i+1:i+3], 16, 8); err == nil {
				b.WriteByte(byte(n))
				i += 2
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func hasValue(attrs map[string][]string, name, want string) bool {
	for _, v := range attrs[name] {
		if v == want {
			return true
		}
	}
	return false
}

func containsFold(values []string, term string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), strings.ToLower(term)) {
			return true
		}
	}
	return false
}

func toLDAPEntry(dn string, attrs map[string][]string) *ldap.Entry {
	entry := &ldap.Entry{DN: dn}
	for name, vals := range attrs {
		entry.Attributes = append(entry.Attributes, &ldap.EntryAttribute{
			Name:   name,
			Values: append([]string(nil), vals...),
		})
	}
	return entry
}
