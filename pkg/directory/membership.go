package directory

import (
	"context"
	"fmt"

	"github.com/helpdeskops/adconsole/pkg/logger"

	"github.com/go-ldap/ldap/v3"
)

// matchingRuleInChain is the LDAP_MATCHING_RULE_IN_CHAIN OID. A memberOf
// filter qualified with it makes the server walk nested group membership to
// arbitrary depth in a single search, so the client never recurses itself.
const matchingRuleInChain = "1.2.840.113556.1.4.1941"

// IsMember reports whether the principal identified by its login name is a
// direct or transitive member of requiredGroupDN.
//
// An unknown login is simply not a member (false, nil). Any search failure
// also yields false, but the cause comes back as the error so the caller can
// log it; authorization stays fail-closed either way.
func IsMember(ctx context.Context, s *Session, identifier, requiredGroupDN string) (bool, error) {
	filter := "(sAMAccountName=" + ldap.EscapeFilter(identifier) + ")"
	entries, err := s.Search(s.cfg.BaseDN, filter, []string{"distinguishedName"})
	if err != nil {
		return false, fmt.Errorf("resolve principal %q: %w", identifier, err)
	}
	if len(entries) == 0 {
		logger.Ctx(ctx).Debug().
			Str("identifier", identifier).
			Msg("membership check: principal not found")
		return false, nil
	}

	dn := entries[0].DN
	if v, ok := entries[0].Value("distinguishedName"); ok {
		dn = v
	}

	filter = "(&(distinguishedName=" + ldap.EscapeFilter(dn) +
		")(memberOf:" + matchingRuleInChain + ":=" + ldap.EscapeFilter(requiredGroupDN) + "))"
	entries, err = s.Search(s.cfg.BaseDN, filter, []string{"cn"})
	if err != nil {
		return false, fmt.Errorf("nested membership search for %q: %w", dn, err)
	}

	return len(entries) > 0, nil
}
