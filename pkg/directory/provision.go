package directory

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/helpdeskops/adconsole/pkg/logger"

	"github.com/go-ldap/ldap/v3"
)

// userObjectClasses is the minimal chain for an Active Directory user object.
var userObjectClasses = []string{"top", "person", "organizationalPerson", "user"}

// NewAccount is returned exactly once per created account; the initial secret
// is handed to the caller for out-of-band delivery and stored nowhere else.
type NewAccount struct {
	LoginName     string
	DN            string
	InitialSecret string
}

// OrgUnit is a read-only snapshot of an organizational unit, fetched per
// provisioning request since the directory may change between requests.
type OrgUnit struct {
	Name string
	DN   string
}

// DeriveLoginName produces the canonical login for a new account:
// lower-cased given name and surname with all whitespace removed, joined by a
// dot. Pure and deterministic, so the uniqueness check is meaningful.
func DeriveLoginName(givenName, surname string) string {
	return stripSpace(strings.ToLower(givenName)) + "." + stripSpace(strings.ToLower(surname))
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// CreateAccount provisions a new, immediately usable directory account under
// orgUnitDN. The login name must not already exist; a collision fails with
// *DuplicateAccountError before any write is attempted, so the clearer domain
// error is never masked by a server naming conflict.
func CreateAccount(ctx context.Context, s *Session, orgUnitDN, givenName, surname, initialSecret string) (*NewAccount, error) {
	if stripSpace(givenName) == "" || stripSpace(surname) == "" {
		return nil, errors.New("given name and surname are both required")
	}
	login := DeriveLoginName(givenName, surname)
	if initialSecret == "" {
		return nil, errors.New("initial secret is required")
	}

	existing, err := s.Search(s.cfg.BaseDN, "(sAMAccountName="+ldap.EscapeFilter(login)+")", []string{"distinguishedName"})
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, &DuplicateAccountError{LoginName: login}
	}

	fullName := strings.TrimSpace(givenName) + " " + strings.TrimSpace(surname)
	dn := "CN=" + ldap.EscapeDN(fullName) + "," + orgUnitDN

	attrs := map[string][]string{
		"cn":                 {fullName},
		"givenName":          {strings.TrimSpace(givenName)},
		"sn":                 {strings.TrimSpace(surname)},
		"displayName":        {fullName},
		"sAMAccountName":     {login},
		"userPrincipalName":  {login + "@" + s.cfg.UPNSuffix},
		"userAccountControl": {strconv.FormatUint(uint64(NormalAccount), 10)},
	}
	if err := s.Add(dn, userObjectClasses, attrs); err != nil {
		return nil, err
	}

	// The entry now exists enabled; set its credential and mark it fresh so
	// no first-login ritual is needed.
	if err := s.SetPassword(dn, initialSecret); err != nil {
		return nil, err
	}

	logger.Ctx(ctx).Info().
		Str("login", login).
		Str("dn", dn).
		Msg("account created")

	return &NewAccount{LoginName: login, DN: dn, InitialSecret: initialSecret}, nil
}

// ListOrgUnits fetches all organizational units under the search base, sorted
// by display name, for provisioning target selection.
func ListOrgUnits(ctx context.Context, s *Session) ([]OrgUnit, error) {
	entries, err := s.Search(s.cfg.BaseDN, "(objectClass=organizationalUnit)", []string{"name", "distinguishedName"})
	if err != nil {
		return nil, err
	}

	ous := make([]OrgUnit, 0, len(entries))
	for _, e := range entries {
		name, _ := e.Value("name")
		dn := e.DN
		if v, ok := e.Value("distinguishedName"); ok {
			dn = v
		}
		ous = append(ous, OrgUnit{Name: name, DN: dn})
	}
	sort.Slice(ous, func(i, j int) bool { return ous[i].Name < ous[j].Name })
	return ous, nil
}
