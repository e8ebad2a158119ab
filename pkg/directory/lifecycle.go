package directory

import (
	"context"
	"strconv"

	"github.com/helpdeskops/adconsole/pkg/logger"

	"github.com/go-ldap/ldap/v3"
)

// Account is a search result row for the lifecycle operations.
type Account struct {
	LoginName   string
	DisplayName string
	DN          string
	Enabled     bool
}

// SearchAccounts finds person-category user objects whose login name or
// common name contains term, case-insensitively via the directory's wildcard
// matching. The term is escaped so filter metacharacters match literally.
func SearchAccounts(ctx context.Context, s *Session, term string) ([]Account, error) {
	escaped := ldap.EscapeFilter(term)
	filter := "(&(objectClass=user)(objectCategory=person)" +
		"(|(sAMAccountName=*" + escaped + "*)(cn=*" + escaped + "*)))"

	entries, err := s.Search(s.cfg.BaseDN, filter,
		[]string{"sAMAccountName", "cn", "userAccountControl", "distinguishedName"})
	if err != nil {
		return nil, err
	}

	accounts := make([]Account, 0, len(entries))
	for _, e := range entries {
		login, _ := e.Value("sAMAccountName")
		cn, _ := e.Value("cn")
		uac, _ := e.Uint32("userAccountControl")
		dn := e.DN
		if v, ok := e.Value("distinguishedName"); ok {
			dn = v
		}
		accounts = append(accounts, Account{
			LoginName:   login,
			DisplayName: cn,
			DN:          dn,
			Enabled:     !AccountControl(uac).Disabled(),
		})
	}
	return accounts, nil
}

// ResetPassword sets a new credential for the account at dn and clears its
// password timestamp. The password-never-expires bit is left alone: the new
// credential follows whatever expiry policy the account already had.
func ResetPassword(ctx context.Context, s *Session, dn, newSecret string) error {
	if err := s.SetPassword(dn, newSecret); err != nil {
		return err
	}
	logger.Ctx(ctx).Info().Str("dn", dn).Msg("password reset")
	return nil
}

// SetEnabled toggles the disable bit of the account at dn via
// read-modify-write: the current flags are always read first and only the
// disable bit changes, so unrelated policy bits survive. A concurrent
// external change between the read and the write loses to this writer; the
// directory is the system of record and serializes the writes themselves.
func SetEnabled(ctx context.Context, s *Session, dn string, enabled bool) error {
	entry, err := s.Read(dn, []string{"userAccountControl"})
	if err != nil {
		return err
	}
	current, ok := entry.Uint32("userAccountControl")
	if !ok {
		return ErrAccountNotFound
	}

	next := AccountControl(current).WithDisabled(!enabled)
	err = s.Modify(dn, map[string][]string{
		"userAccountControl": {strconv.FormatUint(uint64(next), 10)},
	})
	if err != nil {
		return err
	}

	logger.Ctx(ctx).Info().
		Str("dn", dn).
		Bool("enabled", enabled).
		Msg("account state changed")
	return nil
}
