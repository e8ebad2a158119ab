package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/helpdeskops/adconsole/pkg/directory"
	"github.com/helpdeskops/adconsole/pkg/env"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// errLoginFailed is the only authentication outcome shown to the operator;
// invalid credentials and missing group membership are not distinguishable
// here, only in the logs.
var errLoginFailed = errors.New("login failed: invalid credentials or insufficient permissions")

func loadDirectoryConfig(cmd *cobra.Command) (directory.Config, error) {
	f := NewFlagLoader(cmd)

	cfg := directory.Config{
		Host:            f.String("host"),
		Port:            f.Int("port"),
		LDAPS:           f.Bool("ldaps"),
		StartTLS:        f.Bool("start-tls"),
		TLSSkipVerify:   f.Bool("insecure-skip-verify"),
		NetBIOSDomain:   f.String("netbios-domain"),
		UPNSuffix:       f.String("upn-suffix"),
		BaseDN:          f.String("search-base"),
		RequiredGroupDN: f.String("required-group"),
		Timeout:         f.Duration("timeout"),
	}
	if err := cfg.Validate(); err != nil {
		return directory.Config{}, err
	}

	if cfg.TLSSkipVerify && env.IsProduction() {
		log.Warn().Msg("TLS certificate validation is disabled in production")
	}

	return cfg, nil
}

// operatorCredentials resolves the acting operator's login and secret. The
// secret comes from ADCONSOLE_PASSWORD or an interactive no-echo prompt; it
// is never accepted as a flag so it cannot leak into shell history or ps.
func operatorCredentials(cmd *cobra.Command) (string, string, error) {
	f := NewFlagLoader(cmd)

	identifier := f.String("user")
	if identifier == "" {
		return "", "", errors.New("operator login is required (--user or ADCONSOLE_USER)")
	}

	if secret := os.Getenv("ADCONSOLE_PASSWORD"); secret != "" {
		return identifier, secret, nil
	}

	fmt.Fprintf(os.Stderr, "Password for %s: ", identifier)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", "", fmt.Errorf("read password: %w", err)
	}
	if len(raw) == 0 {
		return "", "", errors.New("empty password")
	}
	return identifier, string(raw), nil
}

// withSession runs fn as one privileged request: authenticate through the
// gate, open a fresh session as the operator, and close it on every path.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, sess *directory.Session) error) error {
	cfg, err := loadDirectoryConfig(cmd)
	if err != nil {
		return err
	}
	identifier, secret, err := operatorCredentials(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), dirTimeout)
	defer cancel()

	opener := &directory.Opener{Config: cfg}
	gate := directory.NewGate(opener)
	if res := gate.Authenticate(ctx, identifier, secret); !res.Granted {
		return errLoginFailed
	}

	sess, err := opener.Open(ctx, identifier, secret)
	if err != nil {
		return errLoginFailed
	}
	defer sess.Close()

	return fn(ctx, sess)
}
