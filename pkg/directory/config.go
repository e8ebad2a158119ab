package directory

import (
	"errors"
	"fmt"
	"time"
)

// Config holds everything needed to reach and query the directory server. It
// is assembled once at process start and passed by value into every component;
// nothing reads ad hoc process-wide state after that.
type Config struct {
	// Server settings
	Host string
	Port int

	// Transport security. LDAPS connects over TLS from the first byte;
	// StartTLS upgrades a plaintext connection before binding. Exactly one
	// should be set for a production deployment.
	LDAPS    bool
	StartTLS bool

	// TLSSkipVerify skips certificate validation. The deployed system this
	// replaces ran without validation, so true is accepted, but verification
	// should be enabled wherever the domain controller has a trusted
	// certificate.
	TLSSkipVerify bool

	// NetBIOSDomain qualifies simple binds as DOMAIN\login.
	NetBIOSDomain string
	// UPNSuffix builds userPrincipalName values for new accounts.
	UPNSuffix string

	// BaseDN roots all subtree searches.
	BaseDN string
	// RequiredGroupDN is the administrative group a principal must be a
	// direct or nested member of.
	RequiredGroupDN string

	// Timeout bounds every network exchange with the server.
	Timeout time.Duration
}

// DefaultTimeout bounds directory exchanges when no timeout is configured, so
// a slow or unreachable server cannot pin a request indefinitely.
const DefaultTimeout = 10 * time.Second

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Port == 0 {
		if c.LDAPS {
			c.Port = 636
		} else {
			c.Port = 389
		}
	}
	return c
}

// URL renders the server address in the scheme go-ldap dials.
func (c Config) URL() string {
	scheme := "ldap"
	if c.LDAPS {
		scheme = "ldaps"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.Host, c.Port)
}

func (c Config) Validate() error {
	if c.Host == "" {
		return errors.New("directory host is required")
	}
	if c.BaseDN == "" {
		return errors.New("search base DN is required")
	}
	if c.NetBIOSDomain == "" {
		return errors.New("NetBIOS domain is required")
	}
	if c.RequiredGroupDN == "" {
		return errors.New("required group DN is required")
	}
	return nil
}
