package directory

import (
	"context"
	"sync"

	"github.com/helpdeskops/adconsole/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Reason explains a denied authentication. Invalid credentials and missing
// authorization are distinguishable here and in operator logs, but callers
// are expected to show the end user the same message for both.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonInvalidCredential Reason = "invalid_credential"
	ReasonNotAuthorized     Reason = "not_authorized"
)

// AuthResult is the outcome of one login attempt. It is computed per attempt
// and never stored.
type AuthResult struct {
	Granted    bool
	Identifier string
	Reason     Reason
}

// Gate combines credential validation (a successful bind as the principal)
// with required-group membership into a single pass/fail decision.
type Gate struct {
	opener *Opener

	// Per-identifier throttle on login attempts. Throttled attempts are
	// reported as invalid credentials without touching the directory.
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewGate builds a gate over the given opener, allowing a sustained login
// attempt per second with a small burst per identifier.
func NewGate(opener *Opener) *Gate {
	return &Gate{
		opener:   opener,
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(1),
		burst:    5,
	}
}

func (g *Gate) limiter(identifier string) *rate.Limiter {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.limiters[identifier]
	if !ok {
		l = rate.NewLimiter(g.limit, g.burst)
		g.limiters[identifier] = l
	}
	return l
}

// Authenticate opens a directory session as the supplied principal, which
// validates the credential, then checks nested membership in the configured
// required group. The session is closed before returning on every branch; the
// credential is never retained here.
func (g *Gate) Authenticate(ctx context.Context, identifier, secret string) AuthResult {
	log := logger.Ctx(ctx).With().
		Str("op_id", uuid.NewString()).
		Str("identifier", identifier).
		Logger()

	if !g.limiter(identifier).Allow() {
		log.Warn().Msg("login throttled")
		return AuthResult{Identifier: identifier, Reason: ReasonInvalidCredential}
	}

	sess, err := g.opener.Open(ctx, identifier, secret)
	if err != nil {
		cause := CauseUnknown
		if ae, ok := err.(*AuthError); ok {
			cause = ae.Cause
		}
		log.Warn().Err(err).Stringer("cause", cause).Msg("login failed")
		return AuthResult{Identifier: identifier, Reason: ReasonInvalidCredential}
	}
	defer sess.Close()

	member, cause := IsMember(ctx, sess, identifier, g.opener.Config.RequiredGroupDN)
	if cause != nil {
		// Fail closed: resolver trouble denies access, but the cause is
		// logged rather than discarded.
		log.Error().Err(cause).Msg("membership check failed, denying access")
	}
	if !member {
		log.Warn().Msg("login denied: not a member of required group")
		return AuthResult{Identifier: identifier, Reason: ReasonNotAuthorized}
	}

	log.Info().Msg("login granted")
	return AuthResult{Granted: true, Identifier: identifier}
}
