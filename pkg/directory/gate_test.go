package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		identifier  string
		secret      string
		wantGranted bool
		wantReason  Reason
	}{
		{
			name:        "nested member is granted",
			identifier:  "jdoe",
			secret:      "hunter2",
			wantGranted: true,
			wantReason:  ReasonNone,
		},
		{
			name:       "wrong password",
			identifier: "jdoe",
			secret:     "wrong",
			wantReason: ReasonInvalidCredential,
		},
		{
			name:       "valid credential but not a member",
			identifier: "guest",
			secret:     "guestpw",
			wantReason: ReasonNotAuthorized,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := newFakeDirectory()
			seedMembership(dir)
			dir.passwords[`CORP\jdoe`] = "hunter2"
			dir.passwords[`CORP\guest`] = "guestpw"

			gate := NewGate(testOpener(dir))
			res := gate.Authenticate(context.Background(), tt.identifier, tt.secret)

			assert.Equal(t, tt.wantGranted, res.Granted)
			assert.Equal(t, tt.wantReason, res.Reason)
			assert.Equal(t, tt.identifier, res.Identifier)

			// the check session must be released on every branch
			opens, closes := dir.openCounts()
			assert.Equal(t, opens, closes, "no leaked directory connections")
		})
	}
}

func TestAuthenticateThrottlesRepeatedAttempts(t *testing.T) {
	t.Parallel()

	dir := newFakeDirectory()
	seedMembership(dir)
	gate := NewGate(testOpener(dir))

	// exhaust the per-identifier burst with failing attempts
	for i := 0; i < 10; i++ {
		gate.Authenticate(context.Background(), "jdoe", "wrong")
	}
	opensBefore, _ := dir.openCounts()

	res := gate.Authenticate(context.Background(), "jdoe", "wrong")
	assert.False(t, res.Granted)
	assert.Equal(t, ReasonInvalidCredential, res.Reason)

	opensAfter, _ := dir.openCounts()
	assert.Equal(t, opensBefore, opensAfter, "throttled attempts must not reach the directory")
}

func TestAuthenticateFailsClosedOnResolverError(t *testing.T) {
	t.Parallel()

	dir := newFakeDirectory()
	seedMembership(dir)
	dir.passwords[`CORP\jdoe`] = "hunter2"

	gate := NewGate(testOpener(dir))

	// bind succeeds, then the membership searches start failing
	dir.searchErr = assert.AnError

	res := gate.Authenticate(context.Background(), "jdoe", "hunter2")
	assert.False(t, res.Granted)
	assert.Equal(t, ReasonNotAuthorized, res.Reason)

	opens, closes := dir.openCounts()
	assert.Equal(t, opens, closes)
}
