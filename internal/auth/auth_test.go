package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthorizer() *Authorizer {
	return NewAuthorizer(StaticSecrets{
		MasterKey: "master-key",
		Events: map[string]string{
			"Hackathon":   "hack-key",
			"Robo Rumble": "robo-key",
		},
	})
}

func TestAuthorizeAdmin(t *testing.T) {
	a := newTestAuthorizer()

	role, err := a.Authorize("Hackathon", "master-key")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	// The master passkey works even for events with no configured secret.
	role, err = a.Authorize("UnknownEvent", "master-key")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)
}

func TestAuthorizeCoordinator(t *testing.T) {
	a := newTestAuthorizer()

	role, err := a.Authorize("Hackathon", "hack-key")
	require.NoError(t, err)
	assert.Equal(t, RoleCoordinator, role)
}

func TestAuthorizeCaseInsensitiveEventLookup(t *testing.T) {
	a := newTestAuthorizer()

	role, err := a.Authorize("hackathon", "hack-key")
	require.NoError(t, err)
	assert.Equal(t, RoleCoordinator, role)

	role, err = a.Authorize("ROBO RUMBLE", "robo-key")
	require.NoError(t, err)
	assert.Equal(t, RoleCoordinator, role)
}

func TestAuthorizeRejectsWrongPasskey(t *testing.T) {
	a := newTestAuthorizer()

	_, err := a.Authorize("Hackathon", "robo-key")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = a.Authorize("Hackathon", "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthorizeRejectsUnknownEvent(t *testing.T) {
	a := newTestAuthorizer()

	_, err := a.Authorize("UnknownEvent", "hack-key")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthorizeNoMasterConfigured(t *testing.T) {
	a := NewAuthorizer(StaticSecrets{
		Events: map[string]string{"Hackathon": "hack-key"},
	})

	// An empty configured master must not grant admin to an empty passkey.
	_, err := a.Authorize("Hackathon", "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	role, err := a.Authorize("Hackathon", "hack-key")
	require.NoError(t, err)
	assert.Equal(t, RoleCoordinator, role)
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		event string
		want  string
	}{
		{"Hackathon", "HACKATHON"},
		{"hackathon", "HACKATHON"},
		{"Robo Rumble", "ROBO_RUMBLE"},
		{"robo-rumble", "ROBO_RUMBLE"},
		{"  CodeJam 2026  ", "CODEJAM_2026"},
		{"C++ Sprint", "C_SPRINT"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EnvKey(tt.event), "event %q", tt.event)
	}
}
