package auth

import (
	"errors"
	"os"
	"strings"

	"github.com/mxcd/go-config/config"
)

// Role is the access level granted to an authorized caller.
type Role string

const (
	// RoleAdmin — caller presented the master passkey. Read-only towards the
	// download lock, full access to contact cards.
	RoleAdmin Role = "admin"
	// RoleCoordinator — caller presented the passkey configured for the event.
	RoleCoordinator Role = "coordinator"
)

// ErrUnauthorized is returned when the supplied passkey matches neither the
// master secret nor the event's configured secret.
var ErrUnauthorized = errors.New("auth: invalid passkey")

// Secrets resolves configured passkeys by key. Implementations report ok=false
// when no secret is configured for the requested key.
type Secrets interface {
	// Master returns the master passkey, if one is configured.
	Master() (string, bool)
	// EventSecret returns the passkey configured for the given event
	// identifier. Lookup is case-insensitive on the event identifier.
	EventSecret(event string) (string, bool)
}

// Authorizer checks caller passkeys against an injected secret source.
type Authorizer struct {
	secrets Secrets
}

// NewAuthorizer creates an Authorizer backed by the given secret source.
func NewAuthorizer(secrets Secrets) *Authorizer {
	return &Authorizer{secrets: secrets}
}

// Authorize resolves the caller's role for the given event identifier.
// The caller is admin when a master secret is configured and matches; otherwise
// the passkey must equal the secret configured for the event. Any mismatch or
// missing configuration yields ErrUnauthorized.
func (a *Authorizer) Authorize(event, passkey string) (Role, error) {
	if passkey == "" {
		return "", ErrUnauthorized
	}
	if master, ok := a.secrets.Master(); ok && passkey == master {
		return RoleAdmin, nil
	}
	secret, ok := a.secrets.EventSecret(event)
	if !ok || passkey != secret {
		return "", ErrUnauthorized
	}
	return RoleCoordinator, nil
}

// EnvSecrets resolves secrets from process configuration: the master passkey
// from the MASTER_PASSKEY config value, per-event passkeys from environment
// variables named EVENT_PASSKEY_<EVENT>, with the event identifier uppercased
// and spaces collapsed to underscores.
type EnvSecrets struct{}

func (EnvSecrets) Master() (string, bool) {
	v := config.Get().String("MASTER_PASSKEY")
	return v, v != ""
}

func (EnvSecrets) EventSecret(event string) (string, bool) {
	v, ok := os.LookupEnv("EVENT_PASSKEY_" + EnvKey(event))
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// EnvKey normalizes an event identifier into the environment-variable suffix
// used for its passkey: uppercased, spaces and dashes become underscores, and
// any remaining non-alphanumeric characters are dropped.
func EnvKey(event string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(event)) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteByte('_')
		}
	}
	return b.String()
}

// StaticSecrets is a fixed in-memory secret set. Useful for tests and
// single-tenant deployments. Event keys are matched after EnvKey normalization,
// so callers may populate the map with plain event names.
type StaticSecrets struct {
	MasterKey string
	Events    map[string]string
}

func (s StaticSecrets) Master() (string, bool) {
	return s.MasterKey, s.MasterKey != ""
}

func (s StaticSecrets) EventSecret(event string) (string, bool) {
	want := EnvKey(event)
	for name, secret := range s.Events {
		if EnvKey(name) == want && secret != "" {
			return secret, true
		}
	}
	return "", false
}
