// Package secrets is the credential-retrieval boundary for the registry
// transport. Deployments back it with their secrets manager of choice;
// the bridge ships an environment-variable implementation and a static
// one for tests.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// ErrSecretNotFound is returned when a credential source has no value.
var ErrSecretNotFound = errors.New("secret not found")

// Credentials is a username/password pair for the registry endpoint.
type Credentials struct {
	Username string
	Password string
}

// Store retrieves transport credentials. Implementations must be safe for
// concurrent use.
type Store interface {
	Credentials(ctx context.Context) (Credentials, error)
}

// EnvStore reads credentials from environment variables.
type EnvStore struct {
	UsernameVar string
	PasswordVar string
}

// NewEnvStore uses the conventional SFTP_USERNAME/SFTP_PASSWORD variables
// unless told otherwise.
func NewEnvStore() *EnvStore {
	return &EnvStore{UsernameVar: "SFTP_USERNAME", PasswordVar: "SFTP_PASSWORD"}
}

func (s *EnvStore) Credentials(_ context.Context) (Credentials, error) {
	user := os.Getenv(s.UsernameVar)
	if user == "" {
		return Credentials{}, fmt.Errorf("%w: %s not set", ErrSecretNotFound, s.UsernameVar)
	}
	pass := os.Getenv(s.PasswordVar)
	if pass == "" {
		return Credentials{}, fmt.Errorf("%w: %s not set", ErrSecretNotFound, s.PasswordVar)
	}
	return Credentials{Username: user, Password: pass}, nil
}

// StaticStore returns fixed credentials.
type StaticStore struct {
	C Credentials
}

func (s *StaticStore) Credentials(_ context.Context) (Credentials, error) {
	return s.C, nil
}
