// Package secret resolves credentials that should not live in the config
// file, such as the password of a server-backed storage DSN.
package secret

import (
	"fmt"
	"strings"
)

// PasswordPlaceholder marks where a resolved password goes in a DSN.
const PasswordPlaceholder = "<password>"

// SecretStore provides a pluggable interface for reading and writing
// credentials.
type SecretStore interface {
	// Set stores a secret value under the given key.
	Set(key string, value []byte) error

	// Get retrieves the secret value for the given key.
	// Returns empty slice and nil error if key does not exist.
	Get(key string) ([]byte, error)

	// Delete removes the secret for the given key.
	Delete(key string) error
}

// ResolveDSN substitutes the password stored under key for every
// PasswordPlaceholder in dsn. A DSN without the placeholder is returned as is.
func ResolveDSN(store SecretStore, dsn, key string) (string, error) {
	if !strings.Contains(dsn, PasswordPlaceholder) {
		return dsn, nil
	}
	if store == nil || key == "" {
		return "", fmt.Errorf("dsn contains %s but no secret key is configured", PasswordPlaceholder)
	}
	value, err := store.Get(key)
	if err != nil {
		return "", fmt.Errorf("read secret %q: %w", key, err)
	}
	if len(value) == 0 {
		return "", fmt.Errorf("secret %q is empty", key)
	}
	return strings.ReplaceAll(dsn, PasswordPlaceholder, string(value)), nil
}
