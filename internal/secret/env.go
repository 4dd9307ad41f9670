package secret

import (
	"os"
	"strings"
	"sync"
)

// EnvStore reads secrets from environment variables named
// <Prefix><KEY>, with the key upper-cased and dashes turned into
// underscores. Set and Delete only affect the current process.
type EnvStore struct {
	Prefix string

	mu sync.Mutex
}

// NewEnvStore creates an EnvStore with the given variable prefix.
func NewEnvStore(prefix string) *EnvStore {
	return &EnvStore{Prefix: prefix}
}

func (e *EnvStore) varName(key string) string {
	return e.Prefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

func (e *EnvStore) Set(key string, value []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return os.Setenv(e.varName(key), string(value))
}

func (e *EnvStore) Get(key string) ([]byte, error) {
	v, ok := os.LookupEnv(e.varName(key))
	if !ok {
		return nil, nil
	}
	return []byte(v), nil
}

func (e *EnvStore) Delete(key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return os.Unsetenv(e.varName(key))
}
