package settings

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Source looks up raw setting values. ok is false when the key is not set.
type Source interface {
	Lookup(key string) (value string, ok bool)
}

// Map is an in-memory Source.
type Map map[string]string

func (m Map) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Env reads keys from the process environment, prefixed with Prefix.
type Env struct {
	Prefix string
}

func (e Env) Lookup(key string) (string, bool) {
	return os.LookupEnv(e.Prefix + key)
}

// File loads a dotenv-format settings file. Keys are used as written in the
// file; no prefix is applied.
func File(path string) (Map, error) {
	m, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read settings file %s: %w", path, err)
	}
	return Map(m), nil
}

// Chain consults each source in order and returns the first hit.
type Chain []Source

func (c Chain) Lookup(key string) (string, bool) {
	for _, s := range c {
		if s == nil {
			continue
		}
		if v, ok := s.Lookup(key); ok {
			return v, true
		}
	}
	return "", false
}
