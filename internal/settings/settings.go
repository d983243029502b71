package settings

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrMissing      = errors.New("required setting missing")
	ErrInvalidValue = errors.New("invalid setting value")
)

// Error is a configuration error for a single key.
type Error struct {
	Key  string
	Want string
	Err  error
}

func (e *Error) Error() string {
	if e.Want != "" {
		return fmt.Sprintf("setting %s: %v (want %s)", e.Key, e.Err, e.Want)
	}
	return fmt.Sprintf("setting %s: %v", e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Provider exposes typed getters over a Source. Required getters fail with
// ErrMissing when the key is absent; optional getters report absence through
// their ok result (or a nil slice) instead.
type Provider struct {
	src Source
}

func New(src Source) *Provider {
	return &Provider{src: src}
}

func (p *Provider) lookup(key string) (string, bool) {
	if p == nil || p.src == nil {
		return "", false
	}
	return p.src.Lookup(key)
}

func (p *Provider) OptionalString(key string) (string, bool) {
	return p.lookup(key)
}

func (p *Provider) String(key string) (string, error) {
	v, ok := p.lookup(key)
	if !ok {
		return "", &Error{Key: key, Err: ErrMissing}
	}
	return v, nil
}

// OptionalBool accepts only the literals "true" and "false".
func (p *Provider) OptionalBool(key string) (bool, bool, error) {
	v, ok := p.lookup(key)
	if !ok {
		return false, false, nil
	}
	switch v {
	case "true":
		return true, true, nil
	case "false":
		return false, true, nil
	}
	return false, true, &Error{Key: key, Want: "true or false", Err: ErrInvalidValue}
}

func (p *Provider) Bool(key string) (bool, error) {
	b, ok, err := p.OptionalBool(key)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, &Error{Key: key, Err: ErrMissing}
	}
	return b, nil
}

func (p *Provider) OptionalInt(key string) (int, bool, error) {
	v, ok := p.lookup(key)
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, true, &Error{Key: key, Want: "integer", Err: errors.Join(ErrInvalidValue, err)}
	}
	return n, true, nil
}

func (p *Provider) Int(key string) (int, error) {
	n, ok, err := p.OptionalInt(key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, &Error{Key: key, Err: ErrMissing}
	}
	return n, nil
}

// OptionalList splits the value on sep. Elements are not trimmed. A blank
// value yields an empty, non-nil list; a missing key yields nil.
func (p *Provider) OptionalList(key string, sep rune) []string {
	v, ok := p.lookup(key)
	if !ok {
		return nil
	}
	if strings.TrimSpace(v) == "" {
		return []string{}
	}
	return strings.Split(v, string(sep))
}

func (p *Provider) List(key string, sep rune) ([]string, error) {
	l := p.OptionalList(key, sep)
	if l == nil {
		return nil, &Error{Key: key, Err: ErrMissing}
	}
	return l, nil
}
