package naming

import (
	"context"
	"encoding/base32"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidArgument = errors.New("invalid argument")

var tokenEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Reserver claims a path for the caller across processes sharing a directory.
// Reserve returns false when someone else already holds the path.
type Reserver interface {
	Reserve(ctx context.Context, path string) (bool, error)
}

// Allocator picks destination paths that do not exist yet.
//
// Uniqueness is best effort: nothing stops another writer from creating the
// file between Allocate returning and the caller writing it.
type Allocator struct {
	// Token returns the next candidate file name. Defaults to RandomToken.
	Token func() string
	// Reserver, if set, must also accept a candidate before it is returned.
	Reserver Reserver
}

// Allocate returns a path inside dir for which no file exists. It makes
// retryBudget+1 attempts and returns "" with a nil error when every attempt
// collided.
func (a *Allocator) Allocate(ctx context.Context, dir string, retryBudget int) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("directory required: %w", ErrInvalidArgument)
	}
	if retryBudget < 0 {
		return "", fmt.Errorf("retry budget %d must be >= 0: %w", retryBudget, ErrInvalidArgument)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}

	token := RandomToken
	if a != nil && a.Token != nil {
		token = a.Token
	}

	for attempt := 0; attempt <= retryBudget; attempt++ {
		candidate := filepath.Join(abs, token())

		free, err := notExists(candidate)
		if err != nil {
			return "", err
		}
		if !free {
			continue
		}

		if a != nil && a.Reserver != nil {
			ok, err := a.Reserver.Reserve(ctx, candidate)
			if err != nil {
				return "", fmt.Errorf("reserve %s: %w", candidate, err)
			}
			if !ok {
				continue
			}
		}
		return candidate, nil
	}
	return "", nil
}

func notExists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return false, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	return false, fmt.Errorf("stat %s: %w", path, err)
}

// RandomToken returns a short name in 8.3 form, e.g. "k3j9q2ab.x7c".
func RandomToken() string {
	id := uuid.New()
	s := strings.ToLower(tokenEncoding.EncodeToString(id[:]))
	return s[:8] + "." + s[8:11]
}
