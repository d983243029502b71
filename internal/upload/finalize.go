package upload

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/Rorical/filedrop/internal/logging"
	"github.com/Rorical/filedrop/internal/naming"
)

// Finalize moves every stored file from its random temporary name to a
// permanent name derived from the client's file name. The temporary name and
// the final path are recorded in the outcome's Props. A failed rename leaves
// the file where it was and is recorded under PropFinalizeError.
func Finalize(ctx context.Context, b BatchOutcome, now func() time.Time) BatchOutcome {
	if now == nil {
		now = time.Now
	}
	logger := logging.FromContext(ctx)

	files := make([]FileOutcome, len(b.Files))
	for i, f := range b.Files {
		files[i] = f
		if !f.Stored() {
			continue
		}

		tmpName := filepath.Base(f.StoredPath)
		f = f.WithProp(PropTemporaryName, tmpName)

		final := filepath.Join(filepath.Dir(f.StoredPath), naming.FinalName(f.File.Name(), now()))
		if err := rename(f.StoredPath, final); err != nil {
			logger.Warn("upload finalize failed", "name", f.File.Name(), "path", f.StoredPath, "err", err)
			files[i] = f.WithProp(PropFinalizeError, err.Error())
			continue
		}

		f.StoredPath = final
		files[i] = f.WithProp(PropFinalPath, final)
	}

	b.Files = files
	return b
}

func rename(from, to string) error {
	if _, err := os.Lstat(to); err == nil {
		return fmt.Errorf("rename %s: %s already exists", from, to)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", to, err)
	}
	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("rename %s: %w", from, err)
	}
	return nil
}
