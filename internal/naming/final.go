package naming

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxExtLen = 10

// FinalName builds the permanent name for a stored upload from the client's
// original file name. Only the extension of the original survives.
func FinalName(original string, now time.Time) string {
	return fmt.Sprintf("%s-%d%s", uuid.NewString(), now.UnixNano(), cleanExt(original))
}

func cleanExt(name string) string {
	// clients may send windows paths
	name = name[strings.LastIndexAny(name, `/\`)+1:]
	ext := strings.ToLower(filepath.Ext(name))
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" || len(ext) > maxExtLen {
		return ""
	}
	for _, r := range ext {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			continue
		}
		return ""
	}
	return "." + ext
}
