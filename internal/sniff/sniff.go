package sniff

import (
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Reader detects the media type of the content in r, without parameters
// (e.g. "text/plain", not "text/plain; charset=utf-8").
func Reader(r io.Reader) (string, error) {
	m, err := mimetype.DetectReader(r)
	if err != nil {
		return "", fmt.Errorf("detect content type: %w", err)
	}
	base, _, _ := strings.Cut(m.String(), ";")
	return strings.TrimSpace(base), nil
}

// Opener returns a fresh reader over some content.
type Opener func() (io.ReadCloser, error)

// ContentType returns declared when it is set, otherwise the detected type.
func ContentType(declared string, open Opener) (string, error) {
	if declared != "" {
		return declared, nil
	}
	rc, err := open()
	if err != nil {
		return "", fmt.Errorf("open for sniffing: %w", err)
	}
	defer rc.Close()
	return Reader(rc)
}
