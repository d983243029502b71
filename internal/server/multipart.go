package server

import (
	"context"
	"io"
	"mime/multipart"
	"slices"

	"github.com/Rorical/filedrop/internal/logging"
	"github.com/Rorical/filedrop/internal/sniff"
	"github.com/Rorical/filedrop/internal/upload"
)

// Field names checked first, in this order. Any other file field follows,
// sorted by name.
var fileFields = []string{"files", "file[]", "file"}

type multipartFile struct {
	header      *multipart.FileHeader
	contentType string
}

func (f *multipartFile) Name() string        { return f.header.Filename }
func (f *multipartFile) ContentType() string { return f.contentType }
func (f *multipartFile) Size() int64         { return f.header.Size }

func (f *multipartFile) Open() (io.ReadCloser, error) {
	return f.header.Open()
}

func (f *multipartFile) SaveAs(path string) error {
	src, err := f.header.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	return upload.WriteFile(path, src)
}

func newMultipartFile(ctx context.Context, fh *multipart.FileHeader, sniffUndeclared bool) *multipartFile {
	f := &multipartFile{header: fh, contentType: fh.Header.Get("Content-Type")}
	if f.contentType != "" || !sniffUndeclared {
		return f
	}
	ct, err := sniff.ContentType("", f.Open)
	if err != nil {
		logging.FromContext(ctx).Debug("content type detection failed", "name", fh.Filename, "err", err)
		return f
	}
	f.contentType = ct
	return f
}

func collectFiles(ctx context.Context, form *multipart.Form, sniffUndeclared bool) []upload.PostedFile {
	if form == nil || len(form.File) == 0 {
		return nil
	}

	names := make([]string, 0, len(form.File))
	for name := range form.File {
		if !slices.Contains(fileFields, name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	names = append(slices.Clone(fileFields), names...)

	var out []upload.PostedFile
	for _, name := range names {
		for _, fh := range form.File[name] {
			if fh == nil {
				out = append(out, nil)
				continue
			}
			out = append(out, newMultipartFile(ctx, fh, sniffUndeclared))
		}
	}
	return out
}
