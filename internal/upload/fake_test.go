package upload

import (
	"bytes"
	"io"
)

type fakeFile struct {
	name    string
	ctype   string
	data    []byte
	saveErr error
	panicOn bool
	saved   []string
}

func (f *fakeFile) Name() string        { return f.name }
func (f *fakeFile) ContentType() string { return f.ctype }
func (f *fakeFile) Size() int64         { return int64(len(f.data)) }

func (f *fakeFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

func (f *fakeFile) SaveAs(path string) error {
	if f.panicOn {
		panic("disk on fire")
	}
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, path)
	return WriteFile(path, bytes.NewReader(f.data))
}

func newFile(name, ctype, body string) *fakeFile {
	return &fakeFile{name: name, ctype: ctype, data: []byte(body)}
}
