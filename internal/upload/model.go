package upload

import (
	"encoding/json"
	"io"
	"maps"
	"path/filepath"

	"github.com/Rorical/filedrop/internal/filter"
)

// Policy is the upload configuration for one batch.
type Policy struct {
	Enabled     bool
	Directory   string
	RetryBudget int
	// Allow and Deny are nil when not configured.
	Allow []string
	Deny  []string
}

func (p Policy) filter() filter.Policy {
	return filter.Policy{Allow: p.Allow, Deny: p.Deny}
}

// PostedFile is one file attached to an upload request.
type PostedFile interface {
	Name() string
	ContentType() string
	Size() int64
	Open() (io.ReadCloser, error)
	// SaveAs consumes the content and writes it to path. The file at path is
	// either fully written or untouched.
	SaveAs(path string) error
}

// Properties carries caller-defined values attached to an outcome after the
// batch has run.
type Properties map[string]string

const (
	PropTemporaryName = "temporary_name"
	PropFinalPath     = "final_path"
	PropFinalizeError = "finalize_error"
)

func (p Properties) Get(key string) (string, bool) {
	v, ok := p[key]
	return v, ok
}

// FileOutcome records what happened to one posted file.
type FileOutcome struct {
	File         PostedFile
	MimeAccepted bool
	RejectReason string
	// StoredPath is empty when the file was not persisted.
	StoredPath string
	Err        error
	Props      Properties
}

func (o FileOutcome) Stored() bool { return o.StoredPath != "" }

// Failed reports whether the file should have been stored but was not: an
// error was recorded, or it was accepted and no free name was found.
func (o FileOutcome) Failed() bool {
	return o.Err != nil || (o.MimeAccepted && !o.Stored())
}

// WithProp returns a copy of o with key set. o itself is left unchanged.
func (o FileOutcome) WithProp(key, value string) FileOutcome {
	props := make(Properties, len(o.Props)+1)
	maps.Copy(props, o.Props)
	props[key] = value
	o.Props = props
	return o
}

func (o FileOutcome) MarshalJSON() ([]byte, error) {
	type wire struct {
		Name         string     `json:"name"`
		ContentType  string     `json:"content_type"`
		Size         int64      `json:"size"`
		MimeAccepted bool       `json:"mime_accepted"`
		RejectReason string     `json:"reject_reason,omitempty"`
		Stored       bool       `json:"stored"`
		StoredName   string     `json:"stored_name,omitempty"`
		Error        string     `json:"error,omitempty"`
		Props        Properties `json:"props,omitempty"`
	}
	w := wire{
		MimeAccepted: o.MimeAccepted,
		RejectReason: o.RejectReason,
		Stored:       o.Stored(),
		Props:        o.Props,
	}
	if o.File != nil {
		w.Name = o.File.Name()
		w.ContentType = o.File.ContentType()
		w.Size = o.File.Size()
	}
	if o.Stored() {
		w.StoredName = filepath.Base(o.StoredPath)
	}
	if o.Err != nil {
		w.Error = o.Err.Error()
	}
	return json.Marshal(w)
}

// BatchOutcome is the result of one Run. Files has one entry per normalized
// posted file; its order carries no meaning.
type BatchOutcome struct {
	Enabled   bool          `json:"enabled"`
	Directory string        `json:"directory"`
	Files     []FileOutcome `json:"files"`
}

type Summary struct {
	Total    int `json:"total"`
	Accepted int `json:"accepted"`
	Stored   int `json:"stored"`
	Failed   int `json:"failed"`
}

func (b BatchOutcome) Select(pred func(FileOutcome) bool) []FileOutcome {
	var out []FileOutcome
	for _, f := range b.Files {
		if pred(f) {
			out = append(out, f)
		}
	}
	return out
}

func (b BatchOutcome) Stored() []FileOutcome {
	return b.Select(FileOutcome.Stored)
}

func (b BatchOutcome) Rejected() []FileOutcome {
	return b.Select(func(f FileOutcome) bool { return !f.MimeAccepted })
}

func (b BatchOutcome) Summary() Summary {
	s := Summary{Total: len(b.Files)}
	for _, f := range b.Files {
		if f.MimeAccepted {
			s.Accepted++
		}
		if f.Stored() {
			s.Stored++
		}
		if f.Failed() {
			s.Failed++
		}
	}
	return s
}
