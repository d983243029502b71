package server

import (
	"context"
	"net/http"

	"github.com/Rorical/filedrop/internal/upload"
)

const (
	defaultMaxRequestBytes = 64 << 20
	defaultMultipartMemory = 32 << 20
)

// PolicyFunc reads the upload policy. It is called once per request so
// configuration changes take effect without a restart.
type PolicyFunc func() (upload.Policy, error)

// EventSink receives every finished batch.
type EventSink interface {
	PublishBatch(ctx context.Context, batchID string, b upload.BatchOutcome) error
}

type API struct {
	Policy PolicyFunc
	Runner *upload.Runner
	Events EventSink

	// SniffUndeclared detects a content type for parts sent without one.
	SniffUndeclared bool
	// RenameStored finalizes stored files under their permanent names.
	RenameStored bool

	MaxRequestBytes int64
	MultipartMemory int64
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/upload", a.handleUpload)
	mux.HandleFunc("/upload/policy", a.handlePolicy)

	h := http.Handler(mux)
	h = OTel(h)
	h = RequestLogging(h)
	return h
}

func (a *API) maxRequestBytes() int64 {
	if a.MaxRequestBytes > 0 {
		return a.MaxRequestBytes
	}
	return defaultMaxRequestBytes
}

func (a *API) multipartMemory() int64 {
	if a.MultipartMemory > 0 {
		return a.MultipartMemory
	}
	return defaultMultipartMemory
}

func (a *API) runner() *upload.Runner {
	if a.Runner != nil {
		return a.Runner
	}
	return &upload.Runner{}
}
