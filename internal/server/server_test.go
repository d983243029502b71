package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/Rorical/filedrop/internal/httpjson"
	"github.com/Rorical/filedrop/internal/upload"
)

type part struct {
	field, name, ctype, body string
}

func multipartBody(t *testing.T, parts ...part) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+p.field+`"; filename="`+p.name+`"`)
		if p.ctype != "" {
			h.Set("Content-Type", p.ctype)
		}
		w, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		_, _ = w.Write([]byte(p.body))
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

type fakeSink struct {
	batchID string
	got     upload.BatchOutcome
	err     error
}

func (f *fakeSink) PublishBatch(_ context.Context, batchID string, b upload.BatchOutcome) error {
	f.batchID = batchID
	f.got = b
	return f.err
}

func staticPolicy(p upload.Policy) PolicyFunc {
	return func() (upload.Policy, error) { return p, nil }
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v (%s)", err, w.Body.String())
	}
	return out
}

func TestHealthz(t *testing.T) {
	api := &API{}
	w := httptest.NewRecorder()
	api.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("status %d body %q", w.Code, w.Body.String())
	}
	if w.Header().Get(httpjson.RequestIDHeader) == "" {
		t.Fatalf("expected request id header")
	}
}

func TestUpload_MethodNotAllowed(t *testing.T) {
	api := &API{Policy: staticPolicy(upload.Policy{})}
	w := httptest.NewRecorder()
	api.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/upload", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status %d", w.Code)
	}
}

func TestUpload_PolicyError(t *testing.T) {
	api := &API{Policy: func() (upload.Policy, error) { return upload.Policy{}, errors.New("ALLOW_FILE_UPLOAD missing") }}
	body, ct := multipartBody(t, part{"file", "a.txt", "text/plain", "a"})
	r := httptest.NewRequest(http.MethodPost, "/upload", body)
	r.Header.Set("Content-Type", ct)
	r.Header.Set(httpjson.RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	api.Handler().ServeHTTP(w, r)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status %d", w.Code)
	}
	out := decode(t, w)
	if out["request_id"] != "req-42" {
		t.Fatalf("body: %v", out)
	}
}

func TestUpload_NotMultipart(t *testing.T) {
	api := &API{Policy: staticPolicy(upload.Policy{Enabled: true, Directory: t.TempDir()})}
	r := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewBufferString(`{"x":1}`))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	api.Handler().ServeHTTP(w, r)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d", w.Code)
	}
}

func TestUpload_BodyTooLarge(t *testing.T) {
	dir := t.TempDir()
	api := &API{
		Policy:          staticPolicy(upload.Policy{Enabled: true, Directory: dir}),
		MaxRequestBytes: 64,
	}
	body, ct := multipartBody(t, part{"file", "a.txt", "text/plain", string(bytes.Repeat([]byte("x"), 4096))})
	r := httptest.NewRequest(http.MethodPost, "/upload", body)
	r.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	api.Handler().ServeHTTP(w, r)

	if w.Code == http.StatusOK {
		t.Fatalf("expected rejection, got 200")
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Fatalf("files stored: %v", entries)
	}
}

func TestUpload_StoresAcceptedFiles(t *testing.T) {
	dir := t.TempDir()
	sink := &fakeSink{}
	api := &API{
		Policy: staticPolicy(upload.Policy{
			Enabled:     true,
			Directory:   dir,
			RetryBudget: 2,
			Deny:        []string{"application/x-msdownload"},
		}),
		Events: sink,
	}
	body, ct := multipartBody(t,
		part{"files", "a.txt", "text/plain", "alpha"},
		part{"files", "b.txt", "text/plain", "bravo"},
		part{"attachment", "evil.exe", "application/x-msdownload", "MZ"},
	)
	r := httptest.NewRequest(http.MethodPost, "/upload", body)
	r.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	api.Handler().ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	out := decode(t, w)
	if out["enabled"] != true || out["directory"] != dir {
		t.Fatalf("body: %v", out)
	}
	summary := out["summary"].(map[string]any)
	if summary["total"] != float64(3) || summary["stored"] != float64(2) || summary["accepted"] != float64(2) {
		t.Fatalf("summary: %v", summary)
	}
	if files := out["files"].([]any); len(files) != 3 {
		t.Fatalf("files: %v", files)
	}

	if sink.batchID == "" || sink.batchID != out["batch_id"] {
		t.Fatalf("sink batch id %q vs %v", sink.batchID, out["batch_id"])
	}
	if len(sink.got.Stored()) != 2 {
		t.Fatalf("sink saw %d stored", len(sink.got.Stored()))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 stored files, got %v", entries)
	}
}

func TestUpload_RenameStored(t *testing.T) {
	dir := t.TempDir()
	api := &API{
		Policy:       staticPolicy(upload.Policy{Enabled: true, Directory: dir}),
		RenameStored: true,
	}
	body, ct := multipartBody(t, part{"file", "photo.JPG", "image/jpeg", "jpg"})
	r := httptest.NewRequest(http.MethodPost, "/upload", body)
	r.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	api.Handler().ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 || filepath.Ext(entries[0].Name()) != ".jpg" {
		t.Fatalf("unexpected stored files: %v", entries)
	}
	out := decode(t, w)
	f := out["files"].([]any)[0].(map[string]any)
	if f["stored_name"] != entries[0].Name() {
		t.Fatalf("stored_name %v, on disk %s", f["stored_name"], entries[0].Name())
	}
}

func TestUpload_DisabledStoresNothing(t *testing.T) {
	dir := t.TempDir()
	api := &API{Policy: staticPolicy(upload.Policy{Enabled: false, Directory: dir})}
	body, ct := multipartBody(t, part{"file", "a.txt", "text/plain", "a"})
	r := httptest.NewRequest(http.MethodPost, "/upload", body)
	r.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	api.Handler().ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	out := decode(t, w)
	if out["enabled"] != false {
		t.Fatalf("body: %v", out)
	}
	f := out["files"].([]any)[0].(map[string]any)
	if f["stored"] != false || f["mime_accepted"] != false {
		t.Fatalf("file: %v", f)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Fatalf("files stored: %v", entries)
	}
}

func TestUpload_SniffsUndeclaredType(t *testing.T) {
	dir := t.TempDir()
	api := &API{
		Policy:          staticPolicy(upload.Policy{Enabled: true, Directory: dir, Allow: []string{"image/png"}}),
		SniffUndeclared: true,
	}
	png := "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"
	body, ct := multipartBody(t, part{"file", "blob", "", png})
	r := httptest.NewRequest(http.MethodPost, "/upload", body)
	r.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	api.Handler().ServeHTTP(w, r)

	out := decode(t, w)
	f := out["files"].([]any)[0].(map[string]any)
	if f["content_type"] != "image/png" || f["stored"] != true {
		t.Fatalf("file: %v", f)
	}
}

func TestPolicy_Get(t *testing.T) {
	api := &API{Policy: staticPolicy(upload.Policy{
		Enabled:     true,
		Directory:   "/srv/uploads",
		RetryBudget: 4,
		Allow:       []string{"image/png"},
	})}
	w := httptest.NewRecorder()
	api.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/upload/policy", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	out := decode(t, w)
	if out["retry_budget"] != float64(4) || out["deny"] != nil {
		t.Fatalf("body: %v", out)
	}
	if allow := out["allow"].([]any); len(allow) != 1 || allow[0] != "image/png" {
		t.Fatalf("allow: %v", allow)
	}
}

func TestPolicy_MethodNotAllowed(t *testing.T) {
	api := &API{Policy: staticPolicy(upload.Policy{})}
	w := httptest.NewRecorder()
	api.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload/policy", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status %d", w.Code)
	}
}
