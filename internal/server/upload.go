package server

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/Rorical/filedrop/internal/httpjson"
	"github.com/Rorical/filedrop/internal/logging"
	"github.com/Rorical/filedrop/internal/upload"
)

type uploadResponse struct {
	BatchID   string               `json:"batch_id"`
	Enabled   bool                 `json:"enabled"`
	Directory string               `json:"directory"`
	Summary   upload.Summary       `json:"summary"`
	Files     []upload.FileOutcome `json:"files"`
}

type policyResponse struct {
	Enabled     bool     `json:"enabled"`
	Directory   string   `json:"directory"`
	RetryBudget int      `json:"retry_budget"`
	Allow       []string `json:"allow"`
	Deny        []string `json:"deny"`
}

func (a *API) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpjson.Error(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	pol, ok := a.loadPolicy(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.maxRequestBytes())
	if err := r.ParseMultipartForm(a.multipartMemory()); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpjson.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		httpjson.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	files := collectFiles(ctx, r.MultipartForm, a.SniffUndeclared)

	batchID := uuid.NewString()
	logger = logger.With("batch_id", batchID)
	ctx = logging.WithLogger(ctx, logger)

	out := a.runner().Run(ctx, upload.Normalize(pol, files))
	if a.RenameStored {
		out = upload.Finalize(ctx, out, nil)
	}

	if a.Events != nil {
		if err := a.Events.PublishBatch(ctx, batchID, out); err != nil {
			logger.Warn("publish upload events failed", "err", err)
		}
	}

	httpjson.Write(w, http.StatusOK, uploadResponse{
		BatchID:   batchID,
		Enabled:   out.Enabled,
		Directory: out.Directory,
		Summary:   out.Summary(),
		Files:     out.Files,
	})
}

func (a *API) handlePolicy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpjson.Error(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	pol, ok := a.loadPolicy(w, r)
	if !ok {
		return
	}
	httpjson.Write(w, http.StatusOK, policyResponse{
		Enabled:     pol.Enabled,
		Directory:   pol.Directory,
		RetryBudget: pol.RetryBudget,
		Allow:       pol.Allow,
		Deny:        pol.Deny,
	})
}

// loadPolicy writes a 500 and returns false when the policy is unavailable.
func (a *API) loadPolicy(w http.ResponseWriter, r *http.Request) (upload.Policy, bool) {
	if a.Policy == nil {
		httpjson.Error(w, http.StatusInternalServerError, "upload policy not configured")
		return upload.Policy{}, false
	}
	pol, err := a.Policy()
	if err != nil {
		logging.FromContext(r.Context()).Error("load upload policy failed", "err", err)
		httpjson.Error(w, http.StatusInternalServerError, "upload configuration error")
		return upload.Policy{}, false
	}
	return pol, true
}
