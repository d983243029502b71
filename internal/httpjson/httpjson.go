package httpjson

import (
	"encoding/json"
	"net/http"
)

const RequestIDHeader = "X-Request-Id"

func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes {"error": msg}. When the response already carries a request
// id header, the id is echoed in the body so clients can quote it.
func Error(w http.ResponseWriter, status int, msg string) {
	body := map[string]any{"error": msg}
	if id := w.Header().Get(RequestIDHeader); id != "" {
		body["request_id"] = id
	}
	Write(w, status, body)
}
