// internal/common/utils/response.go
// API responses in the GravelMatch wire shape: plain JSON payloads,
// errors as {"detail": "..."}

package utils

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// ErrorBody is the error envelope used by every endpoint
type ErrorBody struct {
	Detail string `json:"detail"`
}

// AckBody acknowledges writes that return no entity
type AckBody struct {
	Success bool `json:"success"`
}

// RespondWithError sends an error response with the specified status code and message
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorBody{Detail: message})
}

// RespondWithJSON sends a JSON response with the specified status code and payload
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail":"Error marshaling JSON"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// RespondWithAck sends {"success": true}
func RespondWithAck(w http.ResponseWriter) {
	RespondWithJSON(w, http.StatusOK, AckBody{Success: true})
}

// ReadErrorDetail extracts the detail message from an error body.
// Bodies that are not the JSON envelope come back trimmed as-is.
func ReadErrorDetail(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var body ErrorBody
	if err := json.Unmarshal(raw, &body); err == nil && body.Detail != "" {
		return body.Detail
	}
	return strings.TrimSpace(string(raw))
}
