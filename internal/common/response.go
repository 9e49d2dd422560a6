package common

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
)

// ErrorResponse is the uniform failure envelope: {"success":false,"error":...}.
// RetryAfter is set only on 429 responses.
type ErrorResponse struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	RetryAfter *int   `json:"retry_after,omitempty"`
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorResponse{Success: false, Error: message})
}

// RespondWithDomainError maps a service-layer error onto the wire: status from
// the taxonomy, sanitized message, retry_after when the error is a rate limit.
// Internal causes are logged here, never returned to the caller.
func RespondWithDomainError(w http.ResponseWriter, err error) {
	code := HTTPStatusFromError(err)
	if code == http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
	}

	resp := ErrorResponse{Success: false, Error: PublicMessage(err)}
	var rle *RateLimitError
	if errors.As(err, &rle) {
		retry := rle.RetryAfter
		resp.RetryAfter = &retry
		w.Header().Set("Retry-After", strconv.Itoa(retry))
	}
	RespondWithJSON(w, code, resp)
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success": false, "error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
