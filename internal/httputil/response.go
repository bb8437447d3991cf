package httputil

import (
	"encoding/json"
	"log"
	"net/http"
)

// Envelope is the uniform response body for every endpoint. The code field
// mirrors the HTTP status so clients that only look at the body can still
// branch on the outcome.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// Respond sends an enveloped JSON response with the given status code.
// A nil data is rendered as an empty object rather than null.
func Respond(w http.ResponseWriter, statusCode int, message string, data any) {
	if data == nil {
		data = struct{}{}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(Envelope{Code: statusCode, Message: message, Data: data}); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// RespondError sends an enveloped error response. The data field is always
// an empty object on errors.
func RespondError(w http.ResponseWriter, statusCode int, message string) {
	Respond(w, statusCode, message, nil)
}
