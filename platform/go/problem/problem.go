// Package problem renders RFC 7807 problem details responses.
package problem

import (
	"encoding/json"
	"net/http"
)

const ContentType = "application/problem+json"

const (
	TypeValidation     = "https://pwa-studio.dev/problems/validation-error"
	TypeBadRequest     = "https://pwa-studio.dev/problems/bad-request"
	TypeBodyTooLarge   = "https://pwa-studio.dev/problems/body-too-large"
	TypeInternal       = "https://pwa-studio.dev/problems/internal-error"
	TypeRemoteStore    = "https://pwa-studio.dev/problems/remote-store"
	TypeNotFound       = "https://pwa-studio.dev/problems/not-found"
	TypeMethodNotAllow = "https://pwa-studio.dev/problems/method-not-allowed"
)

// Details is the problem document body.
type Details struct {
	Type   string              `json:"type,omitempty"`
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Detail string              `json:"detail,omitempty"`
	Errors map[string][]string `json:"errors,omitempty"`
}

// New builds a problem document.
func New(status int, problemType, title, detail string, errs map[string][]string) Details {
	return Details{Type: problemType, Title: title, Status: status, Detail: detail, Errors: errs}
}

// Write sends d with its status code.
func Write(w http.ResponseWriter, d Details) {
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(d.Status)
	_ = json.NewEncoder(w).Encode(d)
}
