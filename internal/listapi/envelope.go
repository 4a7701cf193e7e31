package listapi

import (
	"encoding/json"
	"net/http"
)

// page mirrors listquery.Page but always writes docs, even when empty.
type page[T any] struct {
	Docs       []T `json:"docs"`
	TotalCount int `json:"totalCount"`
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// WriteOK writes a successful list response.
func WriteOK[T any](w http.ResponseWriter, docs []T, total int) {
	if docs == nil {
		docs = []T{}
	}
	writeEnvelope(w, http.StatusOK, envelope{
		Success: true,
		Data:    page[T]{Docs: docs, TotalCount: total},
	})
}

// WriteError writes a failed list response carrying a user-facing message.
func WriteError(w http.ResponseWriter, status int, message string) {
	writeEnvelope(w, status, envelope{Success: false, Message: message})
}

func writeEnvelope(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
