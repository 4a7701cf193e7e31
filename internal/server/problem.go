package server

import (
	"encoding/json"
	"net/http"
)

// Problem types served by the single-record routes and the rate limiter.
// List routes answer with the list envelope instead.
const (
	ProblemTypeNotFound    = "https://tradeboard.dev/problems/not-found"
	ProblemTypeInternal    = "https://tradeboard.dev/problems/internal-error"
	ProblemTypeRateLimited = "https://tradeboard.dev/problems/rate-limited"
)

// Problem is an RFC 7807 Problem Details body.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// WriteProblem writes p as application/problem+json.
func WriteProblem(w http.ResponseWriter, p Problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

func writeProblem(w http.ResponseWriter, typ string, status int, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     typ,
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   detail,
		Instance: instance,
	})
}

// NotFound writes a 404 problem.
func NotFound(w http.ResponseWriter, detail, instance string) {
	writeProblem(w, ProblemTypeNotFound, http.StatusNotFound, detail, instance)
}

// InternalError writes a 500 problem.
func InternalError(w http.ResponseWriter, detail, instance string) {
	writeProblem(w, ProblemTypeInternal, http.StatusInternalServerError, detail, instance)
}

// RateLimited writes a 429 problem.
func RateLimited(w http.ResponseWriter, detail, instance string) {
	writeProblem(w, ProblemTypeRateLimited, http.StatusTooManyRequests, detail, instance)
}
