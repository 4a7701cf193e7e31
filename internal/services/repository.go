// Package services provides the marketplace repositories behind the list
// API. Each repository owns its tables and answers filtered, sorted,
// paginated List calls.
package services

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// ListOptions controls pagination and sorting for list queries.
type ListOptions struct {
	Limit     int    // Max results per page (default 50, max 1000).
	Offset    int    // Number of results to skip.
	SortBy    string // API sort key (validated per-repository).
	SortOrder string // "asc" or "desc" (default "desc").
}

// ListResult wraps a paginated result set with a total count.
type ListResult[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// Sentinel errors returned by repositories.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalid       = errors.New("invalid")
)

// Clock returns the current time.
type Clock func() time.Time

// Option configures a repository.
type Option func(*repoOptions)

type repoOptions struct {
	now Clock
}

// WithClock overrides the time source used for created/updated stamps.
func WithClock(c Clock) Option {
	return func(o *repoOptions) {
		if c != nil {
			o.now = c
		}
	}
}

func buildOptions(opts []Option) repoOptions {
	o := repoOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// normalizeListOptions applies defaults and caps to list options.
func normalizeListOptions(opts ListOptions) ListOptions {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	if opts.Limit > 1000 {
		opts.Limit = 1000
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	if opts.SortOrder != "asc" {
		opts.SortOrder = "desc"
	}
	return opts
}

// orderClause resolves the ORDER BY for opts against the allowed sort keys.
// Unknown keys fall back to def. id breaks ties so pages never overlap.
func orderClause(opts ListOptions, allowed map[string]string, def string) string {
	col := def
	if c, ok := allowed[opts.SortBy]; ok {
		col = c
	}
	dir := "DESC"
	if opts.SortOrder == "asc" {
		dir = "ASC"
	}
	return col + " " + dir + ", id " + dir
}

func sortKeys(allowed map[string]string) []string {
	keys := make([]string, 0, len(allowed))
	for k := range allowed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsPattern returns a LIKE pattern matching s anywhere in a column.
// Use it with ESCAPE '\' so wildcards in s match literally.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
