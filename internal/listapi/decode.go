// Package listapi is the backend half of the list contract: it decodes the
// parameters produced by listquery.Transform and writes the response
// envelope the list controller expects.
package listapi

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/HerbHall/tradeboard/internal/services"
	"github.com/HerbHall/tradeboard/pkg/listquery"
)

// Limits bounds what a client may request.
type Limits struct {
	DefaultPageSize int
	MaxPageSize     int
	SortKeys        []string // Accepted sort fields; empty accepts any.
	FilterKeys      []string // Accepted filter keys; empty accepts any.
}

// DefaultLimits matches the controller's defaults.
var DefaultLimits = Limits{DefaultPageSize: listquery.DefaultPageSize, MaxPageSize: 100}

// DecodeError describes a malformed list request.
type DecodeError struct {
	Param  string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Reason)
}

// Decode parses list parameters from v. Absent parameters take the
// defaults; an absent sort leaves Sort empty so the repository default
// applies.
func Decode(v url.Values, lim Limits) (listquery.Query, error) {
	if lim.DefaultPageSize <= 0 {
		lim.DefaultPageSize = DefaultLimits.DefaultPageSize
	}
	if lim.MaxPageSize <= 0 {
		lim.MaxPageSize = DefaultLimits.MaxPageSize
	}

	q := listquery.Query{
		Search:   strings.TrimSpace(v.Get(listquery.ParamSearch)),
		Filters:  listquery.Filters{},
		Page:     1,
		PageSize: lim.DefaultPageSize,
	}

	var err error
	if q.Page, err = positiveInt(v, listquery.ParamPage, 1); err != nil {
		return q, err
	}
	if q.PageSize, err = positiveInt(v, listquery.ParamPageSize, lim.DefaultPageSize); err != nil {
		return q, err
	}
	if q.PageSize > lim.MaxPageSize {
		return q, &DecodeError{Param: listquery.ParamPageSize, Reason: fmt.Sprintf("must be at most %d", lim.MaxPageSize)}
	}
	if q.Page-1 > math.MaxInt/q.PageSize {
		return q, &DecodeError{Param: listquery.ParamPage, Reason: "is out of range"}
	}

	if raw := v.Get(listquery.ParamSort); raw != "" {
		var sp listquery.SortParam
		if err := json.Unmarshal([]byte(raw), &sp); err != nil {
			return q, &DecodeError{Param: listquery.ParamSort, Reason: "must be a JSON object {field, order}"}
		}
		if sp.Field == "" {
			return q, &DecodeError{Param: listquery.ParamSort, Reason: "field is required"}
		}
		if len(lim.SortKeys) > 0 && !slices.Contains(lim.SortKeys, sp.Field) {
			return q, &DecodeError{Param: listquery.ParamSort, Reason: fmt.Sprintf("unsupported field %q", sp.Field)}
		}
		if sp.Order == "" {
			sp.Order = listquery.Desc
		}
		if !sp.Order.Valid() {
			return q, &DecodeError{Param: listquery.ParamSort, Reason: "order must be asc or desc"}
		}
		q.Sort = listquery.Sort{Key: sp.Field, Direction: sp.Order}
	}

	if raw := v.Get(listquery.ParamFilters); raw != "" {
		var f listquery.Filters
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			return q, &DecodeError{Param: listquery.ParamFilters, Reason: err.Error()}
		}
		for _, key := range f.Keys() {
			if len(lim.FilterKeys) > 0 && !slices.Contains(lim.FilterKeys, key) {
				return q, &DecodeError{Param: listquery.ParamFilters, Reason: fmt.Sprintf("unsupported filter %q", key)}
			}
		}
		q.Filters = f.Pruned()
	}

	return q, nil
}

func positiveInt(v url.Values, name string, def int) (int, error) {
	raw := v.Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, &DecodeError{Param: name, Reason: "must be a positive integer"}
	}
	return n, nil
}

// ListOptions converts the paging and sort of q for a repository.
func ListOptions(q listquery.Query) services.ListOptions {
	return services.ListOptions{
		Limit:     q.PageSize,
		Offset:    q.Offset(),
		SortBy:    q.Sort.Key,
		SortOrder: string(q.Sort.Direction),
	}
}

// String returns the filter value for key as a string. Numbers and bools
// are formatted; absent keys return "".
func String(f listquery.Filters, key string) string {
	v, ok := f.Get(key)
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// Int64 returns the filter value for key as an integer. Numeric strings are
// accepted; absent keys return nil.
func Int64(f listquery.Filters, key string) (*int64, error) {
	v, ok := f.Get(key)
	if !ok || v == nil {
		return nil, nil
	}
	var n int64
	switch t := v.(type) {
	case int64:
		n = t
	case float64:
		if t != float64(int64(t)) {
			return nil, &DecodeError{Param: listquery.ParamFilters, Reason: fmt.Sprintf("%s must be a whole number", key)}
		}
		n = int64(t)
	case string:
		parsed, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return nil, &DecodeError{Param: listquery.ParamFilters, Reason: fmt.Sprintf("%s must be a whole number", key)}
		}
		n = parsed
	default:
		return nil, &DecodeError{Param: listquery.ParamFilters, Reason: fmt.Sprintf("%s must be a number", key)}
	}
	return &n, nil
}
