package listquery

import (
	"bytes"
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
)

// Parameter names of the backend list contract.
const (
	ParamSearch   = "search"
	ParamFilters  = "filters"
	ParamSort     = "sort"
	ParamPage     = "page"
	ParamPageSize = "pageSize"
)

// Params is the flat, backend-ready form of a Query. Values are strings
// (search, JSON-encoded sort and filters) or ints (page, pageSize).
type Params map[string]any

// SortParam is the JSON shape carried by the sort parameter.
type SortParam struct {
	Field string    `json:"field"`
	Order Direction `json:"order"`
}

// Transform maps q to backend parameters:
//
//   - sort is emitted as JSON {"field","order"} only when Sort.Key is set.
//   - filters with nil or "" values are dropped, as is any single value
//     that cannot be encoded; the rest are emitted as one JSON object, or
//     not at all when nothing remains.
//   - an empty search is never emitted.
//   - page and pageSize pass through.
func Transform(q Query) Params {
	p := Params{
		ParamPage:     q.Page,
		ParamPageSize: q.PageSize,
	}
	if q.Search != "" {
		p[ParamSearch] = q.Search
	}
	if q.Sort.Key != "" {
		// Encoding a struct of two strings cannot fail.
		b, _ := encodeJSON(SortParam{Field: q.Sort.Key, Order: q.Sort.Direction})
		p[ParamSort] = string(b)
	}
	if kept := encodable(q.Filters.Pruned()); len(kept) > 0 {
		// Every remaining value encodes, so the object does too.
		b, _ := kept.MarshalJSON()
		p[ParamFilters] = string(b)
	}
	return p
}

// encodable drops entries whose value has no JSON form, such as NaN or a
// func. The others are kept in order.
func encodable(f Filters) Filters {
	out := make(Filters, 0, len(f))
	for _, e := range f {
		if _, err := encodeJSON(e.Value); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Values renders p as URL query values.
func (p Params) Values() url.Values {
	v := make(url.Values, len(p))
	for k, val := range p {
		v.Set(k, formatParam(val))
	}
	return v
}

// Encode renders p as a URL query string sorted by key.
func (p Params) Encode() string {
	return p.Values().Encode()
}

// Keys returns the parameter names in sorted order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatParam(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		b, _ := encodeJSON(t)
		return string(b)
	}
}

// encodeJSON marshals v without HTML escaping and without the trailing
// newline json.Encoder adds.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
