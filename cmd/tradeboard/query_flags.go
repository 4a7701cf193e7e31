package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/HerbHall/tradeboard/pkg/listquery"
)

// queryFlags are the list query options shared by browse and export.
type queryFlags struct {
	search   string
	filters  []string
	sort     string
	page     int
	pageSize int
}

func (f *queryFlags) register(cmd *cobra.Command, defaultPageSize int) {
	cmd.Flags().StringVar(&f.search, "search", "", "search term")
	cmd.Flags().StringArrayVar(&f.filters, "filter", nil, "filter as key=value (repeatable)")
	cmd.Flags().StringVar(&f.sort, "sort", "", "sort as key[:asc|desc] (default createdAt:desc)")
	cmd.Flags().IntVar(&f.page, "page", 1, "page number")
	cmd.Flags().IntVar(&f.pageSize, "page-size", defaultPageSize, "records per page")
}

func (f *queryFlags) partial() (listquery.Partial, error) {
	p := listquery.Partial{Search: f.search, Page: f.page, PageSize: f.pageSize}
	for _, kv := range f.filters {
		key, v, err := parseFilter(kv)
		if err != nil {
			return p, err
		}
		p.Filters = p.Filters.Set(key, v)
	}
	if f.sort != "" {
		s, err := parseSort(f.sort)
		if err != nil {
			return p, err
		}
		p.Sort = &s
	}
	return p, nil
}

// parseFilter splits "key=value". Whole numbers and true/false become
// typed values; "key=" yields an empty value, which clears the filter.
func parseFilter(kv string) (string, any, error) {
	key, raw, ok := strings.Cut(kv, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", nil, fmt.Errorf("filter %q: want key=value", kv)
	}
	raw = strings.TrimSpace(raw)
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return key, n, nil
	}
	if b, err := strconv.ParseBool(raw); err == nil && (raw == "true" || raw == "false") {
		return key, b, nil
	}
	return key, raw, nil
}

// parseSort reads "key", "key:asc" or "key:desc".
func parseSort(s string) (listquery.Sort, error) {
	key, dir, _ := strings.Cut(s, ":")
	out := listquery.Sort{Key: strings.TrimSpace(key), Direction: listquery.Desc}
	if out.Key == "" {
		return out, fmt.Errorf("sort %q: missing key", s)
	}
	if dir != "" {
		out.Direction = listquery.Direction(strings.ToLower(strings.TrimSpace(dir)))
	}
	if !out.Direction.Valid() {
		return out, fmt.Errorf("sort %q: direction must be asc or desc", s)
	}
	return out, nil
}
