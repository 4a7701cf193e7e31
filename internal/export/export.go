// Package export writes every page of a list view to CSV.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/HerbHall/tradeboard/pkg/listquery"
)

// Table describes how records of type T become CSV rows.
type Table[T any] struct {
	Header []string
	Row    func(T) []string
}

// Run fetches q page by page, starting at page 1, and writes a header plus
// one row per record to dst. It stops after the page that reaches
// totalCount or at the first empty page, and returns the number of rows
// written.
func Run[T any](ctx context.Context, fetch listquery.FetchFunc[T], q listquery.Query, dst io.Writer, t Table[T]) (int, error) {
	w := csv.NewWriter(dst)
	if err := w.Write(t.Header); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	q = q.Clone()
	q.Page = 1
	if q.PageSize < 1 {
		q.PageSize = listquery.DefaultPageSize
	}

	rows := 0
	for {
		if err := ctx.Err(); err != nil {
			return rows, err
		}
		resp, err := fetch(ctx, listquery.Transform(q))
		if err != nil {
			return rows, fmt.Errorf("fetch page %d: %w", q.Page, &listquery.TransportError{Err: err})
		}
		page, err := listquery.Settle(resp)
		if err != nil {
			return rows, fmt.Errorf("fetch page %d: %w", q.Page, err)
		}

		for _, rec := range page.Items {
			if err := w.Write(t.Row(rec)); err != nil {
				return rows, fmt.Errorf("write row: %w", err)
			}
			rows++
		}

		if len(page.Items) == 0 || q.Page*q.PageSize >= page.TotalCount {
			break
		}
		q.Page++
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return rows, fmt.Errorf("flush csv: %w", err)
	}
	return rows, nil
}
