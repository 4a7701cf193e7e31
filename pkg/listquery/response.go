package listquery

import "context"

// Page is the data section of a list response. Backends answer with either
// docs or items; docs wins when both are present.
type Page[T any] struct {
	Docs       []T `json:"docs"`
	Items      []T `json:"items,omitempty"`
	TotalCount int `json:"totalCount"`
}

// Records returns docs, or items when docs is absent.
func (p *Page[T]) Records() []T {
	if p.Docs != nil {
		return p.Docs
	}
	return p.Items
}

// Response is the envelope a list endpoint answers with.
type Response[T any] struct {
	Success bool     `json:"success"`
	Data    *Page[T] `json:"data,omitempty"`
	Message string   `json:"message,omitempty"`
}

// FetchFunc loads one page for the given parameters. A returned error is
// treated as a transport failure; a response with Success=false as an
// application failure.
type FetchFunc[T any] func(ctx context.Context, params Params) (*Response[T], error)

// Settle validates resp against the list contract and returns the page it
// carries. Any deviation is reported as an *ApplicationError.
func Settle[T any](resp *Response[T]) (Result[T], error) {
	if resp == nil {
		return Result[T]{}, errShape()
	}
	if !resp.Success {
		return Result[T]{}, &ApplicationError{Message: resp.Message}
	}
	if resp.Data == nil {
		return Result[T]{}, errShape()
	}
	records := resp.Data.Records()
	if records == nil || resp.Data.TotalCount < 0 {
		return Result[T]{}, errShape()
	}
	items := make([]T, len(records))
	copy(items, records)
	return Result[T]{Items: items, TotalCount: resp.Data.TotalCount}, nil
}
