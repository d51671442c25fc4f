package api

import (
	"errors"
	"fmt"
)

// Pagination failures. Both are reported as *PaginationProtocolError.
var (
	ErrPaginationLoop = errors.New("cursor repeated")
	ErrTooManyPages   = errors.New("page limit exceeded")
)

// PaginationProtocolError means a listing endpoint returned a cursor sequence
// that would never terminate.
type PaginationProtocolError struct {
	Endpoint string
	Cursor   string
	Page     int
	Err      error
}

func (e *PaginationProtocolError) Error() string {
	return fmt.Sprintf("paginate %s: %v at page %d (cursor %q)", e.Endpoint, e.Err, e.Page, e.Cursor)
}

func (e *PaginationProtocolError) Unwrap() error {
	return e.Err
}

// OrderRejected is returned when the exchange does not acknowledge an order
// with 201 Created.
type OrderRejected struct {
	StatusCode int
	Body       []byte
	Ticker     string
}

func (e *OrderRejected) Error() string {
	return fmt.Sprintf("order on %s rejected with status %d: %s", e.Ticker, e.StatusCode, truncate(e.Body, 200))
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
