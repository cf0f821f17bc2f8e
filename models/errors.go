package models

import (
	"fmt"
)

// ValidationError reports a caller-supplied filter/sort/pagination value
// that violates an allow-list, range or type constraint. It surfaces as
// HTTP 400 and is never retried.
type ValidationError struct {
	Pointer string // Dotted path of the offending field, e.g. "query.page.limit".
	Detail  string // Human-readable constraint, e.g. "must be less than or equal to 100".
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%q %s", e.Pointer, e.Detail)
}

// DataIntegrityError reports a violated storage invariant (e.g. a log
// reply chain that revisits an id). Not recoverable at the request
// boundary; surfaces as HTTP 500.
type DataIntegrityError struct {
	Detail string
}

func (e *DataIntegrityError) Error() string {
	return e.Detail
}
