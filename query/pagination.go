// Package query turns validated list-request parameters (pagination,
// sorting, filtering) into plain descriptors the database layer translates
// into SQL. Everything here is a pure transformation; validation happens
// eagerly and nothing touches storage.
package query

import (
	"logbook/models"
)

// Pagination bounds.
const (
	DefaultLimit = 100
	MaxLimit     = 100
)

// Pagination is a bounded-query descriptor.
type Pagination struct {
	Limit  int
	Offset int
}

// ResolvePagination validates limit/offset and applies defaults. A nil
// pointer means the caller did not supply the parameter.
func ResolvePagination(limit, offset *int) (Pagination, error) {
	p := Pagination{Limit: DefaultLimit, Offset: 0}
	if limit != nil {
		if *limit > MaxLimit {
			return Pagination{}, &models.ValidationError{Pointer: "query.page.limit", Detail: "must be less than or equal to 100"}
		}
		if *limit < 1 {
			return Pagination{}, &models.ValidationError{Pointer: "query.page.limit", Detail: "must be greater than or equal to 1"}
		}
		p.Limit = *limit
	}
	if offset != nil {
		if *offset < 0 {
			return Pagination{}, &models.ValidationError{Pointer: "query.page.offset", Detail: "must be greater than or equal to 0"}
		}
		p.Offset = *offset
	}
	return p, nil
}

// Meta computes the pagination metadata for a total row count.
func (p Pagination) Meta(totalCount int64) models.PageMeta {
	limit := int64(p.Limit)
	pageCount := (totalCount + limit - 1) / limit
	return models.PageMeta{PageCount: pageCount, TotalCount: totalCount}
}
