package query

import (
	"errors"
	"testing"

	"logbook/models"
)

func intPtr(v int) *int { return &v }

func TestResolvePaginationDefaults(t *testing.T) {
	p, err := ResolvePagination(nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Limit != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, p.Limit)
	}
	if p.Offset != 0 {
		t.Errorf("expected default offset 0, got %d", p.Offset)
	}
}

func TestResolvePaginationBounds(t *testing.T) {
	p, err := ResolvePagination(intPtr(1), intPtr(0))
	if err != nil {
		t.Fatalf("limit 1 should be accepted: %v", err)
	}
	if p.Limit != 1 {
		t.Errorf("expected limit 1, got %d", p.Limit)
	}

	p, err = ResolvePagination(intPtr(100), intPtr(500))
	if err != nil {
		t.Fatalf("limit 100 should be accepted: %v", err)
	}
	if p.Limit != 100 || p.Offset != 500 {
		t.Errorf("expected limit 100 offset 500, got %+v", p)
	}
}

func TestResolvePaginationRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		limit   *int
		offset  *int
		pointer string
	}{
		{"limit too large", intPtr(101), nil, "query.page.limit"},
		{"limit zero", intPtr(0), nil, "query.page.limit"},
		{"limit negative", intPtr(-5), nil, "query.page.limit"},
		{"offset negative", nil, intPtr(-1), "query.page.offset"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ResolvePagination(tc.limit, tc.offset)
			var validationErr *models.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if validationErr.Pointer != tc.pointer {
				t.Errorf("expected pointer %s, got %s", tc.pointer, validationErr.Pointer)
			}
		})
	}
}

func TestPaginationMeta(t *testing.T) {
	cases := []struct {
		limit     int
		total     int64
		pageCount int64
	}{
		{100, 0, 0},
		{100, 1, 1},
		{100, 100, 1},
		{100, 101, 2},
		{10, 95, 10},
		{1, 3, 3},
	}
	for _, tc := range cases {
		meta := Pagination{Limit: tc.limit}.Meta(tc.total)
		if meta.PageCount != tc.pageCount {
			t.Errorf("limit %d total %d: expected pageCount %d, got %d", tc.limit, tc.total, tc.pageCount, meta.PageCount)
		}
		if meta.TotalCount != tc.total {
			t.Errorf("limit %d total %d: expected totalCount %d, got %d", tc.limit, tc.total, tc.total, meta.TotalCount)
		}
	}
}
