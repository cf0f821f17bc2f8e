package handlers

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestParsePaginationDeepObject(t *testing.T) {
	r := httptest.NewRequest("GET", "/logs?page[limit]=5&page[offset]=10", nil)
	page, err := parsePagination(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Limit != 5 || page.Offset != 10 {
		t.Errorf("expected limit 5 offset 10, got %+v", page)
	}
}

func TestParsePaginationRejectsNonNumeric(t *testing.T) {
	r := httptest.NewRequest("GET", "/logs?page[limit]=many", nil)
	if _, err := parsePagination(r); err == nil {
		t.Error("non-numeric limit must be rejected")
	}
}

func TestParseSortKeysPreservesQueryOrder(t *testing.T) {
	r := httptest.NewRequest("GET", "/logs?sort[createdAt]=desc&page[limit]=5&sort[id]=asc", nil)
	keys, err := parseSortKeys(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 sort keys, got %d", len(keys))
	}
	if keys[0].Field != "createdAt" || keys[0].Direction != "desc" {
		t.Errorf("unexpected primary key: %+v", keys[0])
	}
	if keys[1].Field != "id" || keys[1].Direction != "asc" {
		t.Errorf("unexpected secondary key: %+v", keys[1])
	}
}

func TestParseSortKeysEncodedBrackets(t *testing.T) {
	r := httptest.NewRequest("GET", "/logs?sort%5Btitle%5D=ASC", nil)
	keys, err := parseSortKeys(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keys) != 1 || keys[0].Field != "title" || keys[0].Direction != "asc" {
		t.Errorf("expected lowercased title/asc key, got %+v", keys)
	}
}

func TestParseLogFilterFields(t *testing.T) {
	r := httptest.NewRequest("GET",
		"/logs?filter[author]=Jan&filter[title]=EOR&filter[origin]=human&filter[tag][values]=1,2&filter[tag][operation]=AND&filter[parentLog]=4", nil)
	filter, err := parseLogFilter(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filter.Author != "Jan" || filter.Title != "EOR" || filter.Origin != "human" {
		t.Errorf("unexpected text fields: %+v", filter)
	}
	if len(filter.Tag.Values) != 2 || filter.Tag.Values[0] != 1 || filter.Tag.Values[1] != 2 {
		t.Errorf("unexpected tag values: %+v", filter.Tag.Values)
	}
	if filter.Tag.Operation != "and" {
		t.Errorf("operation should be lowercased, got %q", filter.Tag.Operation)
	}
	if filter.ParentLogID == nil || *filter.ParentLogID != 4 {
		t.Errorf("unexpected parentLog: %v", filter.ParentLogID)
	}
}

func TestParseLogFilterCreatedBounds(t *testing.T) {
	r := httptest.NewRequest("GET", "/logs?filter[created][from]=2026-08-01&filter[created][to]=2026-08-15", nil)
	filter, err := parseLogFilter(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantFrom := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	if filter.Created.From == nil || !filter.Created.From.Equal(wantFrom) {
		t.Errorf("unexpected from bound: %v", filter.Created.From)
	}
	// A date-only upper bound covers the whole day.
	wantTo := time.Date(2026, 8, 15, 23, 59, 59, 0, time.UTC)
	if filter.Created.To == nil || !filter.Created.To.Equal(wantTo) {
		t.Errorf("unexpected to bound: %v", filter.Created.To)
	}
}

func TestParseLogFilterRFC3339Bounds(t *testing.T) {
	r := httptest.NewRequest("GET", "/logs?filter[created][to]=2026-08-15T12:30:00Z", nil)
	filter, err := parseLogFilter(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 8, 15, 12, 30, 0, 0, time.UTC)
	if filter.Created.To == nil || !filter.Created.To.Equal(want) {
		t.Errorf("unexpected to bound: %v", filter.Created.To)
	}
}

func TestParseLogFilterRejectsBadValues(t *testing.T) {
	cases := []string{
		"/logs?filter[created][from]=yesterday",
		"/logs?filter[tag][values]=1,two",
		"/logs?filter[parentLog]=abc",
		"/logs?filter[rootLog]=1.5",
	}
	for _, target := range cases {
		r := httptest.NewRequest("GET", target, nil)
		if _, err := parseLogFilter(r); err == nil {
			t.Errorf("%s should be rejected", target)
		}
	}
}
