package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"logbook/logger"
	"logbook/models"
	"logbook/query"
)

// writeJSON serializes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("writeJSON: Error encoding response: %v", err)
	}
}

// writeAPIError emits the error envelope used by every failing endpoint.
// pointer, when non-empty, is a dotted field path ("query.page.limit")
// and is rendered as a JSON pointer in the source member.
func writeAPIError(w http.ResponseWriter, status int, title, detail, pointer string) {
	apiErr := models.APIError{
		Status: strconv.Itoa(status),
		Title:  title,
		Detail: detail,
	}
	if pointer != "" {
		apiErr.Source = &models.ErrorSource{Pointer: "/" + strings.ReplaceAll(pointer, ".", "/")}
	}
	writeJSON(w, status, models.ErrorResponse{Errors: []models.APIError{apiErr}})
}

// handleQueryError maps core error kinds onto HTTP statuses: validation
// failures are the caller's fault (400), integrity violations are ours
// (500). Anything else is an unclassified server error.
func handleQueryError(w http.ResponseWriter, err error) {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		writeAPIError(w, http.StatusBadRequest, "Invalid Attribute", validationErr.Error(), validationErr.Pointer)
		return
	}
	var integrityErr *models.DataIntegrityError
	if errors.As(err, &integrityErr) {
		logger.Error("Data integrity violation: %v", integrityErr)
		writeAPIError(w, http.StatusInternalServerError, "Data Integrity Violation", integrityErr.Detail, "")
		return
	}
	logger.Error("Unhandled error at API boundary: %v", err)
	writeAPIError(w, http.StatusInternalServerError, "Internal Server Error", "", "")
}

// parsePagination reads the deepObject page[limit] / page[offset] query
// parameters and resolves them into a bounded-query descriptor.
func parsePagination(r *http.Request) (query.Pagination, error) {
	var limit, offset *int

	if s := r.URL.Query().Get("page[limit]"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return query.Pagination{}, &models.ValidationError{Pointer: "query.page.limit", Detail: "must be a number"}
		}
		limit = &v
	}
	if s := r.URL.Query().Get("page[offset]"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return query.Pagination{}, &models.ValidationError{Pointer: "query.page.offset", Detail: "must be a number"}
		}
		offset = &v
	}
	return query.ResolvePagination(limit, offset)
}

// parseSortKeys reads sort[field]=direction parameters. The raw query is
// walked in order because the first-specified field is the primary sort
// key and url.Values would lose that ordering.
func parseSortKeys(r *http.Request) ([]query.SortKey, error) {
	var keys []query.SortKey
	for _, part := range strings.Split(r.URL.RawQuery, "&") {
		if part == "" {
			continue
		}
		rawName, rawValue, _ := strings.Cut(part, "=")
		name, err := url.QueryUnescape(rawName)
		if err != nil {
			continue
		}
		if !strings.HasPrefix(name, "sort[") || !strings.HasSuffix(name, "]") {
			continue
		}
		field := name[len("sort[") : len(name)-1]
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, &models.ValidationError{Pointer: fmt.Sprintf("query.sort.%s", field), Detail: "must be one of [asc, desc]"}
		}
		keys = append(keys, query.SortKey{Field: field, Direction: strings.ToLower(value)})
	}
	return keys, nil
}

// filterTimeLayouts are the accepted forms of created-range bounds.
var filterTimeLayouts = []string{time.RFC3339, "2006-01-02"}

// parseFilterTime parses a created-range bound. A date-only upper bound is
// widened to the end of that day so the range stays inclusive.
func parseFilterTime(s, pointer string, isUpperBound bool) (*time.Time, error) {
	for _, layout := range filterTimeLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if layout == "2006-01-02" && isUpperBound {
			t = t.Add(24*time.Hour - time.Second)
		}
		t = t.UTC()
		return &t, nil
	}
	return nil, &models.ValidationError{Pointer: pointer, Detail: "must be a valid date or RFC 3339 timestamp"}
}

// parseLogFilter reads the deepObject filter[...] query parameters into a
// structured log filter. Value validation beyond basic types happens in
// the filter compiler.
func parseLogFilter(r *http.Request) (models.LogFilter, error) {
	q := r.URL.Query()
	var filter models.LogFilter

	filter.Author = q.Get("filter[author]")
	filter.Title = q.Get("filter[title]")
	filter.Origin = q.Get("filter[origin]")

	if s := q.Get("filter[created][from]"); s != "" {
		t, err := parseFilterTime(s, "query.filter.created.from", false)
		if err != nil {
			return models.LogFilter{}, err
		}
		filter.Created.From = t
	}
	if s := q.Get("filter[created][to]"); s != "" {
		t, err := parseFilterTime(s, "query.filter.created.to", true)
		if err != nil {
			return models.LogFilter{}, err
		}
		filter.Created.To = t
	}

	if s := q.Get("filter[tag][values]"); s != "" {
		for _, raw := range strings.Split(s, ",") {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return models.LogFilter{}, &models.ValidationError{Pointer: "query.filter.tag.values", Detail: "must contain numbers"}
			}
			filter.Tag.Values = append(filter.Tag.Values, id)
		}
		filter.Tag.Operation = strings.ToLower(q.Get("filter[tag][operation]"))
	}

	if s := q.Get("filter[parentLog]"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return models.LogFilter{}, &models.ValidationError{Pointer: "query.filter.parentLog", Detail: "must be a number"}
		}
		filter.ParentLogID = &id
	}
	if s := q.Get("filter[rootLog]"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return models.LogFilter{}, &models.ValidationError{Pointer: "query.filter.rootLog", Detail: "must be a number"}
		}
		filter.RootLogID = &id
	}
	return filter, nil
}

// parsePathID reads a positive integer id from a URL path segment.
func parsePathID(idStr, what string) (int64, error) {
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s ID '%s'", what, idStr)
	}
	return id, nil
}

// listEnvelope wraps a collection response with its pagination metadata.
type listEnvelope struct {
	Meta models.ListMeta `json:"meta"`
	Data interface{}     `json:"data"`
}

// dataEnvelope wraps a single-resource response.
type dataEnvelope struct {
	Data interface{} `json:"data"`
}
