package models

import (
	"time"
)

// Tag filter operations.
const (
	TagOperationAnd = "and"
	TagOperationOr  = "or"
)

// TimeRange bounds a timestamp column. Both ends are inclusive and either
// may be absent.
type TimeRange struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// TagFilter selects logs by their tag associations. With operation "and" a
// log must carry every listed tag, with "or" at least one. An empty Values
// list disables the filter regardless of Operation.
type TagFilter struct {
	Values    []int64 `json:"values,omitempty"`
	Operation string  `json:"operation,omitempty" enum:"and,or"`
}

// LogFilter carries the optional, independently combinable sub-filters of
// a log list query. All present sub-filters are ANDed together.
type LogFilter struct {
	Author      string    `json:"author,omitempty"` // Case-insensitive substring of the author name.
	Title       string    `json:"title,omitempty"`  // Case-insensitive substring of the title.
	Created     TimeRange `json:"created,omitempty"`
	Tag         TagFilter `json:"tag,omitempty"`
	Origin      string    `json:"origin,omitempty" enum:"human,process"`
	ParentLogID *int64    `json:"parent_log_id,omitempty"`
	RootLogID   *int64    `json:"root_log_id,omitempty"`
}
