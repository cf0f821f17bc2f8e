package query

import (
	"fmt"

	"logbook/models"
)

// Sort directions.
const (
	DirectionAsc  = "asc"
	DirectionDesc = "desc"
)

// SortKey is one (field, direction) pair of an ORDER BY sequence.
type SortKey struct {
	Field     string
	Direction string
}

// Sort is an ordered ORDER BY sequence. The first key is the primary sort
// key, later keys break ties. An empty Sort means no ordering is applied.
type Sort []SortKey

// Sortable fields per entity. These are API field names, not column
// names; the database layer owns the mapping.
var (
	logSortFields = map[string]bool{
		"id":        true,
		"title":     true,
		"author":    true,
		"createdAt": true,
		"tags":      true,
	}
	runSortFields = map[string]bool{
		"id": true,
	}
)

// ResolveLogSort validates an ordered field/direction sequence for log
// list queries, preserving the caller's order as key precedence.
func ResolveLogSort(keys []SortKey) (Sort, error) {
	return resolveSort(logSortFields, keys)
}

// ResolveRunSort validates an ordered field/direction sequence for run
// list queries.
func ResolveRunSort(keys []SortKey) (Sort, error) {
	return resolveSort(runSortFields, keys)
}

func resolveSort(allowed map[string]bool, keys []SortKey) (Sort, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	out := make(Sort, 0, len(keys))
	for _, k := range keys {
		if !allowed[k.Field] {
			return nil, &models.ValidationError{
				Pointer: fmt.Sprintf("query.sort.%s", k.Field),
				Detail:  "is not a sortable field",
			}
		}
		if k.Direction != DirectionAsc && k.Direction != DirectionDesc {
			return nil, &models.ValidationError{
				Pointer: fmt.Sprintf("query.sort.%s", k.Field),
				Detail:  "must be one of [asc, desc]",
			}
		}
		out = append(out, k)
	}
	return out, nil
}
