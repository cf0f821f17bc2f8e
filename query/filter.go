package query

import (
	"logbook/models"
)

// Comparison operators.
const (
	OpEquals   = "eq"       // exact match
	OpContains = "contains" // case-insensitive substring
	OpAtLeast  = "gte"      // inclusive lower bound
	OpAtMost   = "lte"      // inclusive upper bound
)

// Filterable log fields, named after the API schema.
const (
	FieldAuthor      = "author"
	FieldTitle       = "title"
	FieldCreatedAt   = "createdAt"
	FieldOrigin      = "origin"
	FieldParentLogID = "parentLogId"
	FieldRootLogID   = "rootLogId"
)

// Predicate is one node of an abstract filter tree. The database layer
// translates a tree into a parameterized WHERE clause; the compiler itself
// never touches storage.
type Predicate interface {
	isPredicate()
}

// And matches rows satisfying every operand. An empty And matches all rows.
type And struct {
	Operands []Predicate
}

// Or matches rows satisfying at least one operand.
type Or struct {
	Operands []Predicate
}

// Comparison matches rows whose field relates to Value under Op.
type Comparison struct {
	Field string
	Op    string
	Value interface{}
}

// HasTag matches logs associated with one specific tag.
type HasTag struct {
	TagID int64
}

func (And) isPredicate()        {}
func (Or) isPredicate()         {}
func (Comparison) isPredicate() {}
func (HasTag) isPredicate()     {}

// CompileLogFilter validates a structured log filter and compiles it into
// a predicate tree. All present sub-filters are combined with AND.
// Compilation is deterministic: equal filters compile to equal trees.
func CompileLogFilter(f models.LogFilter) (And, error) {
	root := And{}

	if f.Author != "" {
		if len(f.Author) > 140 {
			return And{}, &models.ValidationError{Pointer: "query.filter.author", Detail: "length must be less than or equal to 140 characters long"}
		}
		root.Operands = append(root.Operands, Comparison{Field: FieldAuthor, Op: OpContains, Value: f.Author})
	}

	if f.Title != "" {
		if len(f.Title) > 140 {
			return And{}, &models.ValidationError{Pointer: "query.filter.title", Detail: "length must be less than or equal to 140 characters long"}
		}
		root.Operands = append(root.Operands, Comparison{Field: FieldTitle, Op: OpContains, Value: f.Title})
	}

	if f.Created.From != nil && f.Created.To != nil && f.Created.To.Before(*f.Created.From) {
		// Fail closed: an inverted window is a caller mistake, not an
		// empty result set.
		return And{}, &models.ValidationError{Pointer: "query.filter.created.to", Detail: "must not be before \"query.filter.created.from\""}
	}
	if f.Created.From != nil {
		root.Operands = append(root.Operands, Comparison{Field: FieldCreatedAt, Op: OpAtLeast, Value: *f.Created.From})
	}
	if f.Created.To != nil {
		root.Operands = append(root.Operands, Comparison{Field: FieldCreatedAt, Op: OpAtMost, Value: *f.Created.To})
	}

	if len(f.Tag.Values) > 0 {
		tagIDs, err := dedupeTagIDs(f.Tag.Values)
		if err != nil {
			return And{}, err
		}
		switch f.Tag.Operation {
		case models.TagOperationAnd:
			for _, id := range tagIDs {
				root.Operands = append(root.Operands, HasTag{TagID: id})
			}
		case models.TagOperationOr:
			or := Or{Operands: make([]Predicate, 0, len(tagIDs))}
			for _, id := range tagIDs {
				or.Operands = append(or.Operands, HasTag{TagID: id})
			}
			root.Operands = append(root.Operands, or)
		default:
			return And{}, &models.ValidationError{Pointer: "query.filter.tag.operation", Detail: "must be one of [and, or]"}
		}
	}

	if f.Origin != "" {
		if !models.ValidOrigin(f.Origin) {
			return And{}, &models.ValidationError{Pointer: "query.filter.origin", Detail: "must be one of [human, process]"}
		}
		root.Operands = append(root.Operands, Comparison{Field: FieldOrigin, Op: OpEquals, Value: f.Origin})
	}

	if f.ParentLogID != nil {
		if *f.ParentLogID < 1 {
			return And{}, &models.ValidationError{Pointer: "query.filter.parentLog", Detail: "must be a positive integer"}
		}
		root.Operands = append(root.Operands, Comparison{Field: FieldParentLogID, Op: OpEquals, Value: *f.ParentLogID})
	}

	if f.RootLogID != nil {
		if *f.RootLogID < 1 {
			return And{}, &models.ValidationError{Pointer: "query.filter.rootLog", Detail: "must be a positive integer"}
		}
		root.Operands = append(root.Operands, Comparison{Field: FieldRootLogID, Op: OpEquals, Value: *f.RootLogID})
	}

	return root, nil
}

// dedupeTagIDs drops repeated tag ids, preserving first-occurrence order
// so compilation stays deterministic.
func dedupeTagIDs(values []int64) ([]int64, error) {
	seen := make(map[int64]bool, len(values))
	out := make([]int64, 0, len(values))
	for _, id := range values {
		if id < 1 {
			return nil, &models.ValidationError{Pointer: "query.filter.tag.values", Detail: "must contain positive integers"}
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}
