package models

import (
	"database/sql"
)

// NullString is a helper function to create a sql.NullString from a string.
// An empty input yields a NullString with Valid set to false.
func NullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{String: "", Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

// NullInt64FromPtr converts a pointer to an int64 to sql.NullInt64.
func NullInt64FromPtr(ptr *int64) sql.NullInt64 {
	if ptr == nil {
		return sql.NullInt64{Valid: false}
	}
	return sql.NullInt64{Int64: *ptr, Valid: true}
}

// Int64PtrFromNull converts a sql.NullInt64 back to a pointer.
func Int64PtrFromNull(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
