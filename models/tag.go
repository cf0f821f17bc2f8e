package models

import (
	"time"
)

// Tag is a reusable text label attachable to log entries for filtering.
// Tag text is unique (case-insensitive).
type Tag struct {
	ID        int64     `json:"id" example:"1" format:"int64" readOnly:"true"`
	Text      string    `json:"text" example:"DCS" binding:"required"`
	CreatedAt time.Time `json:"created_at" readOnly:"true"`
	UpdatedAt time.Time `json:"updated_at" readOnly:"true"`
}
