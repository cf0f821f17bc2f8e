package models

import (
	"time"
)

// Subsystem is a labeled detector/infrastructure subsystem that log
// entries can reference.
type Subsystem struct {
	ID        int64     `json:"id" example:"1" format:"int64" readOnly:"true"`
	Name      string    `json:"name" example:"TPC" binding:"required"`
	CreatedAt time.Time `json:"created_at" readOnly:"true"`
	UpdatedAt time.Time `json:"updated_at" readOnly:"true"`
}
