package models

import (
	"time"
)

// Built-in users seeded at first start.
const (
	AnonymousUserID = 1
	ProcessUserID   = 2
)

// User is an author reference for log entries. Account management is not
// this service's concern; rows exist so entries can be attributed.
type User struct {
	ID        int64     `json:"id" example:"1" format:"int64" readOnly:"true"`
	Name      string    `json:"name" example:"John Doe" binding:"required"`
	CreatedAt time.Time `json:"created_at" readOnly:"true"`
}
