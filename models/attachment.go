package models

import (
	"time"
)

// Attachment is a file attached to a log entry. The blob lives on disk
// under a generated storage name; the original file name is kept for
// presentation.
type Attachment struct {
	ID          int64     `json:"id" example:"1" format:"int64" readOnly:"true"`
	LogID       int64     `json:"log_id" example:"1" format:"int64" readOnly:"true"`
	FileName    string    `json:"file_name" example:"screenshot.png"`
	MimeType    string    `json:"mime_type,omitempty" example:"image/png"`
	Size        int64     `json:"size" example:"20481" readOnly:"true"`
	StorageName string    `json:"-"` // UUID-based name of the blob on disk.
	CreatedAt   time.Time `json:"created_at" readOnly:"true"`
}
