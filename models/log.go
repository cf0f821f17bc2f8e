package models

import (
	"time"
)

// Log origins. A log entry is either typed in by an operator or posted by
// an automated process.
const (
	OriginHuman   = "human"
	OriginProcess = "process"
)

// Log subtypes.
const (
	SubtypeRun          = "run"
	SubtypeSubsystem    = "subsystem"
	SubtypeAnnouncement = "announcement"
	SubtypeIntervention = "intervention"
	SubtypeComment      = "comment"
)

// Log represents a single logbook entry. Entries form threads: a reply
// carries the id of its parent and of the topmost ancestor (root). A root
// entry's root_log_id equals its own id.
type Log struct {
	ID          int64        `json:"id" example:"1" format:"int64" readOnly:"true"`
	Title       string       `json:"title" example:"Run 123 stopped unexpectedly" binding:"required"` // 3-140 characters.
	Text        string       `json:"text" example:"Full description of the incident." binding:"required"`
	Origin      string       `json:"origin" example:"human" enum:"human,process"`
	Subtype     string       `json:"subtype" example:"comment" enum:"run,subsystem,announcement,intervention,comment"`
	UserID      int64        `json:"user_id" example:"1" format:"int64"`
	Author      string       `json:"author,omitempty" example:"John Doe" readOnly:"true"` // Resolved user name.
	ParentLogID *int64       `json:"parent_log_id,omitempty" format:"int64"`
	RootLogID   int64        `json:"root_log_id" format:"int64" readOnly:"true"`
	CreatedAt   time.Time    `json:"created_at" readOnly:"true"`
	UpdatedAt   time.Time    `json:"updated_at" readOnly:"true"`
	Tags        []Tag        `json:"tags,omitempty"`
	RunNumbers  []int64      `json:"run_numbers,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Replies     int64        `json:"replies" readOnly:"true"` // Count of descendant entries.
}

// LogTreeNode is one node of an assembled log thread. Children are ordered
// by creation time; a leaf carries an empty (never null) children list.
type LogTreeNode struct {
	Log
	Children []*LogTreeNode `json:"children"`
}

// ValidOrigin reports whether s is a known log origin.
func ValidOrigin(s string) bool {
	return s == OriginHuman || s == OriginProcess
}

// ValidSubtype reports whether s is a known log subtype.
func ValidSubtype(s string) bool {
	switch s {
	case SubtypeRun, SubtypeSubsystem, SubtypeAnnouncement, SubtypeIntervention, SubtypeComment:
		return true
	}
	return false
}
