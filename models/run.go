package models

import (
	"time"
)

// Run qualities.
const (
	RunQualityGood    = "good"
	RunQualityBad     = "bad"
	RunQualityUnknown = "unknown"
)

// Run types.
const (
	RunTypePhysics   = "physics"
	RunTypeCosmics   = "cosmics"
	RunTypeTechnical = "technical"
)

// Run is a recorded data-taking session. Runs are immutable once created;
// the O2 and trigger clocks are independent and may disagree.
type Run struct {
	ID             int64      `json:"id" example:"1" format:"int64" readOnly:"true"`
	RunNumber      int64      `json:"run_number" example:"500123" format:"int64" binding:"required"`
	NDetectors     int64      `json:"n_detectors" example:"4"`
	NEpns          int64      `json:"n_epns" example:"120"`
	NFlps          int64      `json:"n_flps" example:"200"`
	NSubtimeframes int64      `json:"n_subtimeframes" example:"5021"`
	BytesReadOut   int64      `json:"bytes_read_out" example:"8312400000"`
	RunQuality     string     `json:"run_quality" example:"good" enum:"good,bad,unknown"`
	RunType        string     `json:"run_type" example:"physics" enum:"physics,cosmics,technical"`
	TimeO2Start    *time.Time `json:"time_o2_start,omitempty"`
	TimeO2End      *time.Time `json:"time_o2_end,omitempty"`
	TimeTrgStart   *time.Time `json:"time_trg_start,omitempty"`
	TimeTrgEnd     *time.Time `json:"time_trg_end,omitempty"`
	CreatedAt      time.Time  `json:"created_at" readOnly:"true"`
	UpdatedAt      time.Time  `json:"updated_at" readOnly:"true"`
}

// ValidRunQuality reports whether s is a known run quality.
func ValidRunQuality(s string) bool {
	return s == RunQualityGood || s == RunQualityBad || s == RunQualityUnknown
}

// ValidRunType reports whether s is a known run type.
func ValidRunType(s string) bool {
	return s == RunTypePhysics || s == RunTypeCosmics || s == RunTypeTechnical
}
