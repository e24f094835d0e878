package models

import (
	"time"

	"gorm.io/datatypes"
)

// Sync run statuses
const (
	SyncStatusRunning = "running"
	SyncStatusSuccess = "success"
	SyncStatusPartial = "partial"
	SyncStatusError   = "error"
)

// SyncHistory records each workflow run against the WMS or the ERP mirror
type SyncHistory struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	RunID       string         `gorm:"column:run_id;type:varchar(36);uniqueIndex" json:"runId"`
	Provider    string         `gorm:"column:provider;not null;index" json:"provider"` // "ongoing", "odoo"
	Workflow    string         `gorm:"column:workflow;not null;index" json:"workflow"` // "push", "inbound", "tracking", ...
	CompanyID   int64          `gorm:"column:company_id;index" json:"companyId"`
	Status      string         `gorm:"column:status;not null;index" json:"status"` // "running", "success", "error", "partial"
	StartedAt   time.Time      `gorm:"column:started_at;not null" json:"startedAt"`
	CompletedAt *time.Time     `gorm:"column:completed_at" json:"completedAt"`
	Duration    int            `gorm:"column:duration;default:0" json:"duration"` // milliseconds
	Created     int            `gorm:"column:created;default:0" json:"created"`   // records created
	Updated     int            `gorm:"column:updated;default:0" json:"updated"`   // records updated
	Skipped     int            `gorm:"column:skipped;default:0" json:"skipped"`   // records skipped
	Errors      int            `gorm:"column:errors;default:0" json:"errors"`     // error count
	ErrorDetail string         `gorm:"column:error_detail;type:text" json:"errorDetail"`
	DebugInfo   datatypes.JSON `gorm:"column:debug_info;type:jsonb" json:"debugInfo"`
	CreatedAt   time.Time      `gorm:"column:created_at" json:"-"`
	UpdatedAt   time.Time      `gorm:"column:updated_at" json:"-"`
}

// TableName specifies the table name
func (SyncHistory) TableName() string {
	return "sync_history"
}

// Finish stamps completion time, duration and the final status derived from the counters.
func (s *SyncHistory) Finish(now time.Time, err error) {
	s.CompletedAt = &now
	s.Duration = int(now.Sub(s.StartedAt).Milliseconds())
	switch {
	case err != nil:
		s.Status = SyncStatusError
		s.ErrorDetail = err.Error()
	case s.Errors > 0:
		s.Status = SyncStatusPartial
	default:
		s.Status = SyncStatusSuccess
	}
}
