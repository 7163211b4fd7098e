package model

import "time"

// TaskStatus is the lifecycle state of a background check task.
// Transitions: pending -> running -> {completed | failed}. The terminal
// states are final; exactly one of them is ever observed for a task.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// CheckTask tracks one background check run. Only the owning worker mutates
// a task record; readers receive snapshot copies. A completed task carries a
// non-nil Result, a failed task carries a non-empty Error, never both.
type CheckTask struct {
	ID          string     `json:"task_id"`
	Status      TaskStatus `json:"status"`
	Progress    int        `json:"progress"` // 0-100
	TotalItems  int        `json:"total_items"`
	CurrentItem string     `json:"current_item"`
	Result      *Report    `json:"result,omitempty"`
	ReportFile  string     `json:"report_file,omitempty"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt time.Time  `json:"completed_at,omitzero"`
}

// ScanRecord is one row of the scan-history index backing dashboard
// statistics. It carries only derived counters, never credential data.
type ScanRecord struct {
	ID          int64
	Filename    string
	GeneratedAt time.Time
	Total       int
	Safe        int
	Compromised int
	Errors      int
	Critical    int
	High        int
	Severity    Severity
}
