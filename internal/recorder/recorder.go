package recorder

import "time"

// FetchOutcome is the per-instrument line of an export record.
type FetchOutcome struct {
	Name    string `json:"name"`
	Code    string `json:"code"`
	Status  string `json:"status"` // "success", "empty" or "error"
	Rows    int    `json:"rows"`
	Message string `json:"message,omitempty"`
}

// ExportEvent describes one successful export.
type ExportEvent struct {
	ID         string         `json:"id"`
	RecordedAt time.Time      `json:"recorded_at"`
	StartDate  string         `json:"start_date"`
	EndDate    string         `json:"end_date"`
	Filename   string         `json:"filename"`
	Rows       int            `json:"rows"`
	Columns    int            `json:"columns"`
	Outcomes   []FetchOutcome `json:"outcomes"`
}

// CleanupEvent records one housekeeping run.
type CleanupEvent struct {
	RecordedAt time.Time
	Source     string // "manual" or "retention"
	Deleted    int
	Failed     int
}

// Recorder persists export history for auditing. It is never read back as a data cache.
type Recorder interface {
	RecordExport(evt *ExportEvent) error
	RecordCleanup(evt *CleanupEvent) error
	// RecentExports returns up to limit exports, newest first.
	RecentExports(limit int) ([]ExportEvent, error)
	Close() error
}
