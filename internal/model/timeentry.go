package model

import "time"

// TimeEntry records time worked against a project. A nil StoppedAt means the
// timer is still running.
type TimeEntry struct {
	ID        string     `json:"id"`
	Project   string     `json:"project"`
	Task      string     `json:"task,omitempty"`
	StartedAt time.Time  `json:"started_at"`
	StoppedAt *time.Time `json:"stopped_at,omitempty"`
	Notes     string     `json:"notes,omitempty"`
}

// Running reports whether the entry's timer is still open.
func (e *TimeEntry) Running() bool {
	return e.StoppedAt == nil
}

// Duration returns the elapsed time, using now for running entries.
func (e *TimeEntry) Duration(now time.Time) time.Duration {
	end := now
	if e.StoppedAt != nil {
		end = *e.StoppedAt
	}
	d := end.Sub(e.StartedAt)
	if d < 0 {
		return 0
	}
	return d
}

// ProjectSummary aggregates time entries for one project.
type ProjectSummary struct {
	Project      string        `json:"project"`
	Entries      int           `json:"entries"`
	Total        time.Duration `json:"-"`
	TotalSeconds int64         `json:"total_seconds"`
	Running      bool          `json:"running"`
}
