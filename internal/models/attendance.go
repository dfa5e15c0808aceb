package models

import "time"

// Attendance is one presence record per (enrollment, date). The status
// column is a plain boolean: true means present.
type Attendance struct {
	ID           string    `db:"id" json:"id"`
	EnrollmentID string    `db:"enrollment_id" json:"enrollment_id"`
	Date         time.Time `db:"date" json:"date"`
	Present      bool      `db:"status" json:"present"`
}

// AttendanceSummary aggregates presence counts for an enrollment.
type AttendanceSummary struct {
	Present int     `db:"present" json:"present"`
	Absent  int     `db:"absent" json:"absent"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
}
