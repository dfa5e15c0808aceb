package models

import "time"

// ClassSection binds a course offering to a lecturer, term and room for a
// date range. Schedule is the encoded weekly time slot carried over from the
// institution's timetable; two sections clash when they share a slot and
// their date ranges overlap.
type ClassSection struct {
	ID          string    `db:"id" json:"id"`
	CourseID    string    `db:"course_id" json:"course_id"`
	LecturerID  string    `db:"lecturer_id" json:"lecturer_id"`
	TermID      string    `db:"term_id" json:"term_id"`
	RoomID      string    `db:"room_id" json:"room_id"`
	MaxStudents int       `db:"max_students" json:"max_students"`
	Schedule    int       `db:"schedule" json:"schedule"`
	StartDate   time.Time `db:"start_date" json:"start_date"`
	EndDate     time.Time `db:"end_date" json:"end_date"`
}

// SectionDetail enriches a section with catalog names for read surfaces.
type SectionDetail struct {
	ClassSection
	CourseName   string `db:"course_name" json:"course_name"`
	LecturerName string `db:"lecturer_name" json:"lecturer_name"`
	TermName     string `db:"term_name" json:"term_name"`
	RoomName     string `db:"room_name" json:"room_name"`
}
