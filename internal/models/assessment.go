package models

// Exam is an assessment attached to a class section. Weight is a percentage;
// the weights of a section's exams must total 100 before final grades can be
// computed.
type Exam struct {
	ID       string  `db:"id" json:"id"`
	ClassID  string  `db:"class_id" json:"class_id"`
	Name     string  `db:"name" json:"name"`
	MaxScore float64 `db:"max_score" json:"max_score"`
	Weight   float64 `db:"weight" json:"weight"`
}

// Grade stores a student's score on one exam, at most one per
// (enrollment, exam).
type Grade struct {
	ID           string  `db:"id" json:"id"`
	EnrollmentID string  `db:"enrollment_id" json:"enrollment_id"`
	ExamID       string  `db:"exam_id" json:"exam_id"`
	FinalScore   float64 `db:"final_score" json:"final_score"`
	LetterScore  string  `db:"letter_score" json:"letter_score"`
	Notes        *string `db:"notes" json:"notes,omitempty"`
}

// GradeRow joins a grade with its exam for transcript and final-grade reads.
// Score is NULL when the exam has no recorded grade yet.
type GradeRow struct {
	ExamID     string   `db:"exam_id" json:"exam_id"`
	ExamName   string   `db:"exam_name" json:"exam_name"`
	MaxScore   float64  `db:"max_score" json:"max_score"`
	Weight     float64  `db:"weight" json:"weight"`
	Score      *float64 `db:"score" json:"score,omitempty"`
	Letter     *string  `db:"letter" json:"letter,omitempty"`
}

// FinalGrade is the weighted result across all exams of a section.
type FinalGrade struct {
	EnrollmentID string     `json:"enrollment_id"`
	ClassID      string     `json:"class_id"`
	Score        float64    `json:"score"`
	Rows         []GradeRow `json:"rows,omitempty"`
}
