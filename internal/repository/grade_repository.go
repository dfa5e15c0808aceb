package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-adm-api/internal/models"
)

// GradeRepository handles persistence of grades.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs the repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// Upsert records a grade for (enrollment, exam); re-recording overwrites the
// score, letter and notes.
func (r *GradeRepository) Upsert(ctx context.Context, grade *models.Grade) error {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	const query = `INSERT INTO grades (id, enrollment_id, exam_id, final_score, letter_score, notes)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (enrollment_id, exam_id) DO UPDATE
            SET final_score = EXCLUDED.final_score,
                letter_score = EXCLUDED.letter_score,
                notes = EXCLUDED.notes
        RETURNING id`
	if err := r.db.GetContext(ctx, &grade.ID, query, grade.ID, grade.EnrollmentID, grade.ExamID, grade.FinalScore, grade.LetterScore, grade.Notes); err != nil {
		return fmt.Errorf("upsert grade: %w", err)
	}
	return nil
}

// RowsForEnrollment returns every exam of the enrollment's section joined
// with the recorded grade, if any. Exams without grades come back with a
// NULL score, which is what ComputeFinalGrade keys IncompleteGrades off.
func (r *GradeRepository) RowsForEnrollment(ctx context.Context, enrollmentID string) ([]models.GradeRow, error) {
	const query = `SELECT x.id AS exam_id, x.name AS exam_name, x.max_score, x.weight,
        g.final_score AS score, g.letter_score AS letter
        FROM enrollments e
        JOIN exams x ON x.class_id = e.class_id
        LEFT JOIN grades g ON g.exam_id = x.id AND g.enrollment_id = e.id
        WHERE e.id = $1
        ORDER BY x.name`
	var rows []models.GradeRow
	if err := r.db.SelectContext(ctx, &rows, query, enrollmentID); err != nil {
		return nil, fmt.Errorf("grade rows for enrollment: %w", err)
	}
	return rows, nil
}

// ListByEnrollment returns the recorded grades of an enrollment.
func (r *GradeRepository) ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.Grade, error) {
	const query = `SELECT id, enrollment_id, exam_id, final_score, letter_score, notes FROM grades WHERE enrollment_id = $1`
	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query, enrollmentID); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}
