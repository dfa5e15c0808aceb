package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-adm-api/internal/models"
)

// Sentinel outcomes of the enroll transaction, mapped to domain errors by
// the enrollment service.
var (
	ErrSectionFull     = errors.New("section has no remaining capacity")
	ErrAlreadyEnrolled = errors.New("student already actively enrolled")
)

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Enroll inserts an enrollment inside a transaction that locks the section
// row first, so concurrent attempts against the same section serialize and
// the capacity check cannot race. Returns ErrSectionFull or
// ErrAlreadyEnrolled when the respective invariant would break, and
// sql.ErrNoRows when the section does not exist.
func (r *EnrollmentRepository) Enroll(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.JoinedAt.IsZero() {
		enrollment.JoinedAt = time.Now().UTC()
	}
	enrollment.Status = models.EnrollmentStatusActive

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin enroll tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var maxStudents int
	if err := tx.GetContext(ctx, &maxStudents, `SELECT max_students FROM class_sections WHERE id = $1 FOR UPDATE`, enrollment.ClassID); err != nil {
		return err
	}

	var duplicate bool
	const dupQuery = `SELECT EXISTS (SELECT 1 FROM enrollments WHERE student_id = $1 AND class_id = $2 AND status = $3)`
	if err := tx.GetContext(ctx, &duplicate, dupQuery, enrollment.StudentID, enrollment.ClassID, models.EnrollmentStatusActive); err != nil {
		return fmt.Errorf("check duplicate enrollment: %w", err)
	}
	if duplicate {
		return ErrAlreadyEnrolled
	}

	var active int
	if err := tx.GetContext(ctx, &active, `SELECT COUNT(*) FROM enrollments WHERE class_id = $1 AND status = $2`, enrollment.ClassID, models.EnrollmentStatusActive); err != nil {
		return fmt.Errorf("count active enrollments: %w", err)
	}
	if active >= maxStudents {
		return ErrSectionFull
	}

	const insert = `INSERT INTO enrollments (id, student_id, class_id, status, joined_at, left_at)
        VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := tx.ExecContext(ctx, insert, enrollment.ID, enrollment.StudentID, enrollment.ClassID, enrollment.Status, enrollment.JoinedAt, enrollment.LeftAt); err != nil {
		return fmt.Errorf("insert enrollment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit enroll tx: %w", err)
	}
	return nil
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	const query = `SELECT id, student_id, class_id, status, joined_at, left_at FROM enrollments WHERE id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindDetailByID returns an enrollment with contextual info.
func (r *EnrollmentRepository) FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.student_id, e.class_id, e.status, e.joined_at, e.left_at,
        u.full_name AS student_name, c.name AS course_name, t.name AS term_name
        FROM enrollments e
        JOIN users u ON u.id = e.student_id
        JOIN class_sections cs ON cs.id = e.class_id
        JOIN courses c ON c.id = cs.course_id
        JOIN terms t ON t.id = cs.term_id
        WHERE e.id = $1`
	var detail models.EnrollmentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// UpdateStatus updates status and left_at for an enrollment.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus, leftAt *time.Time) error {
	const query = `UPDATE enrollments SET status = $2, left_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, leftAt); err != nil {
		return fmt.Errorf("update enrollment status: %w", err)
	}
	return nil
}

// ListBySection returns the active enrollments of a class section.
func (r *EnrollmentRepository) ListBySection(ctx context.Context, classID string) ([]models.Enrollment, error) {
	const query = `SELECT id, student_id, class_id, status, joined_at, left_at FROM enrollments WHERE class_id = $1 AND status = $2 ORDER BY joined_at`
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, classID, models.EnrollmentStatusActive); err != nil {
		return nil, fmt.Errorf("list section enrollments: %w", err)
	}
	return enrollments, nil
}

// ListByStudent returns all enrollments of a student, newest first.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	const query = `SELECT id, student_id, class_id, status, joined_at, left_at FROM enrollments WHERE student_id = $1 ORDER BY joined_at DESC`
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return enrollments, nil
}
