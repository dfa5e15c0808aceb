package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-adm-api/internal/models"
)

// ExamRepository handles persistence of exams.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository constructs the repository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// Create persists an exam.
func (r *ExamRepository) Create(ctx context.Context, exam *models.Exam) error {
	if exam.ID == "" {
		exam.ID = uuid.NewString()
	}
	const query = `INSERT INTO exams (id, class_id, name, max_score, weight)
        VALUES (:id, :class_id, :name, :max_score, :weight)`
	if _, err := r.db.NamedExecContext(ctx, query, exam); err != nil {
		return fmt.Errorf("create exam: %w", err)
	}
	return nil
}

// FindByID returns an exam by its ID.
func (r *ExamRepository) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	const query = `SELECT id, class_id, name, max_score, weight FROM exams WHERE id = $1`
	var exam models.Exam
	if err := r.db.GetContext(ctx, &exam, query, id); err != nil {
		return nil, err
	}
	return &exam, nil
}

// ListBySection returns the exams of a class section.
func (r *ExamRepository) ListBySection(ctx context.Context, classID string) ([]models.Exam, error) {
	const query = `SELECT id, class_id, name, max_score, weight FROM exams WHERE class_id = $1 ORDER BY name`
	var exams []models.Exam
	if err := r.db.SelectContext(ctx, &exams, query, classID); err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	return exams, nil
}

// SumWeights returns the total exam weight already assigned to a section.
func (r *ExamRepository) SumWeights(ctx context.Context, classID string) (float64, error) {
	const query = `SELECT COALESCE(SUM(weight), 0) FROM exams WHERE class_id = $1`
	var total float64
	if err := r.db.GetContext(ctx, &total, query, classID); err != nil {
		return 0, fmt.Errorf("sum exam weights: %w", err)
	}
	return total, nil
}
