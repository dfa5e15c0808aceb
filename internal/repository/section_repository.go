package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-adm-api/internal/models"
)

// SectionRepository handles persistence of class sections.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository constructs the repository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

// Create persists a class section.
func (r *SectionRepository) Create(ctx context.Context, section *models.ClassSection) error {
	if section.ID == "" {
		section.ID = uuid.NewString()
	}
	const query = `INSERT INTO class_sections (id, course_id, lecturer_id, term_id, room_id, max_students, schedule, start_date, end_date)
        VALUES (:id, :course_id, :lecturer_id, :term_id, :room_id, :max_students, :schedule, :start_date, :end_date)`
	if _, err := r.db.NamedExecContext(ctx, query, section); err != nil {
		return fmt.Errorf("create section: %w", err)
	}
	return nil
}

// FindByID returns a section by its ID.
func (r *SectionRepository) FindByID(ctx context.Context, id string) (*models.ClassSection, error) {
	const query = `SELECT id, course_id, lecturer_id, term_id, room_id, max_students, schedule, start_date, end_date FROM class_sections WHERE id = $1`
	var section models.ClassSection
	if err := r.db.GetContext(ctx, &section, query, id); err != nil {
		return nil, err
	}
	return &section, nil
}

// FindDetailByID returns a section with catalog names resolved.
func (r *SectionRepository) FindDetailByID(ctx context.Context, id string) (*models.SectionDetail, error) {
	const query = `SELECT cs.id, cs.course_id, cs.lecturer_id, cs.term_id, cs.room_id, cs.max_students, cs.schedule, cs.start_date, cs.end_date,
        c.name AS course_name, u.full_name AS lecturer_name, t.name AS term_name, rm.name AS room_name
        FROM class_sections cs
        JOIN courses c ON c.id = cs.course_id
        JOIN lecturers l ON l.user_id = cs.lecturer_id
        JOIN users u ON u.id = l.user_id
        JOIN terms t ON t.id = cs.term_id
        JOIN rooms rm ON rm.id = cs.room_id
        WHERE cs.id = $1`
	var detail models.SectionDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ExistsClash reports whether another section occupies the same schedule
// slot with an overlapping date range for the given lecturer or room.
func (r *SectionRepository) ExistsClash(ctx context.Context, section *models.ClassSection) (bool, error) {
	const query = `SELECT 1 FROM class_sections
        WHERE schedule = $1
          AND start_date < $3 AND end_date > $2
          AND (lecturer_id = $4 OR room_id = $5)
        LIMIT 1`
	var exists int
	err := r.db.GetContext(ctx, &exists, query, section.Schedule, section.StartDate, section.EndDate, section.LecturerID, section.RoomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check section clash: %w", err)
	}
	return true, nil
}

// ListByTerm returns the sections scheduled within a term.
func (r *SectionRepository) ListByTerm(ctx context.Context, termID string) ([]models.ClassSection, error) {
	const query = `SELECT id, course_id, lecturer_id, term_id, room_id, max_students, schedule, start_date, end_date FROM class_sections WHERE term_id = $1 ORDER BY start_date`
	var sections []models.ClassSection
	if err := r.db.SelectContext(ctx, &sections, query, termID); err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return sections, nil
}
