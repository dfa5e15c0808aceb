package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-adm-api/internal/models"
	"github.com/noah-isme/uni-adm-api/pkg/database"
	appErrors "github.com/noah-isme/uni-adm-api/pkg/errors"
)

type sectionRepository interface {
	Create(ctx context.Context, section *models.ClassSection) error
	FindByID(ctx context.Context, id string) (*models.ClassSection, error)
	FindDetailByID(ctx context.Context, id string) (*models.SectionDetail, error)
	ExistsClash(ctx context.Context, section *models.ClassSection) (bool, error)
	ListByTerm(ctx context.Context, termID string) ([]models.ClassSection, error)
}

type courseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type lecturerReader interface {
	FindLecturer(ctx context.Context, userID string) (*models.Lecturer, error)
}

type termReader interface {
	FindByID(ctx context.Context, id string) (*models.Term, error)
}

type roomReader interface {
	FindByID(ctx context.Context, id string) (*models.Room, error)
}

// CreateSectionRequest describes class section creation input.
type CreateSectionRequest struct {
	ID          string    `json:"id" validate:"omitempty,max=36"`
	CourseID    string    `json:"course_id" validate:"required"`
	LecturerID  string    `json:"lecturer_id" validate:"required"`
	TermID      string    `json:"term_id" validate:"required"`
	RoomID      string    `json:"room_id" validate:"required"`
	MaxStudents int       `json:"max_students" validate:"required"`
	Schedule    int       `json:"schedule" validate:"gte=0"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required"`
}

// SectionService schedules class sections.
type SectionService struct {
	repo      sectionRepository
	courses   courseReader
	lecturers lecturerReader
	terms     termReader
	rooms     roomReader
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
}

// NewSectionService constructs SectionService.
func NewSectionService(repo sectionRepository, courses courseReader, lecturers lecturerReader, terms termReader, rooms roomReader, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *SectionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SectionService{repo: repo, courses: courses, lecturers: lecturers, terms: terms, rooms: rooms, validator: validate, logger: logger, metrics: metrics}
}

// CreateSection validates and persists a class section. All validation runs
// before the insert, so a rejected request leaves no row behind. A lecturer
// or room already occupying the same schedule slot over an overlapping date
// range is a conflict.
func (s *SectionService) CreateSection(ctx context.Context, req CreateSectionRequest) (*models.ClassSection, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section payload")
	}
	if req.MaxStudents <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "max students must be positive")
	}
	if !req.StartDate.Before(req.EndDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "section start date must precede end date")
	}

	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		return nil, notFoundOr(err, "course not found", "failed to load course")
	}
	if _, err := s.lecturers.FindLecturer(ctx, req.LecturerID); err != nil {
		return nil, notFoundOr(err, "lecturer not found", "failed to load lecturer")
	}
	if _, err := s.terms.FindByID(ctx, req.TermID); err != nil {
		return nil, notFoundOr(err, "term not found", "failed to load term")
	}
	if _, err := s.rooms.FindByID(ctx, req.RoomID); err != nil {
		return nil, notFoundOr(err, "room not found", "failed to load room")
	}

	section := &models.ClassSection{
		ID:          req.ID,
		CourseID:    req.CourseID,
		LecturerID:  req.LecturerID,
		TermID:      req.TermID,
		RoomID:      req.RoomID,
		MaxStudents: req.MaxStudents,
		Schedule:    req.Schedule,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	clash, err := s.repo.ExistsClash(ctx, section)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check schedule clash")
	}
	if clash {
		return nil, appErrors.Clone(appErrors.ErrConflict, "lecturer or room already booked for this slot")
	}
	if err := s.repo.Create(ctx, section); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "section id already in use")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create section")
	}
	s.metrics.CountOp("create_section")
	s.logger.Info("section created", zap.String("section_id", section.ID), zap.String("course_id", section.CourseID))
	return section, nil
}

// Section returns a section with catalog names resolved.
func (s *SectionService) Section(ctx context.Context, id string) (*models.SectionDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "section not found", "failed to load section")
	}
	return detail, nil
}

// SectionsByTerm lists the sections scheduled within a term.
func (s *SectionService) SectionsByTerm(ctx context.Context, termID string) ([]models.ClassSection, error) {
	sections, err := s.repo.ListByTerm(ctx, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections")
	}
	return sections, nil
}

// notFoundOr maps sql.ErrNoRows to NotFound and anything else to an
// internal error with the given message.
func notFoundOr(err error, notFoundMsg, internalMsg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFoundMsg)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, internalMsg)
}
