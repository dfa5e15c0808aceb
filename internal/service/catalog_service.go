package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-adm-api/internal/models"
	"github.com/noah-isme/uni-adm-api/pkg/database"
	appErrors "github.com/noah-isme/uni-adm-api/pkg/errors"
)

type departmentRepository interface {
	Create(ctx context.Context, department *models.Department) error
	FindByID(ctx context.Context, id string) (*models.Department, error)
	List(ctx context.Context) ([]models.Department, error)
}

type courseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	FindByID(ctx context.Context, id string) (*models.Course, error)
	ListByDepartment(ctx context.Context, departmentID string) ([]models.Course, error)
}

type roomRepository interface {
	Create(ctx context.Context, room *models.Room) error
	FindByID(ctx context.Context, id string) (*models.Room, error)
}

type termRepository interface {
	Create(ctx context.Context, term *models.Term) error
	FindByID(ctx context.Context, id string) (*models.Term, error)
	List(ctx context.Context) ([]models.Term, error)
}

// CreateCourseRequest describes course creation input.
type CreateCourseRequest struct {
	ID            string `json:"id" validate:"omitempty,max=36"`
	DepartmentID  string `json:"department_id" validate:"required"`
	Name          string `json:"name" validate:"required"`
	Credits       int    `json:"credits" validate:"gte=0"`
	TheoryHours   int    `json:"theory_hours" validate:"gte=0"`
	PracticeHours int    `json:"practice_hours" validate:"gte=0"`
	Description   string `json:"description"`
}

// CreateTermRequest describes term creation input.
type CreateTermRequest struct {
	ID        string    `json:"id" validate:"omitempty,max=36"`
	Name      string    `json:"name" validate:"required"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
}

// CatalogService maintains the institution's static reference data.
type CatalogService struct {
	departments departmentRepository
	courses     courseRepository
	rooms       roomRepository
	terms       termRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCatalogService constructs CatalogService.
func NewCatalogService(departments departmentRepository, courses courseRepository, rooms roomRepository, terms termRepository, validate *validator.Validate, logger *zap.Logger) *CatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{departments: departments, courses: courses, rooms: rooms, terms: terms, validator: validate, logger: logger}
}

// CreateDepartment persists a department.
func (s *CatalogService) CreateDepartment(ctx context.Context, id, name string) (*models.Department, error) {
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "department name required")
	}
	department := &models.Department{ID: id, Name: name}
	if department.ID == "" {
		department.ID = uuid.NewString()
	}
	if err := s.departments.Create(ctx, department); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "department id already in use")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create department")
	}
	return department, nil
}

// CreateCourse persists a course under an existing department.
func (s *CatalogService) CreateCourse(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if _, err := s.departments.FindByID(ctx, req.DepartmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
	}
	course := &models.Course{
		ID:            req.ID,
		DepartmentID:  req.DepartmentID,
		Name:          req.Name,
		Credits:       req.Credits,
		TheoryHours:   req.TheoryHours,
		PracticeHours: req.PracticeHours,
		Description:   req.Description,
	}
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	if err := s.courses.Create(ctx, course); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "course id already in use")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	return course, nil
}

// CreateRoom persists a room.
func (s *CatalogService) CreateRoom(ctx context.Context, id, name, location string) (*models.Room, error) {
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "room name required")
	}
	room := &models.Room{ID: id, Name: name, Location: location}
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "room id already in use")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create room")
	}
	return room, nil
}

// CreateTerm persists a term after checking the date range.
func (s *CatalogService) CreateTerm(ctx context.Context, req CreateTermRequest) (*models.Term, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid term payload")
	}
	if !req.StartDate.Before(req.EndDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "term start date must precede end date")
	}
	term := &models.Term{ID: req.ID, Name: req.Name, StartDate: req.StartDate, EndDate: req.EndDate}
	if term.ID == "" {
		term.ID = uuid.NewString()
	}
	if err := s.terms.Create(ctx, term); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "term id already in use")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create term")
	}
	return term, nil
}

// Department returns a department by id.
func (s *CatalogService) Department(ctx context.Context, id string) (*models.Department, error) {
	department, err := s.departments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
	}
	return department, nil
}

// Course returns a course by id.
func (s *CatalogService) Course(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Room returns a room by id.
func (s *CatalogService) Room(ctx context.Context, id string) (*models.Room, error) {
	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}
	return room, nil
}

// Departments lists all departments.
func (s *CatalogService) Departments(ctx context.Context) ([]models.Department, error) {
	departments, err := s.departments.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list departments")
	}
	return departments, nil
}

// Terms lists all terms.
func (s *CatalogService) Terms(ctx context.Context) ([]models.Term, error) {
	terms, err := s.terms.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list terms")
	}
	return terms, nil
}
