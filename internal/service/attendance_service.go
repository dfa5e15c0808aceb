package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-adm-api/internal/models"
	appErrors "github.com/noah-isme/uni-adm-api/pkg/errors"
)

type attendanceRepository interface {
	Upsert(ctx context.Context, attendance *models.Attendance) error
	ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.Attendance, error)
	Summary(ctx context.Context, enrollmentID string) (*models.AttendanceSummary, error)
}

type enrollmentReader interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
}

// RecordAttendanceRequest describes an attendance entry.
type RecordAttendanceRequest struct {
	EnrollmentID string    `json:"enrollment_id" validate:"required"`
	Date         time.Time `json:"date" validate:"required"`
	Present      bool      `json:"present"`
}

// AttendanceService records daily presence per enrollment.
type AttendanceService struct {
	repo        attendanceRepository
	enrollments enrollmentReader
	validator   *validator.Validate
	logger      *zap.Logger
	metrics     *MetricsService
}

// NewAttendanceService constructs AttendanceService.
func NewAttendanceService(repo attendanceRepository, enrollments enrollmentReader, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, enrollments: enrollments, validator: validate, logger: logger, metrics: metrics}
}

// Record upserts the attendance entry for (enrollment, date). Recording the
// same date twice overwrites the earlier status.
func (s *AttendanceService) Record(ctx context.Context, req RecordAttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if _, err := s.enrollments.FindByID(ctx, req.EnrollmentID); err != nil {
		return nil, notFoundOr(err, "enrollment not found", "failed to load enrollment")
	}
	// Keep the caller's calendar date. Truncate works on epoch days, which
	// shifts local timestamps east of UTC onto the previous day.
	y, m, d := req.Date.Date()
	attendance := &models.Attendance{
		EnrollmentID: req.EnrollmentID,
		Date:         time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Present:      req.Present,
	}
	if err := s.repo.Upsert(ctx, attendance); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}
	s.metrics.CountOp("record_attendance")
	return attendance, nil
}

// History lists attendance entries for an enrollment.
func (s *AttendanceService) History(ctx context.Context, enrollmentID string) ([]models.Attendance, error) {
	records, err := s.repo.ListByEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return records, nil
}

// Summary aggregates presence counts for an enrollment.
func (s *AttendanceService) Summary(ctx context.Context, enrollmentID string) (*models.AttendanceSummary, error) {
	if _, err := s.enrollments.FindByID(ctx, enrollmentID); err != nil {
		return nil, notFoundOr(err, "enrollment not found", "failed to load enrollment")
	}
	summary, err := s.repo.Summary(ctx, enrollmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to summarise attendance")
	}
	return summary, nil
}
