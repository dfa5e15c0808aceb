package service

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-adm-api/internal/models"
	appErrors "github.com/noah-isme/uni-adm-api/pkg/errors"
)

// weightTolerance absorbs NUMERIC(5,2) rounding when comparing weight totals.
const weightTolerance = 0.01

type examRepository interface {
	Create(ctx context.Context, exam *models.Exam) error
	FindByID(ctx context.Context, id string) (*models.Exam, error)
	ListBySection(ctx context.Context, classID string) ([]models.Exam, error)
	SumWeights(ctx context.Context, classID string) (float64, error)
}

type gradeRepository interface {
	Upsert(ctx context.Context, grade *models.Grade) error
	RowsForEnrollment(ctx context.Context, enrollmentID string) ([]models.GradeRow, error)
}

type sectionReader interface {
	FindByID(ctx context.Context, id string) (*models.ClassSection, error)
}

// finalGradeCache is the read cache seam; the redis adapter lives in
// cache_service.go and a nil cache disables caching entirely.
type finalGradeCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Del(ctx context.Context, key string)
}

// CreateExamRequest describes exam creation input.
type CreateExamRequest struct {
	ID       string  `json:"id" validate:"omitempty,max=36"`
	ClassID  string  `json:"class_id" validate:"required"`
	Name     string  `json:"name" validate:"required"`
	MaxScore float64 `json:"max_score" validate:"required,gt=0"`
	Weight   float64 `json:"weight" validate:"required,gt=0,lte=100"`
}

// RecordGradeRequest describes a grade entry.
type RecordGradeRequest struct {
	EnrollmentID string  `json:"enrollment_id" validate:"required"`
	ExamID       string  `json:"exam_id" validate:"required"`
	Score        float64 `json:"score" validate:"gte=0"`
	Letter       string  `json:"letter" validate:"omitempty,max=2"`
	Notes        *string `json:"notes"`
}

// AssessmentService manages exams, grade entry and final-grade calculation.
type AssessmentService struct {
	exams       examRepository
	grades      gradeRepository
	sections    sectionReader
	enrollments enrollmentReader
	cache       finalGradeCache
	cacheTTL    time.Duration
	validator   *validator.Validate
	logger      *zap.Logger
	metrics     *MetricsService
	round       func(float64) float64
}

// NewAssessmentService constructs AssessmentService. cache may be nil.
func NewAssessmentService(exams examRepository, grades gradeRepository, sections sectionReader, enrollments enrollmentReader, cache finalGradeCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *AssessmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssessmentService{
		exams:       exams,
		grades:      grades,
		sections:    sections,
		enrollments: enrollments,
		cache:       cache,
		cacheTTL:    cacheTTL,
		validator:   validate,
		logger:      logger,
		metrics:     metrics,
		round:       func(v float64) float64 { return math.RoundToEven(v*100) / 100 },
	}
}

// CreateExam adds an exam to a section. The weight total across the
// section's exams may never exceed 100, checked here so a bad weight plan
// fails at creation rather than at final-grade time.
func (s *AssessmentService) CreateExam(ctx context.Context, req CreateExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam payload")
	}
	if _, err := s.sections.FindByID(ctx, req.ClassID); err != nil {
		return nil, notFoundOr(err, "section not found", "failed to load section")
	}
	total, err := s.exams.SumWeights(ctx, req.ClassID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum exam weights")
	}
	if total+req.Weight > 100+weightTolerance {
		return nil, appErrors.Clone(appErrors.ErrInvalidWeights, "section exam weights would exceed 100")
	}
	exam := &models.Exam{ID: req.ID, ClassID: req.ClassID, Name: req.Name, MaxScore: req.MaxScore, Weight: req.Weight}
	if err := s.exams.Create(ctx, exam); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create exam")
	}
	s.metrics.CountOp("create_exam")
	return exam, nil
}

// Exams lists the exams of a section.
func (s *AssessmentService) Exams(ctx context.Context, classID string) ([]models.Exam, error) {
	exams, err := s.exams.ListBySection(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exams")
	}
	return exams, nil
}

// RecordGrade upserts a student's score on an exam. The exam must belong to
// the enrollment's section and the score must lie within [0, max_score].
func (s *AssessmentService) RecordGrade(ctx context.Context, req RecordGradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	enrollment, err := s.enrollments.FindByID(ctx, req.EnrollmentID)
	if err != nil {
		return nil, notFoundOr(err, "enrollment not found", "failed to load enrollment")
	}
	exam, err := s.exams.FindByID(ctx, req.ExamID)
	if err != nil {
		return nil, notFoundOr(err, "exam not found", "failed to load exam")
	}
	if exam.ClassID != enrollment.ClassID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "exam does not belong to the enrollment's section")
	}
	if req.Score < 0 || req.Score > exam.MaxScore {
		return nil, appErrors.Clone(appErrors.ErrValidation, "score outside exam range")
	}
	grade := &models.Grade{
		EnrollmentID: req.EnrollmentID,
		ExamID:       req.ExamID,
		FinalScore:   req.Score,
		LetterScore:  req.Letter,
		Notes:        req.Notes,
	}
	if err := s.grades.Upsert(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record grade")
	}
	if s.cache != nil {
		s.cache.Del(ctx, finalGradeKey(req.EnrollmentID))
	}
	s.metrics.CountOp("record_grade")
	return grade, nil
}

// ComputeFinalGrade returns the weighted sum of the enrollment's exam scores.
// Every exam of the section must carry a grade and the section's weights
// must total 100.
func (s *AssessmentService) ComputeFinalGrade(ctx context.Context, enrollmentID string) (*models.FinalGrade, error) {
	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, finalGradeKey(enrollmentID)); ok {
			var cached models.FinalGrade
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	enrollment, err := s.enrollments.FindByID(ctx, enrollmentID)
	if err != nil {
		return nil, notFoundOr(err, "enrollment not found", "failed to load enrollment")
	}
	rows, err := s.grades.RowsForEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade rows")
	}
	if len(rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidWeights, "section has no exams")
	}

	var weightTotal, weighted float64
	for _, row := range rows {
		if row.Score == nil {
			return nil, appErrors.Clone(appErrors.ErrIncompleteGrades, "exam "+row.ExamName+" has no recorded grade")
		}
		weightTotal += row.Weight
		weighted += *row.Score * row.Weight / 100
	}
	if math.Abs(weightTotal-100) > weightTolerance {
		return nil, appErrors.Clone(appErrors.ErrInvalidWeights, "section exam weights do not total 100")
	}

	final := &models.FinalGrade{
		EnrollmentID: enrollmentID,
		ClassID:      enrollment.ClassID,
		Score:        s.round(weighted),
		Rows:         rows,
	}
	if s.cache != nil {
		if raw, err := json.Marshal(final); err == nil {
			s.cache.Set(ctx, finalGradeKey(enrollmentID), raw, s.cacheTTL)
		}
	}
	return final, nil
}

func finalGradeKey(enrollmentID string) string {
	return "final_grade:" + enrollmentID
}
