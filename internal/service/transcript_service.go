package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/uni-adm-api/internal/models"
	appErrors "github.com/noah-isme/uni-adm-api/pkg/errors"
	"github.com/noah-isme/uni-adm-api/pkg/export"
)

type enrollmentDetailReader interface {
	FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error)
}

type finalGradeComputer interface {
	ComputeFinalGrade(ctx context.Context, enrollmentID string) (*models.FinalGrade, error)
}

// TranscriptService renders an enrollment's grades as CSV or PDF.
type TranscriptService struct {
	enrollments enrollmentDetailReader
	grades      finalGradeComputer
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	logger      *zap.Logger
}

// NewTranscriptService constructs TranscriptService.
func NewTranscriptService(enrollments enrollmentDetailReader, grades finalGradeComputer, logger *zap.Logger) *TranscriptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscriptService{
		enrollments: enrollments,
		grades:      grades,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		logger:      logger,
	}
}

// TranscriptCSV renders the transcript dataset as CSV bytes.
func (s *TranscriptService) TranscriptCSV(ctx context.Context, enrollmentID string) ([]byte, error) {
	dataset, _, err := s.dataset(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	out, err := s.csv.Render(*dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render transcript csv")
	}
	return out, nil
}

// TranscriptPDF renders the transcript dataset as PDF bytes.
func (s *TranscriptService) TranscriptPDF(ctx context.Context, enrollmentID string) ([]byte, error) {
	dataset, title, err := s.dataset(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	out, err := s.pdf.Render(*dataset, title)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render transcript pdf")
	}
	return out, nil
}

func (s *TranscriptService) dataset(ctx context.Context, enrollmentID string) (*export.Dataset, string, error) {
	detail, err := s.enrollments.FindDetailByID(ctx, enrollmentID)
	if err != nil {
		return nil, "", notFoundOr(err, "enrollment not found", "failed to load enrollment")
	}
	final, err := s.grades.ComputeFinalGrade(ctx, enrollmentID)
	if err != nil {
		return nil, "", err
	}

	headers := []string{"Exam", "Weight", "Max Score", "Score", "Letter"}
	rows := make([]map[string]string, 0, len(final.Rows))
	for _, row := range final.Rows {
		letter := ""
		if row.Letter != nil {
			letter = *row.Letter
		}
		score := ""
		if row.Score != nil {
			score = fmt.Sprintf("%.2f", *row.Score)
		}
		rows = append(rows, map[string]string{
			"Exam":      row.ExamName,
			"Weight":    fmt.Sprintf("%.0f%%", row.Weight),
			"Max Score": fmt.Sprintf("%.2f", row.MaxScore),
			"Score":     score,
			"Letter":    letter,
		})
	}
	dataset := &export.Dataset{
		Headers: headers,
		Rows:    rows,
		Footer:  []string{"Final grade", "", "", fmt.Sprintf("%.2f", final.Score), ""},
	}
	title := fmt.Sprintf("Transcript: %s / %s (%s)", detail.StudentName, detail.CourseName, detail.TermName)
	return dataset, title, nil
}
