package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-adm-api/internal/models"
	appErrors "github.com/noah-isme/uni-adm-api/pkg/errors"
)

type mockSectionRepo struct {
	sections map[string]models.ClassSection
}

func (m *mockSectionRepo) Create(ctx context.Context, section *models.ClassSection) error {
	if m.sections == nil {
		m.sections = make(map[string]models.ClassSection)
	}
	if section.ID == "" {
		section.ID = fmt.Sprintf("sec-%d", len(m.sections)+1)
	}
	m.sections[section.ID] = *section
	return nil
}

func (m *mockSectionRepo) FindByID(ctx context.Context, id string) (*models.ClassSection, error) {
	if s, ok := m.sections[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSectionRepo) FindDetailByID(ctx context.Context, id string) (*models.SectionDetail, error) {
	if s, ok := m.sections[id]; ok {
		return &models.SectionDetail{ClassSection: s, CourseName: "Algorithms", LecturerName: "Dr. Smith", TermName: "2025 Fall", RoomName: "B-204"}, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSectionRepo) ExistsClash(ctx context.Context, section *models.ClassSection) (bool, error) {
	for _, s := range m.sections {
		if s.Schedule != section.Schedule {
			continue
		}
		if !s.StartDate.Before(section.EndDate) || !section.StartDate.Before(s.EndDate) {
			continue
		}
		if s.LecturerID == section.LecturerID || s.RoomID == section.RoomID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockSectionRepo) ListByTerm(ctx context.Context, termID string) ([]models.ClassSection, error) {
	var list []models.ClassSection
	for _, s := range m.sections {
		if s.TermID == termID {
			list = append(list, s)
		}
	}
	return list, nil
}

type mockCourseReader struct{ courses map[string]models.Course }

func (m *mockCourseReader) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

type mockLecturerReader struct{ lecturers map[string]models.Lecturer }

func (m *mockLecturerReader) FindLecturer(ctx context.Context, userID string) (*models.Lecturer, error) {
	if l, ok := m.lecturers[userID]; ok {
		return &l, nil
	}
	return nil, sql.ErrNoRows
}

type mockTermReader struct{ terms map[string]models.Term }

func (m *mockTermReader) FindByID(ctx context.Context, id string) (*models.Term, error) {
	if tm, ok := m.terms[id]; ok {
		return &tm, nil
	}
	return nil, sql.ErrNoRows
}

type mockRoomReader struct{ rooms map[string]models.Room }

func (m *mockRoomReader) FindByID(ctx context.Context, id string) (*models.Room, error) {
	if r, ok := m.rooms[id]; ok {
		return &r, nil
	}
	return nil, sql.ErrNoRows
}

func newSectionService(repo *mockSectionRepo) *SectionService {
	courses := &mockCourseReader{courses: map[string]models.Course{
		"course-1": {ID: "course-1", DepartmentID: "dep-1", Name: "Algorithms", Credits: 3},
	}}
	lecturers := &mockLecturerReader{lecturers: map[string]models.Lecturer{
		"lect-1": {UserID: "lect-1", Position: "professor"},
		"lect-2": {UserID: "lect-2", Position: "assistant"},
	}}
	terms := &mockTermReader{terms: map[string]models.Term{
		"term-1": {ID: "term-1", Name: "2025 Fall"},
	}}
	rooms := &mockRoomReader{rooms: map[string]models.Room{
		"room-1": {ID: "room-1", Name: "B-204"},
		"room-2": {ID: "room-2", Name: "B-205"},
	}}
	return NewSectionService(repo, courses, lecturers, terms, rooms, nil, nil, nil)
}

func validSectionRequest() CreateSectionRequest {
	return CreateSectionRequest{
		CourseID:    "course-1",
		LecturerID:  "lect-1",
		TermID:      "term-1",
		RoomID:      "room-1",
		MaxStudents: 30,
		Schedule:    3,
		StartDate:   time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC),
	}
}

func TestSectionServiceCreateSection(t *testing.T) {
	repo := &mockSectionRepo{}
	svc := newSectionService(repo)

	section, err := svc.CreateSection(context.Background(), validSectionRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, section.ID)

	detail, err := svc.Section(context.Background(), section.ID)
	require.NoError(t, err)
	assert.Equal(t, "Algorithms", detail.CourseName)
}

func TestSectionServiceBadDateRange(t *testing.T) {
	repo := &mockSectionRepo{}
	svc := newSectionService(repo)

	req := validSectionRequest()
	req.StartDate, req.EndDate = req.EndDate, req.StartDate
	_, err := svc.CreateSection(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	// Rejected before the insert; nothing persisted.
	assert.Empty(t, repo.sections)
}

func TestSectionServiceNonPositiveCapacity(t *testing.T) {
	repo := &mockSectionRepo{}
	svc := newSectionService(repo)

	req := validSectionRequest()
	req.MaxStudents = -5
	_, err := svc.CreateSection(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.sections)
}

func TestSectionServiceUnknownCourse(t *testing.T) {
	svc := newSectionService(&mockSectionRepo{})

	req := validSectionRequest()
	req.CourseID = "ghost"
	_, err := svc.CreateSection(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSectionServiceScheduleClash(t *testing.T) {
	repo := &mockSectionRepo{}
	svc := newSectionService(repo)

	_, err := svc.CreateSection(context.Background(), validSectionRequest())
	require.NoError(t, err)

	// Same lecturer, same slot, overlapping dates: conflict even in
	// another room.
	req := validSectionRequest()
	req.RoomID = "room-2"
	_, err = svc.CreateSection(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	// Different lecturer and room on the same slot is fine.
	req = validSectionRequest()
	req.LecturerID = "lect-2"
	req.RoomID = "room-2"
	_, err = svc.CreateSection(context.Background(), req)
	require.NoError(t, err)

	// Same room but a different slot is fine too.
	req = validSectionRequest()
	req.LecturerID = "lect-2"
	req.Schedule = 4
	_, err = svc.CreateSection(context.Background(), req)
	require.NoError(t, err)
}
