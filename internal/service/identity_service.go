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
	"github.com/noah-isme/uni-adm-api/pkg/password"
)

type identityRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	HasSpecialization(ctx context.Context, userID string) (bool, error)
	CreateAdmin(ctx context.Context, admin *models.Admin) error
	CreateLecturer(ctx context.Context, lecturer *models.Lecturer) error
	CreateStudent(ctx context.Context, student *models.Student) error
	FindIdentity(ctx context.Context, userID string) (*models.Identity, error)
}

type departmentReader interface {
	FindByID(ctx context.Context, id string) (*models.Department, error)
}

// CreateUserRequest describes account creation input. ID is optional; a UUID
// is assigned when the institution did not supply one.
type CreateUserRequest struct {
	ID          string     `json:"id" validate:"omitempty,max=36"`
	Email       string     `json:"email" validate:"required,email"`
	FullName    string     `json:"full_name" validate:"required"`
	Role        string     `json:"role" validate:"required"`
	Password    string     `json:"password" validate:"required,min=6"`
	DateOfBirth *time.Time `json:"date_of_birth"`
}

// AppointLecturerRequest attaches the lecturer specialization to a user.
type AppointLecturerRequest struct {
	UserID       string  `json:"user_id" validate:"required"`
	DepartmentID *string `json:"department_id"`
	Position     string  `json:"position" validate:"required"`
}

// RegisterStudentRequest attaches the student specialization to a user.
type RegisterStudentRequest struct {
	UserID       string `json:"user_id" validate:"required"`
	DepartmentID string `json:"department_id" validate:"required"`
	EntryYear    int    `json:"entry_year" validate:"required,gte=1900"`
}

// IdentityService manages accounts, credentials and role specialization.
type IdentityService struct {
	repo        identityRepository
	departments departmentReader
	hasher      password.Hasher
	validator   *validator.Validate
	logger      *zap.Logger
	metrics     *MetricsService
}

// NewIdentityService constructs IdentityService.
func NewIdentityService(repo identityRepository, departments departmentReader, hasher password.Hasher, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *IdentityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityService{repo: repo, departments: departments, hasher: hasher, validator: validate, logger: logger, metrics: metrics}
}

// CreateUser registers a new account. The raw password never reaches the
// store; only the digest is persisted.
func (s *IdentityService) CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}
	role := models.UserRole(req.Role)
	if !role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}
	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	user := &models.User{
		ID:           req.ID,
		Email:        req.Email,
		PasswordHash: digest,
		Role:         role,
		FullName:     req.FullName,
		DateOfBirth:  req.DateOfBirth,
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "user id or email already in use")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}
	s.metrics.CountOp("create_user")
	s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// VerifyCredentials authenticates by email and password. The failure message
// never distinguishes an unknown email from a wrong password.
func (s *IdentityService) VerifyCredentials(ctx context.Context, email, rawPassword string) (*models.Identity, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}
	if !s.hasher.Verify(rawPassword, user.PasswordHash) {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}
	identity, err := s.repo.FindIdentity(ctx, user.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve identity")
	}
	s.metrics.CountOp("verify_credentials")
	return identity, nil
}

// ResolveIdentity returns the user with its role variant resolved.
func (s *IdentityService) ResolveIdentity(ctx context.Context, userID string) (*models.Identity, error) {
	identity, err := s.repo.FindIdentity(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve identity")
	}
	return identity, nil
}

// GrantAdmin attaches the admin specialization to an existing user.
func (s *IdentityService) GrantAdmin(ctx context.Context, userID string) (*models.Admin, error) {
	user, err := s.loadUnspecialized(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user role is not admin")
	}
	admin := &models.Admin{UserID: userID}
	if err := s.repo.CreateAdmin(ctx, admin); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "user already specialized")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create admin")
	}
	return admin, nil
}

// AppointLecturer attaches the lecturer specialization to an existing user.
func (s *IdentityService) AppointLecturer(ctx context.Context, req AppointLecturerRequest) (*models.Lecturer, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lecturer payload")
	}
	user, err := s.loadUnspecialized(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleLecturer {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user role is not lecturer")
	}
	if req.DepartmentID != nil {
		if _, err := s.departments.FindByID(ctx, *req.DepartmentID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
		}
	}
	lecturer := &models.Lecturer{UserID: req.UserID, DepartmentID: req.DepartmentID, Position: req.Position}
	if err := s.repo.CreateLecturer(ctx, lecturer); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "user already specialized")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lecturer")
	}
	return lecturer, nil
}

// RegisterStudent attaches the student specialization to an existing user.
// Students always belong to a department.
func (s *IdentityService) RegisterStudent(ctx context.Context, req RegisterStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	user, err := s.loadUnspecialized(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user role is not student")
	}
	if _, err := s.departments.FindByID(ctx, req.DepartmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
	}
	student := &models.Student{UserID: req.UserID, DepartmentID: req.DepartmentID, EntryYear: req.EntryYear, Active: true}
	if err := s.repo.CreateStudent(ctx, student); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "user already specialized")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	return student, nil
}

// loadUnspecialized fetches the user and enforces the at-most-one
// specialization invariant the schema cannot express.
func (s *IdentityService) loadUnspecialized(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	specialized, err := s.repo.HasSpecialization(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check specialization")
	}
	if specialized {
		return nil, appErrors.Clone(appErrors.ErrConflict, "user already specialized")
	}
	return user, nil
}
