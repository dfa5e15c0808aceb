package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/uni-adm-api/internal/models"
	"github.com/noah-isme/uni-adm-api/pkg/config"
	"github.com/noah-isme/uni-adm-api/pkg/database"
	appErrors "github.com/noah-isme/uni-adm-api/pkg/errors"
	"github.com/noah-isme/uni-adm-api/pkg/password"
)

type bootstrapRepository interface {
	InsertAdminIfAbsent(ctx context.Context, user *models.User) (bool, error)
}

// BootstrapService seeds the initial administrator account.
type BootstrapService struct {
	repo    bootstrapRepository
	hasher  password.Hasher
	cfg     config.BootstrapConfig
	logger  *zap.Logger
	metrics *MetricsService
}

// NewBootstrapService constructs BootstrapService.
func NewBootstrapService(repo bootstrapRepository, hasher password.Hasher, cfg config.BootstrapConfig, logger *zap.Logger, metrics *MetricsService) *BootstrapService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BootstrapService{repo: repo, hasher: hasher, cfg: cfg, logger: logger, metrics: metrics}
}

// EnsureAdminExists creates the configured administrator account plus its
// admins row when no admin-role user exists yet. Safe to run any number of
// times, sequentially or concurrently: the guarded insert plus the users
// unique constraints guarantee at most one admin is ever seeded. Returns
// true when this invocation created the account.
func (s *BootstrapService) EnsureAdminExists(ctx context.Context) (bool, error) {
	digest, err := s.hasher.Hash(s.cfg.AdminPassword)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash bootstrap password")
	}
	user := &models.User{
		ID:           s.cfg.AdminID,
		Email:        s.cfg.AdminEmail,
		PasswordHash: digest,
		Role:         models.RoleAdmin,
		FullName:     s.cfg.AdminFullName,
	}
	created, err := s.repo.InsertAdminIfAbsent(ctx, user)
	if err != nil {
		// A concurrent invocation won the race; the account exists.
		if database.IsUniqueViolation(err) {
			s.logger.Info("bootstrap admin already present")
			return false, nil
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed admin")
	}
	s.metrics.CountOp("bootstrap")
	if created {
		s.logger.Info("bootstrap admin created", zap.String("user_id", user.ID))
	} else {
		s.logger.Info("bootstrap admin already present")
	}
	return created, nil
}
