package service

import (
	"context"
	"sync"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-adm-api/internal/models"
	"github.com/noah-isme/uni-adm-api/pkg/config"
	"github.com/noah-isme/uni-adm-api/pkg/password"
)

// mockBootstrapRepo mimics the guarded insert: the first caller wins, every
// later caller sees zero rows affected.
type mockBootstrapRepo struct {
	mu      sync.Mutex
	seeded  *models.User
	inserts int
	err     error
}

func (m *mockBootstrapRepo) InsertAdminIfAbsent(ctx context.Context, user *models.User) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	m.inserts++
	if m.seeded != nil {
		return false, nil
	}
	u := *user
	m.seeded = &u
	return true, nil
}

func bootstrapConfig() config.BootstrapConfig {
	return config.BootstrapConfig{
		AdminID:       "admin01",
		AdminEmail:    "admin@example.com",
		AdminFullName: "System Administrator",
		AdminPassword: "Admin123",
	}
}

func TestBootstrapServiceSeedsOnce(t *testing.T) {
	repo := &mockBootstrapRepo{}
	svc := NewBootstrapService(repo, password.NewBcryptHasher(4), bootstrapConfig(), nil, nil)

	created, err := svc.EnsureAdminExists(context.Background())
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, repo.seeded)
	assert.Equal(t, "admin01", repo.seeded.ID)
	assert.Equal(t, models.RoleAdmin, repo.seeded.Role)
	assert.NotEqual(t, "Admin123", repo.seeded.PasswordHash)

	created, err = svc.EnsureAdminExists(context.Background())
	require.NoError(t, err)
	assert.False(t, created)
	require.NotNil(t, repo.seeded)
}

func TestBootstrapServiceConcurrentCallers(t *testing.T) {
	repo := &mockBootstrapRepo{}
	svc := NewBootstrapService(repo, password.NewBcryptHasher(4), bootstrapConfig(), nil, nil)

	const callers = 10
	results := make(chan bool, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := svc.EnsureAdminExists(context.Background())
			assert.NoError(t, err)
			results <- created
		}()
	}
	wg.Wait()
	close(results)

	var wins int
	for created := range results {
		if created {
			wins++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, callers, repo.inserts)
}

func TestBootstrapServiceToleratesForeignAdminID(t *testing.T) {
	// An admin created by hand under any other id satisfies the guard; the
	// seeding must report a clean no-op, not an error.
	repo := &mockBootstrapRepo{seeded: &models.User{ID: "other-admin", Role: models.RoleAdmin}}
	svc := NewBootstrapService(repo, password.NewBcryptHasher(4), bootstrapConfig(), nil, nil)

	created, err := svc.EnsureAdminExists(context.Background())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "other-admin", repo.seeded.ID)
}

func TestBootstrapServiceUniqueViolationMeansPresent(t *testing.T) {
	repo := &mockBootstrapRepo{err: &pq.Error{Code: "23505"}}
	svc := NewBootstrapService(repo, password.NewBcryptHasher(4), bootstrapConfig(), nil, nil)

	created, err := svc.EnsureAdminExists(context.Background())
	require.NoError(t, err)
	assert.False(t, created)
}
