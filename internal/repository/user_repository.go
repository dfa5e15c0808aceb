package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-adm-api/internal/models"
)

// UserRepository handles persistence of users and their role
// specialization rows.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs the repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create persists a new user row. Unique violations on id or email surface
// as driver errors for the service to map.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	const query = `INSERT INTO users (id, email, password_hash, role, full_name, date_of_birth, created_at, updated_at)
        VALUES (:id, :email, :password_hash, :role, :full_name, :date_of_birth, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// FindByID returns a user by its ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	const query = `SELECT id, email, password_hash, role, full_name, date_of_birth, created_at, updated_at FROM users WHERE id = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail returns a user by its unique email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `SELECT id, email, password_hash, role, full_name, date_of_birth, created_at, updated_at FROM users WHERE email = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

// HasSpecialization reports whether the user already occupies one of the
// admin, lecturer or student tables. The schema does not enforce
// exclusivity, so every specialization write goes through this check.
func (r *UserRepository) HasSpecialization(ctx context.Context, userID string) (bool, error) {
	const query = `SELECT EXISTS (
        SELECT 1 FROM admins WHERE user_id = $1
        UNION ALL
        SELECT 1 FROM lecturers WHERE user_id = $1
        UNION ALL
        SELECT 1 FROM students WHERE user_id = $1
    )`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID); err != nil {
		return false, fmt.Errorf("check specialization: %w", err)
	}
	return exists, nil
}

// CreateAdmin inserts the admin specialization row.
func (r *UserRepository) CreateAdmin(ctx context.Context, admin *models.Admin) error {
	const query = `INSERT INTO admins (user_id) VALUES ($1)`
	if _, err := r.db.ExecContext(ctx, query, admin.UserID); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}

// CreateLecturer inserts the lecturer specialization row.
func (r *UserRepository) CreateLecturer(ctx context.Context, lecturer *models.Lecturer) error {
	const query = `INSERT INTO lecturers (user_id, department_id, position) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, lecturer.UserID, lecturer.DepartmentID, lecturer.Position); err != nil {
		return fmt.Errorf("create lecturer: %w", err)
	}
	return nil
}

// CreateStudent inserts the student specialization row.
func (r *UserRepository) CreateStudent(ctx context.Context, student *models.Student) error {
	const query = `INSERT INTO students (user_id, department_id, entry_year, status) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, student.UserID, student.DepartmentID, student.EntryYear, student.Active); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// FindIdentity loads a user together with its specialization row.
func (r *UserRepository) FindIdentity(ctx context.Context, userID string) (*models.Identity, error) {
	user, err := r.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	identity := &models.Identity{User: *user}

	var admin models.Admin
	if err := r.db.GetContext(ctx, &admin, `SELECT user_id FROM admins WHERE user_id = $1`, userID); err == nil {
		identity.Admin = &admin
		return identity, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load admin row: %w", err)
	}

	var lecturer models.Lecturer
	if err := r.db.GetContext(ctx, &lecturer, `SELECT user_id, department_id, position FROM lecturers WHERE user_id = $1`, userID); err == nil {
		identity.Lecturer = &lecturer
		return identity, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load lecturer row: %w", err)
	}

	var student models.Student
	if err := r.db.GetContext(ctx, &student, `SELECT user_id, department_id, entry_year, status FROM students WHERE user_id = $1`, userID); err == nil {
		identity.Student = &student
		return identity, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load student row: %w", err)
	}

	return identity, nil
}

// FindStudent returns the student specialization row.
func (r *UserRepository) FindStudent(ctx context.Context, userID string) (*models.Student, error) {
	const query = `SELECT user_id, department_id, entry_year, status FROM students WHERE user_id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, userID); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindLecturer returns the lecturer specialization row.
func (r *UserRepository) FindLecturer(ctx context.Context, userID string) (*models.Lecturer, error) {
	const query = `SELECT user_id, department_id, position FROM lecturers WHERE user_id = $1`
	var lecturer models.Lecturer
	if err := r.db.GetContext(ctx, &lecturer, query, userID); err != nil {
		return nil, err
	}
	return &lecturer, nil
}

// InsertAdminIfAbsent creates the bootstrap admin user plus its admins row
// inside one transaction, guarded so that at most one admin-role user can
// ever be seeded. The insert itself re-checks existence, so two concurrent
// invocations cannot both create a row: the loser either inserts nothing or
// trips the users primary-key constraint.
func (r *UserRepository) InsertAdminIfAbsent(ctx context.Context, user *models.User) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin bootstrap tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insertUser = `INSERT INTO users (id, email, password_hash, role, full_name, created_at, updated_at)
        SELECT $1, $2, $3, $4, $5, $6, $6
        WHERE NOT EXISTS (SELECT 1 FROM users WHERE role = $4)`
	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, insertUser, user.ID, user.Email, user.PasswordHash, models.RoleAdmin, user.FullName, now)
	if err != nil {
		return false, fmt.Errorf("insert bootstrap admin: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("bootstrap rows affected: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO admins (user_id) VALUES ($1)`, user.ID); err != nil {
		return false, fmt.Errorf("insert bootstrap admin row: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit bootstrap tx: %w", err)
	}
	return true, nil
}
