package models

import "time"

// UserRole discriminates the account types. Stored lowercase; the column is
// a plain varchar, so the services validate values rather than the schema.
type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleLecturer UserRole = "lecturer"
	RoleStudent  UserRole = "student"
)

// Valid returns true when the role is a supported value.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleLecturer, RoleStudent:
		return true
	default:
		return false
	}
}

// User represents an account stored in the users table. IDs are short
// externally assigned strings; PasswordHash only ever holds a digest.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         UserRole   `db:"role" json:"role"`
	FullName     string     `db:"full_name" json:"full_name"`
	DateOfBirth  *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Admin is the admin specialization row.
type Admin struct {
	UserID string `db:"user_id" json:"user_id"`
}

// Lecturer is the lecturer specialization row. DepartmentID is nullable.
type Lecturer struct {
	UserID       string  `db:"user_id" json:"user_id"`
	DepartmentID *string `db:"department_id" json:"department_id,omitempty"`
	Position     string  `db:"position" json:"position"`
}

// Student is the student specialization row. DepartmentID is required.
type Student struct {
	UserID       string `db:"user_id" json:"user_id"`
	DepartmentID string `db:"department_id" json:"department_id"`
	EntryYear    int    `db:"entry_year" json:"entry_year"`
	Active       bool   `db:"status" json:"active"`
}

// Identity is the resolved view handed to callers: the user plus exactly one
// specialization. At most one of Admin, Lecturer, Student is non-nil; all
// three nil means the account has not been specialized yet.
type Identity struct {
	User     User      `json:"user"`
	Admin    *Admin    `json:"admin,omitempty"`
	Lecturer *Lecturer `json:"lecturer,omitempty"`
	Student  *Student  `json:"student,omitempty"`
}

// Specialized reports whether the identity carries a role record.
func (i *Identity) Specialized() bool {
	return i.Admin != nil || i.Lecturer != nil || i.Student != nil
}
