package account

import (
	"context"
	"errors"
	"time"
)

// Verification statuses for teacher accounts. Registration creates a pending
// account; only verified accounts can log in.
const (
	StatusPending  = "pending"
	StatusVerified = "verified"
	StatusRejected = "rejected"
)

var (
	// ErrNotFound means no account matched.
	ErrNotFound = errors.New("account not found")
	// ErrEmailTaken means the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials covers unknown email or wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrNotVerified means the account has not been approved by an admin.
	ErrNotVerified = errors.New("account pending verification")
	// ErrInvalidRefresh means the refresh token is unknown, revoked or expired.
	ErrInvalidRefresh = errors.New("invalid refresh token")
	// ErrValidation wraps client input problems.
	ErrValidation = errors.New("invalid account input")
)

// Account is a teacher login backed by a row of the teachers table. The
// roster package exposes the same row as display data.
type Account struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	EmployeeNumber string    `json:"employeeNumber,omitempty"`
	Department     string    `json:"department,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Role           string    `json:"role"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`

	PasswordHash string `json:"-"`
}

// RefreshToken is a stored refresh token for rotation checks.
type RefreshToken struct {
	Token     string
	TeacherID string
	ExpiresAt time.Time
	Revoked   bool
}

// DashboardCounts are the admin landing numbers.
type DashboardCounts struct {
	Students         int `json:"students"`
	VerifiedTeachers int `json:"verifiedTeachers"`
	PendingTeachers  int `json:"pendingTeachers"`
	Homework         int `json:"homework"`
	Contributors     int `json:"contributors"`
}

// Repository is the persistence surface for accounts.
type Repository interface {
	Create(ctx context.Context, a Account) error
	GetByEmail(ctx context.Context, email string) (Account, error)
	GetByID(ctx context.Context, id string) (Account, error)
	ListByStatus(ctx context.Context, status string) ([]Account, error)
	SetStatus(ctx context.Context, id, status string) error
	SaveRefreshToken(ctx context.Context, t RefreshToken) error
	GetRefreshToken(ctx context.Context, token string) (RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, token string) error
	DashboardCounts(ctx context.Context) (DashboardCounts, error)
}
