package account

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"schoolportal/internal/auth"
	"schoolportal/internal/metrics"
)

// TokenConfig carries the JWT parameters the service signs with.
type TokenConfig struct {
	Issuer     string
	SigningKey string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Service implements registration, login and the admin verification flow.
type Service struct {
	repo   Repository
	tokens TokenConfig
}

// NewService creates an account service.
func NewService(repo Repository, tokens TokenConfig) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// RegisterInput is the self-registration payload.
type RegisterInput struct {
	Name           string
	Email          string
	Password       string
	EmployeeNumber string
	Department     string
	Phone          string
}

// Register creates a pending teacher account. Logins are refused until an
// admin verifies it.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Account, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || in.Email == "" {
		return Account{}, errors.Join(ErrValidation, errors.New("name and email are required"))
	}
	if !strings.Contains(in.Email, "@") {
		return Account{}, errors.Join(ErrValidation, errors.New("email is malformed"))
	}
	if len(in.Password) < 8 {
		return Account{}, errors.Join(ErrValidation, errors.New("password must be at least 8 characters"))
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return Account{}, err
	}
	a := Account{
		ID:             uuid.NewString(),
		Name:           in.Name,
		Email:          in.Email,
		EmployeeNumber: in.EmployeeNumber,
		Department:     in.Department,
		Phone:          in.Phone,
		Role:           auth.RoleTeacher,
		Status:         StatusPending,
		PasswordHash:   hash,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return Account{}, err
	}
	return s.repo.GetByID(ctx, a.ID)
}

// AddVerified creates an already-verified teacher account, used when an
// admin adds staff directly. With an empty password the account cannot log
// in until a credentialed registration replaces it.
func (s *Service) AddVerified(ctx context.Context, in RegisterInput) (Account, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || in.Email == "" || !strings.Contains(in.Email, "@") {
		return Account{}, errors.Join(ErrValidation, errors.New("name and a valid email are required"))
	}
	if in.Password != "" && len(in.Password) < 8 {
		return Account{}, errors.Join(ErrValidation, errors.New("password must be at least 8 characters"))
	}
	hash := ""
	if in.Password != "" {
		var err error
		if hash, err = auth.HashPassword(in.Password); err != nil {
			return Account{}, err
		}
	}
	a := Account{
		ID:             uuid.NewString(),
		Name:           in.Name,
		Email:          in.Email,
		EmployeeNumber: in.EmployeeNumber,
		Department:     in.Department,
		Phone:          in.Phone,
		Role:           auth.RoleTeacher,
		Status:         StatusVerified,
		PasswordHash:   hash,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return Account{}, err
	}
	return s.repo.GetByID(ctx, a.ID)
}

// Login exchanges credentials for a token pair and the profile. Pending and
// rejected accounts are refused even with a correct password.
func (s *Service) Login(ctx context.Context, email, password string) (Account, auth.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	a, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return Account{}, auth.TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return Account{}, auth.TokenPair{}, err
	}
	if !auth.CheckPassword(a.PasswordHash, password) {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return Account{}, auth.TokenPair{}, ErrInvalidCredentials
	}
	if a.Status != StatusVerified {
		metrics.LoginsTotal.WithLabelValues("unverified").Inc()
		return Account{}, auth.TokenPair{}, ErrNotVerified
	}
	pair, err := s.issue(ctx, a)
	if err != nil {
		return Account{}, auth.TokenPair{}, err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return a, pair, nil
}

// Refresh rotates a refresh token into a new pair.
func (s *Service) Refresh(ctx context.Context, token string) (Account, auth.TokenPair, error) {
	stored, err := s.repo.GetRefreshToken(ctx, token)
	if err != nil {
		return Account{}, auth.TokenPair{}, err
	}
	if stored.Revoked || time.Now().After(stored.ExpiresAt) {
		return Account{}, auth.TokenPair{}, ErrInvalidRefresh
	}
	a, err := s.repo.GetByID(ctx, stored.TeacherID)
	if err != nil {
		return Account{}, auth.TokenPair{}, ErrInvalidRefresh
	}
	if a.Status != StatusVerified {
		return Account{}, auth.TokenPair{}, ErrNotVerified
	}
	if err := s.repo.RevokeRefreshToken(ctx, token); err != nil {
		return Account{}, auth.TokenPair{}, err
	}
	pair, err := s.issue(ctx, a)
	if err != nil {
		return Account{}, auth.TokenPair{}, err
	}
	return a, pair, nil
}

// Pending lists accounts awaiting verification.
func (s *Service) Pending(ctx context.Context) ([]Account, error) {
	return s.repo.ListByStatus(ctx, StatusPending)
}

// Verify approves a pending account.
func (s *Service) Verify(ctx context.Context, id string) error {
	return s.repo.SetStatus(ctx, id, StatusVerified)
}

// Reject refuses a pending account. The row is kept so the email stays
// reserved and the decision is auditable.
func (s *Service) Reject(ctx context.Context, id string) error {
	return s.repo.SetStatus(ctx, id, StatusRejected)
}

// Dashboard returns the admin landing counts.
func (s *Service) Dashboard(ctx context.Context) (DashboardCounts, error) {
	return s.repo.DashboardCounts(ctx)
}

// Profile returns one account by id.
func (s *Service) Profile(ctx context.Context, id string) (Account, error) {
	return s.repo.GetByID(ctx, id)
}

// EnsureAdmin bootstraps the admin account from config on startup. Nothing
// happens when the email already exists or no password is configured.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	if password == "" {
		return nil
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	a := Account{
		ID:           uuid.NewString(),
		Name:         "Administrator",
		Email:        email,
		Role:         auth.RoleAdmin,
		Status:       StatusVerified,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return err
	}
	log.Printf("account: bootstrapped admin %s", email)
	return nil
}

func (s *Service) issue(ctx context.Context, a Account) (auth.TokenPair, error) {
	pair, err := auth.Issue(a.ID, a.Role, s.tokens.Issuer, s.tokens.SigningKey, s.tokens.AccessTTL, s.tokens.RefreshTTL)
	if err != nil {
		return auth.TokenPair{}, err
	}
	err = s.repo.SaveRefreshToken(ctx, RefreshToken{
		Token:     pair.RefreshToken,
		TeacherID: a.ID,
		ExpiresAt: pair.RefreshExp,
	})
	if err != nil {
		return auth.TokenPair{}, err
	}
	return pair, nil
}
