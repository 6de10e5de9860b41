package contributors

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound means no contributor matched the id.
	ErrNotFound = errors.New("contributor not found")
	// ErrValidation wraps client input problems.
	ErrValidation = errors.New("invalid contributor input")
)

// Contributor is one entry of the public contributors page.
type Contributor struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role,omitempty"`
	GithubURL string    `json:"githubUrl,omitempty"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Repository is the persistence surface for contributors.
type Repository interface {
	List(ctx context.Context) ([]Contributor, error)
	Create(ctx context.Context, c Contributor) error
	Update(ctx context.Context, c Contributor) error
	Delete(ctx context.Context, id string) error
}

type pgRepository struct {
	db *sql.DB
}

// NewRepository creates a Postgres-backed contributors repository.
func NewRepository(db *sql.DB) Repository {
	return &pgRepository{db: db}
}

func (r *pgRepository) List(ctx context.Context) ([]Contributor, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, role, github_url, avatar_url, created_at
		FROM contributors ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Contributor{}
	for rows.Next() {
		var c Contributor
		if err := rows.Scan(&c.ID, &c.Name, &c.Role, &c.GithubURL, &c.AvatarURL, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *pgRepository) Create(ctx context.Context, c Contributor) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO contributors (id, name, role, github_url, avatar_url)
		VALUES ($1, $2, $3, $4, $5)
	`, c.ID, c.Name, c.Role, c.GithubURL, c.AvatarURL)
	return err
}

func (r *pgRepository) Update(ctx context.Context, c Contributor) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE contributors SET name = $2, role = $3, github_url = $4, avatar_url = $5
		WHERE id = $1
	`, c.ID, c.Name, c.Role, c.GithubURL, c.AvatarURL)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contributors WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Service validates and stores contributor entries.
type Service struct {
	repo Repository
}

// NewService creates a contributors service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the public contributors page content.
func (s *Service) List(ctx context.Context) ([]Contributor, error) {
	return s.repo.List(ctx)
}

// Add validates and creates a contributor.
func (s *Service) Add(ctx context.Context, c Contributor) (Contributor, error) {
	if err := validate(&c); err != nil {
		return Contributor{}, err
	}
	c.ID = uuid.NewString()
	if err := s.repo.Create(ctx, c); err != nil {
		return Contributor{}, err
	}
	return c, nil
}

// Update applies edits to an existing contributor.
func (s *Service) Update(ctx context.Context, c Contributor) (Contributor, error) {
	if c.ID == "" {
		return Contributor{}, errors.Join(ErrValidation, errors.New("id is required"))
	}
	if err := validate(&c); err != nil {
		return Contributor{}, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return Contributor{}, err
	}
	return c, nil
}

// Delete removes a contributor.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func validate(c *Contributor) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return errors.Join(ErrValidation, errors.New("name is required"))
	}
	for _, u := range []string{c.GithubURL, c.AvatarURL} {
		if u != "" && !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return errors.Join(ErrValidation, errors.New("urls must be absolute http(s)"))
		}
	}
	return nil
}
