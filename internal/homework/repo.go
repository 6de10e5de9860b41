package homework

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound means no assignment matched the id.
var ErrNotFound = errors.New("homework not found")

// Homework is one assignment. Dates are ISO calendar dates.
type Homework struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Subject      string    `json:"subject,omitempty"`
	Grade        string    `json:"grade,omitempty"`
	AssignedDate string    `json:"assignedDate"`
	DueDate      string    `json:"dueDate"`
	CreatedBy    string    `json:"createdBy,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Repository is the persistence surface for assignments.
type Repository interface {
	List(ctx context.Context) ([]Homework, error)
	Get(ctx context.Context, id string) (Homework, error)
	Create(ctx context.Context, h Homework) error
	Update(ctx context.Context, h Homework) error
	Delete(ctx context.Context, id string) error
}

type pgRepository struct {
	db *sql.DB
}

// NewRepository creates a Postgres-backed homework repository.
func NewRepository(db *sql.DB) Repository {
	return &pgRepository{db: db}
}

const homeworkColumns = `id, title, description, subject, grade, assigned_date, due_date, COALESCE(created_by, ''), created_at, updated_at`

func scanHomework(row interface{ Scan(...any) error }) (Homework, error) {
	var h Homework
	err := row.Scan(&h.ID, &h.Title, &h.Description, &h.Subject, &h.Grade, &h.AssignedDate, &h.DueDate, &h.CreatedBy, &h.CreatedAt, &h.UpdatedAt)
	return h, err
}

func (r *pgRepository) List(ctx context.Context) ([]Homework, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+homeworkColumns+` FROM homework ORDER BY due_date, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Homework{}
	for rows.Next() {
		h, err := scanHomework(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *pgRepository) Get(ctx context.Context, id string) (Homework, error) {
	h, err := scanHomework(r.db.QueryRowContext(ctx,
		`SELECT `+homeworkColumns+` FROM homework WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Homework{}, ErrNotFound
	}
	return h, err
}

func (r *pgRepository) Create(ctx context.Context, h Homework) error {
	var createdBy any
	if h.CreatedBy != "" {
		createdBy = h.CreatedBy
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO homework (id, title, description, subject, grade, assigned_date, due_date, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, h.ID, h.Title, h.Description, h.Subject, h.Grade, h.AssignedDate, h.DueDate, createdBy)
	return err
}

func (r *pgRepository) Update(ctx context.Context, h Homework) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE homework
		SET title = $2, description = $3, subject = $4, grade = $5,
			assigned_date = $6, due_date = $7, updated_at = NOW()
		WHERE id = $1
	`, h.ID, h.Title, h.Description, h.Subject, h.Grade, h.AssignedDate, h.DueDate)
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
	res, err := r.db.ExecContext(ctx, `DELETE FROM homework WHERE id = $1`, id)
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
