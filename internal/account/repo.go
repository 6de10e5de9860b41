package account

import (
	"context"
	"database/sql"
	"errors"
)

type pgRepository struct {
	db *sql.DB
}

// NewRepository creates a Postgres-backed account repository.
func NewRepository(db *sql.DB) Repository {
	return &pgRepository{db: db}
}

const accountColumns = `id, name, email, password_hash, employee_number, department, phone, role, status, created_at`

func scanAccount(row interface{ Scan(...any) error }) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.EmployeeNumber, &a.Department, &a.Phone, &a.Role, &a.Status, &a.CreatedAt)
	return a, err
}

func (r *pgRepository) Create(ctx context.Context, a Account) error {
	var taken bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM teachers WHERE email = $1)`, a.Email,
	).Scan(&taken); err != nil {
		return err
	}
	if taken {
		return ErrEmailTaken
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO teachers (id, name, email, password_hash, employee_number, department, phone, role, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, a.ID, a.Name, a.Email, a.PasswordHash, a.EmployeeNumber, a.Department, a.Phone, a.Role, a.Status)
	return err
}

func (r *pgRepository) GetByEmail(ctx context.Context, email string) (Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM teachers WHERE email = $1`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	return a, err
}

func (r *pgRepository) GetByID(ctx context.Context, id string) (Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM teachers WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	return a, err
}

func (r *pgRepository) ListByStatus(ctx context.Context, status string) ([]Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM teachers WHERE status = $1 ORDER BY created_at`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	accounts := []Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *pgRepository) SetStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE teachers SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
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

func (r *pgRepository) SaveRefreshToken(ctx context.Context, t RefreshToken) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (token, teacher_id, expires_at)
		VALUES ($1, $2, $3)
	`, t.Token, t.TeacherID, t.ExpiresAt)
	return err
}

func (r *pgRepository) GetRefreshToken(ctx context.Context, token string) (RefreshToken, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT token, teacher_id, expires_at, revoked
		FROM refresh_tokens WHERE token = $1
	`, token)
	var t RefreshToken
	if err := row.Scan(&t.Token, &t.TeacherID, &t.ExpiresAt, &t.Revoked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RefreshToken{}, ErrInvalidRefresh
		}
		return RefreshToken{}, err
	}
	return t, nil
}

func (r *pgRepository) RevokeRefreshToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1`, token)
	return err
}

func (r *pgRepository) DashboardCounts(ctx context.Context) (DashboardCounts, error) {
	var c DashboardCounts
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM students),
			(SELECT COUNT(*) FROM teachers WHERE status = 'verified'),
			(SELECT COUNT(*) FROM teachers WHERE status = 'pending'),
			(SELECT COUNT(*) FROM homework),
			(SELECT COUNT(*) FROM contributors)
	`).Scan(&c.Students, &c.VerifiedTeachers, &c.PendingTeachers, &c.Homework, &c.Contributors)
	return c, err
}
