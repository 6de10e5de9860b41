package roster

import (
	"context"
	"database/sql"
	"errors"
)

type pgRepository struct {
	db *sql.DB
}

// NewRepository creates a Postgres-backed roster repository.
func NewRepository(db *sql.DB) Repository {
	return &pgRepository{db: db}
}

func (r *pgRepository) ListStudents(ctx context.Context) ([]Student, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, roll_number, grade, guardian_contact, created_at, updated_at
		FROM students
		ORDER BY roll_number
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	students := []Student{}
	for rows.Next() {
		var s Student
		if err := rows.Scan(&s.ID, &s.Name, &s.RollNumber, &s.Grade, &s.GuardianContact, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

func (r *pgRepository) GetStudent(ctx context.Context, id string) (Student, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, roll_number, grade, guardian_contact, created_at, updated_at
		FROM students WHERE id = $1
	`, id)
	var s Student
	if err := row.Scan(&s.ID, &s.Name, &s.RollNumber, &s.Grade, &s.GuardianContact, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Student{}, ErrNotFound
		}
		return Student{}, err
	}
	return s, nil
}

func (r *pgRepository) CreateStudent(ctx context.Context, s Student) error {
	var taken bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM students WHERE roll_number = $1)`, s.RollNumber,
	).Scan(&taken); err != nil {
		return err
	}
	if taken {
		return ErrDuplicateRoll
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO students (id, name, roll_number, grade, guardian_contact)
		VALUES ($1, $2, $3, $4, $5)
	`, s.ID, s.Name, s.RollNumber, s.Grade, s.GuardianContact)
	return err
}

func (r *pgRepository) UpdateStudent(ctx context.Context, s Student) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE students
		SET name = $2, roll_number = $3, grade = $4, guardian_contact = $5, updated_at = NOW()
		WHERE id = $1
	`, s.ID, s.Name, s.RollNumber, s.Grade, s.GuardianContact)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *pgRepository) DeleteStudent(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *pgRepository) StudentIDs(ctx context.Context) ([]string, error) {
	return r.ids(ctx, `SELECT id FROM students`)
}

func (r *pgRepository) ListTeachers(ctx context.Context) ([]Teacher, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, employee_number, department, phone, status, created_at
		FROM teachers
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	teachers := []Teacher{}
	for rows.Next() {
		var t Teacher
		if err := rows.Scan(&t.ID, &t.Name, &t.Email, &t.EmployeeNumber, &t.Department, &t.Phone, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		teachers = append(teachers, t)
	}
	return teachers, rows.Err()
}

func (r *pgRepository) GetTeacher(ctx context.Context, id string) (Teacher, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, employee_number, department, phone, status, created_at
		FROM teachers WHERE id = $1
	`, id)
	var t Teacher
	if err := row.Scan(&t.ID, &t.Name, &t.Email, &t.EmployeeNumber, &t.Department, &t.Phone, &t.Status, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Teacher{}, ErrNotFound
		}
		return Teacher{}, err
	}
	return t, nil
}

func (r *pgRepository) UpdateTeacher(ctx context.Context, t Teacher) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE teachers
		SET name = $2, employee_number = $3, department = $4, phone = $5, updated_at = NOW()
		WHERE id = $1
	`, t.ID, t.Name, t.EmployeeNumber, t.Department, t.Phone)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *pgRepository) DeleteTeacher(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM teachers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *pgRepository) VerifiedTeacherIDs(ctx context.Context) ([]string, error) {
	return r.ids(ctx, `SELECT id FROM teachers WHERE status = 'verified'`)
}

func (r *pgRepository) ids(ctx context.Context, query string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
