package progress

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound means no log entry matched the id.
	ErrNotFound = errors.New("progress log not found")
	// ErrValidation wraps client input problems.
	ErrValidation = errors.New("invalid progress input")
)

const dateLayout = "2006-01-02"

// Log is one mentor-progress entry for a student session.
type Log struct {
	ID        string    `json:"id"`
	MentorID  string    `json:"mentorId"`
	StudentID string    `json:"studentId"`
	Date      string    `json:"date"`
	Topic     string    `json:"topic"`
	Notes     string    `json:"notes,omitempty"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MentorReport summarizes a mentor's logged sessions.
type MentorReport struct {
	MentorID      string  `json:"mentorId"`
	Sessions      int     `json:"sessions"`
	Students      int     `json:"students"`
	AverageRating float64 `json:"averageRating"`
}

// Repository is the persistence surface for progress logs.
type Repository interface {
	ListByMentor(ctx context.Context, mentorID string) ([]Log, error)
	Get(ctx context.Context, id string) (Log, error)
	Create(ctx context.Context, l Log) error
	Update(ctx context.Context, l Log) error
	Delete(ctx context.Context, id string) error
	Report(ctx context.Context, mentorID string) (MentorReport, error)
}

type pgRepository struct {
	db *sql.DB
}

// NewRepository creates a Postgres-backed progress repository.
func NewRepository(db *sql.DB) Repository {
	return &pgRepository{db: db}
}

const logColumns = `id, mentor_id, student_id, day, topic, notes, rating, created_at, updated_at`

func scanLog(row interface{ Scan(...any) error }) (Log, error) {
	var l Log
	err := row.Scan(&l.ID, &l.MentorID, &l.StudentID, &l.Date, &l.Topic, &l.Notes, &l.Rating, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func (r *pgRepository) ListByMentor(ctx context.Context, mentorID string) ([]Log, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+logColumns+` FROM progress_logs WHERE mentor_id = $1 ORDER BY day DESC, created_at DESC`, mentorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Log{}
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *pgRepository) Get(ctx context.Context, id string) (Log, error) {
	l, err := scanLog(r.db.QueryRowContext(ctx,
		`SELECT `+logColumns+` FROM progress_logs WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Log{}, ErrNotFound
	}
	return l, err
}

func (r *pgRepository) Create(ctx context.Context, l Log) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO progress_logs (id, mentor_id, student_id, day, topic, notes, rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, l.ID, l.MentorID, l.StudentID, l.Date, l.Topic, l.Notes, l.Rating)
	return err
}

func (r *pgRepository) Update(ctx context.Context, l Log) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE progress_logs
		SET student_id = $2, day = $3, topic = $4, notes = $5, rating = $6, updated_at = NOW()
		WHERE id = $1
	`, l.ID, l.StudentID, l.Date, l.Topic, l.Notes, l.Rating)
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
	res, err := r.db.ExecContext(ctx, `DELETE FROM progress_logs WHERE id = $1`, id)
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

func (r *pgRepository) Report(ctx context.Context, mentorID string) (MentorReport, error) {
	rep := MentorReport{MentorID: mentorID}
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT student_id), COALESCE(AVG(rating) FILTER (WHERE rating > 0), 0)
		FROM progress_logs WHERE mentor_id = $1
	`, mentorID).Scan(&rep.Sessions, &rep.Students, &rep.AverageRating)
	return rep, err
}

// Service validates and stores mentor-progress logs.
type Service struct {
	repo Repository
}

// NewService creates a progress service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ForMentor returns a mentor's log entries, newest first.
func (s *Service) ForMentor(ctx context.Context, mentorID string) ([]Log, error) {
	return s.repo.ListByMentor(ctx, mentorID)
}

// Report summarizes a mentor's sessions.
func (s *Service) Report(ctx context.Context, mentorID string) (MentorReport, error) {
	return s.repo.Report(ctx, mentorID)
}

// Add validates and creates a log entry. An empty date defaults to today.
func (s *Service) Add(ctx context.Context, l Log) (Log, error) {
	if l.Date == "" {
		l.Date = time.Now().Format(dateLayout)
	}
	if err := validate(l); err != nil {
		return Log{}, err
	}
	l.ID = uuid.NewString()
	if err := s.repo.Create(ctx, l); err != nil {
		return Log{}, err
	}
	return s.repo.Get(ctx, l.ID)
}

// Update applies edits to an existing log entry.
func (s *Service) Update(ctx context.Context, l Log) (Log, error) {
	if l.ID == "" {
		return Log{}, errors.Join(ErrValidation, errors.New("id is required"))
	}
	if err := validate(l); err != nil {
		return Log{}, err
	}
	if err := s.repo.Update(ctx, l); err != nil {
		return Log{}, err
	}
	return s.repo.Get(ctx, l.ID)
}

// Delete removes a log entry.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func validate(l Log) error {
	if l.MentorID == "" || l.StudentID == "" {
		return errors.Join(ErrValidation, errors.New("mentor and student ids are required"))
	}
	if strings.TrimSpace(l.Topic) == "" {
		return errors.Join(ErrValidation, errors.New("topic is required"))
	}
	if _, err := time.Parse(dateLayout, l.Date); err != nil {
		return errors.Join(ErrValidation, errors.New("date must be YYYY-MM-DD"))
	}
	if l.Rating < 0 || l.Rating > 5 {
		return errors.Join(ErrValidation, errors.New("rating must be between 0 and 5"))
	}
	return nil
}
