package attendance

import (
	"context"
	"database/sql"
)

// DatedMark is one persisted status for an entity and date.
type DatedMark struct {
	Date       string `json:"date"`
	Status     string `json:"status"`
	TimeMarked string `json:"timeMarked,omitempty"`
}

// MarkRow is a raw attendance_marks row used when rebuilding the book.
type MarkRow struct {
	Kind       string
	EntityID   string
	Date       string
	Status     string
	TimeMarked string
}

// Repository persists attendance marks in Postgres. The marks table is the
// system of record; the in-memory book is rebuilt from it at startup.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// SaveMark upserts the status for (kind, entity, date).
func (r *Repository) SaveMark(ctx context.Context, kind, entityID, date, status, timeMarked string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance_marks (kind, entity_id, day, status, time_marked)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (kind, entity_id, day) DO UPDATE SET
			status = EXCLUDED.status,
			time_marked = EXCLUDED.time_marked,
			updated_at = NOW()
	`, kind, entityID, date, status, timeMarked)
	return err
}

// PresentOn returns present entries for a date with display snapshots joined
// from the roster tables.
func (r *Repository) PresentOn(ctx context.Context, kind, date string) ([]Entry, error) {
	query := `
		SELECT m.entity_id, s.name, s.grade, m.time_marked
		FROM attendance_marks m
		JOIN students s ON s.id = m.entity_id
		WHERE m.kind = $1 AND m.day = $2 AND m.status = 'present'
		ORDER BY m.updated_at
	`
	if kind == KindTeacher {
		query = `
			SELECT m.entity_id, t.name, t.department, m.time_marked
			FROM attendance_marks m
			JOIN teachers t ON t.id = m.entity_id
			WHERE m.kind = $1 AND m.day = $2 AND m.status = 'present'
			ORDER BY m.updated_at
		`
	}
	rows, err := r.db.QueryContext(ctx, query, kind, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Name, &e.Detail, &e.TimeMarked); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// EntityHistory returns every persisted mark for one entity, oldest first.
func (r *Repository) EntityHistory(ctx context.Context, kind, entityID string) ([]DatedMark, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT day, status, time_marked
		FROM attendance_marks
		WHERE kind = $1 AND entity_id = $2
		ORDER BY day
	`, kind, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	marks := []DatedMark{}
	for rows.Next() {
		var m DatedMark
		if err := rows.Scan(&m.Date, &m.Status, &m.TimeMarked); err != nil {
			return nil, err
		}
		marks = append(marks, m)
	}
	return marks, rows.Err()
}

// AllMarks streams the full marks table for the startup rebuild.
func (r *Repository) AllMarks(ctx context.Context) ([]MarkRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT kind, entity_id, day, status, time_marked
		FROM attendance_marks
		ORDER BY day
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var marks []MarkRow
	for rows.Next() {
		var m MarkRow
		if err := rows.Scan(&m.Kind, &m.EntityID, &m.Date, &m.Status, &m.TimeMarked); err != nil {
			return nil, err
		}
		marks = append(marks, m)
	}
	return marks, rows.Err()
}

// EntitiesOn lists the entities that have a mark on a date.
func (r *Repository) EntitiesOn(ctx context.Context, date string) ([]MarkRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT kind, entity_id, day, status, time_marked
		FROM attendance_marks
		WHERE day = $1
	`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var marks []MarkRow
	for rows.Next() {
		var m MarkRow
		if err := rows.Scan(&m.Kind, &m.EntityID, &m.Date, &m.Status, &m.TimeMarked); err != nil {
			return nil, err
		}
		marks = append(marks, m)
	}
	return marks, rows.Err()
}

// RecomputeSummary refreshes the denormalized per-entity counters from the
// marks table. Run by the worker after each mark event.
func (r *Repository) RecomputeSummary(ctx context.Context, kind, entityID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance_summaries (kind, entity_id, total_days, present_days, updated_at)
		SELECT $1, $2,
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'present'),
			NOW()
		FROM attendance_marks
		WHERE kind = $1 AND entity_id = $2
		ON CONFLICT (kind, entity_id) DO UPDATE SET
			total_days = EXCLUDED.total_days,
			present_days = EXCLUDED.present_days,
			updated_at = EXCLUDED.updated_at
	`, kind, entityID)
	return err
}

// Summary reads the worker-maintained counters for one entity.
func (r *Repository) Summary(ctx context.Context, kind, entityID string) (total, present int, err error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT total_days, present_days
		FROM attendance_summaries
		WHERE kind = $1 AND entity_id = $2
	`, kind, entityID)
	if err := row.Scan(&total, &present); err != nil {
		if err == sql.ErrNoRows {
			return 0, 0, nil
		}
		return 0, 0, err
	}
	return total, present, nil
}
