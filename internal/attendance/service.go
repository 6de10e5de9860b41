package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"schoolportal/internal/metrics"
	"schoolportal/internal/queue"
	"schoolportal/internal/store"
)

var (
	// ErrUnknownEntity means the id is not on the roster for that kind.
	ErrUnknownEntity = errors.New("entity not on roster")
	// ErrAlreadyPresent means the entity is already in today's sequence.
	ErrAlreadyPresent = errors.New("already marked present")
	// ErrInvalidKind means kind was neither student nor teacher.
	ErrInvalidKind = errors.New("invalid entity kind")
)

// Queue event types emitted on attendance changes.
const (
	EventMark     = "attendance.mark"
	EventUnmark   = "attendance.unmark"
	EventRollover = "attendance.rollover"
)

// Event is the queue payload for attendance changes.
type Event struct {
	Kind       string `json:"kind,omitempty"`
	EntityID   string `json:"entityId,omitempty"`
	Date       string `json:"date"`
	Status     string `json:"status,omitempty"`
	TimeMarked string `json:"timeMarked,omitempty"`
}

// Roster resolves entity ids to display snapshots and enumerates the entities
// known for a kind. Implemented by the roster service.
type Roster interface {
	Lookup(ctx context.Context, kind, id string) (name, detail string, err error)
	IDs(ctx context.Context, kind string) ([]string, error)
}

// Store is the persistence surface the service needs; *Repository implements
// it against Postgres.
type Store interface {
	SaveMark(ctx context.Context, kind, entityID, date, status, timeMarked string) error
	PresentOn(ctx context.Context, kind, date string) ([]Entry, error)
	EntityHistory(ctx context.Context, kind, entityID string) ([]DatedMark, error)
	AllMarks(ctx context.Context) ([]MarkRow, error)
}

// Service coordinates mark/unmark operations, keeping the in-memory book and
// the Postgres record consistent. Writes follow confirm-then-apply: the mark
// is persisted first and the book mutated only on success, so the two never
// diverge on a failed write.
type Service struct {
	book          *Book
	repo          Store
	roster        Roster
	q             queue.Queue
	cache         *store.PresentCache
	retentionDays int
	now           func() time.Time
}

// NewService wires the attendance core. cache and q may be nil.
func NewService(book *Book, repo Store, roster Roster, q queue.Queue, cache *store.PresentCache, retentionDays int) *Service {
	return &Service{
		book:          book,
		repo:          repo,
		roster:        roster,
		q:             q,
		cache:         cache,
		retentionDays: retentionDays,
		now:           time.Now,
	}
}

// Today returns the current day snapshot.
func (s *Service) Today() Day {
	return s.book.Today()
}

// HistoryFor returns the in-memory archived record for a date.
func (s *Service) HistoryFor(date string) (DayRecord, bool) {
	return s.book.HistoryFor(date)
}

// Stats aggregates one entity over an inclusive date range.
func (s *Service) Stats(kind, id, start, end string) (Stats, error) {
	if kind != KindStudent && kind != KindTeacher {
		return Stats{}, ErrInvalidKind
	}
	return s.book.Stats(kind, id, start, end), nil
}

// Mark transitions an entity to present for today. No-op errors: unknown
// entity, already present.
func (s *Service) Mark(ctx context.Context, kind, id string) (Entry, error) {
	if kind != KindStudent && kind != KindTeacher {
		return Entry{}, ErrInvalidKind
	}
	name, detail, err := s.roster.Lookup(ctx, kind, id)
	if err != nil {
		return Entry{}, err
	}
	if s.book.IsPresent(kind, id) {
		return Entry{}, ErrAlreadyPresent
	}
	date := s.book.CurrentDate()
	entry := Entry{ID: id, Name: name, Detail: detail, TimeMarked: s.now().Format(ClockLayout)}
	if err := s.repo.SaveMark(ctx, kind, id, date, StatusPresent, entry.TimeMarked); err != nil {
		return Entry{}, err
	}
	if err := s.book.Mark(kind, entry); err != nil {
		return Entry{}, err
	}
	s.cache.Invalidate(ctx, kind, date)
	metrics.MarksTotal.WithLabelValues(kind, "mark").Inc()
	metrics.PresentToday.WithLabelValues(kind).Set(float64(s.book.PresentCount(kind)))
	s.publish(ctx, EventMark, Event{Kind: kind, EntityID: id, Date: date, Status: StatusPresent, TimeMarked: entry.TimeMarked})
	return entry, nil
}

// Unmark transitions an entity to absent for today. Unmarking an entity that
// is not present is a no-op on the sequence but still records absent.
func (s *Service) Unmark(ctx context.Context, kind, id string) error {
	if kind != KindStudent && kind != KindTeacher {
		return ErrInvalidKind
	}
	if _, _, err := s.roster.Lookup(ctx, kind, id); err != nil {
		return err
	}
	date := s.book.CurrentDate()
	if err := s.repo.SaveMark(ctx, kind, id, date, StatusAbsent, ""); err != nil {
		return err
	}
	s.book.Unmark(kind, id)
	s.cache.Invalidate(ctx, kind, date)
	metrics.MarksTotal.WithLabelValues(kind, "unmark").Inc()
	metrics.PresentToday.WithLabelValues(kind).Set(float64(s.book.PresentCount(kind)))
	s.publish(ctx, EventUnmark, Event{Kind: kind, EntityID: id, Date: date, Status: StatusAbsent})
	return nil
}

// PresentOn returns the persisted present list for a date, read through the
// Redis cache when one is configured.
func (s *Service) PresentOn(ctx context.Context, kind, date string) ([]Entry, error) {
	if kind != KindStudent && kind != KindTeacher {
		return nil, ErrInvalidKind
	}
	var cached []Entry
	if s.cache.Get(ctx, kind, date, &cached) {
		return cached, nil
	}
	entries, err := s.repo.PresentOn(ctx, kind, date)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, kind, date, entries)
	return entries, nil
}

// EntityHistory returns the persisted marks for one entity.
func (s *Service) EntityHistory(ctx context.Context, kind, id string) ([]DatedMark, error) {
	if kind != KindStudent && kind != KindTeacher {
		return nil, ErrInvalidKind
	}
	return s.repo.EntityHistory(ctx, kind, id)
}

// Restore rebuilds the book from Postgres: history from the marks table, then
// today's present sequences with their display snapshots.
func (s *Service) Restore(ctx context.Context) error {
	marks, err := s.repo.AllMarks(ctx)
	if err != nil {
		return err
	}
	byDate := map[string]DayRecord{}
	for _, m := range marks {
		rec, ok := byDate[m.Date]
		if !ok {
			rec = newDayRecord()
			byDate[m.Date] = rec
		}
		rec.byKind(m.Kind)[m.EntityID] = Record{Status: m.Status, TimeMarked: m.TimeMarked}
	}
	for date, rec := range byDate {
		s.book.SeedHistory(date, rec)
	}

	today := s.book.CurrentDate()
	students, err := s.repo.PresentOn(ctx, KindStudent, today)
	if err != nil {
		return err
	}
	teachers, err := s.repo.PresentOn(ctx, KindTeacher, today)
	if err != nil {
		return err
	}
	s.book.RestoreDay(Day{Date: today, PresentStudents: students, PresentTeachers: teachers})
	metrics.PresentToday.WithLabelValues(KindStudent).Set(float64(len(students)))
	metrics.PresentToday.WithLabelValues(KindTeacher).Set(float64(len(teachers)))
	return nil
}

// RolloverNow archives the day if the date has changed. The roster read uses
// the request context; a failed read skips this tick rather than rolling with
// a partial roster.
func (s *Service) RolloverNow(ctx context.Context) (bool, error) {
	if s.book.CurrentDate() == s.now().Format(DateLayout) {
		return false, nil
	}
	studentIDs, err := s.roster.IDs(ctx, KindStudent)
	if err != nil {
		return false, err
	}
	teacherIDs, err := s.roster.IDs(ctx, KindTeacher)
	if err != nil {
		return false, err
	}
	old, rolled := s.book.Rollover(s.now(), studentIDs, teacherIDs, s.retentionDays)
	if !rolled {
		return false, nil
	}
	metrics.RolloversTotal.Inc()
	metrics.PresentToday.WithLabelValues(KindStudent).Set(0)
	metrics.PresentToday.WithLabelValues(KindTeacher).Set(0)
	s.publish(ctx, EventRollover, Event{Date: old})
	return true, nil
}

// StartRollover runs the periodic date check until ctx is cancelled.
func (s *Service) StartRollover(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := s.RolloverNow(ctx); err != nil {
					log.Printf("attendance: rollover check failed: %v", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (s *Service) publish(ctx context.Context, typ string, evt Event) {
	if s.q == nil {
		return
	}
	body, err := json.Marshal(evt)
	if err != nil {
		return
	}
	if err := s.q.Publish(ctx, queue.Message{Type: typ, Body: body}); err != nil {
		log.Printf("attendance: queue publish failed: %v", err)
	}
}
