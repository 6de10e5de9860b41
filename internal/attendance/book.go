package attendance

import (
	"sync"
	"time"
)

const (
	// KindStudent and KindTeacher select which present sequence an
	// operation targets.
	KindStudent = "student"
	KindTeacher = "teacher"

	// StatusPresent and StatusAbsent are the only statuses a dated record
	// may hold.
	StatusPresent = "present"
	StatusAbsent  = "absent"

	// DateLayout is the ISO calendar date used as history key.
	DateLayout = "2006-01-02"
	// ClockLayout renders time-marked values as hh:mm AM/PM.
	ClockLayout = "03:04 PM"
)

// Entry is one row of a present sequence: the entity id plus a denormalized
// snapshot of its display fields at mark time. Editing the roster later does
// not rewrite entries already recorded.
type Entry struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Detail     string `json:"detail,omitempty"`
	TimeMarked string `json:"timeMarked"`
}

// Day is the working record for the current calendar date. An id appears at
// most once per sequence.
type Day struct {
	Date            string  `json:"date"`
	PresentStudents []Entry `json:"presentStudents"`
	PresentTeachers []Entry `json:"presentTeachers"`
}

// Record is an entity's final status for one archived date.
type Record struct {
	Status     string `json:"status"`
	TimeMarked string `json:"timeMarked,omitempty"`
}

// DayRecord holds the per-entity statuses of one archived date.
type DayRecord struct {
	Students map[string]Record `json:"students"`
	Teachers map[string]Record `json:"teachers"`
}

func newDayRecord() DayRecord {
	return DayRecord{Students: map[string]Record{}, Teachers: map[string]Record{}}
}

func (r DayRecord) byKind(kind string) map[string]Record {
	if kind == KindTeacher {
		return r.Teachers
	}
	return r.Students
}

// Book is the in-memory attendance state: the current day plus the history
// map keyed by ISO date. All methods are safe for concurrent use.
type Book struct {
	mu      sync.Mutex
	day     Day
	history map[string]DayRecord
}

// NewBook creates a book opened at the given date.
func NewBook(date string) *Book {
	return &Book{
		day:     Day{Date: date, PresentStudents: []Entry{}, PresentTeachers: []Entry{}},
		history: make(map[string]DayRecord),
	}
}

// CurrentDate returns the date of the working day record.
func (b *Book) CurrentDate() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.day.Date
}

// Today returns a snapshot of the working day record.
func (b *Book) Today() Day {
	b.mu.Lock()
	defer b.mu.Unlock()
	return copyDay(b.day)
}

// HistoryFor returns the archived record for a date. A missing date means "no
// data", not "all absent".
func (b *Book) HistoryFor(date string) (DayRecord, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.history[date]
	if !ok {
		return DayRecord{}, false
	}
	return copyRecord(rec), true
}

// IsPresent reports whether the entity is in today's present sequence.
func (b *Book) IsPresent(kind, id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range b.sequence(kind) {
		if e.ID == id {
			return true
		}
	}
	return false
}

// Mark appends an entry to today's present sequence and records a present
// status for the current date. ErrAlreadyPresent preserves the at-most-once
// invariant of the sequence.
func (b *Book) Mark(kind string, e Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, cur := range b.sequence(kind) {
		if cur.ID == e.ID {
			return ErrAlreadyPresent
		}
	}
	b.setSequence(kind, append(b.sequence(kind), e))
	b.upsert(b.day.Date, kind, e.ID, Record{Status: StatusPresent, TimeMarked: e.TimeMarked})
	return nil
}

// Unmark removes the entity from today's present sequence and records an
// absent status. Unmarking an entity that is not present leaves the sequence
// unchanged.
func (b *Book) Unmark(kind, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	seq := b.sequence(kind)
	for i, e := range seq {
		if e.ID == id {
			b.setSequence(kind, append(seq[:i:i], seq[i+1:]...))
			break
		}
	}
	b.upsert(b.day.Date, kind, id, Record{Status: StatusAbsent})
}

// PresentCount returns the size of a present sequence.
func (b *Book) PresentCount(kind string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sequence(kind))
}

// Rollover archives the working day and resets it when the wall clock has
// crossed a date boundary. Every roster entity receives exactly one final
// status for the old date: present when it appears in the old sequence
// (keeping its marked time), absent otherwise. Days skipped while the process
// was not running are not backfilled. retentionDays > 0 prunes history older
// than that many days relative to the new date.
func (b *Book) Rollover(now time.Time, studentIDs, teacherIDs []string, retentionDays int) (string, bool) {
	current := now.Format(DateLayout)
	b.mu.Lock()
	defer b.mu.Unlock()
	if current == b.day.Date {
		return "", false
	}
	old := b.day.Date
	rec, ok := b.history[old]
	if !ok {
		rec = newDayRecord()
	}
	finalize(rec.Students, b.day.PresentStudents, studentIDs)
	finalize(rec.Teachers, b.day.PresentTeachers, teacherIDs)
	b.history[old] = rec
	b.day = Day{Date: current, PresentStudents: []Entry{}, PresentTeachers: []Entry{}}
	if retentionDays > 0 {
		cutoff := now.AddDate(0, 0, -retentionDays).Format(DateLayout)
		for date := range b.history {
			if date < cutoff {
				delete(b.history, date)
			}
		}
	}
	return old, true
}

// SeedHistory replaces the archived record for one date. Used to rebuild the
// book from the system of record at startup.
func (b *Book) SeedHistory(date string, rec DayRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history[date] = copyRecord(rec)
}

// RestoreDay replaces the working day wholesale.
func (b *Book) RestoreDay(day Day) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.day = copyDay(day)
	if b.day.PresentStudents == nil {
		b.day.PresentStudents = []Entry{}
	}
	if b.day.PresentTeachers == nil {
		b.day.PresentTeachers = []Entry{}
	}
}

func finalize(rec map[string]Record, present []Entry, known []string) {
	for _, e := range present {
		rec[e.ID] = Record{Status: StatusPresent, TimeMarked: e.TimeMarked}
	}
	for _, id := range known {
		if _, ok := rec[id]; !ok {
			rec[id] = Record{Status: StatusAbsent}
		}
	}
}

func (b *Book) sequence(kind string) []Entry {
	if kind == KindTeacher {
		return b.day.PresentTeachers
	}
	return b.day.PresentStudents
}

func (b *Book) setSequence(kind string, seq []Entry) {
	if kind == KindTeacher {
		b.day.PresentTeachers = seq
	} else {
		b.day.PresentStudents = seq
	}
}

func (b *Book) upsert(date, kind, id string, rec Record) {
	day, ok := b.history[date]
	if !ok {
		day = newDayRecord()
		b.history[date] = day
	}
	day.byKind(kind)[id] = rec
}

func copyDay(d Day) Day {
	out := Day{Date: d.Date}
	out.PresentStudents = append([]Entry{}, d.PresentStudents...)
	out.PresentTeachers = append([]Entry{}, d.PresentTeachers...)
	return out
}

func copyRecord(rec DayRecord) DayRecord {
	out := newDayRecord()
	for id, r := range rec.Students {
		out.Students[id] = r
	}
	for id, r := range rec.Teachers {
		out.Teachers[id] = r
	}
	return out
}
