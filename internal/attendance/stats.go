package attendance

// Stats is the derived attendance summary for one entity over an inclusive
// date range. Percentage is left unrounded; callers format for display.
type Stats struct {
	TotalDays            int     `json:"totalDays"`
	PresentDays          int     `json:"presentDays"`
	AbsentDays           int     `json:"absentDays"`
	AttendancePercentage float64 `json:"attendancePercentage"`
}

// Stats aggregates an entity's history over [start, end]. Only dates with an
// archived record contribute to the denominator; within such a date a missing
// entity key counts as absent. ISO dates compare lexicographically.
func (b *Book) Stats(kind, id, start, end string) Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	var s Stats
	for date, rec := range b.history {
		if date < start || date > end {
			continue
		}
		s.TotalDays++
		if r, ok := rec.byKind(kind)[id]; ok && r.Status == StatusPresent {
			s.PresentDays++
		}
	}
	s.AbsentDays = s.TotalDays - s.PresentDays
	if s.TotalDays > 0 {
		s.AttendancePercentage = float64(s.PresentDays) / float64(s.TotalDays) * 100
	}
	return s
}
