package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// MarksTotal counts mark/unmark operations by entity kind.
	MarksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_attendance_marks_total",
		Help: "Attendance mark operations processed.",
	}, []string{"kind", "op"})

	// RolloversTotal counts day rollovers performed.
	RolloversTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "portal_attendance_rollovers_total",
		Help: "Day rollovers archived into history.",
	})

	// LoginsTotal counts login attempts by outcome.
	LoginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_logins_total",
		Help: "Login attempts by outcome.",
	}, []string{"status"})

	// PresentToday tracks the size of today's present sequences.
	PresentToday = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "portal_present_today",
		Help: "Entities currently marked present today.",
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(MarksTotal, RolloversTotal, LoginsTotal, PresentToday)
}
