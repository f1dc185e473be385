package roster

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	resetsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alumnos_demo_resets_total",
			Help: "Number of times the roster was restored to its seed, by cause.",
		},
		[]string{"cause"},
	)

	studentsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "alumnos_students",
		Help: "Number of student records currently held.",
	})
)
