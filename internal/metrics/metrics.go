package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	slotsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shop_schedule",
			Name:      "slots_generated_total",
			Help:      "Count of generated slots by resolved status.",
		},
		[]string{"status"},
	)

	slotToggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shop_schedule",
			Name:      "slot_toggles_total",
			Help:      "Count of slot toggle operations by action.",
		},
		[]string{"action"},
	)

	toggleBlocksDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "shop_schedule",
			Name:      "toggle_blocks_deleted_total",
			Help:      "Count of slot-toggle blocks removed by reopen requests.",
		},
	)
)

const (
	ActionClose     = "close"
	ActionCloseNoop = "close_noop"
	ActionReopen    = "reopen"
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(slotsGenerated, slotToggles, toggleBlocksDeleted)
	})
}

func AddSlotsGenerated(status string, n int) {
	slotsGenerated.WithLabelValues(status).Add(float64(n))
}

func IncSlotToggle(action string) {
	slotToggles.WithLabelValues(action).Inc()
}

func AddToggleBlocksDeleted(n int64) {
	toggleBlocksDeleted.Add(float64(n))
}
