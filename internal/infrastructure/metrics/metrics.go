package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Movement metrics
	MovementsCreated  *prometheus.CounterVec
	MovementsEdited   prometheus.Counter
	MovementsVerified prometheus.Counter
	MovementAmount    prometheus.Histogram
	EditRejections    *prometheus.CounterVec

	// Notification metrics
	NotificationsSent   *prometheus.CounterVec
	NotificationsFailed *prometheus.CounterVec

	// Receipt metrics
	ReceiptsUploaded prometheus.Counter
	ReceiptBytes     prometheus.Histogram

	// Authentication metrics
	AuthAttempts *prometheus.CounterVec
	AuthFailures *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		MovementsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caja_movements_created_total",
				Help: "Total number of movements recorded by kind",
			},
			[]string{"kind"},
		),
		MovementsEdited: promauto.NewCounter(prometheus.CounterOpts{
			Name: "caja_movements_edited_total",
			Help: "Total number of movement edits applied",
		}),
		MovementsVerified: promauto.NewCounter(prometheus.CounterOpts{
			Name: "caja_movements_verified_total",
			Help: "Total number of movements verified",
		}),
		MovementAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "caja_movement_amount",
			Help:    "Movement amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		EditRejections: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caja_edit_rejections_total",
				Help: "Total number of rejected movement edits by cause",
			},
			[]string{"cause"},
		),

		NotificationsSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caja_notifications_sent_total",
				Help: "Total number of webhook notifications dispatched by event",
			},
			[]string{"event"},
		),
		NotificationsFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caja_notifications_failed_total",
				Help: "Total number of failed webhook notifications by event",
			},
			[]string{"event"},
		),

		ReceiptsUploaded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "caja_receipts_uploaded_total",
			Help: "Total number of receipt photos stored",
		}),
		ReceiptBytes: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "caja_receipt_bytes",
			Help:    "Stored receipt sizes in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		}),

		AuthAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caja_auth_attempts_total",
				Help: "Total authentication attempts by outcome",
			},
			[]string{"outcome"},
		),
		AuthFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caja_auth_failures_total",
				Help: "Total authentication failures by reason",
			},
			[]string{"reason"},
		),
	}
}
