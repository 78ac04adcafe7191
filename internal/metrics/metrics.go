// Package metrics 导入流水线的 Prometheus 指标。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ImportRunsTotal 按平台与结果（completed / fatal）统计导入次数
	ImportRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trophysync_import_runs_total",
			Help: "Total number of import runs",
		},
		[]string{"platform", "outcome"},
	)

	// ImportGamesTotal 按平台与单游戏结果（succeeded / failed / skipped）统计
	ImportGamesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trophysync_import_games_total",
			Help: "Total number of games processed by imports",
		},
		[]string{"platform", "result"},
	)

	// ImportRowsCreated 导入新建的行数，按表区分
	ImportRowsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trophysync_import_rows_created_total",
			Help: "Rows created by imports, per table",
		},
		[]string{"platform", "table"},
	)

	ImportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trophysync_import_duration_seconds",
			Help:    "Duration of import runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"platform"},
	)

	// RelayBreakerState 0=closed 1=half-open 2=open
	RelayBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "trophysync_relay_breaker_state",
			Help: "Relay circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	RelayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trophysync_relay_requests_total",
			Help: "Relay requests by platform and outcome",
		},
		[]string{"platform", "outcome"},
	)
)
