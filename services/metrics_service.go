package services

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vanblog_http_requests_total",
			Help: "Total admin API requests",
		},
		[]string{"path"},
	)

	errorCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vanblog_http_errors_total",
			Help: "Admin API requests answered with status >= 400",
		},
		[]string{"path"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vanblog_http_request_duration_seconds",
			Help:    "Duration of admin API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	walineStarts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vanblog_waline_starts_total",
			Help: "Comment service start attempts",
		},
		[]string{"result"},
	)

	walineExits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vanblog_waline_unexpected_exits_total",
			Help: "Comment service exits not requested by the keeper",
		},
	)

	walineOrphans = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vanblog_waline_orphans_reaped_total",
			Help: "Orphaned comment service processes found through the pid file",
		},
	)

	walineUp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vanblog_waline_up",
			Help: "1 if the comment service child is running",
		},
	)

	restoreTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vanblog_restore_total",
			Help: "Backup restore attempts",
		},
		[]string{"mode", "result"},
	)

	restoreDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vanblog_restore_duration_seconds",
			Help:    "Duration of backup restores",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)
)

// prometheus计数器不方便直接读取，健康检查使用本地计数
var (
	totalRequests atomic.Int64
	totalErrors   atomic.Int64
)

func init() {
	prometheus.MustRegister(requestCount)
	prometheus.MustRegister(errorCount)
	prometheus.MustRegister(requestDuration)
	prometheus.MustRegister(walineStarts)
	prometheus.MustRegister(walineExits)
	prometheus.MustRegister(walineOrphans)
	prometheus.MustRegister(walineUp)
	prometheus.MustRegister(restoreTotal)
	prometheus.MustRegister(restoreDuration)
}

func observeRestore(mode string, start time.Time, err error) {
	result := "success"
	switch {
	case err == ErrBusy:
		result = "busy"
	case err != nil:
		result = "error"
	}
	restoreTotal.WithLabelValues(mode, result).Inc()
	if err != ErrBusy {
		restoreDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	}
}

func IncrementRequestCount(path string) {
	totalRequests.Add(1)
	requestCount.WithLabelValues(path).Inc()
}

func IncrementErrorCount(path string) {
	totalErrors.Add(1)
	errorCount.WithLabelValues(path).Inc()
}

func RecordRequestDuration(path string, seconds float64) {
	requestDuration.WithLabelValues(path).Observe(seconds)
}

func GetTotalRequestCount() int64 {
	return totalRequests.Load()
}

func GetTotalErrorCount() int64 {
	return totalErrors.Load()
}
