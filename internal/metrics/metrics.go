package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DownloadsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fetchctl_downloads_started_total",
		Help: "Total number of downloads started",
	})

	DownloadsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fetchctl_downloads_completed_total",
		Help: "Total number of downloads completed successfully",
	})

	DownloadsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fetchctl_downloads_failed_total",
		Help: "Total number of failed downloads",
	})

	DownloadsInterrupted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fetchctl_downloads_interrupted_total",
		Help: "Total number of downloads cancelled by an interrupt",
	})

	DownloadBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fetchctl_download_bytes_total",
		Help: "Total bytes downloaded",
	})

	TransferDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fetchctl_transfer_duration_seconds",
		Help:    "Transfer duration in seconds",
		Buckets: prometheus.DefBuckets,
	})
)
