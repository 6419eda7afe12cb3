package codec

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// migrationsTotal counts document migrations by subject, path and result
	migrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docmigrate_migrations_total",
		Help: "Total document migrations by subject, path and result",
	}, []string{"subject", "path", "result"})

	// migrationDuration tracks how long a migration call takes
	migrationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "docmigrate_migration_duration_seconds",
		Help:    "Document migration duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs to ~2.6s
	}, []string{"subject", "path"})
)

const (
	pathDecode  = "decode"
	pathEncode  = "encode"
	pathConvert = "convert"

	resultOK      = "ok"
	resultVersion = "version_error"
	resultMigrate = "migrate_error"
	resultSchema  = "schema_error"
	resultFormat  = "format_error"
)
