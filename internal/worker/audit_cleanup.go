package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicore/clinic-api/internal/repository"
	"github.com/clinicore/clinic-api/pkg/metrics"
)

// AuditCleanup periodically deletes audit log entries older than the
// retention window.
type AuditCleanup struct {
	repo      repository.AuditRepository
	retention time.Duration
	interval  time.Duration
	metrics   *metrics.Metrics
	logger    *zerolog.Logger
}

func NewAuditCleanup(
	repo repository.AuditRepository,
	retention, interval time.Duration,
	m *metrics.Metrics,
	logger *zerolog.Logger,
) *AuditCleanup {
	return &AuditCleanup{
		repo:      repo,
		retention: retention,
		interval:  interval,
		metrics:   m,
		logger:    logger,
	}
}

// Start runs the cleanup loop until the context is cancelled.
func (w *AuditCleanup) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.run(ctx)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("audit cleanup stopped")
			return
		case <-ticker.C:
			w.run(ctx)
		}
	}
}

func (w *AuditCleanup) run(ctx context.Context) {
	start := time.Now()
	cutoff := time.Now().Add(-w.retention)

	deleted, err := w.repo.Cleanup(ctx, cutoff)
	if err != nil {
		w.metrics.DatabaseOperations.WithLabelValues("audit_cleanup", "error").Inc()
		w.logger.Error().Err(err).Msg("audit cleanup failed")
		return
	}

	w.metrics.DatabaseOperations.WithLabelValues("audit_cleanup", "success").Inc()
	w.metrics.DatabaseLatency.WithLabelValues("audit_cleanup").Observe(time.Since(start).Seconds())
	w.logger.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("audit cleanup completed")
}
