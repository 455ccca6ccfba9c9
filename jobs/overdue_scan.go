package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/meridianmar/meridian/internal/jobs"
	"github.com/meridianmar/meridian/internal/ledger"
)

// OverdueScanJob walks open documents past their due date and restatuses
// them. It runs daily via the scheduler and is safe to re-run.
type OverdueScanJob struct {
	Ledger  *ledger.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewOverdueScanJob initialises the overdue scan handler.
func NewOverdueScanJob(svc *ledger.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *OverdueScanJob {
	return &OverdueScanJob{
		Ledger:  svc,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the overdue scan.
func (j *OverdueScanJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Ledger == nil {
		return errors.New("overdue scan: handler not configured")
	}

	tracker := j.metrics().Track(TaskOverdueScan)
	asOf := j.now()
	changed, err := j.Ledger.RefreshOverdue(ctx, asOf)
	if err != nil {
		j.log().Error("overdue scan failed", slog.Any("error", err))
		return tracker.End(err)
	}
	j.metrics().AddOverdue(changed)
	j.log().Info("overdue scan completed",
		slog.Time("as_of", asOf),
		slog.Int("documents_changed", changed),
	)
	return tracker.End(nil)
}

func (j *OverdueScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

func (j *OverdueScanJob) metrics() *jobmetrics.Metrics {
	return j.Metrics
}

func (j *OverdueScanJob) log() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
