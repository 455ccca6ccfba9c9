package jobs

import (
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskOverdueScan restatuses open documents whose due date has passed.
	TaskOverdueScan = "ledger:overdue_scan"
)

// NewOverdueScanTask constructs the daily overdue scan task. The scan takes
// no payload; it always covers the whole ledger.
func NewOverdueScanTask() *asynq.Task {
	return asynq.NewTask(TaskOverdueScan, nil)
}
