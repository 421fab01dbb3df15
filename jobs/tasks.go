package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerAudit compares cached product quantities against the ledger.
	TaskLedgerAudit = "stockroom:ledger:audit"
)

// LedgerAuditPayload scopes an audit run. An empty ProductID audits every
// product.
type LedgerAuditPayload struct {
	ProductID   string `json:"product_id,omitempty"`
	RequestedBy string `json:"requested_by,omitempty"`
}

// NewLedgerAuditTask constructs an Asynq task.
func NewLedgerAuditTask(payload LedgerAuditPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerAudit, data, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}
