// Package worker contains the audit worker that drains the transaction
// event queue into the audit log.
package worker

import (
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/audit"
)

// AuditWorker turns queued transaction events into audit log records.
type AuditWorker struct {
	log *audit.JSONFile
}

func NewAuditWorker(log *audit.JSONFile) *AuditWorker {
	return &AuditWorker{log: log}
}

// HandleEvent persists one event. Returning an error requeues the
// delivery.
func (w *AuditWorker) HandleEvent(event *amqp.TransactionEvent) error {
	err := w.log.Append(audit.Record{
		Action:        event.Action,
		TransactionID: event.TransactionID,
		OwnerID:       event.OwnerID,
		Type:          event.Type,
		AmountMillis:  event.AmountMillis,
		OccurredAt:    event.OccurredAt,
	})
	if err != nil {
		return err
	}

	slog.Info("Audit record written",
		"action", event.Action,
		"transaction_id", event.TransactionID,
		"owner_id", event.OwnerID)
	return nil
}
