// Package audit persists transaction mutation events as an append-only
// JSON-lines file, one record per line.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Record is one audit log line.
type Record struct {
	Action        string    `json:"action"`
	TransactionID string    `json:"transaction_id"`
	OwnerID       string    `json:"owner_id"`
	Type          string    `json:"type"`
	AmountMillis  int64     `json:"amount_millis"`
	OccurredAt    time.Time `json:"occurred_at"`
	LoggedAt      time.Time `json:"logged_at"`
}

// JSONFile appends records to a single file. Writes are serialized so the
// worker can fan deliveries into it safely.
type JSONFile struct {
	mu       sync.Mutex
	filename string
}

func NewJSONFile(filename string) *JSONFile {
	return &JSONFile{filename: filename}
}

// Append writes one record as a JSON line.
func (f *JSONFile) Append(rec Record) error {
	rec.LoggedAt = time.Now().UTC()
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.OpenFile(f.filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write audit record: %w", err)
	}
	return nil
}
