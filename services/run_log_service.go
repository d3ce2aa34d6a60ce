package services

import (
	"log"
	"sync"
	"time"

	"slipgen/models"
)

// RecordStore is the persistence surface an automation run needs. It is
// implemented by models.SlipModel in production and faked in tests.
type RecordStore interface {
	Fetch(id string) (*models.Slip, error)
	UpdateStatus(id string, status string) error
	UpdateLog(id string, entries []models.LogEntry) error
	UpdateResult(id string, status string, generatedLink string, entries []models.LogEntry) error
}

// RunLog is the append-only audit trail of one automation run. It is
// seeded with the slip's existing entries and every append is written
// through to the record store, so dashboard readers watch the log grow
// while the run is still going. Prior entries are never touched.
type RunLog struct {
	store  RecordStore
	slipID string

	mu      sync.Mutex
	entries []models.LogEntry
}

func NewRunLog(store RecordStore, slipID string, existing []models.LogEntry) *RunLog {
	entries := make([]models.LogEntry, len(existing))
	copy(entries, existing)

	return &RunLog{store: store, slipID: slipID, entries: entries}
}

// Append records one entry and persists the full sequence. A store
// write failure is reported but never interrupts the run; the entry is
// still part of the in-memory sequence and the next append retries the
// whole write.
func (l *RunLog) Append(level, message string) {
	l.mu.Lock()
	l.entries = append(l.entries, models.LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
	})
	snapshot := make([]models.LogEntry, len(l.entries))
	copy(snapshot, l.entries)
	l.mu.Unlock()

	if err := l.store.UpdateLog(l.slipID, snapshot); err != nil {
		log.Printf("Failed to persist log entry for slip %s: %v", l.slipID, err)
	}
}

// Entries returns a copy of the current sequence.
func (l *RunLog) Entries() []models.LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]models.LogEntry, len(l.entries))
	copy(entries, l.entries)
	return entries
}
