package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/vrsandeep/noor-go/internal/models"
)

// SetStatus writes one key of the status table.
func (s *Store) SetStatus(ctx context.Context, key, value string) error {
	if err := s.writable("set status"); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO status (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value)
	if err != nil {
		return fmt.Errorf("set status %s: %w", key, err)
	}
	return nil
}

// GetStatus reads one key of the status table. The boolean is false on miss.
func (s *Store) GetStatus(ctx context.Context, key string) (string, bool) {
	if !s.Available() {
		return "", false
	}
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM status WHERE key = ?", key).Scan(&value)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("store: get status %s: %v", key, err)
		}
		return "", false
	}
	return value, true
}

// SaveOfflineStatus persists the offline status marker.
func (s *Store) SaveOfflineStatus(ctx context.Context, status models.OfflineStatus) error {
	if status.UpdatedAt.IsZero() {
		status.UpdatedAt = time.Now().UTC()
	}
	encoded, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("encode offline status: %w", err)
	}
	return s.SetStatus(ctx, models.OfflineStatusKey, string(encoded))
}

// LoadOfflineStatus returns the persisted offline status, or not_started
// when none has been recorded.
func (s *Store) LoadOfflineStatus(ctx context.Context) models.OfflineStatus {
	raw, ok := s.GetStatus(ctx, models.OfflineStatusKey)
	if !ok {
		return models.OfflineStatus{State: models.StateNotStarted}
	}
	var status models.OfflineStatus
	if err := json.Unmarshal([]byte(raw), &status); err != nil {
		log.Printf("store: decode offline status: %v", err)
		return models.OfflineStatus{State: models.StateNotStarted}
	}
	return status
}

// ContentVersion returns the stored content version marker, if any.
func (s *Store) ContentVersion(ctx context.Context) (string, bool) {
	return s.GetStatus(ctx, models.ContentVersionKey)
}

// SetContentVersion records the content version marker.
func (s *Store) SetContentVersion(ctx context.Context, version string) error {
	return s.SetStatus(ctx, models.ContentVersionKey, version)
}
