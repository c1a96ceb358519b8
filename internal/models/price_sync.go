package models

import (
	"fmt"
	"time"
)

// PriceSyncStatus represents the status of a price sync run
type PriceSyncStatus string

const (
	PriceSyncStatusPending   PriceSyncStatus = "pending"
	PriceSyncStatusRunning   PriceSyncStatus = "running"
	PriceSyncStatusCompleted PriceSyncStatus = "completed"
	PriceSyncStatusFailed    PriceSyncStatus = "failed"
)

// PriceSync records one pull of the price feed into the catalog
type PriceSync struct {
	ID           string          `json:"id"`
	Status       PriceSyncStatus `json:"status"`
	ItemCount    int             `json:"item_count"`
	ErrorMessage string          `json:"error_message,omitempty"`
	StartedAt    time.Time       `json:"started_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}

// Validate checks if the sync fields are valid
func (s *PriceSync) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("id is required")
	}

	switch s.Status {
	case PriceSyncStatusPending, PriceSyncStatusRunning, PriceSyncStatusCompleted, PriceSyncStatusFailed:
	default:
		return fmt.Errorf("invalid price sync status: %s", s.Status)
	}

	if s.StartedAt.IsZero() {
		return fmt.Errorf("started_at is required")
	}

	return nil
}

// IsActive returns true while the sync has not finished
func (s *PriceSync) IsActive() bool {
	return s.Status == PriceSyncStatusPending || s.Status == PriceSyncStatusRunning
}

// Finish marks the sync as completed or failed depending on err
func (s *PriceSync) Finish(itemCount int, err error) {
	now := time.Now()
	s.CompletedAt = &now
	s.ItemCount = itemCount

	if err != nil {
		s.Status = PriceSyncStatusFailed
		s.ErrorMessage = err.Error()
		return
	}

	s.Status = PriceSyncStatusCompleted
}

// Duration returns how long the sync took, or zero while still active
func (s *PriceSync) Duration() time.Duration {
	if s.CompletedAt == nil {
		return 0
	}
	return s.CompletedAt.Sub(s.StartedAt)
}
