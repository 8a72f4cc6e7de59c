// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"fxvol/internal/models"
)

// QuoteStore persists named market quote snapshots. Surfaces themselves are
// never stored; they are rebuilt from a snapshot on load.
type QuoteStore interface {
	SaveSnapshot(ctx context.Context, snap *models.QuoteSnapshot) error
	GetSnapshot(ctx context.Context, name string) (*models.QuoteSnapshot, error)
	ListSnapshots(ctx context.Context) ([]SnapshotInfo, error)
	DeleteSnapshot(ctx context.Context, name string) error

	// Lifecycle
	Close() error
}

// SnapshotInfo summarizes a stored snapshot.
type SnapshotInfo struct {
	Name      string    `json:"name"`
	Spot      float64   `json:"spot"`
	Source    string    `json:"source"`
	Points    int       `json:"points"`
	MaxTenor  float64   `json:"max_tenor"`
	CreatedAt time.Time `json:"created_at"`
}
