package repository

import (
	"context"
	"time"

	"github.com/mr1hm/battlescape/internal/models"
)

// LoadInfo describes the snapshot currently held by the repository.
type LoadInfo struct {
	Source   string
	Count    int
	LoadedAt time.Time
}

// RecordRepository keeps the last good dataset so the service can start
// when the record source is unreachable.
type RecordRepository interface {
	ReplaceRecords(ctx context.Context, source string, records []models.BattleRecord) error
	ListRecords(ctx context.Context) ([]models.BattleRecord, error)
	LastLoad(ctx context.Context) (*LoadInfo, error)
}
