package service

import (
	"context"

	"github.com/healthsites/localityd/internal/models"
)

// HistoryStore is the archive-read interface HistoryService depends on.
type HistoryStore interface {
	LocalityHistory(ctx context.Context, localityUUID string, limit, offset int) ([]models.LocalityArchive, bool, error)
	ValueHistory(ctx context.Context, localityUUID, attributeKey string, limit, offset int) ([]models.ValueArchive, bool, error)
}

// HistoryService exposes the immutable archives.
type HistoryService struct {
	store HistoryStore
}

// NewHistoryService creates a HistoryService.
func NewHistoryService(store HistoryStore) *HistoryService {
	return &HistoryService{store: store}
}

// LocalityHistory returns a page of locality snapshots, newest first.
func (s *HistoryService) LocalityHistory(ctx context.Context, localityUUID string, limit, offset int) ([]models.LocalityArchive, bool, error) {
	return s.store.LocalityHistory(ctx, localityUUID, limit, offset)
}

// ValueHistory returns a page of value snapshots with optional key filter.
func (s *HistoryService) ValueHistory(ctx context.Context, localityUUID, attributeKey string, limit, offset int) ([]models.ValueArchive, bool, error) {
	return s.store.ValueHistory(ctx, localityUUID, attributeKey, limit, offset)
}
