package api

import (
	"context"

	"kanban-api/domain"
)

// BoardStore is the mutation and read surface handlers drive.
type BoardStore interface {
	Snapshot() domain.Snapshot
	Version() uint64
	Subscribe(buffer int) (<-chan domain.Snapshot, func())

	AddColumn(title string) string
	UpdateColumnTitle(columnID, title string) bool
	DeleteColumn(columnID string) bool
	AddCard(columnID, title string) (string, bool)
	UpdateCard(columnID, cardID string, patch domain.CardPatch) bool
	DeleteCard(columnID, cardID string) bool
	MoveCard(fromColumnID, toColumnID, cardID string) bool
}

// Deduper prevents processing of duplicate commands.
type Deduper interface {
	// AddMany records the idempotency keys and reports, per key, whether it
	// was newly added.
	AddMany(ctx context.Context, boardID string, keys []string) ([]bool, error)
}
