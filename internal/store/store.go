package store

import (
	"context"
	"database/sql"

	"github.com/erazemk/skatedesk/internal/model"
)

// SQLStore exposes the item functions of this package as a value that
// satisfies the rental service's ItemStore interface.
type SQLStore struct {
	DB *sql.DB
}

// New returns a SQLStore backed by db.
func New(db *sql.DB) *SQLStore {
	return &SQLStore{DB: db}
}

func (s *SQLStore) CreateItem(ctx context.Context, n model.NewItem) (*model.Item, error) {
	return CreateItem(ctx, s.DB, n)
}

func (s *SQLStore) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	return GetItem(ctx, s.DB, id)
}

func (s *SQLStore) FindItemByQR(ctx context.Context, t model.ItemType, code string) (*model.Item, error) {
	return FindItemByQR(ctx, s.DB, t, code)
}

func (s *SQLStore) ListItemsByType(ctx context.Context, t model.ItemType) ([]model.Item, error) {
	return ListItemsByType(ctx, s.DB, t)
}

func (s *SQLStore) RecordTransition(ctx context.Context, tr model.Transition) error {
	return RecordTransition(ctx, s.DB, tr)
}
