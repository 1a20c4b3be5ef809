package store

import (
	"context"

	"github.com/rcliao/menu-cache/internal/model"
)

// DisabledStore stands in when persistence is not configured or could not be
// opened. Reads miss and writes fail with ErrStoreUnavailable.
type DisabledStore struct {
	// Reason is reported by Stats.
	Reason string
}

func (DisabledStore) Get(context.Context, string) (*model.CachedMenuRecord, error) {
	return nil, ErrNotFound
}

func (DisabledStore) Put(context.Context, *model.CachedMenuRecord) error {
	return ErrStoreUnavailable
}

func (DisabledStore) Delete(context.Context, string) error {
	return ErrStoreUnavailable
}

func (DisabledStore) List(context.Context, ListParams) ([]*model.CachedMenuRecord, error) {
	return nil, ErrStoreUnavailable
}

func (DisabledStore) History(context.Context, string, int) ([]Revision, error) {
	return nil, ErrStoreUnavailable
}

func (d DisabledStore) Stats(context.Context) (*Stats, error) {
	return &Stats{Backend: "disabled", Path: d.Reason}, nil
}

func (DisabledStore) Close() error { return nil }
