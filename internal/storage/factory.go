package storage

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stockmcp/internal/common"
	"github.com/ternarybob/stockmcp/internal/interfaces"
	"github.com/ternarybob/stockmcp/internal/storage/rdb"
)

// Manager owns the database connection behind the metric and stock stores.
type Manager struct {
	db      *rdb.DB
	metrics *rdb.MetricStore
	stocks  *rdb.StockStore
}

// NewStorageManager opens the configured database and builds its stores
func NewStorageManager(ctx context.Context, logger arbor.ILogger, config *common.Config) (*Manager, error) {
	db, err := rdb.Open(ctx, logger, &config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open metric store: %w", err)
	}

	return &Manager{
		db:      db,
		metrics: rdb.NewMetricStore(db, logger),
		stocks:  rdb.NewStockStore(db, logger),
	}, nil
}

func (m *Manager) MetricStore() interfaces.MetricStore {
	return m.metrics
}

func (m *Manager) StockStore() interfaces.StockStore {
	return m.stocks
}

// Driver reports which database dialect is in use.
func (m *Manager) Driver() string {
	return m.db.Driver()
}

// Ping verifies the database is reachable.
func (m *Manager) Ping(ctx context.Context) error {
	return m.db.Ping(ctx)
}

// Close closes the database connection
func (m *Manager) Close() error {
	return m.db.Close()
}
