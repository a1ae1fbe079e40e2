package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rebeliceyang/lazyreports/internal/db/connection"
	"github.com/rebeliceyang/lazyreports/internal/db/metadata"
	"github.com/rebeliceyang/lazyreports/internal/dbutil"
	"go.uber.org/zap"
)

var errNeedsDatabase = errors.New("this command needs a database connection, not a fixture")

// source is where lookup rows come from: a YAML fixture or PostgreSQL
type source struct {
	resolver dbutil.Resolver
	lister   dbutil.ItemLister
	memory   *dbutil.MemoryStore
	store    *metadata.LookupStore
	pool     *connection.Pool
}

func (s *source) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (o *options) openSource(ctx context.Context) (*source, error) {
	naming := dbutil.NewNaming()

	if path := o.cfg.Database.Fixture; path != "" {
		store, err := dbutil.LoadMemoryStore(path, naming)
		if err != nil {
			return nil, err
		}
		o.logger.Debug("using fixture", zap.String("path", path), zap.Strings("tables", store.Tables()))
		return &source{resolver: store, lister: store, memory: store}, nil
	}

	pool, err := connection.NewPool(ctx, o.cfg.Database.ConnectionConfig, o.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", o.cfg.Database.Host, err)
	}
	store := metadata.NewLookupStore(pool, naming)
	return &source{resolver: store, lister: store, store: store, pool: pool}, nil
}

// context returns a context bounded by the configured query timeout
func (o *options) context() (context.Context, context.CancelFunc) {
	if d := o.cfg.Database.Timeout(); d > 0 {
		return context.WithTimeout(context.Background(), d)
	}
	return context.WithCancel(context.Background())
}
