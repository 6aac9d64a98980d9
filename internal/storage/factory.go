// Package storage holds the ledger snapshot backends and the postgres
// anomaly table.
package storage

import (
	"context"
	"fmt"
	"log"

	"github.com/RegionalHealth/RH-Backend/internal/config"
	"github.com/RegionalHealth/RH-Backend/internal/db"
	"github.com/RegionalHealth/RH-Backend/internal/ledger"
)

// Open returns the ledger store selected by cfg.Store. The memory store
// returns a nil Store and a nil *Postgres. The *Postgres is non-nil only
// for the postgres store so callers can also read anomalies from it.
func Open(ctx context.Context, cfg config.Config) (ledger.Store, *Postgres, error) {
	switch cfg.Store {
	case config.StoreMemory, "":
		log.Println("[storage] ledger is memory-only")
		return nil, nil, nil
	case config.StoreSQLite:
		s, err := NewSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("[storage] ledger snapshots in sqlite %s", s.Path())
		return s, nil, nil
	case config.StoreS3:
		s, err := NewS3(ctx, cfg.S3)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("[storage] ledger snapshots in s3://%s/%s", s.bucket, s.key)
		return s, nil, nil
	case config.StorePostgres:
		gdb, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		p, err := NewPostgres(gdb)
		if err != nil {
			return nil, nil, err
		}
		log.Println("[storage] ledger rows in postgres")
		return p, p, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", config.ErrUnknownStore, cfg.Store)
	}
}
