package storage

import (
	"context"
	"fmt"

	"sitebuilder/internal/domain"
)

// DriverMongo selects the MongoDB backend.
const DriverMongo Driver = "mongodb"

// Backend bundles the page and snapshot stores of one database.
type Backend interface {
	domain.PageStore
	domain.SnapshotStore
	Close() error
}

// Options selects and locates a backend.
type Options struct {
	Driver   Driver
	Path     string // sqlite file
	DSN      string // postgres / mysql / mongodb connection string
	Database string // mongodb database name
}

type sqlBackend struct {
	*PageStore
	*SnapshotStore
	db *DB
}

func (b *sqlBackend) Close() error { return b.db.Close() }

// OpenBackend opens the backend described by opts.
func OpenBackend(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Driver {
	case DriverMongo:
		return OpenMongo(ctx, opts.DSN, opts.Database)
	case DriverSQLite:
		db, err := Open(DriverSQLite, opts.Path)
		if err != nil {
			return nil, err
		}
		return &sqlBackend{PageStore: NewPageStore(db), SnapshotStore: NewSnapshotStore(db), db: db}, nil
	case DriverPostgres, DriverMySQL:
		db, err := Open(opts.Driver, opts.DSN)
		if err != nil {
			return nil, err
		}
		return &sqlBackend{PageStore: NewPageStore(db), SnapshotStore: NewSnapshotStore(db), db: db}, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %q", opts.Driver)
	}
}
