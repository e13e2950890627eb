// Package postgresql opens the bun handle used by the postgres storage driver
// and the schema migrations.
package postgresql

import (
	"context"
	"database/sql"
	"net"
	"time"

	"attendance/tracker/internal/pkg/config"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
)

type Database struct {
	*bun.DB
}

// NewDB opens a connection pool from the storage settings. It does not
// contact the server; call Ping for that.
func NewDB(cfg config.Storage) *Database {
	connector := pgdriver.NewConnector(
		pgdriver.WithAddr(net.JoinHostPort(cfg.DBHost, cfg.DBPort)),
		pgdriver.WithUser(cfg.DBUsername),
		pgdriver.WithPassword(cfg.DBPassword),
		pgdriver.WithDatabase(cfg.DBName),
		pgdriver.WithInsecure(cfg.DisableTLS),
		pgdriver.WithTimeout(5*time.Second),
	)

	db := bun.NewDB(sql.OpenDB(connector), pgdialect.New())
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	return &Database{DB: db}
}

// Ping checks the connection with a bounded wait.
func (d *Database) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := d.PingContext(ctx); err != nil {
		return errors.Wrap(err, "pinging postgres")
	}

	return nil
}
