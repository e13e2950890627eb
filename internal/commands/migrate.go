package commands

import (
	"context"
	"database/sql"
	"log"

	"attendance/tracker/internal/pkg/repository/postgresql"

	"github.com/pkg/errors"
)

type Scheme struct {
	Index       int
	Description string
	Query       string
}

var scheme = []Scheme{
	{
		Index:       1,
		Description: "Create table: local_storage.",
		Query: `
        CREATE TABLE IF NOT EXISTS local_storage (
            key text primary key,
            value text not null,
            updated_at timestamp default now()
        );`,
	},
	{
		Index:       2,
		Description: "Seed empty collections: kinster_users, kinster_attendance.",
		Query: `
        INSERT INTO local_storage(key, value)
        VALUES ('kinster_users', '[]'), ('kinster_attendance', '[]')
        ON CONFLICT (key) DO NOTHING;`,
	},
}

// Latest returns the index of the newest migration.
func Latest() int {
	latest := 0
	for _, s := range scheme {
		if s.Index > latest {
			latest = s.Index
		}
	}
	return latest
}

// MigrateUP applies every migration newer than the recorded version. A
// migration that failed earlier leaves the version dirty and is retried
// first.
func MigrateUP(ctx context.Context, db *postgresql.Database, logger *log.Logger) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version int not null, dirty bool not null, error text)`); err != nil {
		return errors.Wrap(err, "creating schema_migrations")
	}

	var (
		version int
		dirty   bool
	)
	err := db.QueryRowContext(ctx, `SELECT version, dirty FROM schema_migrations`).Scan(&version, &dirty)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return errors.Wrap(err, "reading schema_migrations")
		}
		if _, err = db.ExecContext(ctx, `INSERT INTO schema_migrations (version, dirty) VALUES (0, false)`); err != nil {
			return errors.Wrap(err, "initialising schema_migrations")
		}
		version, dirty = 0, false
	}

	for _, s := range scheme {
		if s.Index < version || (s.Index == version && !dirty) {
			continue
		}

		logger.Printf("migrate : %d : %s", s.Index, s.Description)

		if _, err = db.ExecContext(ctx, s.Query); err != nil {
			if _, uerr := db.ExecContext(ctx, `UPDATE schema_migrations SET version = ?, dirty = true, error = ?`, s.Index, err.Error()); uerr != nil {
				return errors.Wrap(uerr, "recording migration failure")
			}
			return errors.Wrapf(err, "migrate version %d", s.Index)
		}

		if _, err = db.ExecContext(ctx, `UPDATE schema_migrations SET version = ?, dirty = false, error = null`, s.Index); err != nil {
			return errors.Wrapf(err, "recording migration %d", s.Index)
		}
	}

	return nil
}
