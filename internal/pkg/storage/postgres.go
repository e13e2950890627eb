package storage

import (
	"context"
	"database/sql"
	"time"

	"attendance/tracker/internal/pkg/repository/postgresql"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type item struct {
	bun.BaseModel `bun:"table:local_storage"`

	Key       string    `bun:"key,pk"`
	Value     string    `bun:"value"`
	UpdatedAt time.Time `bun:"updated_at"`
}

// Postgres keeps items in the local_storage table created by the
// migrations.
type Postgres struct {
	*postgresql.Database
}

func NewPostgres(db *postgresql.Database) *Postgres {
	return &Postgres{Database: db}
}

func (p *Postgres) GetItem(ctx context.Context, key string) ([]byte, bool, error) {
	var it item

	err := p.NewSelect().Model(&it).Where("key = ?", key).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "selecting %s", key)
	}

	return []byte(it.Value), true, nil
}

func (p *Postgres) SetItem(ctx context.Context, key string, value []byte) error {
	it := item{
		Key:       key,
		Value:     string(value),
		UpdatedAt: time.Now(),
	}

	_, err := p.NewInsert().
		Model(&it).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return errors.Wrapf(err, "upserting %s", key)
	}

	return nil
}

func (p *Postgres) Close() error {
	return p.DB.Close()
}
