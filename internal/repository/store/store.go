// Package store keeps the users and attendance_records collections. Both
// are held in memory and rewritten whole to durable storage on every
// mutation.
package store

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"sync"
	"time"

	"attendance/tracker/internal/entity"
	"attendance/tracker/internal/pkg/storage"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	UsersKey      = "kinster_users"
	AttendanceKey = "kinster_attendance"
)

var (
	ErrDuplicateEmail = errors.New("email already exists")
	ErrInvalidRole    = errors.New("role must be admin or user")
)

type Store struct {
	storage storage.Storage
	log     *log.Logger
	now     func() time.Time
	newID   func() string

	mu      sync.RWMutex
	users   []entity.User
	records []entity.AttendanceRecord
}

type Option func(*Store)

// WithClock replaces time.Now for created_at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDs replaces the UUID generator.
func WithIDs(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// New loads both collections from st and seeds the default accounts when
// no admin exists. A nil logger discards output.
func New(ctx context.Context, st storage.Storage, logger *log.Logger, opts ...Option) (*Store, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	s := &Store{
		storage: st,
		log:     logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.Reload(ctx); err != nil {
		return nil, err
	}

	if err := s.seed(ctx); err != nil {
		return nil, errors.Wrap(err, "seeding users")
	}

	return s, nil
}

// Reload replaces the in-memory collections with what storage holds.
func (s *Store) Reload(ctx context.Context) error {
	users, err := load[entity.User](ctx, s, UsersKey)
	if err != nil {
		return err
	}
	records, err := load[entity.AttendanceRecord](ctx, s, AttendanceKey)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.users = users
	s.records = records
	s.mu.Unlock()

	return nil
}

// load decodes the collection stored under key. Data that does not decode
// is logged and treated as an empty collection.
func load[T any](ctx context.Context, s *Store, key string) ([]T, error) {
	data, ok, err := s.storage.GetItem(ctx, key)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", key)
	}
	if !ok || len(data) == 0 {
		return nil, nil
	}

	var out []T
	if err = json.Unmarshal(data, &out); err != nil {
		s.log.Printf("store : %s is corrupt, starting empty : %v", key, err)
		return nil, nil
	}

	return out, nil
}

func (s *Store) save(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encoding %s", key)
	}

	if err = s.storage.SetItem(ctx, key, data); err != nil {
		return errors.Wrapf(err, "saving %s", key)
	}

	return nil
}

// saveUsers persists users and only then makes them current. Callers hold
// the write lock.
func (s *Store) saveUsers(ctx context.Context, users []entity.User) error {
	if users == nil {
		users = []entity.User{}
	}
	if err := s.save(ctx, UsersKey, users); err != nil {
		return err
	}

	s.users = users
	return nil
}

func (s *Store) saveRecords(ctx context.Context, records []entity.AttendanceRecord) error {
	if records == nil {
		records = []entity.AttendanceRecord{}
	}
	if err := s.save(ctx, AttendanceKey, records); err != nil {
		return err
	}

	s.records = records
	return nil
}
