// Package attendance runs the per user clock-in/clock-out state machine.
// It is the only place that keeps a user from holding two open records.
package attendance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"attendance/tracker/internal/entity"
	"attendance/tracker/internal/pkg/geolocation"
	"attendance/tracker/internal/pkg/timeutil"

	"github.com/pkg/errors"
)

var (
	ErrUserRequired        = errors.New("an active user is required")
	ErrAlreadyWorking      = errors.New("already clocked in")
	ErrNotWorking          = errors.New("not clocked in")
	ErrActionPending       = errors.New("another clock action is in progress")
	ErrLocationUnavailable = errors.New("location access is required")
	ErrOutsideOffice       = errors.New("distance from office is greater than office radius")
)

type State string

const (
	Idle    State = "idle"
	Working State = "working"
)

// Store is the slice of the persistence store the service depends on.
type Store interface {
	GetUserByID(id string) (entity.User, bool)
	GetActiveAttendanceRecord(userID string) (entity.AttendanceRecord, bool)
	CreateAttendanceRecord(ctx context.Context, userID string, loginTime time.Time, lat, lng float64) (entity.AttendanceRecord, error)
	UpdateAttendanceLogout(ctx context.Context, recordID string, logoutTime time.Time, lat, lng, totalHours float64) (bool, error)
}

// Office is the optional geofence. A zero Radius disables it.
type Office struct {
	Latitude  float64
	Longitude float64
	Radius    float64
}

type Status struct {
	State  State                    `json:"state"`
	Active *entity.AttendanceRecord `json:"active,omitempty"`
}

type Service struct {
	store    Store
	location geolocation.Options
	office   Office
	now      func() time.Time

	mu      sync.Mutex
	pending map[string]struct{}
}

type Option func(*Service)

func WithOffice(o Office) Option {
	return func(s *Service) { s.office = o }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLocationOptions(o geolocation.Options) Option {
	return func(s *Service) { s.location = o }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		location: geolocation.DefaultOptions,
		now:      time.Now,
		pending:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State reports Working when the user has an open record.
func (s *Service) State(userID string) (Status, error) {
	if err := s.requireUser(userID); err != nil {
		return Status{}, err
	}

	active, ok := s.store.GetActiveAttendanceRecord(userID)
	if !ok {
		return Status{State: Idle}, nil
	}

	return Status{State: Working, Active: &active}, nil
}

// ClockIn opens a record at the current time and position. Nothing is
// written when the position cannot be read.
func (s *Service) ClockIn(ctx context.Context, userID string, locator geolocation.Locator) (entity.AttendanceRecord, error) {
	if err := s.requireUser(userID); err != nil {
		return entity.AttendanceRecord{}, err
	}

	release, err := s.acquire(userID)
	if err != nil {
		return entity.AttendanceRecord{}, err
	}
	defer release()

	if _, ok := s.store.GetActiveAttendanceRecord(userID); ok {
		return entity.AttendanceRecord{}, ErrAlreadyWorking
	}

	loc, err := s.locate(ctx, locator)
	if err != nil {
		return entity.AttendanceRecord{}, err
	}

	return s.store.CreateAttendanceRecord(ctx, userID, s.now(), loc.Latitude, loc.Longitude)
}

// ClockOut closes the open record with the current time and position and
// returns it.
func (s *Service) ClockOut(ctx context.Context, userID string, locator geolocation.Locator) (entity.AttendanceRecord, error) {
	if err := s.requireUser(userID); err != nil {
		return entity.AttendanceRecord{}, err
	}

	release, err := s.acquire(userID)
	if err != nil {
		return entity.AttendanceRecord{}, err
	}
	defer release()

	active, ok := s.store.GetActiveAttendanceRecord(userID)
	if !ok {
		return entity.AttendanceRecord{}, ErrNotWorking
	}

	loc, err := s.locate(ctx, locator)
	if err != nil {
		return entity.AttendanceRecord{}, err
	}

	logout := s.now()
	hours := timeutil.WorkingHours(active.LoginTime, logout)

	ok, err = s.store.UpdateAttendanceLogout(ctx, active.ID, logout, loc.Latitude, loc.Longitude, hours)
	if err != nil {
		return entity.AttendanceRecord{}, err
	}
	if !ok {
		return entity.AttendanceRecord{}, ErrNotWorking
	}

	lat, lng := loc.Latitude, loc.Longitude
	active.LogoutTime = &logout
	active.LogoutLocationLat = &lat
	active.LogoutLocationLng = &lng
	active.TotalHours = &hours

	return active, nil
}

func (s *Service) requireUser(userID string) error {
	if userID == "" {
		return ErrUserRequired
	}

	u, ok := s.store.GetUserByID(userID)
	if !ok || !u.IsActive {
		return ErrUserRequired
	}

	return nil
}

// acquire marks userID as having a clock action in flight.
func (s *Service) acquire(userID string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.pending[userID]; busy {
		return nil, ErrActionPending
	}
	s.pending[userID] = struct{}{}

	return func() {
		s.mu.Lock()
		delete(s.pending, userID)
		s.mu.Unlock()
	}, nil
}

func (s *Service) locate(ctx context.Context, locator geolocation.Locator) (geolocation.Location, error) {
	loc, err := geolocation.GetCurrentLocation(ctx, locator, s.location)
	if err != nil {
		return geolocation.Location{}, fmt.Errorf("%w: %w", ErrLocationUnavailable, err)
	}

	if s.office.Radius > 0 {
		d := geolocation.Distance(loc.Latitude, loc.Longitude, s.office.Latitude, s.office.Longitude)
		if d > s.office.Radius {
			return geolocation.Location{}, ErrOutsideOffice
		}
	}

	return loc, nil
}
