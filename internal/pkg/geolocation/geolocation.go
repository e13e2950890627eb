// Package geolocation models the device position reading that every clock
// action requires.
package geolocation

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Error codes follow the browser PositionError values, with 0 for a client
// that cannot report positions at all.
const (
	CodeUnsupported         = 0
	CodePermissionDenied    = 1
	CodePositionUnavailable = 2
	CodeTimeout             = 3
)

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	// Timestamp is milliseconds since the Unix epoch.
	Timestamp int64 `json:"timestamp"`
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("geolocation error %d: %s", e.Code, e.Message)
}

type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaximumAge   time.Duration
	Now          func() time.Time
}

// DefaultOptions asks for a fresh, high accuracy reading within 10 seconds.
var DefaultOptions = Options{
	HighAccuracy: true,
	Timeout:      10 * time.Second,
	MaximumAge:   0,
}

// Locator produces a position reading.
type Locator interface {
	CurrentLocation(ctx context.Context, opts Options) (Location, error)
}

type result struct {
	loc Location
	err error
}

// GetCurrentLocation asks l for a reading and waits at most opts.Timeout.
// Every failure is reported as *Error. A request that times out keeps
// running in the background; it cannot be aborted.
func GetCurrentLocation(ctx context.Context, l Locator, opts Options) (Location, error) {
	if l == nil {
		return Location{}, &Error{Code: CodeUnsupported, Message: "geolocation is not supported"}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions.Timeout
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	start := now()
	ch := make(chan result, 1)
	go func() {
		loc, err := l.CurrentLocation(ctx, opts)
		ch <- result{loc: loc, err: err}
	}()

	timer := time.NewTimer(opts.Timeout)
	defer timer.Stop()

	select {
	case r := <-ch:
		if r.err != nil {
			if gerr, ok := r.err.(*Error); ok {
				return Location{}, gerr
			}
			return Location{}, &Error{Code: CodePositionUnavailable, Message: r.err.Error()}
		}
		if err := validate(r.loc, start, opts); err != nil {
			return Location{}, err
		}
		return r.loc, nil
	case <-timer.C:
		return Location{}, &Error{Code: CodeTimeout, Message: "timeout expired"}
	}
}

func validate(loc Location, start time.Time, opts Options) error {
	if math.IsNaN(loc.Latitude) || math.IsNaN(loc.Longitude) ||
		loc.Latitude < -90 || loc.Latitude > 90 || loc.Longitude < -180 || loc.Longitude > 180 {
		return &Error{Code: CodePositionUnavailable, Message: "coordinates out of range"}
	}

	// A reading may be at most as old as the time the device was given to
	// produce it, plus the accepted cache age.
	if loc.Timestamp > 0 {
		taken := time.UnixMilli(loc.Timestamp)
		if start.Sub(taken) > opts.MaximumAge+opts.Timeout {
			return &Error{Code: CodePositionUnavailable, Message: "position reading is stale"}
		}
	}

	return nil
}

// Distance returns the great-circle distance between two points in meters.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371000.0

	φ1 := lat1 * math.Pi / 180.0
	φ2 := lat2 * math.Pi / 180.0
	Δφ := (lat2 - lat1) * math.Pi / 180.0
	Δλ := (lon2 - lon1) * math.Pi / 180.0

	a := math.Sin(Δφ/2)*math.Sin(Δφ/2) + math.Cos(φ1)*math.Cos(φ2)*math.Sin(Δλ/2)*math.Sin(Δλ/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}
