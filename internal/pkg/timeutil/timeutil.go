// Package timeutil computes and formats working durations.
package timeutil

import (
	"fmt"
	"math"
	"time"
)

const (
	DateTimeLayout = "Jan 02, 2006 15:04:05"
	DateLayout     = "Jan 02, 2006"
	TimeLayout     = "15:04:05"
)

// WorkingHours returns the whole minutes between login and logout expressed
// in hours. Seconds are truncated, the result is not rounded.
func WorkingHours(login, logout time.Time) float64 {
	minutes := int64(logout.Sub(login) / time.Minute)
	return float64(minutes) / 60
}

// CalculateWorkingHours is WorkingHours for RFC 3339 timestamps. Unparsable
// input yields 0.
func CalculateWorkingHours(loginTime, logoutTime string) float64 {
	login, err := time.Parse(time.RFC3339Nano, loginTime)
	if err != nil {
		return 0
	}
	logout, err := time.Parse(time.RFC3339Nano, logoutTime)
	if err != nil {
		return 0
	}

	return WorkingHours(login, logout)
}

// FormatWorkingHours renders hours as "8h 30m", dropping a zero hour or
// minute part. Zero renders as "0h 0m".
func FormatWorkingHours(hours float64) string {
	if hours == 0 {
		return "0h 0m"
	}

	whole := math.Floor(hours)
	minutes := math.Round((hours - whole) * 60)
	if minutes == 60 {
		whole++
		minutes = 0
	}

	switch {
	case whole == 0:
		return fmt.Sprintf("%dm", int(minutes))
	case minutes == 0:
		return fmt.Sprintf("%dh", int(whole))
	default:
		return fmt.Sprintf("%dh %dm", int(whole), int(minutes))
	}
}

func FormatDateTime(t time.Time) string {
	return t.Format(DateTimeLayout)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

func FormatLocationCoordinates(lat, lng float64) string {
	return fmt.Sprintf("%.6f, %.6f", lat, lng)
}
