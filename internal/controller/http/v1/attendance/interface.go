package attendance

import (
	"context"

	"attendance/tracker/internal/entity"
	"attendance/tracker/internal/pkg/geolocation"
	"attendance/tracker/internal/repository/store"
	attendance_service "attendance/tracker/internal/service/attendance"
)

type Attendance interface {
	State(userID string) (attendance_service.Status, error)
	ClockIn(ctx context.Context, userID string, locator geolocation.Locator) (entity.AttendanceRecord, error)
	ClockOut(ctx context.Context, userID string, locator geolocation.Locator) (entity.AttendanceRecord, error)
}

type Records interface {
	GetAttendanceRecords(userID string) []entity.AttendanceRecord
	SearchAttendance(filter store.AttendanceFilter) ([]entity.AttendanceWithUser, int)
}
