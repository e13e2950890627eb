// Package report renders attendance exports and user badges, and reads user
// import workbooks.
package report

import (
	"strconv"

	"attendance/tracker/internal/entity"
	"attendance/tracker/internal/pkg/timeutil"
)

var headers = []string{"Name", "Email", "Login Time", "Logout Time", "Login Location", "Logout Location", "Hours", "Duration"}

// row flattens a joined record into the cells shared by every export format.
// Open records leave the logout columns and the durations empty.
func row(r entity.AttendanceWithUser) []string {
	cells := []string{
		r.UserName,
		r.UserEmail,
		timeutil.FormatDateTime(r.LoginTime),
		"",
		timeutil.FormatLocationCoordinates(r.LoginLocationLat, r.LoginLocationLng),
		"",
		"",
		"",
	}

	if r.LogoutTime != nil {
		cells[3] = timeutil.FormatDateTime(*r.LogoutTime)
	}
	if r.LogoutLocationLat != nil && r.LogoutLocationLng != nil {
		cells[5] = timeutil.FormatLocationCoordinates(*r.LogoutLocationLat, *r.LogoutLocationLng)
	}
	if r.TotalHours != nil {
		cells[6] = strconv.FormatFloat(*r.TotalHours, 'f', 2, 64)
		cells[7] = timeutil.FormatWorkingHours(*r.TotalHours)
	}

	return cells
}
