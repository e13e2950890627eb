package attendance

import (
	"attendance/tracker/internal/entity"
	"attendance/tracker/internal/pkg/timeutil"
)

type RecordResponse struct {
	entity.AttendanceRecord
	Duration string `json:"duration,omitempty"`
}

type ListResponse struct {
	entity.AttendanceWithUser
	Duration string `json:"duration,omitempty"`
}

func duration(r entity.AttendanceRecord) string {
	if r.TotalHours == nil {
		return ""
	}
	return timeutil.FormatWorkingHours(*r.TotalHours)
}

func toRecordResponse(r entity.AttendanceRecord) RecordResponse {
	return RecordResponse{AttendanceRecord: r, Duration: duration(r)}
}
