package entity

import "time"

type AttendanceRecord struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	LoginTime         time.Time  `json:"login_time"`
	LogoutTime        *time.Time `json:"logout_time,omitempty"`
	LoginLocationLat  float64    `json:"login_location_lat"`
	LoginLocationLng  float64    `json:"login_location_lng"`
	LogoutLocationLat *float64   `json:"logout_location_lat,omitempty"`
	LogoutLocationLng *float64   `json:"logout_location_lng,omitempty"`
	TotalHours        *float64   `json:"total_hours,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Open reports whether the record is an in-progress work period.
func (r AttendanceRecord) Open() bool {
	return r.LogoutTime == nil
}

// Clone returns a copy that shares no pointers with r.
func (r AttendanceRecord) Clone() AttendanceRecord {
	out := r
	if r.LogoutTime != nil {
		t := *r.LogoutTime
		out.LogoutTime = &t
	}
	if r.LogoutLocationLat != nil {
		v := *r.LogoutLocationLat
		out.LogoutLocationLat = &v
	}
	if r.LogoutLocationLng != nil {
		v := *r.LogoutLocationLng
		out.LogoutLocationLng = &v
	}
	if r.TotalHours != nil {
		v := *r.TotalHours
		out.TotalHours = &v
	}
	return out
}

// AttendanceWithUser is an attendance record joined with its owner.
type AttendanceWithUser struct {
	AttendanceRecord
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}
