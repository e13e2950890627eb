package store

import "github.com/Azure/go-autorest/autorest/date"

const (
	UnknownUserName  = "Unknown User"
	UnknownUserEmail = "unknown@email.com"
)

// AttendanceFilter narrows the joined attendance list. Nil fields do not
// filter.
type AttendanceFilter struct {
	Limit  *int
	Offset *int
	Page   *int
	Search *string
	UserID *string
	// Date keeps records whose login_time falls on this calendar day, in
	// the offset the login was recorded with.
	Date *date.Date
}
