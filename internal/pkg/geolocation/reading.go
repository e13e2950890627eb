package geolocation

import "context"

// Reading is a position reported by the client together with a request. A
// client whose own geolocation call failed sends the error instead.
type Reading struct {
	Latitude     *float64 `json:"latitude" form:"latitude"`
	Longitude    *float64 `json:"longitude" form:"longitude"`
	Accuracy     float64  `json:"accuracy" form:"accuracy"`
	Timestamp    int64    `json:"timestamp" form:"timestamp"`
	ErrorCode    *int     `json:"error_code" form:"error_code"`
	ErrorMessage string   `json:"error_message" form:"error_message"`
}

func (r Reading) CurrentLocation(_ context.Context, _ Options) (Location, error) {
	if r.ErrorCode != nil {
		msg := r.ErrorMessage
		if msg == "" {
			msg = "location unavailable"
		}
		return Location{}, &Error{Code: *r.ErrorCode, Message: msg}
	}

	if r.Latitude == nil || r.Longitude == nil {
		return Location{}, &Error{Code: CodePositionUnavailable, Message: "latitude and longitude are required"}
	}

	return Location{
		Latitude:  *r.Latitude,
		Longitude: *r.Longitude,
		Accuracy:  r.Accuracy,
		Timestamp: r.Timestamp,
	}, nil
}
