package web

// Error is an error that carries the http status the client should see.
type Error struct {
	Err    error
	Status int
}

// NewRequestError wraps err with the status that describes it.
func NewRequestError(err error, status int) error {
	return &Error{Err: err, Status: status}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "request error"
	}

	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
