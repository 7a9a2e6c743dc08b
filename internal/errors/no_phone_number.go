package errors

import "net/http"

// ErrNoPhoneNumber terminates a single dispatch attempt before the gateway
// is ever called. It is surfaced to interactive callers and logged by the
// scheduler.
var ErrNoPhoneNumber = &Exception{
	Message:    "no phone number provided",
	StatusCode: http.StatusBadRequest,
}
