package relevance

import "errors"

// Failure kinds a remote scorer reports. The fallback scorer recovers from
// all of them.
var (
	ErrRemoteUnavailable = errors.New("remote scorer unavailable")
	ErrRemoteStatus      = errors.New("remote scorer returned an error status")
	ErrMalformedResponse = errors.New("remote scorer returned a malformed response")
)
