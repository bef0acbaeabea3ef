package ml

import "errors"

// ErrMissingCredentials means the backend has no API credential configured.
// It is checked before any network call is made.
var ErrMissingCredentials = errors.New("missing inference API credentials")

// ErrUpstream covers failures of the inference service itself: network
// errors, timeouts, non-success statuses, empty responses. Calls are not
// retried; the caller decides what to do.
var ErrUpstream = errors.New("inference service request failed")
