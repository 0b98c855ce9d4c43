package afltables

import (
	"errors"
	"fmt"
)

type FetchKind string

const (
	FetchKindTimeout FetchKind = "timeout"
	FetchKindHTTP    FetchKind = "http"
	FetchKindNetwork FetchKind = "network"
)

// FetchError is the typed outcome of a failed archive request. Kind keeps
// timeouts, transport failures and HTTP statuses distinguishable after the
// retry loop has given up.
type FetchError struct {
	Kind   FetchKind
	Status int
	URL    string
	cause  error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchKindHTTP:
		return fmt.Sprintf("archive request %s: status %d", e.URL, e.Status)
	case FetchKindTimeout:
		return fmt.Sprintf("archive request %s: timed out", e.URL)
	default:
		return fmt.Sprintf("archive request %s: %v", e.URL, e.cause)
	}
}

func (e *FetchError) Unwrap() error {
	return e.cause
}

// retryable reports whether the failure is worth another attempt: network
// errors, timeouts, 5xx responses and 429 rate limiting.
func (e *FetchError) retryable() bool {
	switch e.Kind {
	case FetchKindTimeout, FetchKindNetwork:
		return true
	case FetchKindHTTP:
		return e.Status >= 500 || e.Status == 429
	default:
		return false
	}
}

// AsFetchError unwraps err into a *FetchError when one is in the chain.
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
