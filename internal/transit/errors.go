package transit

import "fmt"

// NetworkError wraps a transport-level failure: connection refused, DNS,
// timeout. Recoverable; the display keeps showing stale data.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError means the server answered but the response was unusable: non-200
// status or a body that does not decode. Recoverable, same as NetworkError.
type APIError struct {
	Status int
	Err    error
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: %v", e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }
