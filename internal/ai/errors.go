package ai

import "fmt"

// ErrProviderUnavailable means the provider could not be reached or refused
// the request (network failure, 5xx, 429, missing credentials).
type ErrProviderUnavailable struct {
	Provider string
	Err      error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: provider unavailable: %v", e.Provider, e.Err)
	}
	return e.Provider + ": provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrInvalidResponse means the provider answered but the payload was unusable.
type ErrInvalidResponse struct {
	Provider string
	Err      error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("%s: invalid response: %v", e.Provider, e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }
