package recipeapi

import "fmt"

// APIError is returned when the recipe API answers with a non-200 status.
type APIError struct {
	StatusCode int
	Body       string
}

// Error returns the error message.
func (e *APIError) Error() string {
	return fmt.Sprintf("recipe API returned status %d: %s", e.StatusCode, e.Body)
}

// TransportError wraps a failure to reach the recipe API or to read its
// response.
type TransportError struct {
	Op  string
	Err error
}

// Error returns the error message.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
