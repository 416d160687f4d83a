package storyapi

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// StatusError is a non-2xx answer from the registry.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("story api status %d: %s", e.Status, e.Message)
}

// TransportError means no HTTP response was received from any endpoint version.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("story api unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// errorMessage pulls "message" or "error" out of a JSON error body and falls
// back to the raw text.
func errorMessage(body []byte) string {
	if gjson.ValidBytes(body) {
		res := gjson.ParseBytes(body)
		for _, key := range []string{"message", "error"} {
			if v := res.Get(key); Truthy(v) {
				return v.String()
			}
		}
	}
	return string(body)
}
