// AngelaMos | 2026
// errors.go

package client

import (
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
)

const defaultErrorMessage = "An error occurred"

var (
	ErrAlreadyEnrolled  = errors.New("Already enrolled in this course") //nolint:staticcheck // shown to users verbatim
	ErrNotAuthenticated = errors.New("not authenticated")
)

// APIError is a non-2xx answer. Message is the server's error text.
type APIError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) String() string {
	if e.Code == "" {
		return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Code, e.Message)
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func newAPIError(resp *resty.Response) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode(),
		Message:    defaultErrorMessage,
	}

	if body, ok := resp.Error().(*errorBody); ok && body != nil {
		if body.Error != "" {
			apiErr.Message = body.Error
		}
		apiErr.Code = body.Code
	}

	return apiErr
}

// StatusCode returns the HTTP status of an *APIError in err's chain, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
