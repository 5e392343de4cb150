package upstream

import (
	"errors"
	"fmt"

	"github.com/valyala/fasthttp"
)

// HTTPError is a non-200 response from an upstream API.
type HTTPError struct {
	Status      int
	URL         string
	Body        string
	RateLimited bool
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d %s: %s", e.Status, e.URL, e.Body)
}

func newHTTPError(url string, status int, body []byte) *HTTPError {
	return &HTTPError{
		Status:      status,
		URL:         url,
		Body:        string(body),
		RateLimited: status == fasthttp.StatusTooManyRequests,
	}
}

// IsRateLimited reports whether err is an upstream rate-limit response.
func IsRateLimited(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.RateLimited
}
