package upstream

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const bodyLogLimit = 240

// getJSON issues a GET and decodes the 200 body into v. Non-200 statuses are
// returned as *HTTPError so callers can detect rate limiting.
func getJSON(ctx context.Context, client *fasthttp.Client, url string, timeout time.Duration, v interface{}) error {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		if err := client.DoDeadline(req, resp, deadline); err != nil {
			return fmt.Errorf("request %s: %w", url, err)
		}
	} else {
		if err := client.DoTimeout(req, resp, timeout); err != nil {
			return fmt.Errorf("request %s: %w", url, err)
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return newHTTPError(url, resp.StatusCode(), truncate(resp.Body(), bodyLogLimit))
	}

	if err := json.Unmarshal(resp.Body(), v); err != nil {
		return fmt.Errorf("decode response from %s: %w", url, err)
	}
	return nil
}

func truncate(body []byte, limit int) []byte {
	if len(body) <= limit {
		return body
	}
	return body[:limit]
}
