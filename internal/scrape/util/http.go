package util

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const UserAgent = "RemoteJobsBrazil/1.0"

// JSONClient performs the GET + decode every ATS adapter needs. Limiter is
// optional and shared across crawlers hitting the same host.
type JSONClient struct {
	HC      *http.Client
	Limiter *HostLimiter
}

func NewJSONClient(limiter *HostLimiter) *JSONClient {
	return &JSONClient{
		HC:      &http.Client{Timeout: 30 * time.Second},
		Limiter: limiter,
	}
}

// GetJSON decodes the body of a 2xx response into v. Any other status is an
// "HTTP <code>: <text>" error.
func (c *JSONClient) GetJSON(ctx context.Context, rawURL string, v any) error {
	if err := c.Limiter.WaitURL(ctx, rawURL); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)

	hc := c.HC
	if hc == nil {
		hc = http.DefaultClient
	}
	res, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 4<<10))
		return fmt.Errorf("HTTP %d: %s", res.StatusCode, http.StatusText(res.StatusCode))
	}
	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return nil
}
