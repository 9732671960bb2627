package pixdex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Health checks the health of all service components. A degraded or
// unhealthy service still returns the report, not an error: the 503
// response carries the same body as the 200.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	req, err := c.newRequest(ctx, "GET", "/health", nil)
	if err != nil {
		return HealthStatus{}, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return HealthStatus{}, fmt.Errorf("pixdex: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return HealthStatus{}, decodeAPIError(resp)
	}

	var status HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return HealthStatus{}, fmt.Errorf("pixdex: decode response: %w", err)
	}
	return status, nil
}
