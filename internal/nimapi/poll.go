package nimapi

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// WaitReady polls GET /v1/health/ready at a fixed interval until it returns
// 200 or the timeout elapses. The interval is flat, no backoff. The context
// cancels the wait early.
func (c *Client) WaitReady(ctx context.Context, interval, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	for {
		probeCtx, probeCancel := context.WithTimeout(ctx, probeTimeout)
		status, err := c.Ready(probeCtx)
		probeCancel()
		if err == nil && status == http.StatusOK {
			return nil
		}
		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return fmt.Errorf("timed out waiting for %s/v1/health/ready to return 200", c.baseURL)
		}
	}
}
