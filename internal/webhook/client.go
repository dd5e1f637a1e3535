// Package webhook fires the outbound GET requests behind waypoints.
package webhook

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/MrSnakeDoc/wirelink/internal/logger"
	"github.com/MrSnakeDoc/wirelink/internal/utils"
)

const userAgent = "wirelink-waypoint"

// Client issues fire-and-forget GET requests. Delivery is never reported
// to the caller; failures are logged at debug level.
type Client struct {
	http *http.Client
	log  logger.Logger
	wg   sync.WaitGroup
}

// New builds a client. A zero timeout leaves the transport defaults alone.
func New(timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
				},
				IdleConnTimeout: 90 * time.Second,
			},
		},
		log: log,
	}
}

// Fire sends a GET to url on its own goroutine and returns immediately.
func (c *Client) Fire(url string) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.get(url); err != nil {
			c.log.Debug("webhook failed", logger.String("url", url), logger.Error(err))
		}
	}()
}

// Wait blocks until every request fired so far has finished or ctx is
// done. Requests still running when ctx ends are left behind.
func (c *Client) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for webhooks: %w", ctx.Err())
	}
}

func (c *Client) get(url string) error {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer utils.Close(resp.Body)

	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
