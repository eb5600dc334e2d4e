package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Watch connects to the live event feed and invokes onEvent for every event
// until the context is cancelled or the connection drops.
// Return an error from onEvent to abort.
func (c *Client) Watch(ctx context.Context, onEvent func(ev Event) error) error {
	// Convert HTTP endpoint to WebSocket endpoint
	wsEndpoint := c.baseURL + "/api/ws"
	wsEndpoint = strings.Replace(wsEndpoint, "http://", "ws://", 1)
	wsEndpoint = strings.Replace(wsEndpoint, "https://", "wss://", 1)

	u, err := url.Parse(wsEndpoint)
	if err != nil {
		return fmt.Errorf("parse endpoint: %w", err)
	}

	// Browsers cannot set WebSocket headers, so the server accepts the
	// access token as a query parameter. Use the same mechanism here.
	q := u.Query()
	q.Set("token", c.token)
	u.RawQuery = q.Encode()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("websocket connect: %w", err)
	}

	// Track connection state for proper cleanup
	var mu sync.Mutex
	closed := false
	closeConn := func() {
		mu.Lock()
		defer mu.Unlock()
		if !closed {
			closed = true
			conn.Close()
		}
	}
	defer closeConn()

	// Handle context cancellation in a separate goroutine
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			closeConn()
		case <-done:
		}
	}()

	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read event: %w", err)
		}

		if err := onEvent(ev); err != nil {
			return err
		}
	}
}
