package impetus

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
)

// WatchLock subscribes to the event's first-download notifications and invokes
// fn for every message: first the "lock_state" snapshot, then a "claimed"
// broadcast if a coordinator wins the download while the watch is active.
// It blocks until ctx is cancelled or the connection drops. A cancelled
// context returns ctx.Err(); a server-side close returns nil.
func (c *Client) WatchLock(ctx context.Context, eventName, passkey string, fn func(LockMessage)) error {
	wsURL, err := c.lockSocketURL(eventName, passkey)
	if err != nil {
		return err
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
			return newAPIError(resp.StatusCode, nil)
		}
		return fmt.Errorf("impetus: failed to connect: %w", err)
	}
	defer conn.Close()

	// Force the read loop to fail when the context is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var msg LockMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("impetus: connection lost: %w", err)
		}
		fn(msg)
	}
}

// lockSocketURL converts the client's base URL into the ws/wss endpoint for
// the event's notification socket.
func (c *Client) lockSocketURL(eventName, passkey string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("impetus: invalid base URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("impetus: unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/api/v1/events/" + url.PathEscape(eventName) + "/ws"
	u.RawQuery = url.Values{"passkey": {passkey}}.Encode()
	return u.String(), nil
}
