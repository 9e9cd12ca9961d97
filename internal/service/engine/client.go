package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	drepo "github.com/anishesg/a-rusty-kalshi-bot/internal/domain/repository"
	applogger "github.com/anishesg/a-rusty-kalshi-bot/pkg/logger"
)

// Client implements an EngineStream backed by the trading engine's
// dashboard WebSocket. It forwards raw frames verbatim and never
// interprets payloads; one logical session per Connect.
type Client struct {
	websocketURL   string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	log            *applogger.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
}

// New creates a new engine stream client.
func New(websocketURL string, reconnectDelay, pingInterval time.Duration, log *applogger.Logger) drepo.EngineStream {
	return &Client{
		websocketURL:   websocketURL,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		log:            log,
	}
}

// Connect establishes the WebSocket connection. The backend sends the
// initial snapshot unprompted; there is nothing to subscribe to.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.websocketURL, nil)
	if err != nil {
		return fmt.Errorf("engine connect: %w", err)
	}
	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()
	c.log.Info("engine: connected", applogger.String("url", c.websocketURL))
	return nil
}

// Read streams raw frames and read errors. Both channels close when the
// session ends; a value on the error channel means the session is dead and
// the caller should Reconnect.
func (c *Client) Read(ctx context.Context) (<-chan []byte, <-chan error) {
	frames := make(chan []byte, 256)
	errs := make(chan error, 1)

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.mu.Lock()
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
				c.mu.Unlock()
			}
		}
	}()

	// read loop
	go func() {
		defer close(frames)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if conn == nil {
					errs <- fmt.Errorf("engine conn nil")
					return
				}
				_, b, err := conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("engine read: %w", err)
					return
				}
				select {
				case frames <- b:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return frames, errs
}

// Reconnect closes the dead session, waits out the fixed delay, and dials
// again. The delay never grows and there is no retry cap; the caller loops.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.reconnectDelay):
	}
	return c.Connect(ctx)
}

// Close closes the WS connection and clears the live signal.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}
