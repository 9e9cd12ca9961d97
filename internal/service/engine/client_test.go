package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	applogger "github.com/anishesg/a-rusty-kalshi-bot/pkg/logger"
)

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

// engineStub serves one WS session per connection: it pushes the given
// frames then closes.
func engineStub(t *testing.T, frames []string) *httptest.Server {
	t.Helper()
	up := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
	}))
}

func wsURL(s *httptest.Server) string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func TestClientConnectAndRead(t *testing.T) {
	srv := engineStub(t, []string{
		`{"engine_state":"trading","btc_price":64000.0,"models":[]}`,
		`{"type":"btc_price","price":64100.0}`,
	})
	defer srv.Close()

	c := New(wsURL(srv), 10*time.Millisecond, time.Minute, testLogger(t))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := c.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer c.Close()
	if !c.IsConnected() {
		t.Fatalf("expected connected")
	}

	frames, errs := c.Read(ctx)

	var got []string
	for len(got) < 2 {
		select {
		case b, ok := <-frames:
			if !ok {
				t.Fatalf("frames closed early, got %d", len(got))
			}
			got = append(got, string(b))
		case err := <-errs:
			t.Fatalf("unexpected stream error: %v", err)
		case <-ctx.Done():
			t.Fatalf("timed out waiting for frames")
		}
	}
	if !strings.Contains(got[0], "engine_state") {
		t.Fatalf("expected snapshot first, got %q", got[0])
	}
}

func TestClientReadReportsSessionEnd(t *testing.T) {
	srv := engineStub(t, []string{`{"type":"btc_price","price":1.0}`})
	defer srv.Close()

	c := New(wsURL(srv), 10*time.Millisecond, time.Minute, testLogger(t))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := c.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer c.Close()

	frames, errs := c.Read(ctx)
	<-frames

	select {
	case err := <-errs:
		if err == nil {
			t.Fatalf("expected session-end error")
		}
	case <-ctx.Done():
		t.Fatalf("timed out waiting for session end")
	}
}

func TestClientReconnect(t *testing.T) {
	srv := engineStub(t, []string{`{"type":"btc_price","price":1.0}`})
	defer srv.Close()

	c := New(wsURL(srv), 10*time.Millisecond, time.Minute, testLogger(t))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := c.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := c.Reconnect(ctx); err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	defer c.Close()
	if !c.IsConnected() {
		t.Fatalf("expected connected after reconnect")
	}
}

func TestClientReconnectHonorsContext(t *testing.T) {
	c := New("ws://127.0.0.1:1/ws", time.Hour, time.Minute, testLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Reconnect(ctx); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestClientConnectFailure(t *testing.T) {
	c := New("ws://127.0.0.1:1/ws", 10*time.Millisecond, time.Minute, testLogger(t))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.Connect(ctx); err == nil {
		t.Fatalf("expected dial failure")
	}
	if c.IsConnected() {
		t.Fatalf("must not report connected after failure")
	}
}
