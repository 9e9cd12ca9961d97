package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/anishesg/a-rusty-kalshi-bot/internal/domain/models"
	"github.com/anishesg/a-rusty-kalshi-bot/internal/state"
	applogger "github.com/anishesg/a-rusty-kalshi-bot/pkg/logger"
)

type fakeMetrics struct {
	mu        sync.Mutex
	events    map[string]int
	errs      map[string]int
	lastPrice float64
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{events: make(map[string]int), errs: make(map[string]int)}
}

func (m *fakeMetrics) RecordEvent(kind string) {
	m.mu.Lock()
	m.events[kind]++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errs[kind]++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordLastPrice(price float64) {
	m.mu.Lock()
	m.lastPrice = price
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordLatency(string, float64) {}
func (m *fakeMetrics) RecordConnected(bool)          {}
func (m *fakeMetrics) RecordReconnect()              {}

type fakeSink struct {
	mu        sync.Mutex
	published []models.TradeRecord
	fail      bool
}

func (s *fakeSink) Publish(_ context.Context, t *models.TradeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("broker unavailable")
	}
	s.published = append(s.published, *t)
	return nil
}

func (s *fakeSink) Close() error { return nil }

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func newTestDispatcher(t *testing.T, sink *fakeSink) (*Dispatcher, *state.Store, *fakeMetrics) {
	t.Helper()
	store := state.NewStore(state.Options{})
	m := newFakeMetrics()
	var d *Dispatcher
	if sink != nil {
		d = NewDispatcher(store, sink, m, testLogger(t))
	} else {
		d = NewDispatcher(store, nil, m, testLogger(t))
	}
	return d, store, m
}

func TestDispatchMalformedFrameDropped(t *testing.T) {
	d, store, m := newTestDispatcher(t, nil)

	d.Dispatch(context.Background(), []byte(`{"type":`))

	cs := store.Counters().Snapshot()
	if cs.FramesReceived != 1 || cs.FramesDropped != 1 {
		t.Fatalf("unexpected counters %+v", cs)
	}
	if m.errs["decode"] != 1 {
		t.Fatalf("expected decode error recorded")
	}
}

func TestDispatchUnknownTagIgnored(t *testing.T) {
	d, store, m := newTestDispatcher(t, nil)

	d.Dispatch(context.Background(), []byte(`{"type":"heartbeat"}`))

	cs := store.Counters().Snapshot()
	if cs.UnknownTags != 1 || cs.FramesDropped != 0 {
		t.Fatalf("unexpected counters %+v", cs)
	}
	if m.events["unknown"] != 1 {
		t.Fatalf("expected unknown event recorded")
	}
}

func TestDispatchSnapshotApplied(t *testing.T) {
	d, store, m := newTestDispatcher(t, nil)

	d.Dispatch(context.Background(), []byte(`{"engine_state":"trading","btc_price":64321.5,"models":[]}`))

	if got := store.Lifecycle(); got != "trading" {
		t.Fatalf("expected trading, got %q", got)
	}
	if m.lastPrice != 64321.5 {
		t.Fatalf("expected last price gauge updated, got %v", m.lastPrice)
	}
	if cs := store.Counters().Snapshot(); cs.SnapshotsApplied != 1 {
		t.Fatalf("unexpected counters %+v", cs)
	}
}

func TestDispatchDeltaOrderingPreserved(t *testing.T) {
	d, store, _ := newTestDispatcher(t, nil)
	ctx := context.Background()

	d.Dispatch(ctx, []byte(`{"type":"model_update","model":"Black-Scholes","probability":0.4,"total_pnl":1.0}`))
	d.Dispatch(ctx, []byte(`{"type":"model_update","model":"Black-Scholes","probability":0.7,"total_pnl":3.0}`))

	m := store.State().Models["Black-Scholes"]
	if m.Probability != 0.7 || m.TotalPnl != 3 {
		t.Fatalf("expected last frame to win, got %+v", m)
	}
}

func TestDispatchClosedTradePublished(t *testing.T) {
	sink := &fakeSink{}
	d, _, _ := newTestDispatcher(t, sink)
	ctx := context.Background()

	d.Dispatch(ctx, []byte(`{"type":"new_trade","model":"Black-Scholes","side":"yes","price":0.62,"contracts":10.0}`))
	d.Dispatch(ctx, []byte(`{"type":"trade_exited","model":"Black-Scholes","trade_id":"t1","reason":"take_profit","pnl":1.8}`))

	if len(sink.published) != 1 {
		t.Fatalf("expected one published trade, got %d", len(sink.published))
	}
	rec := sink.published[0]
	if rec.Outcome != "exit:take_profit" || rec.Pnl == nil || *rec.Pnl != 1.8 {
		t.Fatalf("unexpected published record %+v", rec)
	}
}

func TestDispatchSinkFailureDoesNotStall(t *testing.T) {
	sink := &fakeSink{fail: true}
	d, store, m := newTestDispatcher(t, sink)
	ctx := context.Background()

	d.Dispatch(ctx, []byte(`{"type":"new_trade","model":"Black-Scholes","side":"yes","price":0.62,"contracts":10.0}`))
	d.Dispatch(ctx, []byte(`{"type":"trade_exited","model":"Black-Scholes","trade_id":"t1","reason":"stop_loss","pnl":-1.0}`))

	if m.errs["sink"] != 1 {
		t.Fatalf("expected sink error recorded, got %v", m.errs)
	}
	// The ledger closed the trade regardless.
	trades := store.Trades("Black-Scholes", 0)
	if len(trades) != 1 || trades[0].IsOpen() {
		t.Fatalf("expected closed trade despite sink failure, got %v", trades)
	}
}
