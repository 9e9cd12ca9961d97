package models

import "testing"

func TestDecodeFrameSnapshot(t *testing.T) {
	raw := []byte(`{"engine_state":"trading","btc_price":64321.5,"btc_timestamp":"2025-06-01T12:00:00Z","models":[{"name":"Black-Scholes","probability":0.61,"cumulative_pnl":10.0}]}`)
	env, err := DecodeFrame(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.Kind != KindSnapshot || env.Snapshot == nil {
		t.Fatalf("expected snapshot, got %v", env.Kind)
	}
	if env.Snapshot.EngineState != "trading" || env.Snapshot.BtcPrice != 64321.5 {
		t.Fatalf("unexpected payload %+v", env.Snapshot)
	}
	if len(env.Snapshot.Models) != 1 || env.Snapshot.Models[0].Name != "Black-Scholes" {
		t.Fatalf("unexpected models %+v", env.Snapshot.Models)
	}
}

func TestDecodeFrameTaggedEvents(t *testing.T) {
	cases := []struct {
		raw  string
		kind EventKind
	}{
		{`{"type":"btc_price","price":64000.0,"timestamp":"2025-06-01T12:00:00Z"}`, KindBtcPrice},
		{`{"type":"market_state","ticker":"KXBTC-TEST","ttl_seconds":120.0,"status":"active"}`, KindMarketState},
		{`{"type":"model_update","model":"Black-Scholes","probability":0.6,"total_pnl":2.0}`, KindModelUpdate},
		{`{"type":"new_trade","model":"Black-Scholes","side":"yes","price":0.62,"contracts":10.0}`, KindNewTrade},
		{`{"type":"trade_exited","model":"Black-Scholes","trade_id":"t1","reason":"stop_loss","pnl":-1.0}`, KindTradeExited},
		{`{"type":"trade_settled","model":"Black-Scholes","trade_id":"t1","outcome":"win","pnl":2.0}`, KindTradeSettled},
		{`{"type":"metrics_update","model":"Black-Scholes","win_rate":0.5,"total_trades":4}`, KindMetricsUpdate},
		{`{"type":"engine_state","state":"halted","reason":"maintenance"}`, KindEngineState},
	}
	for _, tc := range cases {
		env, err := DecodeFrame([]byte(tc.raw))
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.kind, err)
		}
		if env.Kind != tc.kind {
			t.Fatalf("expected %s, got %s", tc.kind, env.Kind)
		}
	}
}

func TestDecodeFramePayloadFields(t *testing.T) {
	env, err := DecodeFrame([]byte(`{"type":"trade_exited","model":"Student-t","trade_id":"abc","exit_price":0.7,"pnl":1.8,"reason":"take_profit","timestamp":"2025-06-01T12:00:05Z"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ev := env.TradeExited
	if ev == nil || ev.Model != "Student-t" || ev.Reason != "take_profit" || ev.Pnl != 1.8 {
		t.Fatalf("unexpected payload %+v", ev)
	}
}

func TestDecodeFrameUnknownTag(t *testing.T) {
	env, err := DecodeFrame([]byte(`{"type":"heartbeat","seq":42}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.Kind != KindUnknown {
		t.Fatalf("expected unknown, got %s", env.Kind)
	}
	if env.Tag != "heartbeat" {
		t.Fatalf("expected raw tag preserved, got %q", env.Tag)
	}
}

func TestDecodeFrameUntaggedNonSnapshot(t *testing.T) {
	env, err := DecodeFrame([]byte(`{"hello":"world"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.Kind != KindUnknown {
		t.Fatalf("expected unknown, got %s", env.Kind)
	}
}

func TestDecodeFrameMalformed(t *testing.T) {
	if _, err := DecodeFrame([]byte(`{"type":"btc_price",`)); err == nil {
		t.Fatalf("expected error for malformed frame")
	}
}
