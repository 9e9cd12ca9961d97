package state

import (
	"reflect"
	"testing"
	"time"

	"github.com/anishesg/a-rusty-kalshi-bot/internal/domain/models"
)

func newTestStore() *Store {
	return NewStore(Options{})
}

func snapshotEnvelope() *models.Envelope {
	strike := 65000.0
	return &models.Envelope{
		Kind: models.KindSnapshot,
		Snapshot: &models.Snapshot{
			EngineState:  models.LifecycleTrading,
			BtcPrice:     64321.5,
			BtcTimestamp: "2025-06-01T12:00:00Z",
			ActiveMarket: &models.ActiveMarket{
				Ticker: "KXBTC-25JUN0112-T65000",
				Strike: &strike,
				Status: "active",
			},
			Volatility: &models.VolatilitySnap{EwmaVol: 0.42, Regime: "normal", SampleCount: 100},
			Models: []models.ModelStateSnap{
				{Name: "Black-Scholes", Probability: 0.61, CumulativePnl: 10, UnrealizedPnl: 2, TotalTrades: 5, WinningTrades: 3},
				{Name: "Jump-Diffusion", Probability: 0.55, CumulativePnl: -1, TotalTrades: 2, WinningTrades: 1},
			},
		},
	}
}

func TestStoreSnapshotReplacesState(t *testing.T) {
	s := newTestStore()
	now := time.Now()

	// Seed some delta-built state first.
	s.Apply(&models.Envelope{Kind: models.KindBtcPrice, BtcPrice: &models.BtcPriceEvent{Price: 1}}, now)
	s.Apply(&models.Envelope{Kind: models.KindModelUpdate, ModelUpdate: &models.ModelUpdateEvent{Model: "Black-Scholes", TotalPnl: 99}}, now)

	s.Apply(snapshotEnvelope(), now)

	st := s.State()
	if st.Lifecycle != models.LifecycleTrading {
		t.Fatalf("expected trading lifecycle, got %q", st.Lifecycle)
	}
	if st.BtcPrice.Value != 64321.5 {
		t.Fatalf("expected snapshot price, got %v", st.BtcPrice.Value)
	}
	bs := st.Models["Black-Scholes"]
	if bs.TotalPnl != 12 {
		t.Fatalf("expected realized+unrealized pnl, got %v", bs.TotalPnl)
	}
	if bs.RealizedPnl != 10 || bs.TotalTrades != 5 {
		t.Fatalf("unexpected snapshot merge %+v", bs)
	}
	if st.ActiveMarket == nil || st.ActiveMarket.Ticker != "KXBTC-25JUN0112-T65000" {
		t.Fatalf("expected market window from snapshot")
	}
	if st.Volatility == nil || st.Volatility.EwmaVol != 0.42 {
		t.Fatalf("expected volatility from snapshot")
	}
}

func TestStoreSnapshotIdempotent(t *testing.T) {
	s := newTestStore()
	now := time.Now()

	s.Apply(snapshotEnvelope(), now)
	first := s.State()
	s.Apply(snapshotEnvelope(), now)
	second := s.State()

	if !reflect.DeepEqual(first.Models, second.Models) {
		t.Fatalf("snapshot must be idempotent: %+v vs %+v", first.Models, second.Models)
	}
	if first.Lifecycle != second.Lifecycle || first.BtcPrice.Value != second.BtcPrice.Value {
		t.Fatalf("snapshot must be idempotent")
	}
}

func TestStoreSnapshotZeroPriceSentinel(t *testing.T) {
	s := newTestStore()
	now := time.Now()

	s.Apply(&models.Envelope{Kind: models.KindBtcPrice, BtcPrice: &models.BtcPriceEvent{Price: 50000}}, now)

	env := snapshotEnvelope()
	env.Snapshot.BtcPrice = 0
	s.Apply(env, now)

	if got := s.State().BtcPrice.Value; got != 50000 {
		t.Fatalf("zero snapshot price must not overwrite, got %v", got)
	}
}

func TestStoreModelUpdateLastWriteWins(t *testing.T) {
	s := newTestStore()
	now := time.Now()

	s.Apply(&models.Envelope{Kind: models.KindModelUpdate, ModelUpdate: &models.ModelUpdateEvent{
		Model: "Student-t", Probability: 0.4, TotalPnl: 1, TotalTrades: 1,
	}}, now)
	s.Apply(&models.Envelope{Kind: models.KindModelUpdate, ModelUpdate: &models.ModelUpdateEvent{
		Model: "Student-t", Probability: 0.7, TotalPnl: 3, TotalTrades: 2,
	}}, now.Add(time.Second))

	m := s.State().Models["Student-t"]
	if m.Probability != 0.7 || m.TotalPnl != 3 || m.TotalTrades != 2 {
		t.Fatalf("expected last update to win, got %+v", m)
	}

	pts := s.Pnl("Student-t", 0)
	if len(pts) != 2 || pts[1].Pnl != 3 {
		t.Fatalf("expected two pnl samples, got %v", pts)
	}
}

func TestStoreMetricsUpdateReconstructsWins(t *testing.T) {
	s := newTestStore()
	now := time.Now()

	s.Apply(&models.Envelope{Kind: models.KindMetricsUpdate, MetricsUpdate: &models.MetricsUpdateEvent{
		Model: "Black-Scholes", WinRate: 0.5, TotalTrades: 7, Sharpe: 1.1,
	}}, now)

	m := s.State().Models["Black-Scholes"]
	if m.WinningTrades != 4 {
		t.Fatalf("expected round(0.5*7)=4, got %d", m.WinningTrades)
	}
	if m.Sharpe != 1.1 || m.TotalTrades != 7 {
		t.Fatalf("unexpected merge %+v", m)
	}
}

func TestStoreEngineStateTransition(t *testing.T) {
	s := newTestStore()
	now := time.Now()

	if got := s.Lifecycle(); got != models.LifecycleConnecting {
		t.Fatalf("expected initial connecting, got %q", got)
	}

	s.Apply(&models.Envelope{Kind: models.KindEngineState, EngineState: &models.EngineStateEvent{
		State: models.LifecycleHalted, Reason: "market closed",
	}}, now)

	st := s.State()
	if st.Lifecycle != models.LifecycleHalted || st.StateReason != "market closed" {
		t.Fatalf("unexpected lifecycle %q reason %q", st.Lifecycle, st.StateReason)
	}

	// Snapshot clears the reason.
	s.Apply(snapshotEnvelope(), now)
	if st := s.State(); st.StateReason != "" {
		t.Fatalf("snapshot must clear state reason, got %q", st.StateReason)
	}
}

func TestStoreNewTradeStampsCurrentMarket(t *testing.T) {
	s := newTestStore()
	now := time.Now()

	s.Apply(&models.Envelope{Kind: models.KindMarketState, MarketState: &models.MarketStateEvent{
		Ticker: "KXBTC-CURRENT", TTLSeconds: 120, Status: "active",
	}}, now)
	s.Apply(&models.Envelope{Kind: models.KindNewTrade, NewTrade: &models.NewTradeEvent{
		Model: "Black-Scholes", Side: "yes", Price: 0.62, Contracts: 10,
	}}, now)

	trades := s.Trades("", 0)
	if len(trades) != 1 {
		t.Fatalf("expected one trade, got %d", len(trades))
	}
	if trades[0].MarketTicker != "KXBTC-CURRENT" {
		t.Fatalf("expected current market ticker, got %q", trades[0].MarketTicker)
	}
}

func TestStoreRosterAlwaysPresent(t *testing.T) {
	s := newTestStore()
	st := s.State()
	for _, name := range models.DefaultModels {
		m, ok := st.Models[name]
		if !ok {
			t.Fatalf("roster model %q missing", name)
		}
		if m.TotalTrades != 0 || m.TotalPnl != 0 {
			t.Fatalf("expected zero record for unseen model, got %+v", m)
		}
	}
}

func TestStoreUnknownModelAccepted(t *testing.T) {
	s := newTestStore()
	now := time.Now()

	s.Apply(&models.Envelope{Kind: models.KindModelUpdate, ModelUpdate: &models.ModelUpdateEvent{
		Model: "Garch", TotalPnl: 4,
	}}, now)

	m, ok := s.State().Models["Garch"]
	if !ok || m.TotalPnl != 4 {
		t.Fatalf("off-roster model must be tracked, got %+v", m)
	}
}

func TestStoreTradeFlowEndToEnd(t *testing.T) {
	s := newTestStore()
	now := time.Now()

	s.Apply(snapshotEnvelope(), now)
	s.Apply(&models.Envelope{Kind: models.KindNewTrade, NewTrade: &models.NewTradeEvent{
		Model: "Black-Scholes", Side: "yes", Action: "buy", Price: 0.62, Contracts: 10,
	}}, now)

	res := s.Apply(&models.Envelope{Kind: models.KindTradeExited, TradeExited: &models.TradeExitedEvent{
		Model: "Black-Scholes", Reason: "take_profit", Pnl: 1.8,
	}}, now.Add(time.Second))

	if len(res.Closed) != 1 {
		t.Fatalf("expected one closed trade, got %d", len(res.Closed))
	}
	closed := res.Closed[0]
	if closed.Outcome != "exit:take_profit" || closed.Pnl == nil || *closed.Pnl != 1.8 {
		t.Fatalf("unexpected closed record %+v", closed)
	}

	trades := s.Trades("Black-Scholes", 0)
	if len(trades) != 1 || trades[0].IsOpen() {
		t.Fatalf("ledger must show the settled trade, got %v", trades)
	}

	cs := s.Counters().Snapshot()
	if cs.TradesOpened != 1 || cs.TradesClosed != 1 || cs.SnapshotsApplied != 1 {
		t.Fatalf("unexpected counters %+v", cs)
	}
}

func TestStoreSettleFallbackViaApply(t *testing.T) {
	s := newTestStore()
	now := time.Now()

	s.Apply(&models.Envelope{Kind: models.KindNewTrade, NewTrade: &models.NewTradeEvent{
		Model: "Jump-Diffusion", Side: "no", Price: 0.4, Contracts: 5,
	}}, now)

	res := s.Apply(&models.Envelope{Kind: models.KindTradeSettled, TradeSettled: &models.TradeSettledEvent{
		Model: "Jump-Diffusion", TradeID: "engine-internal-id", Outcome: models.OutcomeWin, Pnl: 3,
	}}, now.Add(time.Second))

	if len(res.Closed) != 1 || res.Closed[0].Outcome != models.OutcomeWin {
		t.Fatalf("expected fallback settle, got %+v", res.Closed)
	}

	// Same event again: nothing left to close.
	res = s.Apply(&models.Envelope{Kind: models.KindTradeSettled, TradeSettled: &models.TradeSettledEvent{
		Model: "Jump-Diffusion", TradeID: "engine-internal-id", Outcome: models.OutcomeLoss, Pnl: -3,
	}}, now.Add(2*time.Second))
	if len(res.Closed) != 0 {
		t.Fatalf("expected no-op on duplicate settle, got %+v", res.Closed)
	}
}

func TestStoreProjectionIsCopy(t *testing.T) {
	s := newTestStore()
	now := time.Now()
	s.Apply(snapshotEnvelope(), now)

	st := s.State()
	st.Models["Black-Scholes"].TotalPnl = -777

	if got := s.State().Models["Black-Scholes"].TotalPnl; got == -777 {
		t.Fatalf("projection mutation leaked into store")
	}
}
