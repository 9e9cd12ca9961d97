package state

import (
	"math"
	"sync"
	"time"

	"github.com/anishesg/a-rusty-kalshi-bot/internal/domain/models"
)

// Store is the single source of truth for the dashboard. Exactly one
// goroutine (the dispatcher) calls Apply; everything else reads copy-on-read
// projections. The RWMutex makes each merge atomic with respect to readers;
// the single-writer invariant holds by construction.
type Store struct {
	mu sync.RWMutex

	connected   bool
	lifecycle   string
	stateReason string
	price       models.PricePoint
	market      *models.MarketWindow
	volatility  *models.Volatility
	metrics     map[string]*models.ModelMetrics
	roster      []string

	ledger *Ledger
	series *Series

	counters Counters
}

// Options bound the store's buffers.
type Options struct {
	LedgerCapacity int
	SeriesCapacity int
	ChartRows      int
	Models         []string
}

// NewStore creates an empty store in the "connecting" lifecycle.
func NewStore(opts Options) *Store {
	if opts.LedgerCapacity <= 0 {
		opts.LedgerCapacity = 200
	}
	if opts.SeriesCapacity <= 0 {
		opts.SeriesCapacity = 3000
	}
	if opts.ChartRows <= 0 {
		opts.ChartRows = 300
	}
	if len(opts.Models) == 0 {
		opts.Models = models.DefaultModels
	}
	return &Store{
		lifecycle: models.LifecycleConnecting,
		metrics:   make(map[string]*models.ModelMetrics, len(opts.Models)),
		roster:    append([]string(nil), opts.Models...),
		ledger:    NewLedger(opts.LedgerCapacity),
		series:    NewSeries(opts.SeriesCapacity, opts.ChartRows, opts.Models),
	}
}

// Counters exposes the store's event counters.
func (s *Store) Counters() *Counters { return &s.counters }

// SetConnected flips the live signal.
func (s *Store) SetConnected(connected bool) {
	s.mu.Lock()
	s.connected = connected
	s.mu.Unlock()
}

// ApplyResult reports ledger side effects of one merge, for the trade sink.
type ApplyResult struct {
	Closed []models.TradeRecord
}

// Apply merges one decoded event into the store. It is the reducer: the
// dispatcher is its only caller, and each call is atomic with respect to
// projections.
func (s *Store) Apply(env *models.Envelope, now time.Time) ApplyResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res ApplyResult
	switch env.Kind {
	case models.KindSnapshot:
		s.applySnapshot(env.Snapshot, now)
		s.counters.SnapshotsApplied.Add(1)
		return res
	case models.KindBtcPrice:
		s.price = models.PricePoint{
			Value:      env.BtcPrice.Price,
			ObservedAt: parseWireTime(env.BtcPrice.Timestamp, now),
		}
	case models.KindMarketState:
		ev := env.MarketState
		s.market = &models.MarketWindow{
			Ticker:     ev.Ticker,
			Strike:     ev.Strike,
			YesBid:     ev.YesBid,
			YesAsk:     ev.YesAsk,
			TTLSeconds: ev.TTLSeconds,
			Status:     ev.Status,
		}
	case models.KindModelUpdate:
		s.applyModelUpdate(env.ModelUpdate, now)
	case models.KindMetricsUpdate:
		s.applyMetricsUpdate(env.MetricsUpdate)
	case models.KindEngineState:
		s.lifecycle = env.EngineState.State
		s.stateReason = env.EngineState.Reason
	case models.KindNewTrade:
		ticker := ""
		if s.market != nil {
			ticker = s.market.Ticker
		}
		s.ledger.Open(env.NewTrade, ticker, parseWireTime(env.NewTrade.Timestamp, now))
		s.counters.TradesOpened.Add(1)
	case models.KindTradeExited:
		at := parseWireTime(env.TradeExited.Timestamp, now)
		for _, rec := range s.ledger.Exit(env.TradeExited, at) {
			res.Closed = append(res.Closed, *rec)
		}
		s.counters.TradesClosed.Add(uint64(len(res.Closed)))
	case models.KindTradeSettled:
		at := parseWireTime(env.TradeSettled.Timestamp, now)
		if rec := s.ledger.Settle(env.TradeSettled, at); rec != nil {
			res.Closed = append(res.Closed, *rec)
			s.counters.TradesClosed.Add(1)
		}
	}
	s.counters.EventsApplied.Add(1)
	return res
}

// applySnapshot is the resynchronization path: the just-fetched truth
// replaces whatever the delta stream had built. Applying the same snapshot
// twice leaves the store unchanged.
func (s *Store) applySnapshot(snap *models.Snapshot, now time.Time) {
	if snap.EngineState != "" {
		s.lifecycle = snap.EngineState
		s.stateReason = ""
	}
	// A non-positive price is the backend's "not yet known" sentinel and
	// must not overwrite anything.
	if snap.BtcPrice > 0 {
		s.price = models.PricePoint{
			Value:      snap.BtcPrice,
			ObservedAt: parseWireTime(snap.BtcTimestamp, now),
		}
	}
	if snap.ActiveMarket != nil {
		m := snap.ActiveMarket
		ttl := 0.0
		if t, ok := parseWireTimeStrict(m.CloseTime); ok {
			ttl = time.Until(t).Seconds()
			if ttl < 0 {
				ttl = 0
			}
		}
		s.market = &models.MarketWindow{
			Ticker:     m.Ticker,
			Strike:     m.Strike,
			YesBid:     m.YesBid,
			YesAsk:     m.YesAsk,
			TTLSeconds: ttl,
			Status:     m.Status,
		}
	}
	if snap.Volatility != nil {
		v := models.Volatility(*snap.Volatility)
		s.volatility = &v
	}
	if len(snap.Models) > 0 {
		s.metrics = make(map[string]*models.ModelMetrics, len(snap.Models))
		for _, m := range snap.Models {
			s.metrics[m.Name] = &models.ModelMetrics{
				Name:              m.Name,
				Probability:       m.Probability,
				EV:                m.EV,
				KellySize:         m.KellySize,
				RealizedPnl:       m.CumulativePnl,
				UnrealizedPnl:     m.UnrealizedPnl,
				TotalPnl:          m.CumulativePnl + m.UnrealizedPnl,
				TotalTrades:       m.TotalTrades,
				WinningTrades:     m.WinningTrades,
				Sharpe:            m.Sharpe,
				MaxDrawdown:       m.MaxDrawdown,
				BrierScore:        m.BrierScore,
				DailyPnl:          m.DailyPnl,
				CurrentExposure:   m.CurrentExposure,
				OpenPositionCount: len(m.OpenPositions),
			}
		}
	}
}

func (s *Store) applyModelUpdate(ev *models.ModelUpdateEvent, now time.Time) {
	m := s.model(ev.Model)
	m.Probability = ev.Probability
	m.EV = ev.EV
	m.KellySize = ev.KellySize
	m.RealizedPnl = ev.CumulativePnl
	m.UnrealizedPnl = ev.UnrealizedPnl
	m.TotalPnl = ev.TotalPnl
	m.TotalTrades = ev.TotalTrades
	m.WinningTrades = ev.WinningTrades
	m.Sharpe = ev.Sharpe
	m.MaxDrawdown = ev.MaxDrawdown
	m.BrierScore = ev.BrierScore
	m.DailyPnl = ev.DailyPnl
	m.CurrentExposure = ev.CurrentExposure
	m.OpenPositionCount = ev.OpenPositionCount

	s.series.Append(models.TimeSeriesPoint{Time: now, Model: ev.Model, Pnl: ev.TotalPnl})
}

// applyMetricsUpdate merges the reduced summary subset. The event carries a
// win ratio, not a count; the integer count is reconstructed by rounding,
// a lossy display-only approximation superseded by the next snapshot.
func (s *Store) applyMetricsUpdate(ev *models.MetricsUpdateEvent) {
	m := s.model(ev.Model)
	m.Sharpe = ev.Sharpe
	m.MaxDrawdown = ev.MaxDrawdown
	m.BrierScore = ev.Brier
	m.DailyPnl = ev.DailyPnl
	m.TotalTrades = ev.TotalTrades
	m.WinningTrades = int64(math.Round(ev.WinRate * float64(ev.TotalTrades)))
}

// model returns the named metrics record, creating a default one on first
// reference.
func (s *Store) model(name string) *models.ModelMetrics {
	m, ok := s.metrics[name]
	if !ok {
		m = &models.ModelMetrics{Name: name}
		s.metrics[name] = m
	}
	return m
}

// State returns a deep copy of the dashboard projection. Models from the
// configured roster that were never written read as zero records.
func (s *Store) State() models.DashboardState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := models.DashboardState{
		Connected:   s.connected,
		Lifecycle:   s.lifecycle,
		StateReason: s.stateReason,
		BtcPrice:    s.price,
		Models:      make(map[string]*models.ModelMetrics, len(s.roster)),
	}
	if s.market != nil {
		m := *s.market
		out.ActiveMarket = &m
	}
	if s.volatility != nil {
		v := *s.volatility
		out.Volatility = &v
	}
	for _, name := range s.roster {
		if m, ok := s.metrics[name]; ok {
			c := *m
			out.Models[name] = &c
		} else {
			out.Models[name] = &models.ModelMetrics{Name: name}
		}
	}
	for name, m := range s.metrics {
		if _, ok := out.Models[name]; !ok {
			c := *m
			out.Models[name] = &c
		}
	}
	return out
}

// Trades returns ledger records, newest first.
func (s *Store) Trades(model string, limit int) []models.TradeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Trades(model, limit)
}

// Pnl returns the most recent P&L samples for one model, chronological.
func (s *Store) Pnl(model string, limit int) []models.TimeSeriesPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.series.PointsFor(model, limit)
}

// Chart renders the bucketed, forward-filled, downsampled chart rows.
func (s *Store) Chart() []models.ChartRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.series.Chart()
}

// Connected reports the live signal.
func (s *Store) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// Lifecycle returns the current engine lifecycle label.
func (s *Store) Lifecycle() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lifecycle
}
