package models

import "time"

// Lifecycle labels reported by the engine. The set is open: unknown labels
// pass through verbatim rather than failing.
const (
	LifecycleConnecting = "connecting"
	LifecycleSyncing    = "syncing"
	LifecycleTrading    = "trading"
	LifecycleHalted     = "halted"
)

// DefaultModels is the model roster of the upstream engine.
var DefaultModels = []string{"Black-Scholes", "Jump-Diffusion", "Student-t"}

// PricePoint is the latest observed BTC price. Value and ObservedAt are
// always written together; a zero Value means not yet known.
type PricePoint struct {
	Value      float64   `json:"value"`
	ObservedAt time.Time `json:"observed_at"`
}

// MarketWindow is the active market projection, replaced wholesale on every
// market-state event. Nil until first observed.
type MarketWindow struct {
	Ticker     string   `json:"ticker"`
	Strike     *float64 `json:"strike,omitempty"`
	YesBid     *string  `json:"yes_bid,omitempty"`
	YesAsk     *string  `json:"yes_ask,omitempty"`
	TTLSeconds float64  `json:"ttl_seconds"`
	Status     string   `json:"status"`
}

// ModelMetrics is the per-model performance record. Partial updates merge
// field-by-field; a model never seen reads as the zero record.
type ModelMetrics struct {
	Name              string  `json:"name"`
	Probability       float64 `json:"probability"`
	EV                float64 `json:"ev"`
	KellySize         float64 `json:"kelly_size"`
	RealizedPnl       float64 `json:"cumulative_pnl"`
	UnrealizedPnl     float64 `json:"unrealized_pnl"`
	TotalPnl          float64 `json:"total_pnl"`
	TotalTrades       int64   `json:"total_trades"`
	WinningTrades     int64   `json:"winning_trades"`
	Sharpe            float64 `json:"sharpe"`
	MaxDrawdown       float64 `json:"max_drawdown"`
	BrierScore        float64 `json:"brier_score"`
	DailyPnl          float64 `json:"daily_pnl"`
	CurrentExposure   float64 `json:"current_exposure"`
	OpenPositionCount int     `json:"open_position_count"`
}

// WinRate derives the displayed win ratio.
func (m *ModelMetrics) WinRate() float64 {
	if m.TotalTrades == 0 {
		return 0
	}
	return float64(m.WinningTrades) / float64(m.TotalTrades)
}

// Trade outcomes. An empty Outcome marks an open trade; outcomes are
// terminal and never revert. Exit reasons are stored as "exit:<reason>".
const (
	OutcomeWin        = "win"
	OutcomeLoss       = "loss"
	OutcomeExitPrefix = "exit:"
)

// TradeRecord is one ledger entry.
type TradeRecord struct {
	ID               string     `json:"id"`
	Model            string     `json:"model"`
	MarketTicker     string     `json:"market_ticker"`
	Side             string     `json:"side"`
	Action           string     `json:"action"`
	EntryPrice       float64    `json:"entry_price"`
	Contracts        float64    `json:"contracts"`
	ModelProbability float64    `json:"model_probability"`
	EV               float64    `json:"ev"`
	KellyFraction    float64    `json:"kelly_fraction"`
	Outcome          string     `json:"outcome,omitempty"`
	Pnl              *float64   `json:"pnl,omitempty"`
	EntryTime        time.Time  `json:"entry_time"`
	SettleTime       *time.Time `json:"settle_time,omitempty"`
}

// IsOpen reports whether the trade has not yet been closed.
func (t *TradeRecord) IsOpen() bool { return t.Outcome == "" }

// TimeSeriesPoint is one P&L sample for charting.
type TimeSeriesPoint struct {
	Time  time.Time `json:"time"`
	Model string    `json:"model"`
	Pnl   float64   `json:"pnl"`
}

// ChartRow is one rendered chart row: a second-truncated bucket with one
// forward-filled value per model, keyed by model name.
type ChartRow struct {
	Time   time.Time          `json:"time"`
	Values map[string]float64 `json:"values"`
}

// Volatility is the engine's volatility state, carried only by Snapshots.
type Volatility struct {
	EwmaVol       float64 `json:"ewma_vol"`
	JumpIntensity float64 `json:"jump_intensity"`
	JumpMean      float64 `json:"jump_mean"`
	JumpVar       float64 `json:"jump_var"`
	StudentTNu    float64 `json:"student_t_nu"`
	Regime        string  `json:"regime"`
	SampleCount   uint64  `json:"sample_count"`
}

// DashboardState is the read-only projection returned to the presentation
// layer. All slices and maps are copies owned by the caller.
type DashboardState struct {
	Connected    bool                     `json:"connected"`
	Lifecycle    string                   `json:"engine_state"`
	StateReason  string                   `json:"state_reason,omitempty"`
	BtcPrice     PricePoint               `json:"btc_price"`
	ActiveMarket *MarketWindow            `json:"active_market,omitempty"`
	Volatility   *Volatility              `json:"volatility,omitempty"`
	Models       map[string]*ModelMetrics `json:"models"`
}
