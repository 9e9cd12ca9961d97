package models

import "encoding/json"

// EventKind discriminates decoded inbound frames.
type EventKind string

const (
	KindSnapshot      EventKind = "snapshot"
	KindBtcPrice      EventKind = "btc_price"
	KindMarketState   EventKind = "market_state"
	KindModelUpdate   EventKind = "model_update"
	KindNewTrade      EventKind = "new_trade"
	KindTradeExited   EventKind = "trade_exited"
	KindTradeSettled  EventKind = "trade_settled"
	KindMetricsUpdate EventKind = "metrics_update"
	KindEngineState   EventKind = "engine_state"
	KindUnknown       EventKind = "unknown"
)

// Envelope is the tagged union produced by DecodeFrame. Exactly one of the
// payload pointers matching Kind is non-nil; KindUnknown carries only the
// raw tag for logging.
type Envelope struct {
	Kind EventKind
	Tag  string

	Snapshot      *Snapshot
	BtcPrice      *BtcPriceEvent
	MarketState   *MarketStateEvent
	ModelUpdate   *ModelUpdateEvent
	NewTrade      *NewTradeEvent
	TradeExited   *TradeExitedEvent
	TradeSettled  *TradeSettledEvent
	MetricsUpdate *MetricsUpdateEvent
	EngineState   *EngineStateEvent
}

// Snapshot is the full authoritative state payload sent once per connection.
// It carries no "type" tag on the wire; presence of engine_state identifies it.
type Snapshot struct {
	EngineState  string           `json:"engine_state"`
	BtcPrice     float64          `json:"btc_price"`
	BtcTimestamp string           `json:"btc_timestamp"`
	ActiveMarket *ActiveMarket    `json:"active_market,omitempty"`
	Volatility   *VolatilitySnap  `json:"volatility,omitempty"`
	Models       []ModelStateSnap `json:"models"`
}

// ActiveMarket mirrors the backend's market projection.
type ActiveMarket struct {
	Ticker         string   `json:"ticker"`
	EventTicker    string   `json:"event_ticker,omitempty"`
	SeriesTicker   string   `json:"series_ticker,omitempty"`
	Strike         *float64 `json:"strike,omitempty"`
	YesBid         *string  `json:"yes_bid,omitempty"`
	YesAsk         *string  `json:"yes_ask,omitempty"`
	NoBid          *string  `json:"no_bid,omitempty"`
	NoAsk          *string  `json:"no_ask,omitempty"`
	LastPrice      *string  `json:"last_price,omitempty"`
	CloseTime      string   `json:"close_time,omitempty"`
	ExpirationTime string   `json:"expiration_time,omitempty"`
	Status         string   `json:"status"`
	Result         *string  `json:"result,omitempty"`
}

// VolatilitySnap is the volatility block of a Snapshot.
type VolatilitySnap struct {
	EwmaVol       float64 `json:"ewma_vol"`
	JumpIntensity float64 `json:"jump_intensity"`
	JumpMean      float64 `json:"jump_mean"`
	JumpVar       float64 `json:"jump_var"`
	StudentTNu    float64 `json:"student_t_nu"`
	Regime        string  `json:"regime"`
	SampleCount   uint64  `json:"sample_count"`
}

// ModelStateSnap is one per-model entry in a Snapshot's models list.
type ModelStateSnap struct {
	Name            string         `json:"name"`
	Probability     float64        `json:"probability"`
	EV              float64        `json:"ev"`
	KellySize       float64        `json:"kelly_size"`
	CumulativePnl   float64        `json:"cumulative_pnl"`
	TotalTrades     int64          `json:"total_trades"`
	WinningTrades   int64          `json:"winning_trades"`
	Sharpe          float64        `json:"sharpe"`
	MaxDrawdown     float64        `json:"max_drawdown"`
	BrierScore      float64        `json:"brier_score"`
	DailyPnl        float64        `json:"daily_pnl"`
	CurrentExposure float64        `json:"current_exposure"`
	UnrealizedPnl   float64        `json:"unrealized_pnl"`
	OpenPositions   []OpenPosition `json:"open_positions,omitempty"`
}

// OpenPosition is a live open position inside a Snapshot model entry.
type OpenPosition struct {
	TradeID      string  `json:"trade_id"`
	MarketTicker string  `json:"market_ticker"`
	Side         string  `json:"side"`
	EntryPrice   float64 `json:"entry_price"`
	Contracts    float64 `json:"contracts"`
}

type BtcPriceEvent struct {
	Price     float64 `json:"price"`
	Timestamp string  `json:"timestamp"`
}

type MarketStateEvent struct {
	Ticker     string   `json:"ticker"`
	Strike     *float64 `json:"strike,omitempty"`
	TTLSeconds float64  `json:"ttl_seconds"`
	YesBid     *string  `json:"yes_bid,omitempty"`
	YesAsk     *string  `json:"yes_ask,omitempty"`
	Status     string   `json:"status"`
}

type ModelUpdateEvent struct {
	Model             string  `json:"model"`
	Probability       float64 `json:"probability"`
	EV                float64 `json:"ev"`
	KellySize         float64 `json:"kelly_size"`
	CumulativePnl     float64 `json:"cumulative_pnl"`
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

type NewTradeEvent struct {
	Model     string  `json:"model"`
	Side      string  `json:"side"`
	Action    string  `json:"action"`
	Price     float64 `json:"price"`
	Contracts float64 `json:"contracts"`
	EV        float64 `json:"ev"`
	Timestamp string  `json:"timestamp"`
}

type TradeExitedEvent struct {
	Model      string  `json:"model"`
	TradeID    string  `json:"trade_id"`
	Side       string  `json:"side"`
	EntryPrice float64 `json:"entry_price"`
	ExitPrice  float64 `json:"exit_price"`
	Contracts  float64 `json:"contracts"`
	Pnl        float64 `json:"pnl"`
	Reason     string  `json:"reason"`
	Timestamp  string  `json:"timestamp"`
}

type TradeSettledEvent struct {
	Model     string  `json:"model"`
	TradeID   string  `json:"trade_id"`
	Outcome   string  `json:"outcome"`
	Pnl       float64 `json:"pnl"`
	Timestamp string  `json:"timestamp"`
}

type MetricsUpdateEvent struct {
	Model       string  `json:"model"`
	Sharpe      float64 `json:"sharpe"`
	MaxDrawdown float64 `json:"max_drawdown"`
	WinRate     float64 `json:"win_rate"`
	Brier       float64 `json:"brier"`
	TotalTrades int64   `json:"total_trades"`
	DailyPnl    float64 `json:"daily_pnl"`
}

type EngineStateEvent struct {
	State  string `json:"state"`
	Reason string `json:"reason"`
}

// frameProbe peeks at the discriminant fields before full decoding.
type frameProbe struct {
	Type        *string `json:"type"`
	EngineState *string `json:"engine_state"`
}

// DecodeFrame classifies a raw frame into a tagged Envelope. A frame without
// a "type" tag but with an engine_state field is the initial Snapshot; tagged
// frames decode per their tag; tags outside the known set yield KindUnknown.
// Undecodable frames return an error and the caller drops them.
func DecodeFrame(raw []byte) (*Envelope, error) {
	var probe frameProbe
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}

	if probe.Type == nil || *probe.Type == "" {
		if probe.EngineState == nil {
			return &Envelope{Kind: KindUnknown}, nil
		}
		var s Snapshot
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return &Envelope{Kind: KindSnapshot, Snapshot: &s}, nil
	}

	env := &Envelope{Tag: *probe.Type}
	var err error
	switch EventKind(*probe.Type) {
	case KindBtcPrice:
		env.Kind, env.BtcPrice = KindBtcPrice, &BtcPriceEvent{}
		err = json.Unmarshal(raw, env.BtcPrice)
	case KindMarketState:
		env.Kind, env.MarketState = KindMarketState, &MarketStateEvent{}
		err = json.Unmarshal(raw, env.MarketState)
	case KindModelUpdate:
		env.Kind, env.ModelUpdate = KindModelUpdate, &ModelUpdateEvent{}
		err = json.Unmarshal(raw, env.ModelUpdate)
	case KindNewTrade:
		env.Kind, env.NewTrade = KindNewTrade, &NewTradeEvent{}
		err = json.Unmarshal(raw, env.NewTrade)
	case KindTradeExited:
		env.Kind, env.TradeExited = KindTradeExited, &TradeExitedEvent{}
		err = json.Unmarshal(raw, env.TradeExited)
	case KindTradeSettled:
		env.Kind, env.TradeSettled = KindTradeSettled, &TradeSettledEvent{}
		err = json.Unmarshal(raw, env.TradeSettled)
	case KindMetricsUpdate:
		env.Kind, env.MetricsUpdate = KindMetricsUpdate, &MetricsUpdateEvent{}
		err = json.Unmarshal(raw, env.MetricsUpdate)
	case KindEngineState:
		env.Kind, env.EngineState = KindEngineState, &EngineStateEvent{}
		err = json.Unmarshal(raw, env.EngineState)
	default:
		env.Kind = KindUnknown
	}
	if err != nil {
		return nil, err
	}
	return env, nil
}
