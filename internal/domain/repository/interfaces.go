package repository

import (
	"context"

	"github.com/anishesg/a-rusty-kalshi-bot/internal/domain/models"
)

// EngineStream is one logical streaming session to the trading engine.
// Frames are delivered verbatim; the stream never interprets payloads.
type EngineStream interface {
	Connect(ctx context.Context) error
	Read(ctx context.Context) (<-chan []byte, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// TradeSink receives closed trades for downstream consumers. Delivery is
// best-effort: a sink failure must never stall the live view.
type TradeSink interface {
	Publish(ctx context.Context, t *models.TradeRecord) error
	Close() error
}

// Metrics abstracts the metrics backend.
type Metrics interface {
	RecordEvent(kind string)
	RecordError(kind string)
	RecordLastPrice(price float64)
	RecordLatency(op string, seconds float64)
	RecordConnected(connected bool)
	RecordReconnect()
}
