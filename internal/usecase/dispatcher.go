package usecase

import (
	"context"
	"time"

	"github.com/anishesg/a-rusty-kalshi-bot/internal/domain/models"
	drepo "github.com/anishesg/a-rusty-kalshi-bot/internal/domain/repository"
	"github.com/anishesg/a-rusty-kalshi-bot/internal/state"
	applogger "github.com/anishesg/a-rusty-kalshi-bot/pkg/logger"
)

// Dispatcher decodes raw frames, classifies them, and routes them into the
// store. It is the only caller of Store.Apply; one frame is fully merged
// before the next is looked at. Nothing here is fatal: bad frames are
// dropped, unknown tags are ignored, sink failures are logged and counted.
type Dispatcher struct {
	store   *state.Store
	sink    drepo.TradeSink
	metrics drepo.Metrics
	log     *applogger.Logger
}

// NewDispatcher creates a Dispatcher. sink may be nil.
func NewDispatcher(store *state.Store, sink drepo.TradeSink, metrics drepo.Metrics, log *applogger.Logger) *Dispatcher {
	return &Dispatcher{store: store, sink: sink, metrics: metrics, log: log}
}

// Dispatch handles one raw inbound frame.
func (d *Dispatcher) Dispatch(ctx context.Context, raw []byte) {
	counters := d.store.Counters()
	counters.FramesReceived.Add(1)

	env, err := models.DecodeFrame(raw)
	if err != nil {
		// One bad frame must never halt the live view.
		counters.FramesDropped.Add(1)
		d.metrics.RecordError("decode")
		d.log.Debug("dispatcher: dropped malformed frame", applogger.Error(err))
		return
	}
	if env.Kind == models.KindUnknown {
		counters.UnknownTags.Add(1)
		d.metrics.RecordEvent("unknown")
		d.log.Debug("dispatcher: ignored unknown tag", applogger.String("tag", env.Tag))
		return
	}

	start := time.Now()
	res := d.store.Apply(env, start)
	d.metrics.RecordEvent(string(env.Kind))
	d.metrics.RecordLatency("dispatch", time.Since(start).Seconds())

	switch env.Kind {
	case models.KindSnapshot:
		if env.Snapshot.BtcPrice > 0 {
			d.metrics.RecordLastPrice(env.Snapshot.BtcPrice)
		}
		d.log.Info("dispatcher: snapshot applied",
			applogger.String("engine_state", env.Snapshot.EngineState),
			applogger.Int("models", len(env.Snapshot.Models)))
	case models.KindBtcPrice:
		d.metrics.RecordLastPrice(env.BtcPrice.Price)
	}

	d.publishClosed(ctx, res.Closed)
}

func (d *Dispatcher) publishClosed(ctx context.Context, closed []models.TradeRecord) {
	if d.sink == nil || len(closed) == 0 {
		return
	}
	for i := range closed {
		if err := d.sink.Publish(ctx, &closed[i]); err != nil {
			d.metrics.RecordError("sink")
			d.log.Warn("dispatcher: trade sink publish failed",
				applogger.String("trade_id", closed[i].ID), applogger.Error(err))
		}
	}
}
