package usecase

import (
	"context"

	drepo "github.com/anishesg/a-rusty-kalshi-bot/internal/domain/repository"
	"github.com/anishesg/a-rusty-kalshi-bot/internal/state"
	applogger "github.com/anishesg/a-rusty-kalshi-bot/pkg/logger"
)

// EventCollector owns the engine stream session and feeds the dispatcher.
// Frames are dispatched strictly in arrival order by a single goroutine; on
// any stream failure it flips the live signal off and reconnects forever
// with the stream's fixed delay.
type EventCollector struct {
	store      *state.Store
	engine     drepo.EngineStream
	dispatcher *Dispatcher
	metrics    drepo.Metrics
	log        *applogger.Logger
}

// NewEventCollector creates a new EventCollector instance.
func NewEventCollector(store *state.Store, engine drepo.EngineStream, dispatcher *Dispatcher, metrics drepo.Metrics, log *applogger.Logger) *EventCollector {
	return &EventCollector{store: store, engine: engine, dispatcher: dispatcher, metrics: metrics, log: log}
}

// IsConnected returns true if the engine stream is live.
func (c *EventCollector) IsConnected() bool {
	return c.engine.IsConnected()
}

// Start connects and launches the consume loop.
func (c *EventCollector) Start(ctx context.Context) error {
	if err := c.engine.Connect(ctx); err != nil {
		return err
	}
	c.setLive(true)
	go c.run(ctx)
	return nil
}

// run consumes one session at a time. Each Read spans one session; when it
// dies the collector reconnects and resumes with the fresh session's
// snapshot restoring authoritative state.
func (c *EventCollector) run(ctx context.Context) {
	for {
		frames, errs := c.engine.Read(ctx)
		c.consume(ctx, frames, errs)
		if ctx.Err() != nil {
			return
		}

		c.setLive(false)
		for {
			c.metrics.RecordReconnect()
			if err := c.engine.Reconnect(ctx); err == nil {
				break
			} else if ctx.Err() != nil {
				return
			} else {
				c.metrics.RecordError("stream")
				c.log.Warn("collector: reconnect failed", applogger.Error(err))
			}
		}
		c.setLive(true)
		c.log.Info("collector: stream re-established")
	}
}

// consume drains one session until it ends.
func (c *EventCollector) consume(ctx context.Context, frames <-chan []byte, errs <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errs:
			if !ok {
				return
			}
			if err != nil {
				c.metrics.RecordError("stream")
				c.log.Warn("collector: stream error", applogger.Error(err))
				return
			}
		case raw, ok := <-frames:
			if !ok {
				return
			}
			c.dispatcher.Dispatch(ctx, raw)
		}
	}
}

func (c *EventCollector) setLive(live bool) {
	c.store.SetConnected(live)
	c.metrics.RecordConnected(live)
	if !live {
		c.store.Counters().Reconnects.Add(1)
	}
}

// Shutdown closes the stream session.
func (c *EventCollector) Shutdown(ctx context.Context) error {
	return c.engine.Close()
}
