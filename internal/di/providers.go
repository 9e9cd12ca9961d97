package di

import (
	"fmt"

	domrepo "github.com/anishesg/a-rusty-kalshi-bot/internal/domain/repository"
	"github.com/anishesg/a-rusty-kalshi-bot/internal/handler/api"
	internalrepo "github.com/anishesg/a-rusty-kalshi-bot/internal/repository"
	icache "github.com/anishesg/a-rusty-kalshi-bot/internal/service/cache"
	"github.com/anishesg/a-rusty-kalshi-bot/internal/service/engine"
	"github.com/anishesg/a-rusty-kalshi-bot/internal/state"
	"github.com/anishesg/a-rusty-kalshi-bot/internal/usecase"
	"github.com/anishesg/a-rusty-kalshi-bot/pkg/config"
	xhttp "github.com/anishesg/a-rusty-kalshi-bot/pkg/http"
	pkgkafka "github.com/anishesg/a-rusty-kalshi-bot/pkg/kafka"
	applogger "github.com/anishesg/a-rusty-kalshi-bot/pkg/logger"
	"github.com/anishesg/a-rusty-kalshi-bot/pkg/metrics"
	"github.com/anishesg/a-rusty-kalshi-bot/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideStore creates the reconciled dashboard state store.
func ProvideStore(cfg *config.Config) *state.Store {
	return state.NewStore(state.Options{
		Models:         cfg.Dashboard.Models,
		LedgerCapacity: cfg.Dashboard.LedgerCapacity,
		SeriesCapacity: cfg.Dashboard.SeriesCapacity,
		ChartRows:      cfg.Dashboard.ChartRows,
	})
}

// ProvideEngineStream creates the trading engine WebSocket stream.
func ProvideEngineStream(cfg *config.Config, l *applogger.Logger) domrepo.EngineStream {
	return engine.New(
		cfg.Engine.WebSocketURL,
		cfg.Engine.ReconnectDelay,
		cfg.Engine.PingInterval,
		l,
	)
}

// ProvideKafkaProducer creates a Kafka producer, or nil when the sink is
// disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Sink.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Sink.Brokers),
		pkgkafka.WithCompression(cfg.Sink.Compression),
		pkgkafka.WithRequiredAcks(cfg.Sink.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Sink.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Sink.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Sink.Linger),
		pkgkafka.WithTimeouts(cfg.Sink.WriteTimeout, cfg.Sink.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Sink.MaxAttempts),
		pkgkafka.WithAsync(cfg.Sink.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideTradeSink creates the closed-trade Kafka sink, or nil when
// publishing is disabled.
func ProvideTradeSink(producer *pkgkafka.Producer, cfg *config.Config) domrepo.TradeSink {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaTradeSink(producer, cfg.Sink.Topic)
}

// ProvideCache selects the response cache backend from config.
func ProvideCache(cfg *config.Config) icache.BytesCache {
	switch cfg.Cache.Backend {
	case "redis":
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
	case "memory":
		return icache.NewTTLCache()
	default:
		return icache.Noop{}
	}
}

// ProvideDispatcher creates the frame dispatcher use case.
func ProvideDispatcher(store *state.Store, sink domrepo.TradeSink, m domrepo.Metrics, l *applogger.Logger) *usecase.Dispatcher {
	return usecase.NewDispatcher(store, sink, m, l)
}

// ProvideCollector creates the event collector use case.
func ProvideCollector(store *state.Store, stream domrepo.EngineStream, d *usecase.Dispatcher, m domrepo.Metrics, l *applogger.Logger) *usecase.EventCollector {
	return usecase.NewEventCollector(store, stream, d, m, l)
}

// ProvideHTTPHandler creates the dashboard API handler.
func ProvideHTTPHandler(l *applogger.Logger, store *state.Store, cache icache.BytesCache) xhttp.Handler {
	return api.NewDashboardHandler(l, store, cache)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	collector *usecase.EventCollector,
	sink domrepo.TradeSink,
	producer *pkgkafka.Producer,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, l, collector, sink, producer, handler)
}
