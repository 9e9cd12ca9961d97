package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	domrepo "github.com/anishesg/a-rusty-kalshi-bot/internal/domain/repository"
	"github.com/anishesg/a-rusty-kalshi-bot/internal/usecase"
	"github.com/anishesg/a-rusty-kalshi-bot/pkg/config"
	xhttp "github.com/anishesg/a-rusty-kalshi-bot/pkg/http"
	pkgkafka "github.com/anishesg/a-rusty-kalshi-bot/pkg/kafka"
	applogger "github.com/anishesg/a-rusty-kalshi-bot/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	collector  *usecase.EventCollector
	sink       domrepo.TradeSink
	producer   *pkgkafka.Producer
	handler    xhttp.Handler
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	collector *usecase.EventCollector,
	sink domrepo.TradeSink,
	producer *pkgkafka.Producer,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		collector: collector,
		sink:      sink,
		producer:  producer,
		handler:   handler,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	if err := a.collector.Start(ctx); err != nil {
		// First connect failed; the collector has no session to resume, so
		// keep retrying in the background rather than exiting.
		a.log.Warn("initial engine connect failed, retrying",
			applogger.Error(err),
			applogger.String("url", a.cfg.Engine.WebSocketURL))
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-time.After(a.cfg.Engine.ReconnectDelay):
				}
				if err := a.collector.Start(ctx); err == nil {
					return
				}
			}
		}()
	}
	a.log.Info("collector started", applogger.String("url", a.cfg.Engine.WebSocketURL))

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown(context.Background())
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	if err := a.collector.Shutdown(ctx); err != nil {
		a.log.Warn("collector stop error", applogger.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.sink != nil {
		if err := a.sink.Close(); err != nil {
			a.log.Warn("trade sink close error", applogger.Error(err))
		}
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.log.Warn("kafka producer close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
