package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/charmas3r/recovery-token-project-sub000/config"
	"github.com/charmas3r/recovery-token-project-sub000/docstore"
	"github.com/charmas3r/recovery-token-project-sub000/metrics"
	"github.com/charmas3r/recovery-token-project-sub000/roster"
)

// App wires the document store, roster store and metrics together behind
// either an external NATS server or an embedded one.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics

	embeddedServer *server.Server
	natsConn       *nats.Conn
	js             jetstream.JetStream

	roster     *roster.Store
	metricsSrv *http.Server
}

// NewApp creates a new application instance.
func NewApp(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.New(),
	}
}

// Roster returns the roster store. Start must have succeeded first.
func (a *App) Roster() *roster.Store {
	return a.roster
}

// OpTimeout bounds one store operation.
func (a *App) OpTimeout() time.Duration {
	return a.cfg.NATS.GetTimeout()
}

// Start initializes NATS, storage and the optional metrics listener.
func (a *App) Start(ctx context.Context) error {
	if err := a.startNATS(ctx); err != nil {
		return fmt.Errorf("start NATS: %w", err)
	}

	kv, err := docstore.NewKV(ctx, a.js, a.cfg.Roster.Bucket)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}

	a.roster = roster.NewStore(kv,
		roster.WithKey(a.cfg.Roster.Key),
		roster.WithLogger(a.logger),
		roster.WithRecorder(a.metrics),
	)

	if a.cfg.Metrics.Addr != "" {
		a.startMetrics()
	}
	return nil
}

func (a *App) startNATS(ctx context.Context) error {
	if a.cfg.NATS.URL != "" && !a.cfg.NATS.Embedded {
		a.logger.Debug("connecting to NATS", slog.String("url", a.cfg.NATS.URL))
		conn, err := nats.Connect(a.cfg.NATS.URL, nats.Timeout(a.cfg.NATS.GetTimeout()))
		if err != nil {
			return fmt.Errorf("connect to NATS: %w", err)
		}
		a.natsConn = conn
	} else {
		a.logger.Debug("starting embedded NATS server")
		opts := &server.Options{
			Port:      -1, // Random available port
			JetStream: true,
			NoLog:     true,
			NoSigs:    true,
		}

		ns, err := server.NewServer(opts)
		if err != nil {
			return fmt.Errorf("create embedded NATS server: %w", err)
		}

		go ns.Start()

		if !ns.ReadyForConnections(5 * time.Second) {
			ns.Shutdown()
			return fmt.Errorf("embedded NATS server failed to start")
		}
		a.embeddedServer = ns

		conn, err := nats.Connect(ns.ClientURL())
		if err != nil {
			ns.Shutdown()
			return fmt.Errorf("connect to embedded NATS: %w", err)
		}
		a.natsConn = conn
	}

	js, err := jetstream.New(a.natsConn)
	if err != nil {
		return fmt.Errorf("create JetStream context: %w", err)
	}
	a.js = js
	return nil
}

func (a *App) startMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	a.metricsSrv = &http.Server{Addr: a.cfg.Metrics.Addr, Handler: mux}

	go func() {
		a.logger.Info("metrics listener started", slog.String("addr", a.cfg.Metrics.Addr))
		if err := a.metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Warn("metrics listener stopped", slog.String("error", err.Error()))
		}
	}()
}

// Stop shuts everything down in reverse order.
func (a *App) Stop() {
	if a.metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = a.metricsSrv.Shutdown(shutdownCtx)
		cancel()
	}
	if a.natsConn != nil {
		a.natsConn.Close()
	}
	if a.embeddedServer != nil {
		a.embeddedServer.Shutdown()
	}
}
