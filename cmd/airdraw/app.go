package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	app "github.com/kode4food/airdraw"
	"github.com/kode4food/airdraw/internal/catalog"
	"github.com/kode4food/airdraw/internal/config"
	"github.com/kode4food/airdraw/internal/metrics"
	"github.com/kode4food/airdraw/internal/operator"
	"github.com/kode4food/airdraw/internal/python"
	"github.com/kode4food/airdraw/internal/scan"
	"github.com/kode4food/airdraw/internal/server"
	"github.com/kode4food/airdraw/internal/store"
	"github.com/kode4food/airdraw/pkg/log"
)

type airdraw struct {
	cfg        *config.Config
	python     *python.Interpreter
	metrics    *metrics.Metrics
	scanner    *scan.Scanner
	catalog    *catalog.Cache
	describers *operator.Describers
	store      store.Store
	apiServer  *server.Server
	httpServer *http.Server
	quit       chan os.Signal
	out        io.Writer
}

var (
	ErrSearchPath = errors.New("failed to resolve python search path")
	ErrOpenStore  = errors.New("failed to open dag store")
)

func newApp(cfg *config.Config, out io.Writer) *airdraw {
	return &airdraw{
		cfg:     cfg,
		python:  python.New(cfg.PythonBin),
		metrics: metrics.New(),
		quit:    make(chan os.Signal, 1),
		out:     out,
	}
}

func (s *airdraw) run(ctx context.Context) error {
	s.initializeDiscovery(ctx)
	if err := s.initializeStore(ctx); err != nil {
		return err
	}
	defer func() { _ = s.store.Close() }()

	// a missing namespace leaves the catalog empty until a refresh succeeds
	_, _ = s.catalog.Refresh(ctx)
	s.startServer()

	signal.Notify(s.quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(s.quit)
	<-s.quit

	s.shutdown()
	return nil
}

func (s *airdraw) setupLogging(w io.Writer) {
	level, ok := log.ParseLevel(s.cfg.LogLevel)
	if !ok {
		level = slog.LevelInfo
	}
	if s.cfg.Debug {
		level = slog.LevelDebug
	}

	env := os.Getenv("ENV")
	logger := log.NewWithWriter(w, app.Name, env, app.Version, level)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level)

	slog.Debug("Configuration loaded",
		slog.String("api_host", s.cfg.APIHost),
		slog.Int("api_port", s.cfg.APIPort),
		slog.String("namespace", s.cfg.Namespace),
		slog.String("python", s.cfg.PythonBin),
		slog.Int("scan_workers", s.cfg.ScanWorkers),
		slog.String("airflow_home", s.cfg.AirflowHome))
}

// initializeDiscovery wires the scanner, catalog, and describers. When the
// search path cannot be read from the interpreter, discovery runs with an
// empty one and every scan reports the namespace as missing
func (s *airdraw) initializeDiscovery(ctx context.Context) {
	searchPath := s.cfg.SearchPath
	if len(searchPath) == 0 {
		var err error
		searchPath, err = s.python.SearchPath(ctx)
		if err != nil {
			slog.Error("Operator discovery unavailable",
				slog.String("python", s.cfg.PythonBin),
				log.Error(fmt.Errorf("%w: %w", ErrSearchPath, err)))
		}
	}

	s.scanner = scan.New(s.cfg.Namespace, searchPath)
	s.catalog = catalog.New(s.scanner, s.cfg.ScanWorkers, s.metrics)
	s.describers = operator.NewDescribers(
		operator.NewStatic(s.scanner, s.cfg.ParamCacheSize),
		operator.NewLive(s.python),
		s.metrics,
	)
}

// initializeStore opens the DAG store. Missing storage configuration is
// not fatal at startup; every save then reports it
func (s *airdraw) initializeStore(ctx context.Context) error {
	loc, err := s.cfg.DAGStoreLocation()
	if err != nil {
		slog.Warn("DAG saving disabled", log.Error(err))
		s.store = &store.Unavailable{Err: err}
		return nil
	}

	s.store, err = store.Open(ctx, loc, s.cfg.DAGStorePrefix)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOpenStore, err)
	}
	return nil
}

func (s *airdraw) startServer() {
	s.apiServer = server.NewServer(
		s.cfg, s.catalog, s.describers, s.store, s.metrics,
	)
	mux := s.apiServer.SetupRoutes()

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.APIHost, s.cfg.APIPort),
		Handler: mux,
	}

	go func() {
		slog.Info("HTTP server starting",
			slog.String("addr", s.httpServer.Addr))
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", log.Error(err))
			s.quit <- syscall.SIGTERM
		}
	}()
}

func (s *airdraw) shutdown() {
	slog.Info("Shutting down")

	ctx, cancel := context.WithTimeout(
		context.Background(), s.cfg.ShutdownTimeout,
	)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", log.Error(err))
	}

	slog.Info("Server exited")
}
