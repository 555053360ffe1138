package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kilianp07/techdispatch/api"
	"github.com/kilianp07/techdispatch/app/plugins"
	"github.com/kilianp07/techdispatch/config"
	"github.com/kilianp07/techdispatch/core/dispatch/logging"
	coremetrics "github.com/kilianp07/techdispatch/core/metrics"
	coremon "github.com/kilianp07/techdispatch/core/monitoring"
	"github.com/kilianp07/techdispatch/core/notify"
	"github.com/kilianp07/techdispatch/core/planner"
	"github.com/kilianp07/techdispatch/infra/logger"
	"github.com/kilianp07/techdispatch/infra/metrics"
	"github.com/kilianp07/techdispatch/infra/monitoring"
	"github.com/kilianp07/techdispatch/internal/eventbus"
)

// Service wires the planner to its sinks and serves the HTTP API.
type Service struct {
	Planner *planner.Manager

	cfg      *config.Config
	bus      *eventbus.Bus
	sink     coremetrics.MetricsSink
	store    logging.LogStore
	notifier notify.Notifier
	log      logger.Logger
}

// New creates a Service from the configuration. Every module named in the
// configuration must be constructible.
func New(cfg *config.Config) (*Service, error) {
	logger.SetLevel(cfg.Logging.Level)
	log := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	store, err := logging.NewStore(cfg.Logging.RunLog)
	if err != nil {
		return nil, fmt.Errorf("run log: %w", err)
	}
	notifier, err := notify.New(cfg.Notifiers)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("notifiers: %w", err)
	}

	bus := eventbus.New()
	mgr := planner.NewManager(cfg.Simulation, logger.New("planner"))
	mgr.SetMetricsSink(sink)
	mgr.SetLogStore(store)
	mgr.SetNotifier(notifier)
	mgr.SetBus(bus)

	for _, k := range plugins.Available() {
		log.Debugw("modules available", map[string]any{"section": k.Section, "types": k.Types})
	}
	return &Service{
		Planner:  mgr,
		cfg:      cfg,
		bus:      bus,
		sink:     sink,
		store:    store,
		notifier: notifier,
		log:      log,
	}, nil
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	var store logging.LogStore
	if s.cfg.Logging.RunLog.Type != "" && s.cfg.Logging.RunLog.Type != "none" {
		store = s.store
	}
	return api.NewRouter(api.Options{
		Planner:      s.Planner,
		Store:        store,
		RateLimit:    s.cfg.Server.RateLimit,
		Burst:        s.cfg.Server.Burst,
		MaxBodyBytes: s.cfg.Server.MaxBodyBytes,
		Timeout:      60 * time.Second,
		Log:          logger.New("http"),
	})
}

// StartBackground starts the event consumers and the Prometheus endpoint.
// They stop with ctx.
func (s *Service) StartBackground(ctx context.Context) {
	metrics.StartEventCollector(ctx, s.bus, s.sink)
	go func() {
		defer coremon.Recover()
		logEvents(ctx, s.bus, logger.New("events"))
	}()
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			defer coremon.Recover()
			if err := metrics.StartPromServer(ctx, addr, s.log); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
}

// Run serves the API until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	s.StartBackground(ctx)
	srv := &http.Server{
		Addr:              s.cfg.Server.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(s.cfg.Server.ReadTimeoutSeconds) * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Infof("api listening on %s", s.cfg.Server.Address)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(s.cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	var errs []error
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("run log: %w", err))
	}
	if c, ok := s.notifier.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("notifier: %w", err))
		}
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	coremon.Flush(2 * time.Second)
	return errors.Join(errs...)
}
