package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/antopolskiy/taskboard/internal/config"
	"github.com/antopolskiy/taskboard/internal/engine"
	"github.com/antopolskiy/taskboard/internal/logging"
	"github.com/antopolskiy/taskboard/internal/store"
	"github.com/antopolskiy/taskboard/internal/timer"
)

// app is the wired stack one command runs against.
type app struct {
	cfg    *config.Config
	store  store.Store
	eng    *engine.Orchestrator
	tel    *logging.Telemetry
	closer func()
}

// openApp loads the board config and builds the logger, store, timer
// tracker, and orchestrator. The orchestrator is refreshed before return.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return openAppWith(ctx, cfg)
}

func openAppWith(ctx context.Context, cfg *config.Config) (*app, error) {
	tel, err := logging.Setup(ctx, logging.Options{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Writer:    os.Stderr,
		Telemetry: flagTelemetry,
	})
	if err != nil {
		return nil, fmt.Errorf("setting up logging: %w", err)
	}
	metrics, err := logging.NewMetrics(tel.Meter)
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, fmt.Errorf("registering metrics: %w", err)
	}

	st, closer, err := store.Open(ctx, cfg, store.WithLogger(tel.Logger))
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, err
	}

	timers := timer.New(st,
		timer.WithInterval(cfg.Tick()),
		timer.WithLogger(tel.Logger),
		timer.WithCounter(metrics.MinutesCredited),
	)
	eng := engine.New(st, timers,
		engine.WithLogger(tel.Logger),
		engine.WithMetrics(metrics),
		engine.WithProject(cfg.ProjectID),
		engine.WithWIPLimit(cfg.WIPLimit),
		engine.WithActivityLog(cfg.Dir()),
	)

	a := &app{cfg: cfg, store: st, eng: eng, tel: tel, closer: closer}
	if err := eng.Refresh(ctx); err != nil {
		a.close(ctx)
		return nil, err
	}
	return a, nil
}

// close releases the store and flushes telemetry.
func (a *app) close(ctx context.Context) {
	a.closer()
	if err := a.tel.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
		a.tel.Logger.Warn("telemetry shutdown failed", "err", err)
	}
}
