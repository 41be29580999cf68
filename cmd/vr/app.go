package main

import (
	"fmt"

	"github.com/warp/vr-engine/batch"
	"github.com/warp/vr-engine/config"
	"github.com/warp/vr-engine/factory"
	"github.com/warp/vr-engine/logger"
	"github.com/warp/vr-engine/messaging"
	"github.com/warp/vr-engine/store/sqlite"
	"github.com/warp/vr-engine/vr"
)

const serviceName = "vr-engine"

// app holds the collaborators shared by both commands.
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	store  *sqlite.Store
	rmq    *messaging.RabbitMQ
	layout *factory.Layout
	runner *batch.Runner
}

type appOptions struct {
	noStore bool
	dbPath  string
	rules   func(*vr.Rules)
}

func newApp(root *rootOptions, opts appOptions) (*app, error) {
	cfg, err := config.Load(root.configName)
	if err != nil {
		return nil, err
	}

	log := logger.New(serviceName, cfg.Server.Environment)
	level := cfg.Logging.Level
	if root.logLevel != "" {
		level = root.logLevel
	}
	log = log.SetLevel(level)

	rules, err := cfg.Rules.ToRules()
	if err != nil {
		return nil, err
	}
	if opts.rules != nil {
		opts.rules(&rules)
	}

	layout, err := factory.NewLayoutFactory().Load(cfg.Paths.LayoutFile)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, layout: layout}

	runnerOpts := batch.Options{
		Rules:         rules,
		Layout:        layout,
		TechnicalFile: cfg.Paths.TechnicalFile,
		ExportFile:    cfg.Paths.ExportFile,
		Logger:        log,
	}

	if !opts.noStore {
		dbPath := cfg.Store.Path
		if opts.dbPath != "" {
			dbPath = opts.dbPath
		}
		a.store, err = sqlite.New(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		runnerOpts.Store = a.store
	}

	if cfg.RabbitMQ.URL != "" {
		a.rmq, err = messaging.Dial(cfg.RabbitMQ.URL, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		pub, err := messaging.NewPublisher(a.rmq, cfg.RabbitMQ.Exchange, serviceName, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		runnerOpts.Notifier = pub
	}

	a.runner, err = batch.NewRunner(runnerOpts)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// Close releases the store and the broker connection.
func (a *app) Close() {
	if a.rmq != nil {
		if err := a.rmq.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close RabbitMQ")
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		}
	}
}
