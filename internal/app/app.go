// Package app initializes and holds the long-lived services behind the
// CLI commands, acting as a dependency injection container.
package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/openlawindex/harvester/internal/classify"
	"github.com/openlawindex/harvester/internal/config"
	"github.com/openlawindex/harvester/internal/corpus"
	"github.com/openlawindex/harvester/internal/enumerate"
	"github.com/openlawindex/harvester/internal/extract"
	"github.com/openlawindex/harvester/internal/fetch"
	"github.com/openlawindex/harvester/internal/headless"
	"github.com/openlawindex/harvester/internal/jurisdiction"
	"github.com/openlawindex/harvester/internal/logging"
	"github.com/openlawindex/harvester/internal/metrics"
	"github.com/openlawindex/harvester/internal/pipeline"
	"github.com/openlawindex/harvester/internal/policy/ratelimit"
	"github.com/openlawindex/harvester/internal/store"
	"github.com/openlawindex/harvester/internal/validate"
)

// App holds the shared services every command needs: configuration, the
// logger, the jurisdiction registry, the corpus store, and the wired
// pipeline runners. It is built once at startup and torn down by Close.
type App struct {
	cfg        config.Config
	logger     *zap.Logger
	registry   *jurisdiction.Registry
	store      *store.Store
	drift      *store.DriftMap
	renderer   *headless.Renderer
	normalizer *classify.Normalizer
	runner     *pipeline.Runner
	cases      *pipeline.CaseHarvester
}

// New builds the full service graph from the configuration at cfgPath.
// It fails fast: any service that cannot initialize aborts startup.
func New(cfgPath string) (*App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	metrics.Init()

	registry, err := jurisdiction.LoadFile(cfg.Harvest.RegistryPath)
	if err != nil {
		return nil, err
	}

	st, err := store.New(cfg.Store.Dir, logger)
	if err != nil {
		return nil, err
	}
	drift, err := store.OpenDriftMap(cfg.Store.Dir)
	if err != nil {
		return nil, err
	}

	limiter := ratelimit.New(cfg.HostDelay())
	fetcher := fetch.New(fetch.Config{
		UserAgent:      cfg.Harvest.UserAgent,
		Timeout:        cfg.HTTPTimeout(),
		RespectRobots:  cfg.Harvest.RespectRobots,
		BlockAfter403s: cfg.Harvest.BlockAfter403s,
	}, limiter, logger)

	extractor := extract.New(fetcher, logger)
	var renderer *headless.Renderer
	if cfg.Headless.Enabled {
		renderer, err = headless.New(headless.Config{
			MaxParallel:       cfg.Headless.MaxParallel,
			UserAgent:         cfg.Harvest.UserAgent,
			NavigationTimeout: cfg.NavTimeout(),
			MinDelay:          cfg.HeadlessMinDelay(),
			MaxDelay:          cfg.HeadlessMaxDelay(),
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("init headless renderer: %w", err)
		}
		extractor = extractor.WithHeadless(renderer, headless.NewDetector(0))
	}

	enum := enumerate.New(enumerate.Hosts{
		Law:        cfg.Sources.LawHost,
		Regulation: cfg.Sources.RegulationHost,
		Locality:   cfg.Sources.LocalityHost,
	})
	engine := classify.NewEngine(classify.DefaultTiers())
	normalizer := classify.NewNormalizer(engine)
	crossref := classify.NewCrossReferencer(
		classify.DefaultProvisionCategories(),
		cfg.Relevance.BaselineCategories,
	)

	// Constitution indexes exist for every state; probing them is a
	// wasted request.
	validator := validate.New(fetcher, []corpus.ResourceType{corpus.ResourceConstitution}, logger)
	runner := pipeline.New(enum, validator, extractor, normalizer, st, drift, logger)
	cases := pipeline.NewCaseHarvester(enum, extractor, engine, crossref, normalizer, st, logger)

	logger.Info("services initialized",
		zap.String("store_dir", cfg.Store.Dir),
		zap.Int("jurisdictions", registry.Len()),
		zap.Bool("headless", cfg.Headless.Enabled),
	)
	return &App{
		cfg:        cfg,
		logger:     logger,
		registry:   registry,
		store:      st,
		drift:      drift,
		renderer:   renderer,
		normalizer: normalizer,
		runner:     runner,
		cases:      cases,
	}, nil
}

// Config returns the loaded configuration.
func (a *App) Config() config.Config {
	return a.cfg
}

// Logger returns the shared zap logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Registry returns the jurisdiction registry.
func (a *App) Registry() *jurisdiction.Registry {
	return a.registry
}

// Store returns the corpus store.
func (a *App) Store() *store.Store {
	return a.store
}

// Normalizer returns the record normalizer for offline labeling.
func (a *App) Normalizer() *classify.Normalizer {
	return a.normalizer
}

// Runner returns the harvest pipeline runner.
func (a *App) Runner() *pipeline.Runner {
	return a.runner
}

// Cases returns the case-law harvester.
func (a *App) Cases() *pipeline.CaseHarvester {
	return a.cases
}

// Close tears the services down in reverse order of construction.
func (a *App) Close() {
	if a.renderer != nil {
		a.renderer.Close()
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("store close failed", zap.Error(err))
	}
	_ = a.logger.Sync()
}
