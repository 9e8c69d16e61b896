package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/lcalzada-xor/riskmap/internal/adapters/storage"
	"github.com/lcalzada-xor/riskmap/internal/config"
	"github.com/lcalzada-xor/riskmap/internal/core/domain"
	"github.com/lcalzada-xor/riskmap/internal/core/ports"
	"github.com/lcalzada-xor/riskmap/internal/core/scoring"
	"github.com/lcalzada-xor/riskmap/internal/telemetry"
)

// Application holds the core components of the application. It acts as the
// facade for the scoring system, orchestrating engines and storage.
type Application struct {
	Config    *config.Config
	Settings  config.Settings
	Manager   *scoring.Manager
	Drift     *scoring.DriftEngine
	Baselines ports.BaselineStore
	Results   ports.ResultStore
}

// New creates a new Application instance and bootstraps its components.
func New(cfg *config.Config) (*Application, error) {
	telemetry.InitMetrics()

	settings, err := config.LoadSettings(cfg.SettingsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	app := &Application{Config: cfg, Settings: settings}

	if cfg.DBPath != "" {
		adapter, err := storage.NewSQLiteAdapter(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		app.Baselines = adapter
		app.Results = adapter
		slog.Info("Using SQLite storage", "path", cfg.DBPath)
	} else {
		app.Baselines = storage.NewMemoryBaselineStore()
		slog.Info("Using in-memory baseline store")
	}

	risk := scoring.NewRiskEngine()
	if err := risk.Configure(settings.Risk); err != nil {
		return nil, err
	}
	exposure := scoring.NewExposureEngine()
	if err := exposure.Configure(settings.Exposure); err != nil {
		return nil, err
	}
	drift := scoring.NewDriftEngine(app.Baselines)
	if err := drift.Configure(settings.Drift); err != nil {
		return nil, err
	}

	app.Drift = drift
	app.Manager = scoring.NewManager()
	app.Manager.Register(risk)
	app.Manager.Register(exposure)
	app.Manager.Register(drift)

	return app, nil
}

// Run loads the context document and either captures baselines or scores
// every entity, printing composite results to stdout.
func (a *Application) Run(ctx context.Context) error {
	sc, err := LoadContext(a.Config.ContextPath)
	if err != nil {
		return err
	}
	slog.Info("Context loaded", "entities", len(sc.Entities), "signals", len(sc.Signals))

	if a.Config.Baseline {
		for _, entity := range sc.Entities {
			if err := a.Drift.CreateBaseline(entity, sc); err != nil {
				return err
			}
			slog.Info("Baseline captured", "entity", entity.ID)
		}
		return nil
	}

	results, err := a.Manager.ScoreAll(ctx, sc, a.Settings.Composite, a.Config.Workers)
	if err != nil {
		return err
	}

	if a.Results != nil {
		for _, r := range results {
			if err := a.Results.SaveResult(r); err != nil {
				slog.Error("Failed to persist result", "entity", r.EntityID, "error", err)
			}
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// Close releases storage resources.
func (a *Application) Close() {
	if a.Results != nil {
		if err := a.Results.Close(); err != nil {
			slog.Error("Failed to close storage", "error", err)
		}
	}
}

// LoadContext reads a JSON context document (entities plus signals).
func LoadContext(path string) (domain.Context, error) {
	if path == "" {
		return domain.Context{}, fmt.Errorf("no context document given")
	}
	f, err := os.Open(path)
	if err != nil {
		return domain.Context{}, fmt.Errorf("failed to open context document: %w", err)
	}
	defer f.Close()

	var sc domain.Context
	if err := json.NewDecoder(f).Decode(&sc); err != nil {
		return domain.Context{}, fmt.Errorf("failed to parse context document %s: %w", path, err)
	}
	return sc, nil
}
