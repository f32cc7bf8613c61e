package engine

import (
	"context"
	"fmt"

	"github.com/spaghettifunk/on3d/engine/assets"
	"github.com/spaghettifunk/on3d/engine/assets/loaders"
	"github.com/spaghettifunk/on3d/engine/core"
	"github.com/spaghettifunk/on3d/engine/jobs"
	"github.com/spaghettifunk/on3d/engine/scene"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine released its resources
	EngineStageShutdown
)

func (s Stage) String() string {
	switch s {
	case EngineStageInitializing:
		return "initializing"
	case EngineStageInitialized:
		return "initialized"
	case EngineStageShuttingDown:
		return "shutting down"
	case EngineStageShutdown:
		return "shutdown"
	default:
		return "uninitialized"
	}
}

// Engine ties the configuration, the archive fetcher and the asset manager
// together for a host application.
type Engine struct {
	currentStage Stage
	config       *ApplicationConfig
	fetcher      assets.Fetcher
	assetManager *assets.AssetManager
	jobSystem    *jobs.JobSystem
	clock        *core.Clock
}

func New(cfg *ApplicationConfig) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultApplicationConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := core.SetLogLevel(cfg.Log.Level); err != nil {
		return nil, err
	}

	js, err := jobs.NewJobSystem(cfg.Jobs.Workers, cfg.Jobs.Workers)
	if err != nil {
		return nil, err
	}

	return &Engine{
		currentStage: EngineStageUninitialized,
		config:       cfg,
		fetcher:      assets.NewSharedFetcher(assets.NewFetcher(cfg.Pack.BasePath, cfg.Pack.FetchTimeout.Duration)),
		assetManager: assets.NewAssetManager(),
		jobSystem:    js,
		clock:        core.NewClock(),
	}, nil
}

// Initialize attaches the configured archive, if any.
func (e *Engine) Initialize(ctx context.Context) error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("engine cannot initialize while %s", e.currentStage)
	}
	e.currentStage = EngineStageInitializing
	e.clock.Start()

	if e.config.Pack.Locator != "" {
		if err := e.assetManager.LoadArchive(ctx, e.fetcher, e.config.Pack.Locator); err != nil {
			e.currentStage = EngineStageUninitialized
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	core.LogInfo("%s initialized in %s", e.config.Name, e.clock.Elapsed())
	return nil
}

// Stage returns the lifecycle stage the engine is in.
func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) Config() *ApplicationConfig {
	return e.config
}

func (e *Engine) AssetManager() *assets.AssetManager {
	return e.assetManager
}

// LoadArchive replaces the attached archive with the one at locator.
func (e *Engine) LoadArchive(ctx context.Context, locator string) error {
	return e.assetManager.LoadArchive(ctx, e.fetcher, locator)
}

// LoadScene decodes the scene stored at path into root and loads every mesh
// it references. A mesh that fails to load fails the scene; root then holds
// the deserialized nodes but callers should not render it.
func (e *Engine) LoadScene(path string, root *scene.Node) (*scene.Node, error) {
	s, err := e.assetManager.LoadScene(path)
	if err != nil {
		return nil, err
	}
	live := loaders.DeserializeScene(s, root)

	meshNames := s.MeshNames()
	preload := make([]jobs.Job, 0, len(meshNames))
	for _, name := range meshNames {
		preload = append(preload, jobs.Job{
			Name: "preload " + name,
			Run: func() error {
				_, err := e.assetManager.LoadMesh(name)
				return err
			},
		})
	}
	if err := e.jobSystem.RunAll(preload); err != nil {
		return nil, fmt.Errorf("scene %q: %w", path, err)
	}

	core.LogDebug("scene %q loaded with %d nodes and %d meshes", s.Name, s.NodeCount(), len(meshNames))
	return live, nil
}

func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShutdown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown
	if err := e.jobSystem.Shutdown(); err != nil {
		return err
	}
	e.assetManager.Detach()
	e.currentStage = EngineStageShutdown
	return nil
}
