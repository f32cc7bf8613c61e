package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/on3d/engine/assets/loaders"
	"github.com/spaghettifunk/on3d/engine/core"
	"github.com/spaghettifunk/on3d/engine/pack"
	"github.com/spaghettifunk/on3d/engine/scene"
	"github.com/spaghettifunk/on3d/testbed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSample(t *testing.T) string {
	t.Helper()
	data, err := testbed.BuildSamplePack()
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sample.pack"), data, 0o644))
	return dir
}

func newEngine(t *testing.T, basePath, locator string) *Engine {
	t.Helper()
	cfg := DefaultApplicationConfig()
	cfg.Pack.BasePath = basePath
	cfg.Pack.Locator = locator
	cfg.Jobs.Workers = 2
	e, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Shutdown() })
	return e
}

func TestEngineLifecycle(t *testing.T) {
	e := newEngine(t, writeSample(t), "sample.pack")
	assert.Equal(t, EngineStageUninitialized, e.Stage())

	require.NoError(t, e.Initialize(context.Background()))
	assert.Equal(t, EngineStageInitialized, e.Stage())
	assert.True(t, e.AssetManager().Loaded())
	assert.Error(t, e.Initialize(context.Background()))

	require.NoError(t, e.Shutdown())
	assert.Equal(t, EngineStageShutdown, e.Stage())
	assert.False(t, e.AssetManager().Loaded())
	require.NoError(t, e.Shutdown())
}

func TestEngineInitializeWithoutLocator(t *testing.T) {
	e := newEngine(t, t.TempDir(), "")
	require.NoError(t, e.Initialize(context.Background()))
	assert.False(t, e.AssetManager().Loaded())

	_, err := e.LoadScene(testbed.SampleScenePath, nil)
	assert.True(t, errors.Is(err, core.ErrNotLoaded), err)
}

func TestEngineInitializeMissingArchive(t *testing.T) {
	e := newEngine(t, t.TempDir(), "missing.pack")
	err := e.Initialize(context.Background())
	assert.True(t, errors.Is(err, core.ErrNotFound), err)
	assert.Equal(t, EngineStageUninitialized, e.Stage())
}

func TestEngineLoadScene(t *testing.T) {
	e := newEngine(t, writeSample(t), "sample.pack")
	require.NoError(t, e.Initialize(context.Background()))

	root := scene.NewNode("level")
	live, err := e.LoadScene(testbed.SampleScenePath, root)
	require.NoError(t, err)
	assert.Same(t, root, live)
	require.Len(t, live.Children(), 2)

	crate := live.Find("crate")
	require.NotNil(t, crate)
	assert.Equal(t, testbed.SampleCubePath, crate.MeshName)

	stats := e.AssetManager().Stats()
	assert.Equal(t, uint64(2), stats["mesh"].Misses)

	m, err := e.AssetManager().LoadMesh(testbed.SampleCubePath)
	require.NoError(t, err)
	assert.Equal(t, "crate", m.Name)
	assert.Equal(t, uint64(1), e.AssetManager().Stats()["mesh"].Hits)
}

func TestEngineLoadSceneMissingMesh(t *testing.T) {
	s := loaders.NewEmptyScene("broken")
	s.Root.Children = append(s.Root.Children, loaders.SceneNodeRecord{
		Name:     "ghost",
		Scale:    s.Root.Scale,
		MeshName: "meshes/ghost.mesh",
		Children: []loaders.SceneNodeRecord{},
	})
	doc, err := loaders.MarshalSceneJSON(s)
	require.NoError(t, err)
	data, err := pack.Build([]pack.File{{Path: "broken.scene", Data: doc}})
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.pack"), data, 0o644))

	e := newEngine(t, dir, "")
	require.NoError(t, e.Initialize(context.Background()))
	require.NoError(t, e.LoadArchive(context.Background(), "broken.pack"))

	_, err = e.LoadScene("broken.scene", nil)
	assert.True(t, errors.Is(err, core.ErrNotFound), err)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultApplicationConfig()
	cfg.Jobs.Workers = 0
	_, err := New(cfg)
	assert.True(t, errors.Is(err, core.ErrValidation), err)
}
