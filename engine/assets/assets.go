package assets

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/spaghettifunk/on3d/engine/assets/loaders"
	"github.com/spaghettifunk/on3d/engine/core"
	"github.com/spaghettifunk/on3d/engine/pack"
	"github.com/spaghettifunk/on3d/engine/resources"
)

// archiveCache holds everything decoded from one attached archive. It is
// created on attach and dropped as a whole when the archive is replaced.
type archiveCache struct {
	id         uuid.UUID
	pack       *pack.Pack
	meshes     map[string]*loaders.Mesh
	materials  map[string]*loaders.Material
	scenes     map[string]*loaders.Scene
	collisions map[string]*loaders.Collision
}

func newArchiveCache(p *pack.Pack) *archiveCache {
	return &archiveCache{
		id:         uuid.New(),
		pack:       p,
		meshes:     make(map[string]*loaders.Mesh),
		materials:  make(map[string]*loaders.Material),
		scenes:     make(map[string]*loaders.Scene),
		collisions: make(map[string]*loaders.Collision),
	}
}

// AssetManager decodes assets out of the attached archive on first use and
// memoizes them until the archive is replaced. Returned assets are shared
// between callers and must not be modified.
type AssetManager struct {
	mutex   sync.Mutex
	cache   *archiveCache
	metrics *core.LoadMetrics
}

func NewAssetManager() *AssetManager {
	return &AssetManager{metrics: core.NewLoadMetrics()}
}

// Attach makes p the current archive. Every cached asset of the previous
// archive is dropped in the same step.
func (am *AssetManager) Attach(p *pack.Pack) {
	if p == nil {
		am.Detach()
		return
	}
	c := newArchiveCache(p)

	am.mutex.Lock()
	am.cache = c
	am.metrics.Reset()
	am.mutex.Unlock()

	core.LogInfo("archive %s attached (%d files, %d bytes)", c.id, p.Len(), p.Size())
}

// Detach drops the current archive and its caches.
func (am *AssetManager) Detach() {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	if am.cache != nil {
		core.LogInfo("archive %s detached", am.cache.id)
	}
	am.cache = nil
	am.metrics.Reset()
}

func (am *AssetManager) Loaded() bool {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	return am.cache != nil
}

// ArchiveID identifies the current attachment, uuid.Nil when none.
func (am *AssetManager) ArchiveID() uuid.UUID {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	if am.cache == nil {
		return uuid.Nil
	}
	return am.cache.id
}

// Pack returns the attached archive or nil.
func (am *AssetManager) Pack() *pack.Pack {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	if am.cache == nil {
		return nil
	}
	return am.cache.pack
}

// LoadArchive fetches the archive at locator, parses it and attaches it. On
// failure the previously attached archive stays in place.
func (am *AssetManager) LoadArchive(ctx context.Context, f Fetcher, locator string) error {
	clock := core.NewClock()
	clock.Start()

	data, err := f.Fetch(ctx, locator)
	if err != nil {
		return fmt.Errorf("load archive %s: %w", locator, err)
	}
	p, err := pack.Parse(data)
	if err != nil {
		return fmt.Errorf("load archive %s: %w", locator, err)
	}
	am.Attach(p)

	core.LogDebug("archive %s loaded in %s", locator, clock.Stop())
	return nil
}

// GetFileBytes returns the undecoded payload stored under path.
func (am *AssetManager) GetFileBytes(path string) ([]byte, error) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	if am.cache == nil {
		return nil, fmt.Errorf("%w: read %q", core.ErrNotLoaded, path)
	}
	return am.cache.pack.GetFile(path)
}

func (am *AssetManager) LoadMesh(path string) (*loaders.Mesh, error) {
	return load(am, resources.ResourceTypeMesh, path,
		func(c *archiveCache) map[string]*loaders.Mesh { return c.meshes },
		decodeMesh)
}

func (am *AssetManager) LoadMaterial(path string) (*loaders.Material, error) {
	return load(am, resources.ResourceTypeMaterial, path,
		func(c *archiveCache) map[string]*loaders.Material { return c.materials },
		loaders.ParseMaterialBytes)
}

func (am *AssetManager) LoadScene(path string) (*loaders.Scene, error) {
	return load(am, resources.ResourceTypeScene, path,
		func(c *archiveCache) map[string]*loaders.Scene { return c.scenes },
		loaders.ParseScene)
}

func (am *AssetManager) LoadCollision(path string) (*loaders.Collision, error) {
	return load(am, resources.ResourceTypeCollision, path,
		func(c *archiveCache) map[string]*loaders.Collision { return c.collisions },
		loaders.ParseCollision)
}

// Stats reports cache and decode counters for the current archive.
func (am *AssetManager) Stats() core.LoadStats {
	return am.metrics.Snapshot()
}

func decodeMesh(data []byte) (*loaders.Mesh, error) {
	m, err := loaders.ParseMesh(data)
	if err != nil {
		return nil, err
	}
	for _, d := range m.Diagnostics {
		if d.Severity == loaders.SeverityWarning {
			core.LogWarn("mesh %q: %s", m.Name, d)
		} else {
			core.LogDebug("mesh %q: %s", m.Name, d)
		}
	}
	return m, nil
}

// load resolves path in the attached archive and returns the cached asset for
// that entry, decoding it on a miss. Decode and insert happen under the lock;
// a failed decode leaves the cache untouched.
func load[T any](am *AssetManager, kind resources.ResourceType, path string, bucket func(*archiveCache) map[string]*T, decode func([]byte) (*T, error)) (*T, error) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	c := am.cache
	if c == nil {
		return nil, fmt.Errorf("%w: load %s %q", core.ErrNotLoaded, kind, path)
	}
	entry, ok := c.pack.Lookup(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s %q", core.ErrNotFound, kind, path)
	}

	key := entry.Path()
	cached := bucket(c)
	if asset, ok := cached[key]; ok {
		am.metrics.RecordHit(kind.String())
		return asset, nil
	}

	data, err := c.pack.GetFile(path)
	if err != nil {
		return nil, err
	}

	clock := core.NewClock()
	clock.Start()
	asset, err := decode(data)
	elapsed := clock.Stop()
	if err != nil {
		am.metrics.RecordFailure(kind.String())
		return nil, fmt.Errorf("decode %s %q: %w", kind, key, err)
	}
	am.metrics.RecordDecode(kind.String(), elapsed)
	cached[key] = asset
	return asset, nil
}
