package assets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spaghettifunk/on3d/engine/assets/loaders"
	"github.com/spaghettifunk/on3d/engine/core"
	"github.com/spaghettifunk/on3d/engine/pack"
	"github.com/spaghettifunk/on3d/engine/resources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triangleMesh(t *testing.T, name string) []byte {
	t.Helper()
	data, err := loaders.SerializeMesh(&loaders.Mesh{
		Name:     name,
		Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Indices:  []uint32{0, 1, 2},
	})
	require.NoError(t, err)
	return data
}

func buildPack(t *testing.T, files ...pack.File) *pack.Pack {
	t.Helper()
	data, err := pack.Build(files)
	require.NoError(t, err)
	p, err := pack.Parse(data)
	require.NoError(t, err)
	return p
}

func samplePack(t *testing.T) *pack.Pack {
	collision, err := loaders.SerializeCollision(&loaders.Collision{Triangles: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}})
	require.NoError(t, err)
	sceneJSON, err := loaders.MarshalSceneJSON(loaders.NewEmptyScene("level"))
	require.NoError(t, err)

	return buildPack(t,
		pack.File{Path: "meshes/tri.mesh", Data: triangleMesh(t, "tri")},
		pack.File{Path: "materials/stone.material", Data: []byte("name stone\nshader builtin.world\nmap_diffuse stone.png\n")},
		pack.File{Path: "scenes/level.scene", Data: sceneJSON},
		pack.File{Path: "level.collision", Data: collision},
		pack.File{Path: "broken.mesh", Data: []byte{1, 2}},
		pack.File{Path: "readme.txt", Data: []byte("hello")},
	)
}

func TestAssetManagerNotLoaded(t *testing.T) {
	am := NewAssetManager()
	assert.False(t, am.Loaded())
	assert.Equal(t, uuid.Nil, am.ArchiveID())
	assert.Nil(t, am.Pack())

	_, err := am.LoadMesh("tri.mesh")
	assert.True(t, errors.Is(err, core.ErrNotLoaded), err)
	_, err = am.LoadMaterial("stone.material")
	assert.True(t, errors.Is(err, core.ErrNotLoaded), err)
	_, err = am.LoadScene("level.scene")
	assert.True(t, errors.Is(err, core.ErrNotLoaded), err)
	_, err = am.LoadCollision("level.collision")
	assert.True(t, errors.Is(err, core.ErrNotLoaded), err)
	_, err = am.GetFileBytes("readme.txt")
	assert.True(t, errors.Is(err, core.ErrNotLoaded), err)
}

func TestAssetManagerLoadsEveryKind(t *testing.T) {
	am := NewAssetManager()
	am.Attach(samplePack(t))
	require.True(t, am.Loaded())

	m, err := am.LoadMesh("meshes/tri.mesh")
	require.NoError(t, err)
	assert.Equal(t, "tri", m.Name)
	assert.Equal(t, 3, m.VertexCount())

	mat, err := am.LoadMaterial("stone.material")
	require.NoError(t, err)
	assert.Equal(t, "stone", mat.Name)
	tex, ok := mat.Texture("diffuse")
	assert.True(t, ok)
	assert.Equal(t, "stone.png", tex)

	s, err := am.LoadScene("scenes/level.scene")
	require.NoError(t, err)
	assert.Equal(t, "level", s.Name)

	c, err := am.LoadCollision("level.collision")
	require.NoError(t, err)
	assert.Equal(t, 1, c.TriangleCount())

	raw, err := am.GetFileBytes("readme.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), raw)
}

func TestAssetManagerNotFound(t *testing.T) {
	am := NewAssetManager()
	am.Attach(samplePack(t))

	_, err := am.LoadMesh("nope.mesh")
	assert.True(t, errors.Is(err, core.ErrNotFound), err)
	_, err = am.GetFileBytes("nope.bin")
	assert.True(t, errors.Is(err, core.ErrNotFound), err)
}

func TestAssetManagerMemoizes(t *testing.T) {
	am := NewAssetManager()
	am.Attach(samplePack(t))

	first, err := am.LoadMesh("meshes/tri.mesh")
	require.NoError(t, err)
	for _, name := range []string{"meshes/tri.mesh", "tri.mesh", "MESHES/TRI.MESH", `meshes\tri.mesh`} {
		again, err := am.LoadMesh(name)
		require.NoError(t, err, name)
		assert.Same(t, first, again, name)
	}

	stats := am.Stats()["mesh"]
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(4), stats.Hits)
	assert.Zero(t, stats.Failures)
}

func TestAssetManagerKindsAreCachedSeparately(t *testing.T) {
	am := NewAssetManager()
	am.Attach(samplePack(t))

	_, err := am.LoadMesh("level.collision")
	assert.Error(t, err)

	c, err := am.LoadCollision("level.collision")
	require.NoError(t, err)
	assert.Equal(t, 1, c.TriangleCount())
}

func TestAssetManagerReattachInvalidates(t *testing.T) {
	am := NewAssetManager()
	am.Attach(samplePack(t))
	firstID := am.ArchiveID()
	require.NotEqual(t, uuid.Nil, firstID)

	before, err := am.LoadMesh("tri.mesh")
	require.NoError(t, err)

	am.Attach(buildPack(t, pack.File{Path: "tri.mesh", Data: triangleMesh(t, "replacement")}))
	assert.NotEqual(t, firstID, am.ArchiveID())

	after, err := am.LoadMesh("tri.mesh")
	require.NoError(t, err)
	assert.NotSame(t, before, after)
	assert.Equal(t, "replacement", after.Name)

	_, err = am.LoadMaterial("stone.material")
	assert.True(t, errors.Is(err, core.ErrNotFound), err)

	am.Attach(nil)
	assert.False(t, am.Loaded())
	_, err = am.LoadMesh("tri.mesh")
	assert.True(t, errors.Is(err, core.ErrNotLoaded), err)
}

func TestAssetManagerFailureDoesNotPoisonCache(t *testing.T) {
	am := NewAssetManager()
	am.Attach(samplePack(t))

	for i := 0; i < 2; i++ {
		_, err := am.LoadMesh("broken.mesh")
		assert.True(t, errors.Is(err, core.ErrFormat), err)
	}
	stats := am.Stats()["mesh"]
	assert.Equal(t, uint64(2), stats.Failures)
	assert.Zero(t, stats.Hits)
}

func TestAssetManagerLoadDispatch(t *testing.T) {
	am := NewAssetManager()
	am.Attach(samplePack(t))

	tests := []struct {
		path string
		kind resources.ResourceType
	}{
		{"tri.mesh", resources.ResourceTypeMesh},
		{"stone.material", resources.ResourceTypeMaterial},
		{"level.scene", resources.ResourceTypeScene},
		{"level.collision", resources.ResourceTypeCollision},
		{"readme.txt", resources.ResourceTypeBinary},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			asset, kind, err := am.Load(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, kind)
			switch kind {
			case resources.ResourceTypeMesh:
				assert.IsType(t, &loaders.Mesh{}, asset)
			case resources.ResourceTypeMaterial:
				assert.IsType(t, &loaders.Material{}, asset)
			case resources.ResourceTypeScene:
				assert.IsType(t, &loaders.Scene{}, asset)
			case resources.ResourceTypeCollision:
				assert.IsType(t, &loaders.Collision{}, asset)
			default:
				assert.IsType(t, []byte{}, asset)
			}
		})
	}
}

func TestAssetManagerConcurrentLoads(t *testing.T) {
	am := NewAssetManager()
	am.Attach(samplePack(t))

	var wg sync.WaitGroup
	results := make([]*loaders.Mesh, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := am.LoadMesh("tri.mesh")
			assert.NoError(t, err)
			results[i] = m
		}(i)
	}
	wg.Wait()
	for _, m := range results {
		assert.Same(t, results[0], m)
	}
	assert.Equal(t, uint64(1), am.Stats()["mesh"].Misses)
}

func TestLoadArchiveFromFile(t *testing.T) {
	data, err := pack.Build([]pack.File{{Path: "a.mesh", Data: triangleMesh(t, "a")}})
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "game.pack"), data, 0o644))

	am := NewAssetManager()
	require.NoError(t, am.LoadArchive(context.Background(), FileFetcher{BasePath: dir}, "game.pack"))
	id := am.ArchiveID()

	m, err := am.LoadMesh("a.mesh")
	require.NoError(t, err)
	assert.Equal(t, "a", m.Name)

	err = am.LoadArchive(context.Background(), FileFetcher{BasePath: dir}, "missing.pack")
	assert.True(t, errors.Is(err, core.ErrNotFound), err)
	assert.Equal(t, id, am.ArchiveID())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.pack"), []byte{1, 2, 3}, 0o644))
	err = am.LoadArchive(context.Background(), FileFetcher{BasePath: dir}, "file://"+filepath.Join(dir, "bad.pack"))
	assert.True(t, errors.Is(err, core.ErrFormat), err)
	assert.Equal(t, id, am.ArchiveID())
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/game.pack":
			assert.Equal(t, "token", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte("payload"))
		case "/boom.pack":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewHTTPFetcher(WithClient(srv.Client()), WithHeader("Authorization", "token"), WithTimeout(time.Second))

	data, err := f.Fetch(context.Background(), srv.URL+"/game.pack")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)

	_, err = f.Fetch(context.Background(), srv.URL+"/missing.pack")
	assert.True(t, errors.Is(err, core.ErrNotFound), err)

	_, err = f.Fetch(context.Background(), srv.URL+"/boom.pack")
	require.Error(t, err)
	assert.False(t, errors.Is(err, core.ErrNotFound))
	assert.Contains(t, err.Error(), "500")
}

func TestNewFetcherRoutes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("remote"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "local.pack"), []byte("local"), 0o644))

	f := NewFetcher(dir, time.Second)
	got, err := f.Fetch(context.Background(), "local.pack")
	require.NoError(t, err)
	assert.Equal(t, []byte("local"), got)

	got, err = f.Fetch(context.Background(), srv.URL+"/x.pack")
	require.NoError(t, err)
	assert.Equal(t, []byte("remote"), got)

	assert.True(t, IsRemoteLocator("HTTPS://example.com/a.pack"))
	assert.False(t, IsRemoteLocator("assets/a.pack"))
}

type countingFetcher struct {
	calls   atomic.Int32
	release chan struct{}
}

func (c *countingFetcher) Fetch(ctx context.Context, locator string) ([]byte, error) {
	c.calls.Add(1)
	<-c.release
	return []byte(locator), nil
}

func TestSharedFetcherDeduplicates(t *testing.T) {
	next := &countingFetcher{release: make(chan struct{})}
	shared := NewSharedFetcher(next)

	const callers = 8
	var wg sync.WaitGroup
	var started sync.WaitGroup
	started.Add(callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started.Done()
			data, err := shared.Fetch(context.Background(), "game.pack")
			assert.NoError(t, err)
			assert.Equal(t, []byte("game.pack"), data)
		}()
	}
	started.Wait()
	// give the callers time to join the in-flight fetch
	time.Sleep(50 * time.Millisecond)
	close(next.release)
	wg.Wait()

	assert.GreaterOrEqual(t, next.calls.Load(), int32(1))
	assert.Less(t, next.calls.Load(), int32(callers))
}
