package loaders

import (
	"errors"
	stdmath "math"
	"testing"

	"github.com/spaghettifunk/on3d/engine/core"
	"github.com/spaghettifunk/on3d/engine/resources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triangleMesh() *Mesh {
	return &Mesh{
		Name:      "tri",
		Vertices:  []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Normals:   []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
		UVs:       []float32{0, 0, 1, 0, 0, 1},
		Indices:   []uint32{0, 1, 2},
		Submeshes: []Submesh{{MaterialID: 3, IndexStart: 0, IndexCount: 3}},
	}
}

func meshHeader(name string, vertexCount, indexCount uint32) *resources.Writer {
	w := resources.NewWriter(0)
	w.Uint32(uint32(len(name)))
	w.Write([]byte(name))
	w.Uint32(vertexCount)
	w.Uint32(indexCount)
	return w
}

func TestMeshRoundTrip16(t *testing.T) {
	data, err := SerializeMesh(triangleMesh())
	require.NoError(t, err)

	m, err := ParseMesh(data)
	require.NoError(t, err)
	assert.Empty(t, m.Diagnostics)
	assert.Equal(t, "tri", m.Name)
	assert.Equal(t, triangleMesh().Vertices, m.Vertices)
	assert.Equal(t, triangleMesh().Normals, m.Normals)
	assert.Equal(t, triangleMesh().UVs, m.UVs)
	assert.Equal(t, []uint32{0, 1, 2}, m.Indices)
	assert.Equal(t, IndexFormatUint16, m.IndexFormat)
	assert.Equal(t, []Submesh{{MaterialID: 3, IndexStart: 0, IndexCount: 3}}, m.Submeshes)
	assert.Equal(t, "material_3", m.Submeshes[0].MaterialName())
	assert.Equal(t, 3, m.VertexCount())
}

func TestMeshRoundTrip32(t *testing.T) {
	src := triangleMesh()
	src.IndexFormat = IndexFormatUint32
	data, err := SerializeMesh(src)
	require.NoError(t, err)

	m, err := ParseMesh(data)
	require.NoError(t, err)
	assert.Empty(t, m.Diagnostics)
	assert.Equal(t, IndexFormatUint32, m.IndexFormat)
	assert.Equal(t, []uint32{0, 1, 2}, m.Indices)
	assert.Equal(t, src.Submeshes, m.Submeshes)
}

func TestSerializeMeshPadsOptionalAttributes(t *testing.T) {
	src := triangleMesh()
	src.Normals = nil
	src.UVs = []float32{0.5, 0.5}
	data, err := SerializeMesh(src)
	require.NoError(t, err)

	m, err := ParseMesh(data)
	require.NoError(t, err)
	assert.Equal(t, make([]float32, 9), m.Normals)
	assert.Equal(t, []float32{0.5, 0.5, 0, 0, 0, 0}, m.UVs)
}

func TestSerializeMeshValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *Mesh)
	}{
		{"no vertices", func(m *Mesh) { m.Vertices = nil }},
		{"partial vertex", func(m *Mesh) { m.Vertices = m.Vertices[:8] }},
		{"too many normals", func(m *Mesh) { m.Normals = append(m.Normals, 0, 0, 0) }},
		{"misaligned uvs", func(m *Mesh) { m.UVs = m.UVs[:5] }},
		{"index out of range", func(m *Mesh) { m.Indices[2] = 3 }},
		{"submesh past indices", func(m *Mesh) { m.Submeshes[0].IndexCount = 4 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := triangleMesh()
			tt.mutate(m)
			_, err := SerializeMesh(m)
			assert.True(t, errors.Is(err, core.ErrValidation), err)
		})
	}
}

func TestParseMeshZeroVertices(t *testing.T) {
	w := meshHeader("empty", 0, 0)
	w.Uint32(0)
	_, err := ParseMesh(w.Bytes())
	assert.True(t, errors.Is(err, core.ErrValidation))
}

func TestParseMeshMissingHeader(t *testing.T) {
	for _, data := range [][]byte{nil, {1, 0}, meshHeader("x", 1, 0).Bytes()[:9]} {
		_, err := ParseMesh(data)
		assert.True(t, errors.Is(err, core.ErrFormat), err)
	}
}

func TestParseMeshTruncatedPositions(t *testing.T) {
	w := meshHeader("short", 4, 0)
	w.Float32s([]float32{1, 2})
	w.Write([]byte{0xFF})

	m, err := ParseMesh(w.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, m.Vertices)
	assert.Empty(t, m.Normals)
	assert.Empty(t, m.UVs)
	assert.Empty(t, m.Indices)
	assert.Equal(t, 10+12+8, m.Diagnostics.Count(DiagAttributeTruncated))
	assert.True(t, m.Diagnostics.Has(DiagSubmeshSynthesized))
	assert.Equal(t, []Submesh{{MaterialID: DefaultMaterialID, IndexStart: 0, IndexCount: 0}}, m.Submeshes)
}

func TestParseMeshEmptyPositions(t *testing.T) {
	w := meshHeader("none", 2, 0)
	w.Write([]byte{1, 2, 3})
	_, err := ParseMesh(w.Bytes())
	assert.True(t, errors.Is(err, core.ErrValidation))
}

func TestParseMeshTruncatedOptionalAttributes(t *testing.T) {
	w := meshHeader("tri", 3, 0)
	w.Float32s(triangleMesh().Vertices)
	w.Float32s([]float32{0, 0, 1, 0})

	m, err := ParseMesh(w.Bytes())
	require.NoError(t, err)
	assert.Len(t, m.Vertices, 9)
	assert.Equal(t, []float32{0, 0, 1, 0}, m.Normals)
	assert.Empty(t, m.UVs)
	assert.Equal(t, 5+6, m.Diagnostics.Count(DiagAttributeTruncated))
	assert.Len(t, m.Submeshes, 1)
}

func TestParseMeshReplacesNonFinite(t *testing.T) {
	nan := float32(stdmath.NaN())
	inf := float32(stdmath.Inf(1))
	src := triangleMesh()
	src.Vertices[4] = nan
	src.Normals[0] = inf
	src.UVs[5] = -inf
	data, err := SerializeMesh(src)
	require.NoError(t, err)

	m, err := ParseMesh(data)
	require.NoError(t, err)
	assert.Equal(t, float32(0), m.Vertices[4])
	assert.Equal(t, float32(0), m.Normals[0])
	assert.Equal(t, float32(0), m.UVs[5])
	assert.Equal(t, 3, m.Diagnostics.Count(DiagNonFiniteReplaced))
}

func TestParseMeshSynthesizesSubmesh(t *testing.T) {
	src := triangleMesh()
	src.Submeshes = nil
	data, err := SerializeMesh(src)
	require.NoError(t, err)

	m, err := ParseMesh(data)
	require.NoError(t, err)
	require.Len(t, m.Submeshes, 1)
	assert.Equal(t, Submesh{MaterialID: DefaultMaterialID, IndexStart: 0, IndexCount: 3}, m.Submeshes[0])
	assert.Equal(t, 1, m.Diagnostics.Count(DiagSubmeshSynthesized))
	assert.False(t, m.Diagnostics.Has(DiagSubmeshTableTruncated))
}

func TestParseMeshTruncatedSubmeshTable(t *testing.T) {
	src := triangleMesh()
	src.Submeshes = []Submesh{{1, 0, 3}, {2, 0, 3}}
	data, err := SerializeMesh(src)
	require.NoError(t, err)

	m, err := ParseMesh(data[:len(data)-5])
	require.NoError(t, err)
	assert.Equal(t, []Submesh{{1, 0, 3}}, m.Submeshes)
	assert.Equal(t, 1, m.Diagnostics.Count(DiagSubmeshTableTruncated))
}

func TestParseMeshTruncatedIndices(t *testing.T) {
	w := meshHeader("tri", 3, 6)
	w.Float32s(triangleMesh().Vertices)
	w.Float32s(triangleMesh().Normals)
	w.Float32s(triangleMesh().UVs)
	w.Uint16(0)
	w.Uint16(1)
	w.Write([]byte{2})

	m, err := ParseMesh(w.Bytes())
	require.NoError(t, err)
	assert.Equal(t, IndexFormatUint16, m.IndexFormat)
	assert.Equal(t, []uint32{0, 1}, m.Indices)
	assert.Equal(t, 4, m.Diagnostics.Count(DiagIndicesTruncated))
	assert.True(t, m.Diagnostics.Has(DiagSubmeshTableTruncated))
	assert.Equal(t, uint32(2), m.Submeshes[0].IndexCount)
}

func TestParseMeshTruncatedName(t *testing.T) {
	w := resources.NewWriter(0)
	w.Uint32(50)
	w.Write([]byte("abc"))

	m, err := ParseMesh(w.Bytes())
	assert.Nil(t, m)
	assert.True(t, errors.Is(err, core.ErrFormat))

	// a long name swallowing the counts still leaves the header unreadable
	w = meshHeader("name", 1, 0)
	data := w.Bytes()
	data[0] = 6
	_, err = ParseMesh(data)
	assert.True(t, errors.Is(err, core.ErrFormat))
}

func TestMeshExtents(t *testing.T) {
	ext, ok := triangleMesh().Extents()
	require.True(t, ok)
	assert.Equal(t, float32(1), ext.Max.X)
	assert.Equal(t, float32(0), ext.Min.Y)
}
