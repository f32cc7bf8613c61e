package loaders

import (
	"fmt"
	stdmath "math"

	"github.com/spaghettifunk/on3d/engine/core"
	"github.com/spaghettifunk/on3d/engine/math"
	"github.com/spaghettifunk/on3d/engine/resources"
)

// DefaultMaterialID is bound to the submesh synthesized for meshes stored without one.
const DefaultMaterialID uint32 = 0

// IndexFormat is the on-disk width of mesh indices.
type IndexFormat int

const (
	// IndexFormatAuto picks 16-bit when every index fits, 32-bit otherwise.
	IndexFormatAuto IndexFormat = iota
	IndexFormatUint16
	IndexFormatUint32
)

func (f IndexFormat) String() string {
	switch f {
	case IndexFormatUint16:
		return "uint16"
	case IndexFormatUint32:
		return "uint32"
	default:
		return "auto"
	}
}

func (f IndexFormat) size() int {
	if f == IndexFormatUint32 {
		return 4
	}
	return 2
}

/** @brief A contiguous index range drawn with one material. */
type Submesh struct {
	MaterialID uint32
	IndexStart uint32
	IndexCount uint32
}

// MaterialName is the name renderers bind the submesh material under.
func (s Submesh) MaterialName() string {
	return fmt.Sprintf("material_%d", s.MaterialID)
}

/**
 * @brief A decoded mesh. Vertices holds 3 floats per vertex, Normals up to 3
 * and UVs up to 2; the optional attributes may be shorter than Vertices
 * implies when the source was truncated.
 */
type Mesh struct {
	Name        string
	Vertices    []float32
	Normals     []float32
	UVs         []float32
	Indices     []uint32
	IndexFormat IndexFormat
	Submeshes   []Submesh
	/** @brief Recoveries applied while decoding. Empty for clean input. */
	Diagnostics Diagnostics
}

// VertexCount returns the number of complete positions.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// Extents returns the bounding box of the complete positions.
func (m *Mesh) Extents() (math.Extents3D, bool) {
	return math.GeometryComputeExtents(m.Vertices)
}

// ParseMesh decodes a mesh. Damaged input is repaired where possible and every
// repair is recorded in Mesh.Diagnostics. Only a missing header or an empty
// position attribute fails.
func ParseMesh(data []byte) (*Mesh, error) {
	r := resources.NewReader(data)
	m := &Mesh{}

	nameLen, err := r.Uint32()
	if err != nil {
		return nil, fmt.Errorf("mesh name length: %w", err)
	}
	available := math.ClampCount(nameLen, r.Remaining())
	m.Name = string(r.BytesUpTo(available))
	if int64(available) < int64(nameLen) {
		m.Diagnostics.add(SeverityWarning, DiagNameTruncated, 1, "name declares %d bytes, %d available", nameLen, available)
	}

	vertexCount, err := r.Uint32()
	if err != nil {
		return nil, fmt.Errorf("mesh vertex count: %w", err)
	}
	indexCount, err := r.Uint32()
	if err != nil {
		return nil, fmt.Errorf("mesh index count: %w", err)
	}
	if vertexCount == 0 {
		return nil, fmt.Errorf("%w: mesh %q has no vertices", core.ErrValidation, m.Name)
	}

	m.Vertices = readAttribute(r, &m.Diagnostics, "positions", int64(vertexCount)*3)
	if len(m.Vertices) == 0 {
		return nil, fmt.Errorf("%w: mesh %q has an empty position attribute", core.ErrValidation, m.Name)
	}
	m.Normals = readAttribute(r, &m.Diagnostics, "normals", int64(vertexCount)*3)
	m.UVs = readAttribute(r, &m.Diagnostics, "uvs", int64(vertexCount)*2)

	replaced := replaceNonFinite(m.Vertices) + replaceNonFinite(m.Normals) + replaceNonFinite(m.UVs)
	if replaced > 0 {
		m.Diagnostics.add(SeverityWarning, DiagNonFiniteReplaced, replaced, "%d non-finite floats replaced by 0", replaced)
	}

	m.IndexFormat = detectIndexFormat(r, indexCount)
	want := math.ClampCount(indexCount, r.Remaining())
	if m.IndexFormat == IndexFormatUint32 {
		m.Indices = r.Uint32sUpTo(want)
	} else {
		m.Indices = r.Uint16sUpTo(want)
	}
	if int64(len(m.Indices)) < int64(indexCount) {
		m.Diagnostics.add(SeverityWarning, DiagIndicesTruncated, int(int64(indexCount)-int64(len(m.Indices))),
			"index buffer declares %d %s indices, %d available", indexCount, m.IndexFormat, len(m.Indices))
	}

	readSubmeshes(r, m)
	if len(m.Submeshes) == 0 {
		m.Submeshes = []Submesh{{MaterialID: DefaultMaterialID, IndexStart: 0, IndexCount: uint32(len(m.Indices))}}
		m.Diagnostics.add(SeverityInfo, DiagSubmeshSynthesized, 1, "no submesh stored, one covering %d indices added", len(m.Indices))
	}

	return m, nil
}

func readAttribute(r *resources.Reader, diags *Diagnostics, attribute string, want int64) []float32 {
	values := r.Float32sUpTo(math.ClampCount(want, r.Remaining()/4))
	if int64(len(values)) < want {
		diags.add(SeverityWarning, DiagAttributeTruncated, int(want-int64(len(values))),
			"%s declares %d floats, %d available", attribute, want, len(values))
	}
	return values
}

func replaceNonFinite(values []float32) int {
	replaced := 0
	for i, v := range values {
		if !math.IsFinite(v) {
			values[i] = 0
			replaced++
		}
	}
	return replaced
}

// detectIndexFormat guesses the index width, which the format does not store.
// 16-bit wins unless only the 32-bit reading leaves a submesh table whose
// declared count exactly fills the rest of the buffer.
func detectIndexFormat(r *resources.Reader, indexCount uint32) IndexFormat {
	remaining := int64(r.Remaining())
	trailerFits := func(elementSize int64) bool {
		consumed := min(int64(indexCount)*elementSize, remaining/elementSize*elementSize)
		trailer := remaining - consumed
		if trailer < 4 {
			return false
		}
		count, ok := r.PeekUint32At(int(consumed))
		if !ok {
			return false
		}
		return uint64(trailer) == 4+12*uint64(count)
	}
	if trailerFits(4) && !trailerFits(2) {
		return IndexFormatUint32
	}
	return IndexFormatUint16
}

func readSubmeshes(r *resources.Reader, m *Mesh) {
	if r.Remaining() < 4 {
		m.Diagnostics.add(SeverityInfo, DiagSubmeshTableTruncated, 1, "submesh count missing")
		return
	}
	count, _ := r.Uint32()
	for i := uint32(0); i < count; i++ {
		if r.Remaining() < 12 {
			m.Diagnostics.add(SeverityWarning, DiagSubmeshTableTruncated, int(count-i),
				"submesh table declares %d entries, %d complete", count, i)
			return
		}
		materialID, _ := r.Uint32()
		start, _ := r.Uint32()
		n, _ := r.Uint32()
		m.Submeshes = append(m.Submeshes, Submesh{MaterialID: materialID, IndexStart: start, IndexCount: n})
	}
}

// Validate checks the structural invariants SerializeMesh relies on.
func (m *Mesh) Validate() error {
	if len(m.Vertices) == 0 || len(m.Vertices)%3 != 0 {
		return fmt.Errorf("%w: mesh %q has %d position floats, want a positive multiple of 3", core.ErrValidation, m.Name, len(m.Vertices))
	}
	n := m.VertexCount()
	if len(m.Normals)%3 != 0 || len(m.Normals) > n*3 {
		return fmt.Errorf("%w: mesh %q has %d normal floats for %d vertices", core.ErrValidation, m.Name, len(m.Normals), n)
	}
	if len(m.UVs)%2 != 0 || len(m.UVs) > n*2 {
		return fmt.Errorf("%w: mesh %q has %d uv floats for %d vertices", core.ErrValidation, m.Name, len(m.UVs), n)
	}
	if uint64(n) > stdmath.MaxUint32 || uint64(len(m.Indices)) > stdmath.MaxUint32 || uint64(len(m.Name)) > stdmath.MaxUint32 {
		return fmt.Errorf("%w: mesh %q is too large", core.ErrValidation, m.Name)
	}
	for i, idx := range m.Indices {
		if int64(idx) >= int64(n) {
			return fmt.Errorf("%w: mesh %q index %d references vertex %d of %d", core.ErrValidation, m.Name, i, idx, n)
		}
		if m.IndexFormat == IndexFormatUint16 && idx > stdmath.MaxUint16 {
			return fmt.Errorf("%w: mesh %q index %d does not fit 16 bits", core.ErrValidation, m.Name, idx)
		}
	}
	for i, s := range m.Submeshes {
		if uint64(s.IndexStart)+uint64(s.IndexCount) > uint64(len(m.Indices)) {
			return fmt.Errorf("%w: mesh %q submesh %d covers [%d, %d) of %d indices", core.ErrValidation, m.Name, i,
				s.IndexStart, uint64(s.IndexStart)+uint64(s.IndexCount), len(m.Indices))
		}
	}
	return nil
}

func (m *Mesh) resolvedIndexFormat() IndexFormat {
	if m.IndexFormat != IndexFormatAuto {
		return m.IndexFormat
	}
	for _, idx := range m.Indices {
		if idx > stdmath.MaxUint16 {
			return IndexFormatUint32
		}
	}
	return IndexFormatUint16
}

// SerializeMesh writes the binary mesh layout. Normals and UVs shorter than the
// vertex count are padded with zeros.
func SerializeMesh(m *Mesh) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	n := m.VertexCount()
	format := m.resolvedIndexFormat()

	w := resources.NewWriter(4 + len(m.Name) + 8 + n*8*4 + len(m.Indices)*format.size() + 4 + len(m.Submeshes)*12)
	w.Uint32(uint32(len(m.Name)))
	w.Write([]byte(m.Name))
	w.Uint32(uint32(n))
	w.Uint32(uint32(len(m.Indices)))

	w.Float32s(m.Vertices)
	w.Float32s(m.Normals)
	w.Zeros((n*3 - len(m.Normals)) * 4)
	w.Float32s(m.UVs)
	w.Zeros((n*2 - len(m.UVs)) * 4)

	for _, idx := range m.Indices {
		if format == IndexFormatUint32 {
			w.Uint32(idx)
		} else {
			w.Uint16(uint16(idx))
		}
	}

	w.Uint32(uint32(len(m.Submeshes)))
	for _, s := range m.Submeshes {
		w.Uint32(s.MaterialID)
		w.Uint32(s.IndexStart)
		w.Uint32(s.IndexCount)
	}
	return w.Bytes(), nil
}
