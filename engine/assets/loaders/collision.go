package loaders

import (
	"fmt"
	stdmath "math"

	"github.com/spaghettifunk/on3d/engine/core"
	"github.com/spaghettifunk/on3d/engine/math"
	"github.com/spaghettifunk/on3d/engine/resources"
)

// FloatsPerTriangle is three xyz corners.
const FloatsPerTriangle = 9

/** @brief Unindexed collision triangles, 9 floats each. */
type Collision struct {
	Triangles []float32
}

func (c *Collision) TriangleCount() int {
	return len(c.Triangles) / FloatsPerTriangle
}

// Triangle returns the three corners of triangle i.
func (c *Collision) Triangle(i int) (p0, p1, p2 math.Vec3) {
	base := i * 3
	return math.Vec3FromSlice(c.Triangles, base), math.Vec3FromSlice(c.Triangles, base+1), math.Vec3FromSlice(c.Triangles, base+2)
}

// Extents returns the bounds of every corner.
func (c *Collision) Extents() (math.Extents3D, bool) {
	return math.GeometryComputeExtents(c.Triangles)
}

// ParseCollision decodes a triangle count followed by exactly that many
// triangles. Unlike meshes nothing is recovered: a short buffer is an error.
func ParseCollision(data []byte) (*Collision, error) {
	r := resources.NewReader(data)
	count, err := r.Uint32()
	if err != nil {
		return nil, fmt.Errorf("collision triangle count: %w", err)
	}
	want := uint64(count) * FloatsPerTriangle * 4
	if want > uint64(r.Remaining()) {
		return nil, fmt.Errorf("%w: collision declares %d triangles (%d bytes), %d bytes available",
			core.ErrFormat, count, want, r.Remaining())
	}
	triangles, err := r.Float32s(int(count) * FloatsPerTriangle)
	if err != nil {
		return nil, fmt.Errorf("collision triangles: %w", err)
	}
	return &Collision{Triangles: triangles}, nil
}

// SerializeCollision writes the triangle count and the flat buffer.
func SerializeCollision(c *Collision) ([]byte, error) {
	if len(c.Triangles)%FloatsPerTriangle != 0 {
		return nil, fmt.Errorf("%w: collision buffer holds %d floats, not a multiple of %d",
			core.ErrValidation, len(c.Triangles), FloatsPerTriangle)
	}
	if uint64(c.TriangleCount()) > stdmath.MaxUint32 {
		return nil, fmt.Errorf("%w: %d collision triangles", core.ErrValidation, c.TriangleCount())
	}
	w := resources.NewWriter(4 + len(c.Triangles)*4)
	w.Uint32(uint32(c.TriangleCount()))
	w.Float32s(c.Triangles)
	return w.Bytes(), nil
}
