package testbed

import (
	"github.com/spaghettifunk/on3d/engine/assets/loaders"
	"github.com/spaghettifunk/on3d/engine/core"
	"github.com/spaghettifunk/on3d/engine/math"
)

// cubeFaces lists the 4 corners of every face as (x, y, z) signs: front,
// back, left, right, bottom, top. Corners 0 and 1 are diagonal.
var cubeFaces = [6][4][3]float32{
	{{-1, -1, 1}, {1, 1, 1}, {-1, 1, 1}, {1, -1, 1}},
	{{1, -1, -1}, {-1, 1, -1}, {1, 1, -1}, {-1, -1, -1}},
	{{-1, -1, -1}, {-1, 1, 1}, {-1, 1, -1}, {-1, -1, 1}},
	{{1, -1, 1}, {1, 1, -1}, {1, 1, 1}, {1, -1, -1}},
	{{1, -1, 1}, {-1, -1, -1}, {1, -1, -1}, {-1, -1, 1}},
	{{-1, 1, 1}, {1, 1, -1}, {-1, 1, -1}, {1, 1, 1}},
}

// quadIndices returns the two triangles of a quad whose first vertex is base.
func quadIndices(base uint32) []uint32 {
	return []uint32{base + 0, base + 1, base + 2, base + 0, base + 3, base + 1}
}

// quadUVs matches the corner order used by cubeFaces and GeneratePlane.
func quadUVs(minU, minV, maxU, maxV float32) []float32 {
	return []float32{minU, minV, maxU, maxV, minU, maxV, maxU, minV}
}

// GenerateCube builds a box centered on the origin with 4 vertices per face
// and one submesh per face, so each side can carry its own material.
func GenerateCube(name string, width, height, depth, tileX, tileY float32) *loaders.Mesh {
	if width == 0 {
		core.LogWarn("Width must be nonzero. Defaulting to one.")
		width = 1.0
	}
	if height == 0 {
		core.LogWarn("Height must be nonzero. Defaulting to one.")
		height = 1.0
	}
	if depth == 0 {
		core.LogWarn("Depth must be nonzero. Defaulting to one.")
		depth = 1.0
	}
	if tileX == 0 {
		tileX = 1.0
	}
	if tileY == 0 {
		tileY = 1.0
	}

	half := math.NewVec3(width*0.5, height*0.5, depth*0.5)
	m := &loaders.Mesh{
		Name:        name,
		Vertices:    make([]float32, 0, 24*3),
		UVs:         make([]float32, 0, 24*2),
		Indices:     make([]uint32, 0, 36),
		IndexFormat: loaders.IndexFormatUint16,
	}
	for face, corners := range cubeFaces {
		base := uint32(face * 4)
		for _, c := range corners {
			m.Vertices = append(m.Vertices, c[0]*half.X, c[1]*half.Y, c[2]*half.Z)
		}
		m.UVs = append(m.UVs, quadUVs(0, 0, tileX, tileY)...)
		m.Submeshes = append(m.Submeshes, loaders.Submesh{
			MaterialID: uint32(face % 2),
			IndexStart: uint32(len(m.Indices)),
			IndexCount: 6,
		})
		m.Indices = append(m.Indices, quadIndices(base)...)
	}
	m.Normals = math.GeometryGenerateNormals(m.Vertices, m.Indices)
	return m
}

// GeneratePlane builds a segmented plane on the XZ axis. Segments do not share
// vertices, which keeps the index layout identical to the cube faces.
func GeneratePlane(name string, width, depth float32, xSegments, zSegments uint32, tileX, tileY float32) *loaders.Mesh {
	if width == 0 {
		core.LogWarn("Width must be nonzero. Defaulting to one.")
		width = 1.0
	}
	if depth == 0 {
		core.LogWarn("Depth must be nonzero. Defaulting to one.")
		depth = 1.0
	}
	xSegments = math.Clamp(xSegments, 1, 128)
	zSegments = math.Clamp(zSegments, 1, 128)
	if tileX == 0 {
		tileX = 1.0
	}
	if tileY == 0 {
		tileY = 1.0
	}

	segWidth := width / float32(xSegments)
	segDepth := depth / float32(zSegments)
	halfWidth := width * 0.5
	halfDepth := depth * 0.5

	m := &loaders.Mesh{Name: name}
	for z := uint32(0); z < zSegments; z++ {
		for x := uint32(0); x < xSegments; x++ {
			minX := float32(x)*segWidth - halfWidth
			minZ := float32(z)*segDepth - halfDepth
			maxX := minX + segWidth
			maxZ := minZ + segDepth
			base := uint32(len(m.Vertices) / 3)

			m.Vertices = append(m.Vertices,
				minX, 0, maxZ,
				maxX, 0, minZ,
				minX, 0, minZ,
				maxX, 0, maxZ,
			)
			m.UVs = append(m.UVs, quadUVs(
				float32(x)/float32(xSegments)*tileX,
				float32(z)/float32(zSegments)*tileY,
				float32(x+1)/float32(xSegments)*tileX,
				float32(z+1)/float32(zSegments)*tileY,
			)...)
			m.Indices = append(m.Indices, quadIndices(base)...)
		}
	}
	m.Normals = math.GeometryGenerateNormals(m.Vertices, m.Indices)
	m.Submeshes = []loaders.Submesh{{MaterialID: loaders.DefaultMaterialID, IndexCount: uint32(len(m.Indices))}}
	return m
}

// CollisionFromMesh flattens the indexed triangles of m into a collision soup.
func CollisionFromMesh(m *loaders.Mesh) *loaders.Collision {
	c := &loaders.Collision{Triangles: make([]float32, 0, len(m.Indices)*3)}
	for i := 0; i+2 < len(m.Indices); i += 3 {
		for _, idx := range m.Indices[i : i+3] {
			c.Triangles = append(c.Triangles, m.Vertices[idx*3:idx*3+3]...)
		}
	}
	return c
}
