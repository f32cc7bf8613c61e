package math

// GeometryGenerateNormals computes flat face normals for an indexed triangle list.
// positions holds 3 floats per vertex; the result has the same length.
// Triangles referencing vertices outside the buffer are skipped.
func GeometryGenerateNormals(positions []float32, indices []uint32) []float32 {
	vertexCount := uint32(len(positions) / 3)
	normals := make([]float32, vertexCount*3)
	for i := 0; i+2 < len(indices); i += 3 {
		i0 := indices[i+0]
		i1 := indices[i+1]
		i2 := indices[i+2]
		if i0 >= vertexCount || i1 >= vertexCount || i2 >= vertexCount {
			continue
		}

		p0 := Vec3FromSlice(positions, int(i0))
		edge1 := Vec3FromSlice(positions, int(i1)).Sub(p0)
		edge2 := Vec3FromSlice(positions, int(i2)).Sub(p0)

		// NOTE: This just generates a face normal. Smoothing out should be done in a separate pass if desired.
		normal := edge1.Cross(edge2).Normalized()
		for _, idx := range []uint32{i0, i1, i2} {
			normals[idx*3+0] = normal.X
			normals[idx*3+1] = normal.Y
			normals[idx*3+2] = normal.Z
		}
	}
	return normals
}

// GeometryComputeExtents returns the axis-aligned bounds of a flat xyz buffer.
// ok is false when the buffer holds no complete vertex.
func GeometryComputeExtents(positions []float32) (Extents3D, bool) {
	count := len(positions) / 3
	if count == 0 {
		return Extents3D{}, false
	}
	ext := Extents3D{Min: Vec3FromSlice(positions, 0), Max: Vec3FromSlice(positions, 0)}
	for i := 1; i < count; i++ {
		p := Vec3FromSlice(positions, i)
		ext.Min = ext.Min.Min(p)
		ext.Max = ext.Max.Max(p)
	}
	return ext, true
}
