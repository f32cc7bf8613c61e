package math

func TransformCreate() Transform {
	return TransformFromPositionRotationScale(NewVec3Zero(), NewVec3Zero(), NewVec3One())
}

func TransformFromPosition(position Vec3) Transform {
	return TransformFromPositionRotationScale(position, NewVec3Zero(), NewVec3One())
}

func TransformFromPositionRotationScale(position, rotation, scale Vec3) Transform {
	t := Transform{}
	t.SetPositionRotationScale(position, rotation, scale)
	return t
}

func (t *Transform) SetPosition(position Vec3) {
	t.Position = position
}

func (t *Transform) Translate(translation Vec3) {
	t.Position = t.Position.Add(translation)
}

func (t *Transform) SetRotation(rotation Vec3) {
	t.Rotation = rotation
}

func (t *Transform) Rotate(rotation Vec3) {
	t.Rotation = t.Rotation.Add(rotation)
}

func (t *Transform) SetScale(scale Vec3) {
	t.Scale = scale
}

func (t *Transform) ScaleIt(scale Vec3) {
	t.Scale = t.Scale.Mul(scale)
}

func (t *Transform) SetPositionRotationScale(position, rotation, scale Vec3) {
	t.Position = position
	t.Rotation = rotation
	t.Scale = scale
}

// Equal compares all three components within tolerance.
func (t Transform) Equal(other Transform, tolerance float32) bool {
	return t.Position.Compare(other.Position, tolerance) &&
		t.Rotation.Compare(other.Rotation, tolerance) &&
		t.Scale.Compare(other.Scale, tolerance)
}
