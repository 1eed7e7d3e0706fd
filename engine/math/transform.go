package math

func TransformCreate() Transform {
	return Transform{
		Position: NewVec3Zero(),
		Rotation: NewQuatIdentity(),
		Scale:    NewVec3One(),
	}
}

func TransformFromPosition(position Vec3) Transform {
	t := TransformCreate()
	t.Position = position
	return t
}

func TransformFromRotation(rotation Quaternion) Transform {
	t := TransformCreate()
	t.Rotation = rotation
	return t
}

func TransformFromPositionRotationScale(position Vec3, rotation Quaternion, scale Vec3) Transform {
	return Transform{
		Position: position,
		Rotation: rotation,
		Scale:    scale,
	}
}

// LookingAt returns a copy of the transform rotated so that its forward
// axis points at target.
func (t Transform) LookingAt(target, up Vec3) Transform {
	t.Rotation = NewQuatLookAt(t.Position, target, up)
	return t
}

// Forward returns the direction the transform faces.
func (t Transform) Forward() Vec3 {
	return t.Rotation.RotateVec3(NewVec3Forward())
}

// Compare reports whether position and rotation of both transforms match
// within tolerance.
func (t Transform) Compare(other Transform, tolerance float32) bool {
	return t.Position.Compare(other.Position, tolerance) &&
		t.Rotation.Compare(other.Rotation, tolerance) &&
		t.Scale.Compare(other.Scale, tolerance)
}
