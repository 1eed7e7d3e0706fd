package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const tolerance float32 = 1e-4

func TestQuatLookAtForward(t *testing.T) {
	cases := []struct {
		position, target Vec3
	}{
		{NewVec3(-10.5, 1.7, -1.0), NewVec3(0.0, 3.5, 0.0)},
		{NewVec3(0, 0, 0), NewVec3(0, 0, -5)},
		{NewVec3(0, 0, 0), NewVec3(0, 0, 5)},
		{NewVec3(3, 2, 1), NewVec3(-4, 1, 9)},
	}
	for _, c := range cases {
		tr := TransformFromPosition(c.position).LookingAt(c.target, NewVec3Up())
		want := c.target.Sub(c.position).Normalize()
		assert.True(t, tr.Forward().Compare(want, tolerance), "forward %v, want %v", tr.Forward(), want)
		assert.InDelta(t, 1.0, tr.Rotation.Normal(), 1e-5)
	}
}

func TestQuatIdentityLookAt(t *testing.T) {
	q := NewQuatLookAt(NewVec3Zero(), NewVec3Forward(), NewVec3Up())
	assert.True(t, q.Compare(NewQuatIdentity(), tolerance))
}

func TestQuatCompareSign(t *testing.T) {
	q := NewQuatFromAxisAngle(NewVec3Up(), 0.7, true)
	neg := Quaternion{-q.X, -q.Y, -q.Z, -q.W}
	assert.True(t, q.Compare(neg, tolerance))
	assert.False(t, q.Compare(NewQuatIdentity(), tolerance))
}

func TestQuatEulerXYZ(t *testing.T) {
	q := NewQuatFromEulerXYZ(0, K_HALF_PI, 0)
	// A quarter turn around Y takes forward (-Z) to -X.
	assert.True(t, q.RotateVec3(NewVec3Forward()).Compare(NewVec3(-1, 0, 0), tolerance))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 16, Clamp(32, 1, 16))
	assert.Equal(t, 1, Clamp(0, 1, 16))
	assert.Equal(t, float32(0.5), Clamp(float32(0.5), 0, 1))
}

func TestAngleConversion(t *testing.T) {
	assert.InDelta(t, K_PI, DegToRad(180), 1e-6)
	assert.InDelta(t, 90, RadToDeg(K_HALF_PI), 1e-4)
}
