package scene

// LightKind identifies the kind of light source.
type LightKind uint8

const (
	// LightPoint emits in all directions from a position.
	LightPoint LightKind = iota
	// LightDirectional has no position, only direction (sun, moon).
	LightDirectional
	// LightSpot emits in a cone along the entity's forward axis.
	LightSpot
)

func (k LightKind) String() string {
	switch k {
	case LightPoint:
		return "point"
	case LightDirectional:
		return "directional"
	case LightSpot:
		return "spot"
	default:
		return "unknown"
	}
}

// LightDescriptor carries the parameters of a light. Fields that do not
// apply to a kind are left zero.
type LightDescriptor struct {
	Kind      LightKind
	Colour    [3]float32
	Intensity float32 // lumens for point/spot, lux for directional
	// Range is the distance the light reaches, 0 means unbounded.
	Range  float32
	Radius float32
	// InnerAngle and OuterAngle are spot cone half angles in radians.
	InnerAngle float32
	OuterAngle float32

	ShadowsEnabled   bool
	ShadowDepthBias  float32
	ShadowNormalBias float32
	// ShadowHalfSize is the half extent of a directional light's
	// orthographic shadow projection.
	ShadowHalfSize float32
}
