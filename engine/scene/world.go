package scene

// World bundles the entity hierarchy with the material table its entities
// reference.
type World struct {
	Hierarchy *Hierarchy
	Materials *MaterialTable
}

func NewWorld() *World {
	return &World{
		Hierarchy: NewHierarchy(),
		Materials: NewMaterialTable(),
	}
}
