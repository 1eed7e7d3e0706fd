package loaders

import (
	"fmt"
	gomath "math"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/ext/lightspunctual"
	"github.com/spaghettifunk/sponza/engine/assets/ktx2"
	"github.com/spaghettifunk/sponza/engine/core"
	"github.com/spaghettifunk/sponza/engine/math"
	"github.com/spaghettifunk/sponza/engine/scene"
)

// Default intensity of a KHR_lights_punctual light without one.
const defaultLightIntensity = 1.0

type GLTFLoader struct{}

func (gl *GLTFLoader) Extensions() []string {
	return []string{".gltf", ".glb"}
}

/**
 * @brief Decodes a glTF document into a scene template. Only the hierarchy,
 * transforms, materials, cameras and punctual lights are kept; vertex data
 * stays with the renderer.
 */
func (gl *GLTFLoader) Load(path string) (*SceneTemplate, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf %s: %w", path, err)
	}
	return decodeDocument(path, doc)
}

func decodeDocument(path string, doc *gltf.Document) (*SceneTemplate, error) {
	st := &SceneTemplate{
		Path:      path,
		Materials: make([]scene.Material, 0, len(doc.Materials)),
	}
	for _, m := range doc.Materials {
		st.Materials = append(st.Materials, decodeMaterial(doc, m))
	}

	lights, err := documentLights(doc)
	if err != nil {
		return nil, fmt.Errorf("decode lights of %s: %w", path, err)
	}

	d := &decoder{doc: doc, st: st, lights: lights, nodes: make(map[int]int, len(doc.Nodes))}
	for _, n := range sceneRoots(doc) {
		idx, err := d.node(n)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		st.Roots = append(st.Roots, idx)
	}
	return st, nil
}

// sceneRoots returns the top level nodes of the default scene, falling back
// to the first scene.
func sceneRoots(doc *gltf.Document) []int {
	if len(doc.Scenes) == 0 {
		return nil
	}
	s := 0
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		s = *doc.Scene
	}
	return doc.Scenes[s].Nodes
}

type decoder struct {
	doc    *gltf.Document
	st     *SceneTemplate
	lights lightspunctual.Lights
	// nodes maps glTF node indices to template indices.
	nodes map[int]int
}

// node decodes the glTF node n and its children. A mesh node with several
// primitives gets one child per primitive so each keeps its own material.
// A node reached twice means the document is not a tree.
func (d *decoder) node(n int) (int, error) {
	if n < 0 || n >= len(d.doc.Nodes) {
		return 0, fmt.Errorf("node index %d out of range", n)
	}
	if _, ok := d.nodes[n]; ok {
		return 0, fmt.Errorf("node %d: %w", n, core.ErrMalformedHierarchy)
	}
	gn := d.doc.Nodes[n]

	idx := len(d.st.Nodes)
	d.nodes[n] = idx
	d.st.Nodes = append(d.st.Nodes, NodeTemplate{
		Name:      nodeName(gn, n),
		Transform: nodeTransform(gn),
		Material:  NoMaterial,
	})

	if gn.Mesh != nil && *gn.Mesh < len(d.doc.Meshes) {
		d.mesh(idx, d.doc.Meshes[*gn.Mesh])
	}
	if gn.Camera != nil && *gn.Camera < len(d.doc.Cameras) {
		d.st.Nodes[idx].Camera = decodeCamera(d.doc.Cameras[*gn.Camera])
	}
	if l, ok := nodeLight(gn, d.lights); ok {
		d.st.Nodes[idx].Light = &l
	}

	for _, c := range gn.Children {
		kid, err := d.node(c)
		if err != nil {
			return 0, err
		}
		d.st.Nodes[idx].Children = append(d.st.Nodes[idx].Children, kid)
	}
	return idx, nil
}

func (d *decoder) mesh(idx int, m *gltf.Mesh) {
	node := &d.st.Nodes[idx]
	if len(m.Primitives) == 1 {
		node.Mesh = true
		node.Material = primitiveMaterial(m.Primitives[0], len(d.st.Materials))
		return
	}
	for i, p := range m.Primitives {
		d.st.Nodes = append(d.st.Nodes, NodeTemplate{
			Name:      fmt.Sprintf("%s.%d", m.Name, i),
			Transform: math.TransformCreate(),
			Material:  primitiveMaterial(p, len(d.st.Materials)),
			Mesh:      true,
		})
		// d.st.Nodes may have grown, so index instead of using node.
		d.st.Nodes[idx].Children = append(d.st.Nodes[idx].Children, len(d.st.Nodes)-1)
	}
}

func primitiveMaterial(p *gltf.Primitive, count int) int {
	if p.Material == nil || *p.Material >= count {
		return NoMaterial
	}
	return *p.Material
}

func nodeName(n *gltf.Node, idx int) string {
	if n.Name != "" {
		return n.Name
	}
	return fmt.Sprintf("node%d", idx)
}

func nodeTransform(n *gltf.Node) math.Transform {
	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	return math.TransformFromPositionRotationScale(
		math.NewVec3(float32(t[0]), float32(t[1]), float32(t[2])),
		math.Quaternion{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])},
		math.NewVec3(float32(s[0]), float32(s[1]), float32(s[2])),
	)
}

func decodeMaterial(doc *gltf.Document, m *gltf.Material) scene.Material {
	mat := scene.Material{
		Name:       m.Name,
		BaseColour: scene.DefaultBaseColour(),
	}
	if pbr := m.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			f := *pbr.BaseColorFactor
			mat.BaseColour = [4]float32{float32(f[0]), float32(f[1]), float32(f[2]), float32(f[3])}
		}
		if pbr.BaseColorTexture != nil {
			mat.BaseColourMap = textureURI(doc, pbr.BaseColorTexture.Index)
		}
	}
	if m.NormalTexture != nil && m.NormalTexture.Index != nil {
		mat.NormalMap = textureURI(doc, *m.NormalTexture.Index)
	}
	return mat
}

func textureURI(doc *gltf.Document, texture int) string {
	if texture < 0 || texture >= len(doc.Textures) {
		return ""
	}
	tex := doc.Textures[texture]
	src := -1
	if basisu, ok := ktx2.BasisuSource(tex); ok {
		src = basisu
	} else if tex.Source != nil {
		src = *tex.Source
	}
	if src < 0 || src >= len(doc.Images) {
		return ""
	}
	return doc.Images[src].URI
}

func decodeCamera(c *gltf.Camera) *scene.CameraDescriptor {
	cd := &scene.CameraDescriptor{}
	if p := c.Perspective; p != nil {
		cd.FovY = float32(p.Yfov)
		cd.Near = float32(p.Znear)
		cd.Far = float32(gomath.Inf(1))
		if p.Zfar != nil {
			cd.Far = float32(*p.Zfar)
		}
	}
	return cd
}

func documentLights(doc *gltf.Document) (lightspunctual.Lights, error) {
	ext, ok := doc.Extensions[lightspunctual.ExtensionName]
	if !ok {
		return nil, nil
	}
	switch lights := ext.(type) {
	case lightspunctual.Lights:
		return lights, nil
	case *lightspunctual.Lights:
		return *lights, nil
	default:
		return nil, fmt.Errorf("unexpected %s payload %T", lightspunctual.ExtensionName, ext)
	}
}

func nodeLight(n *gltf.Node, lights lightspunctual.Lights) (scene.LightDescriptor, bool) {
	ext, ok := n.Extensions[lightspunctual.ExtensionName]
	if !ok {
		return scene.LightDescriptor{}, false
	}
	idx := -1
	switch ref := ext.(type) {
	case lightspunctual.LightIndex:
		idx = int(ref)
	case *lightspunctual.LightIndex:
		idx = int(*ref)
	default:
		core.LogWarn("node %s: unexpected light reference %T", n.Name, ext)
	}
	if idx < 0 || idx >= len(lights) || lights[idx] == nil {
		// The node still carries a light even if its parameters are lost.
		return scene.LightDescriptor{Kind: scene.LightPoint, Colour: [3]float32{1, 1, 1}, Intensity: defaultLightIntensity}, true
	}
	return lightDescriptor(lights[idx]), true
}

// lightDescriptor converts a punctual light. An infinite or missing range
// becomes 0, which means unbounded.
func lightDescriptor(l *lightspunctual.Light) scene.LightDescriptor {
	c := l.ColorOrDefault()
	ld := scene.LightDescriptor{
		Colour:    [3]float32{float32(c[0]), float32(c[1]), float32(c[2])},
		Intensity: float32(l.IntensityOrDefault()),
	}
	switch l.Type {
	case "directional":
		ld.Kind = scene.LightDirectional
	case "spot":
		ld.Kind = scene.LightSpot
		ld.OuterAngle = math.K_PI / 4
		if l.Spot != nil {
			ld.InnerAngle = float32(l.Spot.InnerConeAngle)
			ld.OuterAngle = float32(l.Spot.OuterConeAngleOrDefault())
		}
	default:
		ld.Kind = scene.LightPoint
	}
	if l.Range != nil && !gomath.IsInf(*l.Range, 0) {
		ld.Range = float32(*l.Range)
	}
	return ld
}
