package loaders

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spaghettifunk/on3d/engine/core"
	"github.com/spaghettifunk/on3d/engine/math"
	"github.com/spaghettifunk/on3d/engine/scene"
)

const (
	DefaultSceneName = "Untitled"
	RootNodeName     = "root"
)

/** @brief One node of a stored scene tree. */
type SceneNodeRecord struct {
	Name     string    `json:"name"`
	Position math.Vec3 `json:"position"`
	Rotation math.Vec3 `json:"rotation"`
	Scale    math.Vec3 `json:"scale"`
	/** @brief Pack path of the mesh bound to the node, empty for none. */
	MeshName string            `json:"meshName,omitempty"`
	Children []SceneNodeRecord `json:"children"`
}

/** @brief A stored scene: a name and a single root node. */
type Scene struct {
	Name string          `json:"name,omitempty"`
	Root SceneNodeRecord `json:"root"`
}

// UnmarshalJSON fills missing transforms with the identity and accepts the
// older "mesh" key in place of "meshName".
func (r *SceneNodeRecord) UnmarshalJSON(data []byte) error {
	type plain SceneNodeRecord
	aux := struct {
		*plain
		Position *math.Vec3 `json:"position"`
		Rotation *math.Vec3 `json:"rotation"`
		Scale    *math.Vec3 `json:"scale"`
		Mesh     string     `json:"mesh"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.Position, r.Rotation, r.Scale = math.NewVec3Zero(), math.NewVec3Zero(), math.NewVec3One()
	if aux.Position != nil {
		r.Position = *aux.Position
	}
	if aux.Rotation != nil {
		r.Rotation = *aux.Rotation
	}
	if aux.Scale != nil {
		r.Scale = *aux.Scale
	}
	if r.MeshName == "" {
		r.MeshName = aux.Mesh
	}
	return nil
}

// MarshalJSON always writes children as an array.
func (r SceneNodeRecord) MarshalJSON() ([]byte, error) {
	type plain SceneNodeRecord
	if r.Children == nil {
		r.Children = []SceneNodeRecord{}
	}
	return json.Marshal(plain(r))
}

// MeshNames lists the distinct meshes referenced by the scene, depth first.
func (s *Scene) MeshNames() []string {
	seen := make(map[string]struct{})
	var names []string
	var visit func(r *SceneNodeRecord)
	visit = func(r *SceneNodeRecord) {
		if r.MeshName != "" {
			if _, ok := seen[r.MeshName]; !ok {
				seen[r.MeshName] = struct{}{}
				names = append(names, r.MeshName)
			}
		}
		for i := range r.Children {
			visit(&r.Children[i])
		}
	}
	visit(&s.Root)
	return names
}

// NodeCount returns the number of nodes including the root.
func (s *Scene) NodeCount() int {
	var count func(r *SceneNodeRecord) int
	count = func(r *SceneNodeRecord) int {
		n := 1
		for i := range r.Children {
			n += count(&r.Children[i])
		}
		return n
	}
	return count(&s.Root)
}

// NewEmptyScene returns a scene holding only an identity root node.
func NewEmptyScene(name string) *Scene {
	if name == "" {
		name = DefaultSceneName
	}
	return &Scene{
		Name: name,
		Root: SceneNodeRecord{
			Name:     RootNodeName,
			Position: math.NewVec3Zero(),
			Rotation: math.NewVec3Zero(),
			Scale:    math.NewVec3One(),
			Children: []SceneNodeRecord{},
		},
	}
}

// SerializeScene copies the hierarchy under root into a stored scene. Only
// names, transforms and child order are captured; MeshName stays empty.
func SerializeScene(root *scene.Node) *Scene {
	name := root.Name
	if name == "" {
		name = "scene"
	}
	return &Scene{Name: name, Root: serializeNode(root)}
}

func serializeNode(n *scene.Node) SceneNodeRecord {
	rec := SceneNodeRecord{
		Name:     n.Name,
		Position: n.Transform.Position,
		Rotation: n.Transform.Rotation,
		Scale:    n.Transform.Scale,
		Children: []SceneNodeRecord{},
	}
	for _, child := range n.Children() {
		rec.Children = append(rec.Children, serializeNode(child))
	}
	return rec
}

// DeserializeScene rebuilds a live hierarchy from s. root is reused, with its
// children dropped, when its name matches the stored root; otherwise a new
// detached node is returned in its place. Descendants are always new nodes,
// so references to children from an earlier call are stale afterwards.
func DeserializeScene(s *Scene, root *scene.Node) *scene.Node {
	node := root
	if node == nil || node.Name != s.Root.Name {
		node = scene.NewNode(s.Root.Name)
	} else {
		node.Clear()
	}
	applyRecord(node, &s.Root)
	for i := range s.Root.Children {
		buildNode(node, &s.Root.Children[i])
	}
	return node
}

func applyRecord(n *scene.Node, rec *SceneNodeRecord) {
	n.Transform.SetPositionRotationScale(rec.Position, rec.Rotation, rec.Scale)
	n.MeshName = rec.MeshName
}

func buildNode(parent *scene.Node, rec *SceneNodeRecord) {
	n := scene.NewNode(rec.Name)
	applyRecord(n, rec)
	// n is new, so attaching it cannot form a cycle
	_ = parent.Attach(n)
	for i := range rec.Children {
		buildNode(n, &rec.Children[i])
	}
}

// MarshalSceneJSON writes the canonical JSON form of s.
func MarshalSceneJSON(s *Scene) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("scene %q: %w", s.Name, err)
	}
	return data, nil
}

// UnmarshalSceneJSON decodes the canonical JSON form.
func UnmarshalSceneJSON(data []byte) (*Scene, error) {
	var doc struct {
		Name string           `json:"name"`
		Root *SceneNodeRecord `json:"root"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: scene json: %v", core.ErrFormat, err)
	}
	if doc.Root == nil {
		return nil, fmt.Errorf("%w: scene json has no root node", core.ErrFormat)
	}
	return &Scene{Name: doc.Name, Root: *doc.Root}, nil
}

// ParseScene decodes a scene payload. JSON documents are recognised by a
// leading '{'; anything else is taken as the native text form.
func ParseScene(data []byte) (*Scene, error) {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return UnmarshalSceneJSON(trimmed)
	}
	return ParseNativeScene(string(data))
}

// ParseNativeScene would decode the native text scene format, which has no
// codec yet.
func ParseNativeScene(text string) (*Scene, error) {
	return nil, fmt.Errorf("%w: native scene format (%d bytes)", core.ErrUnsupportedFeature, len(text))
}

// MarshalNativeScene would encode the native text scene format, which has no
// codec yet.
func MarshalNativeScene(s *Scene) (string, error) {
	return "", fmt.Errorf("%w: native scene format for %q", core.ErrUnsupportedFeature, s.Name)
}
