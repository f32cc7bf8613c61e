package testbed

import (
	"fmt"

	"github.com/spaghettifunk/on3d/engine/assets/loaders"
	"github.com/spaghettifunk/on3d/engine/math"
	"github.com/spaghettifunk/on3d/engine/pack"
	"github.com/spaghettifunk/on3d/engine/scene"
)

const (
	SampleScenePath     = "scenes/level.scene"
	SampleCubePath      = "meshes/crate.mesh"
	SamplePlanePath     = "meshes/ground.mesh"
	SampleCollisionPath = "collision/ground.collision"
)

var sampleMaterials = []*loaders.Material{
	{
		Name:   "crate",
		Shader: "Shader.Builtin.World",
		Textures: []loaders.TextureRef{
			{Usage: "diffuse", Path: "textures/crate_diffuse.png"},
			{Usage: "normal", Path: "textures/crate_normal.png"},
		},
	},
	{
		Name:     "ground",
		Shader:   "Shader.Builtin.World",
		Textures: []loaders.TextureRef{{Usage: "diffuse", Path: "textures/ground.png"}},
	},
}

// SampleLevel returns the live node tree stored in the sample scene.
func SampleLevel() *scene.Node {
	level := scene.NewNode("level")

	ground := scene.NewNode("ground")
	ground.MeshName = SamplePlanePath

	crate := scene.NewNode("crate")
	crate.MeshName = SampleCubePath
	crate.Transform = math.TransformFromPositionRotationScale(math.NewVec3(0, 0.5, 0), math.NewVec3(0, 0.7853982, 0), math.NewVec3One())

	stacked := scene.NewNode("crate_small")
	stacked.MeshName = SampleCubePath
	stacked.Transform = math.TransformFromPositionRotationScale(math.NewVec3(0, 0.75, 0), math.NewVec3Zero(), math.NewVec3(0.5, 0.5, 0.5))

	// Attach only fails on cycles, which a fresh tree cannot have.
	_ = level.Attach(ground)
	_ = level.Attach(crate)
	_ = crate.Attach(stacked)
	return level
}

// SampleFiles encodes the sample level: two meshes, their materials, the
// scene referencing them and the ground collision.
func SampleFiles() ([]pack.File, error) {
	cube := GenerateCube("crate", 1, 1, 1, 1, 1)
	plane := GeneratePlane("ground", 20, 20, 4, 4, 4, 4)

	var files []pack.File
	for path, m := range map[string]*loaders.Mesh{SampleCubePath: cube, SamplePlanePath: plane} {
		data, err := loaders.SerializeMesh(m)
		if err != nil {
			return nil, fmt.Errorf("sample mesh %s: %w", path, err)
		}
		files = append(files, pack.File{Path: path, Data: data})
	}
	// map order is random; keep the archive deterministic
	if files[0].Path != SampleCubePath {
		files[0], files[1] = files[1], files[0]
	}

	for _, mat := range sampleMaterials {
		files = append(files, pack.File{
			Path: "materials/" + mat.Name + ".material",
			Data: []byte(loaders.SerializeMaterial(mat)),
		})
	}

	live := SampleLevel()
	level := loaders.SerializeScene(live)
	bindMeshNames(&level.Root, live)
	sceneJSON, err := loaders.MarshalSceneJSON(level)
	if err != nil {
		return nil, fmt.Errorf("sample scene: %w", err)
	}
	files = append(files, pack.File{Path: SampleScenePath, Data: sceneJSON})

	collision, err := loaders.SerializeCollision(CollisionFromMesh(plane))
	if err != nil {
		return nil, fmt.Errorf("sample collision: %w", err)
	}
	files = append(files, pack.File{Path: SampleCollisionPath, Data: collision})
	files = append(files, pack.File{Path: "readme.txt", Data: []byte("on3d sample level\n")})
	return files, nil
}

// bindMeshNames copies mesh references from the live tree, which the scene
// serializer leaves out.
func bindMeshNames(rec *loaders.SceneNodeRecord, n *scene.Node) {
	rec.MeshName = n.MeshName
	for i, child := range n.Children() {
		bindMeshNames(&rec.Children[i], child)
	}
}

// BuildSamplePack returns the sample level as a pack archive.
func BuildSamplePack() ([]byte, error) {
	files, err := SampleFiles()
	if err != nil {
		return nil, err
	}
	return pack.Build(files)
}
