package assets

import (
	"github.com/spaghettifunk/on3d/engine/resources"
)

// Load decodes path with the codec its extension selects and returns the
// typed asset: *loaders.Mesh, *loaders.Material, *loaders.Scene,
// *loaders.Collision, or the raw bytes for anything else.
func (am *AssetManager) Load(path string) (any, resources.ResourceType, error) {
	kind := resources.ResourceTypeFromPath(path)
	var (
		asset any
		err   error
	)
	switch kind {
	case resources.ResourceTypeMesh:
		asset, err = am.LoadMesh(path)
	case resources.ResourceTypeMaterial:
		asset, err = am.LoadMaterial(path)
	case resources.ResourceTypeScene:
		asset, err = am.LoadScene(path)
	case resources.ResourceTypeCollision:
		asset, err = am.LoadCollision(path)
	default:
		asset, err = am.GetFileBytes(path)
	}
	if err != nil {
		return nil, kind, err
	}
	return asset, kind, nil
}
