package resources

import (
	"path"
	"strings"
)

type ResourceType int

/** @brief Asset kinds stored in a pack. */
const (
	/** @brief Raw bytes without a codec. */
	ResourceTypeBinary ResourceType = iota
	/** @brief Packed binary mesh. */
	ResourceTypeMesh
	/** @brief Line-oriented text material. */
	ResourceTypeMaterial
	/** @brief JSON scene tree. */
	ResourceTypeScene
	/** @brief Packed binary collision triangles. */
	ResourceTypeCollision
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeMesh:
		return "mesh"
	case ResourceTypeMaterial:
		return "material"
	case ResourceTypeScene:
		return "scene"
	case ResourceTypeCollision:
		return "collision"
	default:
		return "binary"
	}
}

// ResourceTypeFromPath guesses the asset kind from a pack path extension.
func ResourceTypeFromPath(p string) ResourceType {
	switch strings.ToLower(path.Ext(p)) {
	case ".mesh":
		return ResourceTypeMesh
	case ".material", ".mat":
		return ResourceTypeMaterial
	case ".scene":
		return ResourceTypeScene
	case ".collision", ".col":
		return ResourceTypeCollision
	default:
		return ResourceTypeBinary
	}
}
