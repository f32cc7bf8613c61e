package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// Vec3 represents a 3D vector
type Vec3 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

/**
 * @brief Represents the extents of a 3d object.
 */
type Extents3D struct {
	/** @brief The minimum extents of the object. */
	Min Vec3
	/** @brief The maximum extents of the object. */
	Max Vec3
}

/**
 * @brief Represents the local transform of a scene node.
 * Rotation is stored as Euler angles in radians, in the
 * same x/y/z order the scene files use.
 */
type Transform struct {
	/** @brief The position relative to the parent. */
	Position Vec3
	/** @brief The Euler rotation relative to the parent. */
	Rotation Vec3
	/** @brief The scale relative to the parent. */
	Scale Vec3
}
