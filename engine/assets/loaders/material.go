package loaders

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spaghettifunk/on3d/engine/core"
)

// DefaultMaterialName is used when a material file has no name directive.
const DefaultMaterialName = "material"

const texturePrefix = "map_"

/** @brief A texture slot of a material. */
type TextureRef struct {
	/** @brief Slot name such as diffuse, normal or specular. */
	Usage string
	Path  string
}

/**
 * @brief A decoded material. Textures keep file order and may repeat a usage;
 * consumers take the last one.
 */
type Material struct {
	Name     string
	Shader   string
	Textures []TextureRef
}

// Texture returns the path of the last texture bound to usage.
func (m *Material) Texture(usage string) (string, bool) {
	for i := len(m.Textures) - 1; i >= 0; i-- {
		if strings.EqualFold(m.Textures[i].Usage, usage) {
			return m.Textures[i].Path, true
		}
	}
	return "", false
}

// ParseMaterialBytes decodes a material payload read from a pack.
func ParseMaterialBytes(data []byte) (*Material, error) {
	return ParseMaterial(string(data))
}

// ParseMaterial reads the line based material format:
//
//	// comment
//	name brick
//	shader lit
//	map_diffuse textures/brick.dds
//
// Unknown directives are dropped, so the format does not round-trip them.
func ParseMaterial(text string) (*Material, error) {
	mat := &Material{Name: DefaultMaterialName}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 4096), len(text)+1)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		key := strings.ToLower(fields[0])
		value := strings.Join(fields[1:], " ")

		switch {
		case key == "name":
			mat.Name = value
		case key == "shader":
			mat.Shader = value
		case strings.HasPrefix(key, texturePrefix) && len(key) > len(texturePrefix):
			mat.Textures = append(mat.Textures, TextureRef{Usage: key[len(texturePrefix):], Path: value})
		default:
			core.LogDebug("material: unknown directive '%s' on line %d, skipping", fields[0], lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: material: %v", core.ErrFormat, err)
	}
	return mat, nil
}

// SerializeMaterial writes name, the optional shader and one map_<usage> line
// per texture, in order.
func SerializeMaterial(m *Material) string {
	var sb strings.Builder
	name := m.Name
	if name == "" {
		name = DefaultMaterialName
	}
	fmt.Fprintf(&sb, "name %s\n", name)
	if m.Shader != "" {
		fmt.Fprintf(&sb, "shader %s\n", m.Shader)
	}
	for _, tex := range m.Textures {
		fmt.Fprintf(&sb, "%s%s %s\n", texturePrefix, strings.ToLower(tex.Usage), tex.Path)
	}
	return sb.String()
}
