package loaders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMaterial(t *testing.T) {
	text := "// brick wall\r\n" +
		"# legacy comment\n" +
		"\n" +
		"  NAME   brick   wall \n" +
		"shader lit\n" +
		"map_diffuse textures/brick.dds\n" +
		"Map_Normal textures/brick_n.dds\n" +
		"map_specular textures/brick_s.dds\n" +
		"diffuse_colour 1 1 1 1\n" +
		"map_diffuse textures/brick2.dds\n"

	m, err := ParseMaterial(text)
	require.NoError(t, err)
	assert.Equal(t, "brick wall", m.Name)
	assert.Equal(t, "lit", m.Shader)
	assert.Equal(t, []TextureRef{
		{Usage: "diffuse", Path: "textures/brick.dds"},
		{Usage: "normal", Path: "textures/brick_n.dds"},
		{Usage: "specular", Path: "textures/brick_s.dds"},
		{Usage: "diffuse", Path: "textures/brick2.dds"},
	}, m.Textures)

	p, ok := m.Texture("diffuse")
	assert.True(t, ok)
	assert.Equal(t, "textures/brick2.dds", p)
	_, ok = m.Texture("emissive")
	assert.False(t, ok)
}

func TestParseMaterialDefaults(t *testing.T) {
	m, err := ParseMaterialBytes([]byte("map_\nunknown thing\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultMaterialName, m.Name)
	assert.Empty(t, m.Shader)
	assert.Empty(t, m.Textures)
}

func TestMaterialRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		mat  Material
	}{
		{"bare", Material{Name: "plain"}},
		{"shader only", Material{Name: "s", Shader: "unlit"}},
		{"duplicates", Material{Name: "dup", Shader: "lit", Textures: []TextureRef{
			{Usage: "diffuse", Path: "a.dds"},
			{Usage: "emissive", Path: "glow.dds"},
			{Usage: "diffuse", Path: "b.dds"},
			{Usage: "normal", Path: "dir with space/n.dds"},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMaterial(SerializeMaterial(&tt.mat))
			require.NoError(t, err)
			assert.Equal(t, tt.mat.Name, got.Name)
			assert.Equal(t, tt.mat.Shader, got.Shader)
			assert.Equal(t, tt.mat.Textures, got.Textures)
		})
	}
}

func TestSerializeMaterial(t *testing.T) {
	text := SerializeMaterial(&Material{Textures: []TextureRef{{Usage: "Diffuse", Path: "d.dds"}}})
	assert.Equal(t, "name material\nmap_diffuse d.dds\n", text)
}
