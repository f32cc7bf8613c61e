package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spaghettifunk/on3d/engine/assets/loaders"
	"github.com/spf13/cobra"
)

func newInspectCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <pack> <path>",
		Short: "Decode one entry and print a summary",
		Long: `Decode one entry with the codec its extension selects (.mesh, .material,
.scene, .collision) and print a summary. Recovered mesh problems are listed
as diagnostics. Other entries are reported by size.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			am, err := a.openManager(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			asset, kind, err := am.Load(args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", args[1], kind)
			describe(out, asset)
			return nil
		},
	}
}

func describe(out io.Writer, asset any) {
	switch v := asset.(type) {
	case *loaders.Mesh:
		fmt.Fprintf(out, "name: %s\nvertices: %d\nnormals: %d floats\nuvs: %d floats\nindices: %d (%s)\n",
			v.Name, v.VertexCount(), len(v.Normals), len(v.UVs), len(v.Indices), v.IndexFormat)
		if ext, ok := v.Extents(); ok {
			fmt.Fprintf(out, "extents: [%g %g %g] - [%g %g %g]\n", ext.Min.X, ext.Min.Y, ext.Min.Z, ext.Max.X, ext.Max.Y, ext.Max.Z)
		}
		for _, s := range v.Submeshes {
			fmt.Fprintf(out, "submesh: %s indices [%d, %d)\n", s.MaterialName(), s.IndexStart, s.IndexStart+s.IndexCount)
		}
		for _, d := range v.Diagnostics {
			fmt.Fprintf(out, "diagnostic: %s\n", d)
		}
	case *loaders.Material:
		fmt.Fprintf(out, "name: %s\nshader: %s\n", v.Name, v.Shader)
		for _, t := range v.Textures {
			fmt.Fprintf(out, "map_%s: %s\n", t.Usage, t.Path)
		}
	case *loaders.Scene:
		fmt.Fprintf(out, "name: %s\nnodes: %d\n", v.Name, v.NodeCount())
		printRecord(out, &v.Root, 0)
	case *loaders.Collision:
		fmt.Fprintf(out, "triangles: %d\n", v.TriangleCount())
		if ext, ok := v.Extents(); ok {
			fmt.Fprintf(out, "extents: [%g %g %g] - [%g %g %g]\n", ext.Min.X, ext.Min.Y, ext.Min.Z, ext.Max.X, ext.Max.Y, ext.Max.Z)
		}
	case []byte:
		fmt.Fprintf(out, "size: %d bytes\n", len(v))
	}
}

func printRecord(out io.Writer, r *loaders.SceneNodeRecord, depth int) {
	line := strings.Repeat("  ", depth) + r.Name
	if r.MeshName != "" {
		line += " -> " + r.MeshName
	}
	fmt.Fprintln(out, line)
	for i := range r.Children {
		printRecord(out, &r.Children[i], depth+1)
	}
}
