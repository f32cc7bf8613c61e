package pack

import (
	"path"
	"sort"
	"strings"
)

/** @brief A folder node of the asset browser tree. */
type Folder struct {
	Name    string
	Path    string
	Folders []*Folder
	Files   []Asset
}

/** @brief A file node of the asset browser tree. */
type Asset struct {
	Name string
	Path string
	/** @brief Lower-case extension with its dot, empty when the name has none. */
	Extension string
}

// Tree groups the entries into folders split on "/". Folders come before files
// and both are sorted by name; a repeated path keeps a single file node.
func (p *Pack) Tree() *Folder {
	root := &Folder{}
	for _, e := range p.entries {
		segments := strings.Split(e.Path(), "/")
		fileName := segments[len(segments)-1]

		cursor := root
		for _, segment := range segments[:len(segments)-1] {
			if segment == "" {
				continue
			}
			cursor = cursor.folder(segment)
		}

		asset := Asset{Name: fileName, Path: e.Path(), Extension: strings.ToLower(path.Ext(fileName))}
		replaced := false
		for i := range cursor.Files {
			if cursor.Files[i].Path == asset.Path {
				cursor.Files[i] = asset
				replaced = true
				break
			}
		}
		if !replaced {
			cursor.Files = append(cursor.Files, asset)
		}
	}
	root.sort()
	return root
}

func (f *Folder) folder(name string) *Folder {
	for _, child := range f.Folders {
		if child.Name == name {
			return child
		}
	}
	p := name
	if f.Path != "" {
		p = f.Path + "/" + name
	}
	child := &Folder{Name: name, Path: p}
	f.Folders = append(f.Folders, child)
	return child
}

func (f *Folder) sort() {
	sort.Slice(f.Folders, func(i, j int) bool { return f.Folders[i].Name < f.Folders[j].Name })
	sort.Slice(f.Files, func(i, j int) bool { return f.Files[i].Name < f.Files[j].Name })
	for _, child := range f.Folders {
		child.sort()
	}
}

// Walk visits the folder and its descendants depth first. depth is 0 for f.
func (f *Folder) Walk(fn func(folder *Folder, depth int)) {
	f.walk(fn, 0)
}

func (f *Folder) walk(fn func(folder *Folder, depth int), depth int) {
	fn(f, depth)
	for _, child := range f.Folders {
		child.walk(fn, depth+1)
	}
}
