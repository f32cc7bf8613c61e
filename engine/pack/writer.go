package pack

import (
	"fmt"
	"io/fs"
	stdmath "math"
	"path"
	"strings"

	"github.com/spaghettifunk/on3d/engine/core"
	"github.com/spaghettifunk/on3d/engine/resources"
)

/** @brief Input of Build: a slash separated path and its payload. */
type File struct {
	Path string
	Data []byte
}

type fileRecord struct {
	name      string
	directory int
	data      []byte
}

// Build writes files into a new archive. Directories are indexed in first-seen
// order and every directory record is written with parent index 0. The output
// only depends on the order of files.
func Build(files []File) ([]byte, error) {
	directories := make([]string, 0)
	directoryIndex := make(map[string]int)
	records := make([]fileRecord, 0, len(files))

	contentSize := int64(0)
	for i, f := range files {
		p := strings.TrimLeft(strings.ReplaceAll(f.Path, "\\", "/"), "/")
		dir, name := path.Split(p)
		dir = strings.TrimSuffix(dir, "/")
		if name == "" {
			return nil, fmt.Errorf("%w: file %d has an empty name (path %q)", core.ErrValidation, i, f.Path)
		}
		if dir == "" {
			dir = RootDirectoryName
		}
		if len(f.Data) > stdmath.MaxInt32 {
			return nil, fmt.Errorf("%w: file %q is %d bytes, over the int32 limit", core.ErrValidation, p, len(f.Data))
		}

		idx, ok := directoryIndex[dir]
		if !ok {
			idx = len(directories)
			directoryIndex[dir] = idx
			directories = append(directories, dir)
		}
		records = append(records, fileRecord{name: name, directory: idx, data: f.Data})
		contentSize += int64(len(f.Data))
	}

	if len(directories) > stdmath.MaxInt32 || len(records) > stdmath.MaxInt32 {
		return nil, fmt.Errorf("%w: too many entries (%d directories, %d files)", core.ErrValidation, len(directories), len(records))
	}
	headerSize := ContentOffset(int64(len(directories)), int64(len(records)))
	if headerSize+contentSize > stdmath.MaxInt32 {
		return nil, fmt.Errorf("%w: pack would be %d bytes, over the int32 limit", core.ErrValidation, headerSize+contentSize)
	}

	w := resources.NewWriter(int(headerSize + contentSize))
	w.Zeros(ReservedSize)
	w.Int32(int32(len(directories)))
	w.Int32(int32(len(records)))

	for _, dir := range directories {
		if err := writeName(w, dir); err != nil {
			return nil, err
		}
		w.Int32(0)
	}
	for _, rec := range records {
		if err := writeName(w, rec.name); err != nil {
			return nil, err
		}
		w.Int32(int32(rec.directory))
		w.Int32(int32(len(rec.data)))
		w.Int32(int32(len(rec.data)))
	}
	for _, rec := range records {
		w.Write(rec.data)
	}

	core.LogDebug("pack: built %d files in %d directories (%d bytes)", len(records), len(directories), w.Len())
	return w.Bytes(), nil
}

func writeName(w *resources.Writer, name string) error {
	truncated, err := w.FixedUTF16(name, resources.NameFieldSize)
	if err != nil {
		return err
	}
	if truncated {
		core.LogWarn("pack: name %q truncated to %d bytes", name, resources.NameFieldSize)
	}
	return nil
}

// CollectFS reads every regular file under root into build order, which is the
// lexical walk order of fs.WalkDir. Paths are relative to root.
func CollectFS(fsys fs.FS, root string) ([]File, error) {
	if root == "" {
		root = "."
	}
	var files []File
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(p, root)
		if root == "." {
			rel = p
		}
		files = append(files, File{Path: strings.TrimPrefix(rel, "/"), Data: data})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collect %s: %w", root, err)
	}
	return files, nil
}
