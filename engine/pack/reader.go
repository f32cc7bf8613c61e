package pack

import (
	"fmt"
	"path"
	"strings"

	"github.com/spaghettifunk/on3d/engine/core"
	"github.com/spaghettifunk/on3d/engine/resources"
	"golang.org/x/crypto/blake2b"
)

const (
	/** @brief Reserved bytes at the start of every pack. */
	ReservedSize = 8
	/** @brief Reserved bytes plus the two table counts. */
	HeaderSize = ReservedSize + 8
	/** @brief Name field plus parent index. */
	DirectoryRecordSize = resources.NameFieldSize + 4
	/** @brief Name field plus directory index, compressed size and size. */
	FileRecordSize = resources.NameFieldSize + 12
	/** @brief Directory name the writer uses for files without a directory. */
	RootDirectoryName = "root"
)

/** @brief One record of the directory table. */
type Directory struct {
	/** @brief Position in the directory table. */
	Index int
	/** @brief Decoded directory name. */
	Name string
	/** @brief Raw parent index as stored on disk. */
	ParentIndex int32

	count int
}

// HasParent reports whether ParentIndex points at another directory of the same table.
func (d Directory) HasParent() bool {
	return d.ParentIndex >= 0 && int(d.ParentIndex) < d.count && int(d.ParentIndex) != d.Index
}

/** @brief One resolved file of the pack. */
type Entry struct {
	/** @brief File name without directory. */
	Name string
	/** @brief Directory path, empty for files in the root. */
	Directory string
	/** @brief Absolute byte offset of the payload. */
	Offset int
	/** @brief Payload size in bytes. */
	Size int
}

// Path returns the directory-qualified name of the entry.
func (e Entry) Path() string {
	if e.Directory == "" {
		return e.Name
	}
	return e.Directory + "/" + e.Name
}

// Pack is a parsed archive. It owns the buffer it was parsed from and never
// mutates it after Parse returns.
type Pack struct {
	data        []byte
	directories []Directory
	entries     []Entry
	// qualified paths take precedence over bare names
	paths       map[string]int
	names       map[string]int
}

// ContentOffset returns the absolute offset of the first payload byte.
func ContentOffset(directoryCount, fileCount int64) int64 {
	return HeaderSize + directoryCount*DirectoryRecordSize + fileCount*FileRecordSize
}

// Parse reads the directory and file tables of an archive and resolves every
// entry to its byte range inside data.
func Parse(data []byte) (*Pack, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: pack header needs %d bytes, got %d", core.ErrFormat, HeaderSize, len(data))
	}

	r := resources.NewReader(data)
	if err := r.Skip(ReservedSize); err != nil {
		return nil, err
	}
	directoryCount, err := r.Int32()
	if err != nil {
		return nil, err
	}
	fileCount, err := r.Int32()
	if err != nil {
		return nil, err
	}
	if directoryCount < 0 || fileCount < 0 {
		return nil, fmt.Errorf("%w: negative table counts (directories=%d, files=%d)", core.ErrFormat, directoryCount, fileCount)
	}

	contentOffset := ContentOffset(int64(directoryCount), int64(fileCount))
	if contentOffset > int64(len(data)) {
		return nil, fmt.Errorf("%w: content offset %d exceeds pack size %d", core.ErrFormat, contentOffset, len(data))
	}

	p := &Pack{
		data:        data,
		directories: make([]Directory, 0, directoryCount),
		entries:     make([]Entry, 0, fileCount),
		paths:       make(map[string]int, fileCount),
		names:       make(map[string]int, fileCount),
	}

	for i := 0; i < int(directoryCount); i++ {
		name, err := r.FixedUTF16(resources.NameFieldSize)
		if err != nil {
			return nil, fmt.Errorf("directory %d: %w", i, err)
		}
		parent, err := r.Int32()
		if err != nil {
			return nil, fmt.Errorf("directory %d: %w", i, err)
		}
		p.directories = append(p.directories, Directory{Index: i, Name: name, ParentIndex: parent, count: int(directoryCount)})
		core.LogDebug("pack: dir[%d] = %s (parent: %d)", i, name, parent)
	}

	offset := contentOffset
	for i := 0; i < int(fileCount); i++ {
		name, err := r.FixedUTF16(resources.NameFieldSize)
		if err != nil {
			return nil, fmt.Errorf("file %d: %w", i, err)
		}
		location, err := r.Int32()
		if err != nil {
			return nil, fmt.Errorf("file %d: %w", i, err)
		}
		compressedSize, err := r.Int32()
		if err != nil {
			return nil, fmt.Errorf("file %d: %w", i, err)
		}
		size, err := r.Int32()
		if err != nil {
			return nil, fmt.Errorf("file %d: %w", i, err)
		}

		if compressedSize != size {
			return nil, fmt.Errorf("%w: file %q is compressed (%d of %d bytes)", core.ErrUnsupportedFeature, name, compressedSize, size)
		}
		if size < 0 {
			return nil, fmt.Errorf("%w: file %q has negative size %d", core.ErrFormat, name, size)
		}
		if offset+int64(size) > int64(len(data)) {
			return nil, fmt.Errorf("%w: file %q [%d, %d) runs past pack size %d", core.ErrFormat, name, offset, offset+int64(size), len(data))
		}

		entry := Entry{
			Name:      name,
			Directory: p.directoryPath(location),
			Offset:    int(offset),
			Size:      int(size),
		}
		p.insert(entry)
		core.LogDebug("pack: file[%d] = %s (size: %d bytes)", i, entry.Path(), size)
		offset += int64(size)
	}

	return p, nil
}

func (p *Pack) directoryPath(location int32) string {
	if location < 0 || int(location) >= len(p.directories) {
		return ""
	}
	name := normalizePath(p.directories[location].Name)
	if strings.EqualFold(name, RootDirectoryName) {
		return ""
	}
	return name
}

func (p *Pack) insert(e Entry) {
	idx := len(p.entries)
	p.entries = append(p.entries, e)

	qualified := lookupKey(e.Path())
	if _, ok := p.paths[qualified]; !ok {
		p.paths[qualified] = idx
	}
	bare := lookupKey(e.Name)
	if _, ok := p.names[bare]; !ok {
		p.names[bare] = idx
	}
}

func normalizePath(name string) string {
	return strings.Trim(strings.ReplaceAll(name, "\\", "/"), "/")
}

func lookupKey(name string) string {
	return strings.ToLower(normalizePath(name))
}

// Lookup resolves a directory-qualified path or a bare file name, ignoring case.
// A full path match wins over a bare name shared with another directory.
func (p *Pack) Lookup(name string) (Entry, bool) {
	key := lookupKey(name)
	if idx, ok := p.paths[key]; ok {
		return p.entries[idx], true
	}
	if idx, ok := p.names[key]; ok {
		return p.entries[idx], true
	}
	return Entry{}, false
}

// GetFile returns a view of the payload stored under name. The slice aliases
// the pack buffer and must not be modified.
func (p *Pack) GetFile(name string) ([]byte, error) {
	e, ok := p.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrNotFound, name)
	}
	end := e.Offset + e.Size
	return p.data[e.Offset:end:end], nil
}

// Digest returns the BLAKE2b-256 digest of the payload stored under name.
func (p *Pack) Digest(name string) ([blake2b.Size256]byte, error) {
	b, err := p.GetFile(name)
	if err != nil {
		return [blake2b.Size256]byte{}, err
	}
	return blake2b.Sum256(b), nil
}

// Entries returns the files in table order.
func (p *Pack) Entries() []Entry {
	return append([]Entry(nil), p.entries...)
}

func (p *Pack) Directories() []Directory {
	return append([]Directory(nil), p.directories...)
}

// Len returns the number of files.
func (p *Pack) Len() int {
	return len(p.entries)
}

// Size returns the archive size in bytes.
func (p *Pack) Size() int {
	return len(p.data)
}

// FilesWithExtension lists entry paths ending in ext, in table order.
func (p *Pack) FilesWithExtension(ext string) []string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	var out []string
	for _, e := range p.entries {
		if strings.ToLower(path.Ext(e.Name)) == ext {
			out = append(out, e.Path())
		}
	}
	return out
}
