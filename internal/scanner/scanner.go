package scanner

import "github.com/ralt/rpm-builder/internal/models"

// EntryKind represents the type of a directory entry
type EntryKind int

const (
	KindUnknown EntryKind = iota
	KindRegular
	KindDirectory
	KindSymlink
)

// String returns the string representation of EntryKind
func (k EntryKind) String() string {
	switch k {
	case KindRegular:
		return "file"
	case KindDirectory:
		return "directory"
	case KindSymlink:
		return "symlink"
	default:
		return "unknown"
	}
}

// Scanner expands a directory tree into a file manifest
type Scanner interface {
	// Expand walks srcDir recursively and places every regular file found
	// under dstPrefix, mirroring the relative layout of the tree
	Expand(srcDir, dstPrefix string) ([]models.FileEntry, error)
}
