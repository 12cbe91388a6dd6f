package scanner

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ralt/rpm-builder/internal/models"
)

// DetectEntryKind determines the kind of path without following symlinks
func DetectEntryKind(path string) (EntryKind, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return KindUnknown, err
	}
	return kindOf(info.Mode()), nil
}

func kindOf(mode os.FileMode) EntryKind {
	switch {
	case mode&os.ModeSymlink != 0:
		return KindSymlink
	case mode.IsDir():
		return KindDirectory
	case mode.IsRegular():
		return KindRegular
	default:
		return KindUnknown
	}
}

// ResolveSymlink returns the designated target of the link at path. Only one
// level of redirection is followed; relative targets are anchored at the
// directory containing the link.
func ResolveSymlink(path string) (string, error) {
	target, err := os.Readlink(path)
	if err != nil {
		return "", err
	}
	if !hasFileName(target) {
		return "", models.NewError(models.ErrMissingFileName, path,
			fmt.Errorf("link target %q has no file name", target))
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(path), target)
	}
	return target, nil
}

// hasFileName reports whether p ends in a usable path component
func hasFileName(p string) bool {
	if p == "" {
		return false
	}
	switch filepath.Base(filepath.Clean(p)) {
	case string(filepath.Separator), ".", "..":
		return false
	}
	return true
}
