package scanner

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/ralt/rpm-builder/internal/models"
	"github.com/sirupsen/logrus"
)

// DirectoryScanner implements Scanner on the local filesystem
type DirectoryScanner struct{}

// NewDirectoryScanner creates a new filesystem scanner
func NewDirectoryScanner() *DirectoryScanner {
	return &DirectoryScanner{}
}

// Expand recursively walks srcDir and returns one plain FileEntry per
// regular file. Symlinks are resolved one level: the link target becomes the
// read source while the entry keeps the mirrored destination of the link.
func (s *DirectoryScanner) Expand(srcDir, dstPrefix string) ([]models.FileEntry, error) {
	kind, err := DetectEntryKind(srcDir)
	if err != nil {
		return nil, models.NewError(models.ErrFilesystemAccess, srcDir, err)
	}

	root := srcDir
	if kind == KindSymlink {
		if root, err = ResolveSymlink(srcDir); err != nil {
			return nil, wrapFS(srcDir, err)
		}
		logrus.Debugf("Resolved symlink %s -> %s", srcDir, root)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, models.NewError(models.ErrFilesystemAccess, root, err)
	}
	if !info.IsDir() {
		return nil, models.NewError(models.ErrFilesystemAccess, srcDir, fmt.Errorf("not a directory"))
	}

	entries, err := s.expandDir(root, toPackagePath(dstPrefix), []os.FileInfo{info})
	if err != nil {
		return nil, err
	}

	logrus.Debugf("Expanded %s into %d files under %s", srcDir, len(entries), dstPrefix)
	return entries, nil
}

// expandDir returns the entries below dir. ancestors holds the directories on
// the current path and guards against symlink loops.
func (s *DirectoryScanner) expandDir(dir, dst string, ancestors []os.FileInfo) ([]models.FileEntry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, models.NewError(models.ErrFilesystemAccess, dir, fmt.Errorf("failed to read directory: %w", err))
	}

	var files []models.FileEntry
	for _, de := range dirEntries {
		source := filepath.Join(dir, de.Name())
		destination := path.Join(dst, de.Name())

		kind := kindOf(de.Type())
		if kind == KindSymlink {
			resolved, err := ResolveSymlink(source)
			if err != nil {
				return nil, wrapFS(source, err)
			}
			logrus.Debugf("Resolved symlink %s -> %s", source, resolved)
			source = resolved
		}

		info, err := os.Stat(source)
		if err != nil {
			return nil, models.NewError(models.ErrFilesystemAccess, source, err)
		}

		switch kindOf(info.Mode()) {
		case KindDirectory:
			for _, a := range ancestors {
				if os.SameFile(a, info) {
					return nil, models.NewError(models.ErrFilesystemAccess, source,
						fmt.Errorf("symlink loop detected at %s", filepath.Join(dir, de.Name())))
				}
			}
			sub, err := s.expandDir(source, destination, append(ancestors[:len(ancestors):len(ancestors)], info))
			if err != nil {
				return nil, err
			}
			files = append(files, sub...)
		case KindRegular:
			if !hasFileName(source) {
				return nil, models.NewError(models.ErrMissingFileName, source, fmt.Errorf("source has no file name"))
			}
			files = append(files, models.FileEntry{
				Source:      source,
				Destination: destination,
				Role:        models.RolePlain,
			})
		default:
			logrus.Warnf("Skipping %s: unsupported file type %s", source, info.Mode().Type())
		}
	}

	return files, nil
}

func wrapFS(path string, err error) error {
	if _, ok := err.(*models.BuildError); ok {
		return err
	}
	return models.NewError(models.ErrFilesystemAccess, path, err)
}

// toPackagePath normalizes a destination into an absolute, slash separated path
func toPackagePath(p string) string {
	return path.Clean("/" + filepath.ToSlash(p))
}
