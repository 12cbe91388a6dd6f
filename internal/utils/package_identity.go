package utils

import (
	"fmt"
	"path/filepath"

	"github.com/ralt/rpm-builder/internal/models"
)

// DefaultOutputPath returns ./<name>.rpm
func DefaultOutputPath(name string) string {
	return "./" + name + ".rpm"
}

// OutputPath returns the configured output path or the default one
func OutputPath(config *models.BuildConfig) string {
	if config.OutputPath != "" {
		return filepath.Clean(config.OutputPath)
	}
	return DefaultOutputPath(config.Name)
}

// PackageFileName returns the conventional file name name-version-release.arch.rpm
func PackageFileName(spec *models.PackageSpec) string {
	return fmt.Sprintf("%s-%s-%d.%s.rpm", spec.Name, spec.Version, spec.Release, spec.Arch)
}

// DetectDuplicateDestinations returns destinations placed more than once
func DetectDuplicateDestinations(files []models.FileEntry) []string {
	seen := make(map[string]bool)

	var duplicates []string
	for _, f := range files {
		if seen[f.Destination] {
			duplicates = append(duplicates, f.Destination)
			continue
		}
		seen[f.Destination] = true
	}
	return duplicates
}
