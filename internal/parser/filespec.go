package parser

import (
	"fmt"
	"strings"

	"github.com/ralt/rpm-builder/internal/models"
)

// ParseFileSpec splits a <source>:<destination> argument.
// Filesystem existence is not checked here.
func ParseFileSpec(raw string) (models.FileSpec, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 2 {
		return models.FileSpec{}, models.NewError(models.ErrMalformedFileSpec, raw,
			fmt.Errorf("expected exactly one ':' separator, it needs to be of the form <source-path>:<dest-path>"))
	}
	if parts[0] == "" || parts[1] == "" {
		return models.FileSpec{}, models.NewError(models.ErrMalformedFileSpec, raw,
			fmt.Errorf("source and destination must not be empty"))
	}

	return models.FileSpec{
		Source:      parts[0],
		Destination: parts[1],
	}, nil
}
