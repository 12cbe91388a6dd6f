package builder

import (
	"context"
	"io"

	"github.com/ralt/rpm-builder/internal/models"
	"github.com/ralt/rpm-builder/internal/signer"
)

// Builder turns an assembled PackageSpec into a package artifact
type Builder interface {
	// Build writes the unsigned package to w
	Build(ctx context.Context, spec *models.PackageSpec, w io.Writer) error

	// BuildAndSign writes the package to w, signed with s
	BuildAndSign(ctx context.Context, spec *models.PackageSpec, s signer.Signer, w io.Writer) error

	// ValidateSpec checks if the spec can be encoded in this format
	ValidateSpec(spec *models.PackageSpec) error

	// Format returns the package format this builder produces
	Format() string
}
