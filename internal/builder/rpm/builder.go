package rpm

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/rpmpack"
	"github.com/ralt/rpm-builder/internal/builder"
	"github.com/ralt/rpm-builder/internal/models"
	"github.com/ralt/rpm-builder/internal/signer"
	"github.com/ralt/rpm-builder/internal/utils"
	"github.com/sirupsen/logrus"
)

// Builder implements the builder.Builder interface for RPM packages
type Builder struct {
	now func() time.Time
}

// NewBuilder creates a new RPM builder
func NewBuilder() builder.Builder {
	return &Builder{
		now: time.Now,
	}
}

// Build writes an unsigned RPM for spec to w
func (b *Builder) Build(ctx context.Context, spec *models.PackageSpec, w io.Writer) error {
	return b.build(ctx, spec, nil, w)
}

// BuildAndSign writes an RPM for spec to w with header and payload signatures
func (b *Builder) BuildAndSign(ctx context.Context, spec *models.PackageSpec, s signer.Signer, w io.Writer) error {
	if s == nil {
		return models.NewError(models.ErrSigningCredential, spec.SigningKeyPath, fmt.Errorf("no signer provided"))
	}
	return b.build(ctx, spec, s, w)
}

func (b *Builder) build(ctx context.Context, spec *models.PackageSpec, s signer.Signer, w io.Writer) error {
	if err := b.ValidateSpec(spec); err != nil {
		return err
	}

	logrus.Infof("Building %s (compression: %s)", spec.NEVRA(), spec.Compression)

	r, err := b.newRPM(ctx, spec)
	if err != nil {
		return err
	}

	if s != nil {
		logrus.Infof("Signing %s with key %s", spec.Name, s.KeyID())
		r.SetPGPSigner(s.SignDetached)
	}

	if err := r.Write(w); err != nil {
		return models.NewError(models.ErrBuild, spec.Name, fmt.Errorf("failed to write rpm: %w", err))
	}
	return nil
}

// ValidateSpec checks that spec can be encoded as an RPM
func (b *Builder) ValidateSpec(spec *models.PackageSpec) error {
	if spec.Name == "" {
		return models.NewError(models.ErrBuild, "", fmt.Errorf("package missing name"))
	}
	if spec.Epoch < 0 {
		return models.NewError(models.ErrBuild, spec.Name, fmt.Errorf("negative epoch %d cannot be encoded", spec.Epoch))
	}
	if dups := utils.DetectDuplicateDestinations(spec.Files); len(dups) > 0 {
		return models.NewError(models.ErrDuplicateDestination, dups[0],
			fmt.Errorf("destination %s is used by more than one file", dups[0]))
	}
	return nil
}

// Format returns the package format this builder produces
func (b *Builder) Format() string {
	return "rpm"
}

func (b *Builder) newRPM(ctx context.Context, spec *models.PackageSpec) (*rpmpack.RPM, error) {
	meta := rpmpack.RPMMetaData{
		Name:        spec.Name,
		Summary:     summary(spec.Description),
		Description: spec.Description,
		Version:     spec.Version,
		Release:     strconv.FormatUint(uint64(spec.Release), 10),
		Epoch:       uint32(spec.Epoch),
		Arch:        spec.Arch,
		OS:          "linux",
		Licence:     spec.License,
		Compressor:  compressor(spec.Compression),
		BuildTime:   b.now(),
	}

	var err error
	relations := []struct {
		dst  *rpmpack.Relations
		deps []models.Dependency
	}{
		{&meta.Requires, spec.Requires},
		{&meta.Provides, spec.Provides},
		{&meta.Conflicts, spec.Conflicts},
		{&meta.Obsoletes, spec.Obsoletes},
	}
	for _, rel := range relations {
		if *rel.dst, err = toRelations(rel.deps); err != nil {
			return nil, models.NewError(models.ErrBuild, spec.Name, err)
		}
	}

	r, err := rpmpack.NewRPM(meta)
	if err != nil {
		return nil, models.NewError(models.ErrBuild, spec.Name, fmt.Errorf("failed to create rpm: %w", err))
	}

	for _, f := range spec.Files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		file, err := toRPMFile(f)
		if err != nil {
			return nil, err
		}
		r.AddFile(file)
	}

	for _, kind := range models.ScriptletKinds {
		s := spec.Scriptlet(kind)
		if s == nil {
			continue
		}
		switch kind {
		case models.PreInstall:
			r.AddPrein(s.Content)
		case models.PostInstall:
			r.AddPostin(s.Content)
		case models.PreUninstall:
			r.AddPreun(s.Content)
		case models.PostUninstall:
			r.AddPostun(s.Content)
		}
	}

	addChangelog(r, spec.Changelog)
	return r, nil
}

// compressor maps the compression selection to an rpmpack compressor setting.
// No compression is a gzip stream at level 0 (stored blocks).
func compressor(c models.Compression) string {
	switch c {
	case models.CompressionGzip:
		return "gzip"
	case models.CompressionZstd:
		return "zstd"
	default:
		return "gzip:0"
	}
}

// summary returns the first line of the description
func summary(description string) string {
	line, _, _ := strings.Cut(description, "\n")
	return strings.TrimSpace(line)
}

func toRelations(deps []models.Dependency) (rpmpack.Relations, error) {
	relations := make(rpmpack.Relations, 0, len(deps))
	for _, dep := range deps {
		if err := relations.Set(dep.String()); err != nil {
			return nil, fmt.Errorf("invalid relationship %q: %w", dep, err)
		}
	}
	return relations, nil
}

func toRPMFile(f models.FileEntry) (rpmpack.RPMFile, error) {
	info, err := os.Stat(f.Source)
	if err != nil {
		return rpmpack.RPMFile{}, models.NewError(models.ErrFilesystemAccess, f.Source, err)
	}
	body, err := os.ReadFile(f.Source)
	if err != nil {
		return rpmpack.RPMFile{}, models.NewError(models.ErrFilesystemAccess, f.Source, err)
	}

	return rpmpack.RPMFile{
		Name:  f.Destination,
		Body:  body,
		Mode:  uint(regularFileType | f.EffectiveMode()),
		Owner: "root",
		Group: "root",
		MTime: uint32(info.ModTime().Unix()),
		Type:  fileType(f.Role),
	}, nil
}

func fileType(role models.FileRole) rpmpack.FileType {
	switch role {
	case models.RoleConfig:
		return rpmpack.ConfigFile
	case models.RoleDoc:
		return rpmpack.DocFile
	default:
		return rpmpack.GenericFile
	}
}

// addChangelog stores entries in input order
func addChangelog(r *rpmpack.RPM, entries []models.ChangelogEntry) {
	if len(entries) == 0 {
		return
	}

	times := make([]int32, 0, len(entries))
	names := make([]string, 0, len(entries))
	texts := make([]string, 0, len(entries))
	for _, e := range entries {
		// rpm reads the tag back as uint32
		times = append(times, int32(uint32(e.Time)))
		names = append(names, e.Author)
		texts = append(texts, e.Content)
	}

	r.AddCustomTag(tagChangelogTime, rpmpack.EntryInt32(times))
	r.AddCustomTag(tagChangelogName, rpmpack.EntryStringSlice(names))
	r.AddCustomTag(tagChangelogText, rpmpack.EntryStringSlice(texts))
}
