package assembler

import (
	"fmt"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ralt/rpm-builder/internal/models"
	"github.com/ralt/rpm-builder/internal/parser"
	"github.com/ralt/rpm-builder/internal/scanner"
	"github.com/ralt/rpm-builder/internal/scriptlet"
	"github.com/ralt/rpm-builder/internal/signer"
	"github.com/ralt/rpm-builder/internal/utils"
	"github.com/sirupsen/logrus"
)

// SignerLoader turns a key path and passphrase into a usable signer
type SignerLoader func(keyPath, passphrase string) (signer.Signer, error)

// Assembler turns a BuildConfig into a validated PackageSpec
type Assembler struct {
	scanner    scanner.Scanner
	args       models.ArgNames
	loadSigner SignerLoader
}

// Option configures an Assembler
type Option func(*Assembler)

// WithScanner replaces the directory scanner used for --dir arguments
func WithScanner(s scanner.Scanner) Option {
	return func(a *Assembler) {
		a.scanner = s
	}
}

// WithArgNames sets the flag names errors are labelled with
func WithArgNames(args models.ArgNames) Option {
	return func(a *Assembler) {
		a.args = args
	}
}

// WithSignerLoader replaces the signing credential loader
func WithSignerLoader(l SignerLoader) Option {
	return func(a *Assembler) {
		a.loadSigner = l
	}
}

// New creates an Assembler backed by the local filesystem
func New(opts ...Option) *Assembler {
	a := &Assembler{
		scanner: scanner.NewDirectoryScanner(),
		args:    models.DefaultArgNames(),
		loadSigner: func(keyPath, passphrase string) (signer.Signer, error) {
			return signer.NewGPGSigner(keyPath, passphrase)
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble validates config and accumulates it into a PackageSpec. Inputs are
// processed in a fixed order and the first failure aborts the assembly. The
// returned signer is nil when no signing credential was given.
func (a *Assembler) Assemble(config *models.BuildConfig) (*models.PackageSpec, signer.Signer, error) {
	spec := models.NewPackageSpec()
	m := newManifest(spec)

	steps := []struct {
		name string
		run  func() error
	}{
		{"metadata", func() error { return a.addMetadata(spec, config) }},
		{"files", func() error { return a.addFiles(m, a.args.File, config.Files, models.RolePlain) }},
		{"release", func() error { return a.addReleaseEpoch(spec, config) }},
		{"executable files", func() error { return a.addFiles(m, a.args.ExecFile, config.ExecFiles, models.RoleExecutable) }},
		{"config files", func() error { return a.addFiles(m, a.args.ConfigFile, config.ConfigFiles, models.RoleConfig) }},
		{"directories", func() error { return a.addDirs(m, config.Dirs) }},
		{"doc files", func() error { return a.addFiles(m, a.args.DocFile, config.DocFiles, models.RoleDoc) }},
		{"scriptlets", func() error { return a.addScriptlets(spec, config) }},
		{"changelog", func() error { return a.addChangelog(spec, config.Changelog) }},
		{"requires", func() error { return a.addRelationships(&spec.Requires, a.args.Requires, config.Requires) }},
		{"obsoletes", func() error { return a.addRelationships(&spec.Obsoletes, a.args.Obsoletes, config.Obsoletes) }},
		{"conflicts", func() error { return a.addRelationships(&spec.Conflicts, a.args.Conflicts, config.Conflicts) }},
		{"provides", func() error { return a.addRelationships(&spec.Provides, a.args.Provides, config.Provides) }},
	}

	for _, step := range steps {
		logrus.Debugf("Assembling %s", step.name)
		if err := step.run(); err != nil {
			return nil, nil, err
		}
	}

	s, err := a.addSigningCredential(spec, config)
	if err != nil {
		return nil, nil, err
	}

	logrus.Infof("Assembled %s: %d files, %d requires, %d provides, %d changelog entries",
		spec.NEVRA(), len(spec.Files), len(spec.Requires), len(spec.Provides), len(spec.Changelog))
	return spec, s, nil
}

func (a *Assembler) addMetadata(spec *models.PackageSpec, config *models.BuildConfig) error {
	compression, err := models.ParseCompression(config.Compression)
	if err != nil {
		return models.WithCategory(err, a.args.Compression, models.ErrUnrecognizedCompressionMode, config.Compression)
	}
	spec.Compression = compression

	if err := parser.ValidateName(config.Name); err != nil {
		return &models.BuildError{Type: models.ErrInvalidMetadata, Category: a.args.Name, Input: config.Name, Err: err}
	}

	required := []struct {
		category string
		value    string
	}{
		{a.args.Version, config.Version},
		{a.args.License, config.License},
		{a.args.Arch, config.Arch},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &models.BuildError{Type: models.ErrInvalidMetadata, Category: r.category, Err: fmt.Errorf("value must not be empty")}
		}
	}
	if strings.ContainsAny(config.Version, "- \t") {
		return &models.BuildError{Type: models.ErrInvalidMetadata, Category: a.args.Version, Input: config.Version,
			Err: fmt.Errorf("version must not contain '-' or whitespace")}
	}

	spec.Name = config.Name
	spec.Version = config.Version
	spec.License = config.License
	spec.Arch = config.Arch
	spec.Description = config.Description
	return nil
}

func (a *Assembler) addReleaseEpoch(spec *models.PackageSpec, config *models.BuildConfig) error {
	release, err := strconv.ParseUint(strings.TrimSpace(config.Release), 10, 32)
	if err != nil {
		return &models.BuildError{Type: models.ErrInvalidMetadata, Category: a.args.Release, Input: config.Release,
			Err: fmt.Errorf("release must be an unsigned 32 bit integer: %w", err)}
	}

	epoch, err := strconv.ParseInt(strings.TrimSpace(config.Epoch), 10, 32)
	if err != nil {
		return &models.BuildError{Type: models.ErrInvalidMetadata, Category: a.args.Epoch, Input: config.Epoch,
			Err: fmt.Errorf("epoch must be a 32 bit integer: %w", err)}
	}

	spec.Release = uint32(release)
	spec.Epoch = int32(epoch)
	return nil
}

func (a *Assembler) addFiles(m *manifest, category string, raws []string, role models.FileRole) error {
	for _, raw := range raws {
		fs, err := parser.ParseFileSpec(raw)
		if err != nil {
			return models.WithCategory(err, category, models.ErrMalformedFileSpec, raw)
		}

		if err := utils.CheckReadable(fs.Source); err != nil {
			return &models.BuildError{Type: models.ErrFilesystemAccess, Category: category, Input: raw, Err: err}
		}

		entry := models.FileEntry{
			Source:      fs.Source,
			Destination: fs.Destination,
			Role:        role,
		}
		if err := m.add(entry); err != nil {
			return models.WithCategory(err, category, models.ErrDuplicateDestination, raw)
		}
	}
	return nil
}

func (a *Assembler) addDirs(m *manifest, raws []string) error {
	for _, raw := range raws {
		fs, err := parser.ParseFileSpec(raw)
		if err != nil {
			return models.WithCategory(err, a.args.Dir, models.ErrMalformedFileSpec, raw)
		}

		entries, err := a.scanner.Expand(fs.Source, fs.Destination)
		if err != nil {
			return models.WithCategory(err, a.args.Dir, models.ErrFilesystemAccess, raw)
		}

		for _, entry := range entries {
			if err := m.add(entry); err != nil {
				return models.WithCategory(err, a.args.Dir, models.ErrDuplicateDestination, raw)
			}
		}
		logrus.Infof("Added directory %s with %d files", fs.Source, len(entries))
	}
	return nil
}

func (a *Assembler) addScriptlets(spec *models.PackageSpec, config *models.BuildConfig) error {
	for _, kind := range models.ScriptletKinds {
		p := config.ScriptletPath(kind)
		if p == "" {
			continue
		}
		s, err := scriptlet.Load(kind, p)
		if err != nil {
			return models.WithCategory(err, a.args.Scriptlet(kind), models.ErrScriptletRead, p)
		}
		spec.Scriptlets[kind] = s
	}
	return nil
}

func (a *Assembler) addChangelog(spec *models.PackageSpec, raws []string) error {
	for _, raw := range raws {
		entry, err := parser.ParseChangelogEntry(raw)
		if err != nil {
			return models.WithCategory(err, a.args.Changelog, models.ErrMalformedChangelogEntry, raw)
		}
		spec.Changelog = append(spec.Changelog, entry)
	}
	return nil
}

func (a *Assembler) addRelationships(dst *[]models.Dependency, category string, raws []string) error {
	for _, raw := range raws {
		dep, err := parser.ParseRelationship(raw)
		if err != nil {
			return models.WithCategory(err, category, models.ErrMalformedRelationship, raw)
		}
		*dst = append(*dst, dep)
	}
	return nil
}

func (a *Assembler) addSigningCredential(spec *models.PackageSpec, config *models.BuildConfig) (signer.Signer, error) {
	if config.SigningKeyPath == "" {
		return nil, nil
	}

	s, err := a.loadSigner(config.SigningKeyPath, config.SigningPassphrase)
	if err != nil {
		return nil, &models.BuildError{Type: models.ErrSigningCredential, Category: a.args.SignWithPGPAsc,
			Input: config.SigningKeyPath, Err: err}
	}

	spec.SigningKeyPath = config.SigningKeyPath
	logrus.Infof("Loaded signing key %s", s.KeyID())
	return s, nil
}

// manifest tracks destinations while files are appended to a spec
type manifest struct {
	spec *models.PackageSpec
	seen map[string]struct{}
}

func newManifest(spec *models.PackageSpec) *manifest {
	return &manifest{spec: spec, seen: make(map[string]struct{})}
}

// add places entry in the spec, rejecting a destination that is already taken
func (m *manifest) add(entry models.FileEntry) error {
	entry.Destination = path.Clean("/" + filepath.ToSlash(entry.Destination))
	if _, ok := m.seen[entry.Destination]; ok {
		return models.NewError(models.ErrDuplicateDestination, entry.Destination,
			fmt.Errorf("destination %s is already used", entry.Destination))
	}

	m.seen[entry.Destination] = struct{}{}
	m.spec.Files = append(m.spec.Files, entry)
	logrus.Debugf("Added %s file %s -> %s", entry.Role, entry.Source, entry.Destination)
	return nil
}
