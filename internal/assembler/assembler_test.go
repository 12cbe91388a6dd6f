package assembler

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ralt/rpm-builder/internal/models"
	"github.com/ralt/rpm-builder/internal/signer"
	"github.com/ralt/rpm-builder/internal/signer/signertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func baseConfig() *models.BuildConfig {
	return &models.BuildConfig{
		Name:        "demo",
		Version:     "1.0.0",
		Release:     "1",
		Epoch:       "0",
		License:     "MIT",
		Arch:        "x86_64",
		Compression: "gzip",
	}
}

func requireBuildError(t *testing.T, err error, typ models.ErrorType, category string) *models.BuildError {
	t.Helper()
	require.Error(t, err)
	var be *models.BuildError
	require.True(t, errors.As(err, &be), "not a BuildError: %v", err)
	assert.Equal(t, typ, be.Type, "got %v", err)
	assert.Equal(t, category, be.Category, "got %v", err)
	return be
}

func TestAssembleDemo(t *testing.T) {
	dir := t.TempDir()
	bin := writeFile(t, dir, "demo", "#!/bin/sh\n")
	conf := writeFile(t, dir, "demo.conf", "a=b\n")
	doc := writeFile(t, dir, "README", "doc\n")
	writeFile(t, dir, "share/data.txt", "data\n")
	writeFile(t, dir, "share/nested/more.txt", "more\n")
	pre := writeFile(t, dir, "pre.sh", "echo pre\n")

	config := baseConfig()
	config.Release = "3"
	config.Epoch = "2"
	config.Description = "demo package"
	config.ExecFiles = []string{bin + ":/usr/bin/demo"}
	config.ConfigFiles = []string{conf + ":/etc/demo.conf"}
	config.DocFiles = []string{doc + ":/usr/share/doc/demo/README"}
	config.Dirs = []string{filepath.Join(dir, "share") + ":/usr/share/demo"}
	config.PreInstallScript = pre
	config.Changelog = []string{"jane:fixed bug:2024-01-15"}
	config.Requires = []string{"libfoo >= 1.2", "bash"}
	config.Provides = []string{"demo-api = 1"}

	spec, s, err := New().Assemble(config)
	require.NoError(t, err)
	assert.Nil(t, s)

	assert.Equal(t, "demo", spec.Name)
	assert.Equal(t, uint32(3), spec.Release)
	assert.Equal(t, int32(2), spec.Epoch)
	assert.Equal(t, models.CompressionGzip, spec.Compression)
	assert.False(t, spec.IsSigned())

	destinations := make(map[string]models.FileRole)
	for _, f := range spec.Files {
		destinations[f.Destination] = f.Role
	}
	assert.Equal(t, map[string]models.FileRole{
		"/usr/bin/demo":                   models.RoleExecutable,
		"/etc/demo.conf":                  models.RoleConfig,
		"/usr/share/doc/demo/README":      models.RoleDoc,
		"/usr/share/demo/data.txt":        models.RolePlain,
		"/usr/share/demo/nested/more.txt": models.RolePlain,
	}, destinations)

	// Executables precede config files, directories and docs
	assert.Equal(t, "/usr/bin/demo", spec.Files[0].Destination)
	assert.Equal(t, "/usr/share/doc/demo/README", spec.Files[len(spec.Files)-1].Destination)

	require.Len(t, spec.Requires, 2)
	assert.Equal(t, "libfoo >= 1.2", spec.Requires[0].String())
	assert.False(t, spec.Requires[1].IsConstrained())
	require.Len(t, spec.Provides, 1)
	assert.Equal(t, "demo-api = 1", spec.Provides[0].String())

	require.Len(t, spec.Changelog, 1)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC).Unix(), spec.Changelog[0].Time)

	require.NotNil(t, spec.Scriptlet(models.PreInstall))
	assert.Equal(t, "echo pre\n", spec.Scriptlet(models.PreInstall).Content)
	assert.Nil(t, spec.Scriptlet(models.PostUninstall))
}

func TestAssembleDuplicateDestination(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "a")
	b := writeFile(t, dir, "b.txt", "b")

	config := baseConfig()
	config.Files = []string{a + ":/usr/bin/x", b + ":/usr/bin/x"}

	_, _, err := New().Assemble(config)
	be := requireBuildError(t, err, models.ErrDuplicateDestination, "file")
	assert.Equal(t, "/usr/bin/x", be.Input)
}

func TestAssembleDuplicateAcrossCategories(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "a")
	writeFile(t, dir, "tree/x", "x")

	config := baseConfig()
	config.ExecFiles = []string{a + ":/opt/demo/x"}
	config.Dirs = []string{filepath.Join(dir, "tree") + ":/opt/demo/"}

	_, _, err := New().Assemble(config)
	requireBuildError(t, err, models.ErrDuplicateDestination, "dir")
}

func TestAssembleErrorCategories(t *testing.T) {
	dir := t.TempDir()
	existing := writeFile(t, dir, "a.txt", "a")

	var cases = []struct {
		name     string
		mutate   func(c *models.BuildConfig)
		typ      models.ErrorType
		category string
	}{
		{"compression", func(c *models.BuildConfig) { c.Compression = "bzip2" }, models.ErrUnrecognizedCompressionMode, "compression"},
		{"name", func(c *models.BuildConfig) { c.Name = "bad name" }, models.ErrInvalidMetadata, "NAME"},
		{"version", func(c *models.BuildConfig) { c.Version = "1.0-1" }, models.ErrInvalidMetadata, "version"},
		{"release overflow", func(c *models.BuildConfig) { c.Release = "4294967296" }, models.ErrInvalidMetadata, "release"},
		{"negative release", func(c *models.BuildConfig) { c.Release = "-1" }, models.ErrInvalidMetadata, "release"},
		{"epoch", func(c *models.BuildConfig) { c.Epoch = "x" }, models.ErrInvalidMetadata, "epoch"},
		{"file spec", func(c *models.BuildConfig) { c.Files = []string{"nodest"} }, models.ErrMalformedFileSpec, "file"},
		{"missing file", func(c *models.BuildConfig) { c.ExecFiles = []string{filepath.Join(dir, "nope") + ":/usr/bin/nope"} }, models.ErrFilesystemAccess, "exec-file"},
		{"missing dir", func(c *models.BuildConfig) { c.Dirs = []string{filepath.Join(dir, "nope") + ":/opt"} }, models.ErrFilesystemAccess, "dir"},
		{"scriptlet", func(c *models.BuildConfig) { c.PostUninstallScript = filepath.Join(dir, "missing.sh") }, models.ErrScriptletRead, "post-uninstall-script"},
		{"changelog", func(c *models.BuildConfig) { c.Changelog = []string{"jane:fixed:15-01-2024"} }, models.ErrInvalidChangelogDate, "changelog"},
		{"requires", func(c *models.BuildConfig) { c.Requires = []string{"libfoo >="} }, models.ErrMalformedRelationship, "requires"},
		{"provides", func(c *models.BuildConfig) { c.Provides = []string{"bad name"} }, models.ErrMalformedRelationship, "provides"},
		{"credential", func(c *models.BuildConfig) { c.SigningKeyPath = existing }, models.ErrSigningCredential, "sign-with-pgp-asc"},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			config := baseConfig()
			tt.mutate(config)
			_, _, err := New().Assemble(config)
			requireBuildError(t, err, tt.typ, tt.category)
		})
	}
}

func TestAssembleFirstErrorWins(t *testing.T) {
	config := baseConfig()
	config.Files = []string{"nodest"}
	config.Release = "x"
	config.Requires = []string{">= 1"}

	_, _, err := New().Assemble(config)
	requireBuildError(t, err, models.ErrMalformedFileSpec, "file")

	config.Files = nil
	_, _, err = New().Assemble(config)
	requireBuildError(t, err, models.ErrInvalidMetadata, "release")
}

func TestAssembleSigningCredential(t *testing.T) {
	key := signertest.GenerateKey(t)
	keyPath := signertest.WriteFile(t, t.TempDir(), "key.asc", key.Private)

	config := baseConfig()
	config.SigningKeyPath = keyPath

	spec, s, err := New().Assemble(config)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.True(t, spec.IsSigned())
	assert.Equal(t, key.Entity.PrimaryKey.KeyIdString(), s.KeyID())
}

func TestAssembleCredentialCheckedLast(t *testing.T) {
	called := false
	loader := func(keyPath, passphrase string) (signer.Signer, error) {
		called = true
		return nil, errors.New("bad key")
	}

	config := baseConfig()
	config.SigningKeyPath = "/nonexistent.asc"
	config.Requires = []string{"libfoo >"}

	_, _, err := New(WithSignerLoader(loader)).Assemble(config)
	requireBuildError(t, err, models.ErrMalformedRelationship, "requires")
	assert.False(t, called)

	config.Requires = nil
	_, _, err = New(WithSignerLoader(loader)).Assemble(config)
	requireBuildError(t, err, models.ErrSigningCredential, "sign-with-pgp-asc")
	assert.True(t, called)
}

func TestAssembleCustomArgNames(t *testing.T) {
	args := models.DefaultArgNames()
	args.Requires = "depends"

	config := baseConfig()
	config.Requires = []string{"!"}

	_, _, err := New(WithArgNames(args)).Assemble(config)
	requireBuildError(t, err, models.ErrMalformedRelationship, "depends")
}
