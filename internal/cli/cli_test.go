package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/ralt/rpm-builder/internal/builder/rpm"
	"github.com/ralt/rpm-builder/internal/models"
	"github.com/ralt/rpm-builder/internal/signer/signertest"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	return path
}

func TestBuildDemoPackage(t *testing.T) {
	dir := t.TempDir()
	bin := writeFixture(t, dir, "demo", "#!/bin/sh\necho demo\n")
	writeFixture(t, dir, "share/a.txt", "a\n")
	post := writeFixture(t, dir, "post.sh", "echo installed\n")
	out := filepath.Join(dir, "dist", "demo.rpm")

	_, err := execute(t, "demo",
		"--out", out,
		"--version", "2.1.0",
		"--release", "3",
		"--compression", "zstd",
		"--exec-file", bin+":/usr/bin/demo",
		"--dir", filepath.Join(dir, "share")+":/usr/share/demo",
		"--post-install-script", post,
		"--requires", "libfoo >= 1.2",
		"--requires", "bash",
		"--changelog", "jane:fixed bug, and another:2024-01-15",
	)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	pkg, err := rpm.ReadPackage(out)
	if err != nil {
		t.Fatalf("ReadPackage failed: %v", err)
	}
	if pkg.Name != "demo" || pkg.Version != "2.1.0" || pkg.Release != "3" {
		t.Errorf("Unexpected package identity %s-%s-%s", pkg.Name, pkg.Version, pkg.Release)
	}
	if pkg.License != "MIT" || pkg.Arch != "x86_64" {
		t.Errorf("Expected default license and arch, got %s %s", pkg.License, pkg.Arch)
	}
	if pkg.Compression != "zstd" {
		t.Errorf("Expected zstd payload, got %s", pkg.Compression)
	}
	if len(pkg.Requires) < 2 {
		t.Errorf("Expected requires to be recorded, got %v", pkg.Requires)
	}
	if len(pkg.Changelog) != 1 || pkg.Changelog[0].Text != "fixed bug, and another" {
		t.Errorf("Changelog text with comma not preserved: %+v", pkg.Changelog)
	}
	if pkg.Scriptlets["post-install"] != "echo installed\n" {
		t.Errorf("Unexpected post-install script %q", pkg.Scriptlets["post-install"])
	}
	if len(pkg.Files) != 2 {
		t.Errorf("Expected 2 payload files, got %d", len(pkg.Files))
	}

	output, err := execute(t, "inspect", out)
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	for _, want := range []string{"Name:        demo", "/usr/bin/demo", "/usr/share/demo/a.txt", "Changelog: 2024-01-15 jane"} {
		if !strings.Contains(output, want) {
			t.Errorf("inspect output missing %q:\n%s", want, output)
		}
	}
}

func TestBuildSubcommandDefaultOutput(t *testing.T) {
	dir := t.TempDir()
	file := writeFixture(t, dir, "a.txt", "a")

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	if _, err := execute(t, "build", "plain", "--file", file+":/opt/a.txt"); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "plain.rpm")); err != nil {
		t.Errorf("Expected ./plain.rpm: %v", err)
	}
}

func TestBuildFailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	a := writeFixture(t, dir, "a.txt", "a")
	b := writeFixture(t, dir, "b.txt", "b")
	out := filepath.Join(dir, "dup.rpm")

	_, err := execute(t, "dup", "--out", out,
		"--file", a+":/usr/bin/x",
		"--file", b+":/usr/bin/x",
	)
	if !models.IsType(err, models.ErrDuplicateDestination) {
		t.Fatalf("Expected duplicate destination error, got %v", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Errorf("Expected no output file, stat returned %v", statErr)
	}
	if !strings.Contains(err.Error(), "--file") {
		t.Errorf("Error should name the argument category: %v", err)
	}
}

func TestBuildRequiresName(t *testing.T) {
	_, err := execute(t)
	if !models.IsType(err, models.ErrInvalidMetadata) {
		t.Errorf("Expected invalid metadata error, got %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), "] NAME: ") {
		t.Errorf("Expected positional NAME label, got %q", err.Error())
	}

	_, err = execute(t, "bad name", "--out", filepath.Join(t.TempDir(), "x.rpm"))
	if err == nil || !strings.HasPrefix(err.Error(), `[InvalidMetadata] NAME "bad name"`) {
		t.Errorf("Expected positional NAME label, got %v", err)
	}
}

func TestBuildFromConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := writeFixture(t, dir, "a.txt", "a")
	out := filepath.Join(dir, "cfg.rpm")
	config := writeFixture(t, dir, "rpm-builder.yaml", strings.Join([]string{
		"name: cfg",
		"version: 4.0.0",
		"license: Apache-2.0",
		"out: " + out,
		"file:",
		"  - " + file + ":/opt/cfg/a.txt",
		"provides:",
		"  - cfg-api = 4",
	}, "\n")+"\n")

	if _, err := execute(t, "--config", config, "--release", "7"); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	pkg, err := rpm.ReadPackage(out)
	if err != nil {
		t.Fatalf("ReadPackage failed: %v", err)
	}
	if pkg.Name != "cfg" || pkg.Version != "4.0.0" || pkg.License != "Apache-2.0" {
		t.Errorf("Config values not applied: %s %s %s", pkg.Name, pkg.Version, pkg.License)
	}
	if pkg.Release != "7" {
		t.Errorf("Flag should override config, got release %s", pkg.Release)
	}
	if len(pkg.Files) != 1 || pkg.Files[0].Name != "/opt/cfg/a.txt" {
		t.Errorf("Unexpected payload %+v", pkg.Files)
	}
}

func TestBuildFromEnvironment(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "env.rpm")
	t.Setenv("RPM_BUILDER_ARCH", "aarch64")
	t.Setenv("RPM_BUILDER_REQUIRES", "libfoo >= 1.2\nbash")
	t.Setenv("RPM_BUILDER_CHANGELOG", "jane:fixed bug:2024-01-15")

	if _, err := execute(t, "env", "--out", out); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	pkg, err := rpm.ReadPackage(out)
	if err != nil {
		t.Fatalf("ReadPackage failed: %v", err)
	}
	if pkg.Arch != "aarch64" {
		t.Errorf("Expected arch from environment, got %s", pkg.Arch)
	}
	if !slices.Contains(pkg.Requires, "libfoo >= 1.2") || !slices.Contains(pkg.Requires, "bash") || slices.Contains(pkg.Requires, ">=") {
		t.Errorf("Expected one requirement per line, got %v", pkg.Requires)
	}
	if len(pkg.Changelog) != 1 || pkg.Changelog[0].Text != "fixed bug" {
		t.Errorf("Expected a single changelog entry, got %+v", pkg.Changelog)
	}
}

func TestSplitLines(t *testing.T) {
	got := splitLines("  libfoo >= 1.2 \n\n bash\n")
	if len(got) != 2 || got[0] != "libfoo >= 1.2" || got[1] != "bash" {
		t.Errorf("Unexpected split %q", got)
	}
	if got := splitLines(""); got != nil {
		t.Errorf("Expected nil for empty input, got %q", got)
	}
}

func TestSignAndVerify(t *testing.T) {
	dir := t.TempDir()
	key := signertest.GenerateKey(t)
	privPath := signertest.WriteFile(t, dir, "private.asc", key.Private)
	pubPath := signertest.WriteFile(t, dir, "public.asc", key.Public)
	file := writeFixture(t, dir, "a.txt", "a")
	out := filepath.Join(dir, "signed.rpm")

	if _, err := execute(t, "signed", "--out", out, "--compression", "gzip",
		"--file", file+":/opt/a.txt", "--sign-with-pgp-asc", privPath); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	output, err := execute(t, "verify", out, "--public-key", pubPath)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !strings.Contains(output, "signature OK") || !strings.Contains(output, key.Entity.PrimaryKey.KeyIdString()) {
		t.Errorf("Unexpected verify output: %s", output)
	}
}

func TestSignWithInvalidKeyWritesNothing(t *testing.T) {
	dir := t.TempDir()
	bogus := writeFixture(t, dir, "bogus.asc", "not a key")
	out := filepath.Join(dir, "bogus.rpm")

	_, err := execute(t, "bogus", "--out", out, "--sign-with-pgp-asc", bogus)
	if !models.IsType(err, models.ErrSigningCredential) {
		t.Fatalf("Expected signing credential error, got %v", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Errorf("Expected no output file, stat returned %v", statErr)
	}
}

func TestVerifyUnsigned(t *testing.T) {
	dir := t.TempDir()
	key := signertest.GenerateKey(t)
	pubPath := signertest.WriteFile(t, dir, "public.asc", key.Public)
	out := filepath.Join(dir, "unsigned.rpm")

	if _, err := execute(t, "unsigned", "--out", out); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	_, err := execute(t, "verify", out, "--public-key", pubPath)
	if !models.IsType(err, models.ErrVerify) {
		t.Errorf("Expected verify error, got %v", err)
	}

	_, err = execute(t, "verify", out)
	if !models.IsType(err, models.ErrVerify) {
		t.Errorf("Expected verify error without a key, got %v", err)
	}
}

func TestExportKeyVerifies(t *testing.T) {
	dir := t.TempDir()
	key := signertest.GenerateKey(t)
	privPath := signertest.WriteFile(t, dir, "private.asc", key.Private)
	out := filepath.Join(dir, "exported.rpm")

	exported, err := execute(t, "export-key", privPath)
	if err != nil {
		t.Fatalf("export-key failed: %v", err)
	}
	if !strings.HasPrefix(exported, "-----BEGIN PGP PUBLIC KEY BLOCK-----") {
		t.Fatalf("Expected an armored public key, got %q", exported)
	}
	pubPath := writeFixture(t, dir, "exported.asc", exported)

	if _, err := execute(t, "exported", "--out", out, "--sign-with-pgp-asc", privPath); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if _, err := execute(t, "verify", out, "--public-key", pubPath); err != nil {
		t.Errorf("verify with exported key failed: %v", err)
	}
}
