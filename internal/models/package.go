package models

import (
	"fmt"
	"os"
)

// FileRole classifies how a file is flagged inside the package
type FileRole int

const (
	RolePlain FileRole = iota
	RoleExecutable
	RoleConfig
	RoleDoc
)

// String returns the string representation of FileRole
func (r FileRole) String() string {
	switch r {
	case RolePlain:
		return "plain"
	case RoleExecutable:
		return "executable"
	case RoleConfig:
		return "config"
	case RoleDoc:
		return "doc"
	default:
		return "unknown"
	}
}

const (
	DefaultFileMode       os.FileMode = 0644
	DefaultExecutableMode os.FileMode = 0755
)

// FileSpec is a parsed source:destination pair
type FileSpec struct {
	Source      string
	Destination string
}

// FileEntry is one file placed in the package
type FileEntry struct {
	Source      string
	Destination string
	Role        FileRole
	// Mode overrides the role's default permission bits when non-zero
	Mode os.FileMode
}

// EffectiveMode returns the permission bits the file is packaged with
func (f FileEntry) EffectiveMode() os.FileMode {
	if f.Mode != 0 {
		return f.Mode.Perm()
	}
	if f.Role == RoleExecutable {
		return DefaultExecutableMode
	}
	return DefaultFileMode
}

// ChangelogEntry is one changelog record. Time is unix seconds at UTC midnight.
type ChangelogEntry struct {
	Author  string
	Content string
	Time    int64
}

// ScriptletKind identifies a lifecycle hook
type ScriptletKind int

const (
	PreInstall ScriptletKind = iota
	PostInstall
	PreUninstall
	PostUninstall
)

// ScriptletKinds lists the hooks in assembly order
var ScriptletKinds = []ScriptletKind{PreInstall, PostInstall, PreUninstall, PostUninstall}

// String returns the string representation of ScriptletKind
func (k ScriptletKind) String() string {
	switch k {
	case PreInstall:
		return "pre-install"
	case PostInstall:
		return "post-install"
	case PreUninstall:
		return "pre-uninstall"
	case PostUninstall:
		return "post-uninstall"
	default:
		return "unknown"
	}
}

// Scriptlet is the content of a lifecycle hook script, read once at assembly time
type Scriptlet struct {
	Kind    ScriptletKind
	Path    string
	Content string
}

// PackageSpec is the fully assembled build request handed to a builder
type PackageSpec struct {
	Name        string
	Version     string
	Release     uint32
	Epoch       int32
	License     string
	Arch        string
	Description string
	Compression Compression

	Files []FileEntry

	Requires  []Dependency
	Provides  []Dependency
	Conflicts []Dependency
	Obsoletes []Dependency

	Changelog  []ChangelogEntry
	Scriptlets map[ScriptletKind]*Scriptlet

	// SigningKeyPath is empty for unsigned packages
	SigningKeyPath string
}

// NewPackageSpec creates an empty spec with its collections initialized
func NewPackageSpec() *PackageSpec {
	return &PackageSpec{
		Scriptlets: make(map[ScriptletKind]*Scriptlet),
	}
}

// Scriptlet returns the hook of the given kind, or nil
func (p *PackageSpec) Scriptlet(kind ScriptletKind) *Scriptlet {
	if p.Scriptlets == nil {
		return nil
	}
	return p.Scriptlets[kind]
}

// EVR returns the [epoch:]version-release string
func (p *PackageSpec) EVR() string {
	if p.Epoch != 0 {
		return fmt.Sprintf("%d:%s-%d", p.Epoch, p.Version, p.Release)
	}
	return fmt.Sprintf("%s-%d", p.Version, p.Release)
}

// NEVRA returns name-[epoch:]version-release.arch
func (p *PackageSpec) NEVRA() string {
	return fmt.Sprintf("%s-%s.%s", p.Name, p.EVR(), p.Arch)
}

// IsSigned reports whether a signing credential was supplied
func (p *PackageSpec) IsSigned() bool {
	return p.SigningKeyPath != ""
}
