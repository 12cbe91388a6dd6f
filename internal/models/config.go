package models

// BuildConfig contains the tokenized command line input for one package build
type BuildConfig struct {
	// Metadata
	Name        string
	Version     string
	Release     string // Parsed into an unsigned 32 bit integer
	Epoch       string // Parsed into a signed 32 bit integer
	License     string
	Arch        string
	Description string

	// Files, each entry is <source>:<destination>
	Files       []string
	ExecFiles   []string
	ConfigFiles []string
	DocFiles    []string
	Dirs        []string

	// Changelog entries of the form <author>:<content>:<yyyy-mm-dd>
	Changelog []string

	// Relationships of the form <name> [<comparator> <version>]
	Requires  []string
	Obsoletes []string
	Conflicts []string
	Provides  []string

	// Scriptlet paths, empty when the hook is not used
	PreInstallScript    string
	PostInstallScript   string
	PreUninstallScript  string
	PostUninstallScript string

	Compression string

	// Signing
	SigningKeyPath    string
	SigningPassphrase string

	// Output path, defaults to ./<name>.rpm
	OutputPath string
}

// ScriptletPath returns the configured path for a hook kind
func (c *BuildConfig) ScriptletPath(kind ScriptletKind) string {
	switch kind {
	case PreInstall:
		return c.PreInstallScript
	case PostInstall:
		return c.PostInstallScript
	case PreUninstall:
		return c.PreUninstallScript
	case PostUninstall:
		return c.PostUninstallScript
	}
	return ""
}

// ArgNames holds the flag identifiers used to label errors with the argument
// category they came from. The CLI registers its flags under the same names.
type ArgNames struct {
	Name                string
	Out                 string
	Version             string
	Epoch               string
	Release             string
	License             string
	Arch                string
	Desc                string
	File                string
	ExecFile            string
	ConfigFile          string
	DocFile             string
	Dir                 string
	Compression         string
	Changelog           string
	Requires            string
	Obsoletes           string
	Conflicts           string
	Provides            string
	PreInstallScript    string
	PostInstallScript   string
	PreUninstallScript  string
	PostUninstallScript string
	SignWithPGPAsc      string
	PGPPassphrase       string
}

// DefaultArgNames returns the flag names of the rpm-builder command line
func DefaultArgNames() ArgNames {
	return ArgNames{
		Name:                "NAME",
		Out:                 "out",
		Version:             "version",
		Epoch:               "epoch",
		Release:             "release",
		License:             "license",
		Arch:                "arch",
		Desc:                "desc",
		File:                "file",
		ExecFile:            "exec-file",
		ConfigFile:          "config-file",
		DocFile:             "doc-file",
		Dir:                 "dir",
		Compression:         "compression",
		Changelog:           "changelog",
		Requires:            "requires",
		Obsoletes:           "obsoletes",
		Conflicts:           "conflicts",
		Provides:            "provides",
		PreInstallScript:    "pre-install-script",
		PostInstallScript:   "post-install-script",
		PreUninstallScript:  "pre-uninstall-script",
		PostUninstallScript: "post-uninstall-script",
		SignWithPGPAsc:      "sign-with-pgp-asc",
		PGPPassphrase:       "pgp-passphrase",
	}
}

// Scriptlet returns the flag name for a hook kind
func (a ArgNames) Scriptlet(kind ScriptletKind) string {
	switch kind {
	case PreInstall:
		return a.PreInstallScript
	case PostInstall:
		return a.PostInstallScript
	case PreUninstall:
		return a.PreUninstallScript
	case PostUninstall:
		return a.PostUninstallScript
	}
	return ""
}
