package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ralt/rpm-builder/internal/assembler"
	"github.com/ralt/rpm-builder/internal/builder/rpm"
	"github.com/ralt/rpm-builder/internal/models"
	"github.com/ralt/rpm-builder/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// NewBuildCmd creates the build command
func NewBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build NAME",
		Short: "Build an RPM package",
		Long: `Builds an RPM package from files, directories, scriptlets, changelog
entries and relationships given on the command line.

File arguments take the form <source>:<destination>, changelog entries
<author>:<content>:<yyyy-mm-dd> and relationships <name> [<op> <version>].`,
		Args: cobra.MaximumNArgs(1),
		RunE: runBuildCmd,
	}
	addBuildFlags(cmd.Flags(), models.DefaultArgNames())
	return cmd
}

func runBuildCmd(cmd *cobra.Command, args []string) error {
	names := models.DefaultArgNames()
	config, err := loadBuildConfig(cmd.Flags(), args, names)
	if err != nil {
		return err
	}

	if err := validateConfig(config); err != nil {
		return err
	}

	logrus.Infof("Starting build of %s...", config.Name)
	logrus.Debugf("Configuration: %+v", redact(*config))

	return runBuild(cmd.Context(), config, names)
}

// addBuildFlags registers the build inputs under the names errors are labelled with
func addBuildFlags(flags *pflag.FlagSet, names models.ArgNames) {
	// Output
	flags.StringP(names.Out, "o", "", "Output file (defaults to ./<name>.rpm)")

	// Metadata
	flags.String(names.Version, "1.0.0", "Package version")
	flags.String(names.Epoch, "0", "Package epoch")
	flags.String(names.Release, "1", "Package release")
	flags.String(names.License, "MIT", "Package license")
	flags.String(names.Arch, "x86_64", "Target architecture")
	flags.String(names.Desc, "", "Package description")

	// Payload
	flags.StringArray(names.File, nil, "Add a file <source>:<destination>")
	flags.StringArray(names.ExecFile, nil, "Add an executable file <source>:<destination>")
	flags.StringArray(names.ConfigFile, nil, "Add a configuration file <source>:<destination>")
	flags.StringArray(names.DocFile, nil, "Add a documentation file <source>:<destination>")
	flags.StringArray(names.Dir, nil, "Add a directory tree <source>:<destination>")
	flags.String(names.Compression, "none", "Payload compression ("+strings.Join(models.SupportedCompressions, ", ")+")")

	// Changelog and relationships
	flags.StringArray(names.Changelog, nil, "Add a changelog entry <author>:<content>:<yyyy-mm-dd>")
	flags.StringArray(names.Requires, nil, "Add a requirement <name> [<op> <version>]")
	flags.StringArray(names.Obsoletes, nil, "Add an obsoleted package <name> [<op> <version>]")
	flags.StringArray(names.Conflicts, nil, "Add a conflicting package <name> [<op> <version>]")
	flags.StringArray(names.Provides, nil, "Add a provided capability <name> [<op> <version>]")

	// Scriptlets
	for _, kind := range models.ScriptletKinds {
		flags.String(names.Scriptlet(kind), "", "Path to the "+kind.String()+" script")
	}

	// Signing
	flags.String(names.SignWithPGPAsc, "", "Sign the package with this PGP secret key")
	flags.String(names.PGPPassphrase, "", "Passphrase of the PGP secret key")
}

func validateConfig(config *models.BuildConfig) error {
	if config.Name == "" {
		return &models.BuildError{
			Type:     models.ErrInvalidMetadata,
			Category: models.DefaultArgNames().Name,
			Err:      fmt.Errorf("package name is required"),
		}
	}
	return nil
}

func runBuild(ctx context.Context, config *models.BuildConfig, names models.ArgNames) error {
	// Step 1: Validate and assemble all inputs before anything is written
	spec, s, err := assembler.New(assembler.WithArgNames(names)).Assemble(config)
	if err != nil {
		return err
	}

	// Step 2: Encode the package
	b := rpm.NewBuilder()
	out := utils.OutputPath(config)
	logrus.Infof("Writing %s", out)

	err = utils.WriteFileAtomic(out, 0644, func(w io.Writer) error {
		if s != nil {
			return b.BuildAndSign(ctx, spec, s, w)
		}
		return b.Build(ctx, spec, w)
	})
	if err != nil {
		return models.WithCategory(err, names.Out, models.ErrBuild, out)
	}

	// Step 3: Report the artifact
	digest, err := utils.DigestFile(out)
	if err != nil {
		return models.NewError(models.ErrFilesystemAccess, out, err)
	}

	logrus.Info("Package build completed successfully!")
	logrus.Infof("Package: %s (%s)", spec.NEVRA(), utils.PackageFileName(spec))
	logrus.Infof("Output: %s (%d bytes, sha256 %s)", out, digest.Size, digest.SHA256)
	return nil
}

// redact hides the key passphrase from debug output
func redact(config models.BuildConfig) models.BuildConfig {
	if config.SigningPassphrase != "" {
		config.SigningPassphrase = "***"
	}
	return config
}
