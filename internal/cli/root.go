package cli

import (
	"github.com/ralt/rpm-builder/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command. Invoked with a package name and no
// subcommand it builds the package.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rpm-builder NAME",
		Short: "Build rpms with ease",
		Long: `rpm-builder builds RPM packages straight from the command line,
without spec files or rpmbuild.

Example:
  rpm-builder demo --exec-file target/demo:/usr/bin/demo \
    --requires "libfoo >= 1.2" --changelog "jane:fixed bug:2024-01-15"`,
		Args:          cobra.MaximumNArgs(1),
		RunE:          runBuildCmd,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().String(configFlag, "", "Read flag defaults from a YAML, TOML or JSON file")

	addBuildFlags(rootCmd.Flags(), models.DefaultArgNames())

	// Add subcommands
	rootCmd.AddCommand(NewBuildCmd())
	rootCmd.AddCommand(NewInspectCmd())
	rootCmd.AddCommand(NewVerifyCmd())
	rootCmd.AddCommand(NewExportKeyCmd())

	return rootCmd
}
