package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/ralt/rpm-builder/internal/builder/rpm"
	"github.com/ralt/rpm-builder/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewVerifyCmd creates the verify command
func NewVerifyCmd() *cobra.Command {
	var publicKeyPath string

	cmd := &cobra.Command{
		Use:   "verify FILE",
		Short: "Verify the signature of an RPM package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if publicKeyPath == "" {
				return &models.BuildError{
					Type:     models.ErrVerify,
					Category: "public-key",
					Err:      fmt.Errorf("a public key is required"),
				}
			}

			key, err := os.ReadFile(publicKeyPath)
			if err != nil {
				return &models.BuildError{Type: models.ErrFilesystemAccess, Category: "public-key", Input: publicKeyPath, Err: err}
			}

			f, err := os.Open(args[0])
			if err != nil {
				return models.NewError(models.ErrFilesystemAccess, args[0], err)
			}
			defer f.Close()

			result, err := rpm.Verify(f, key)
			if err != nil {
				return models.WithCategory(err, "", models.ErrVerify, args[0])
			}

			if result.HeaderOnly {
				logrus.Warnf("%s: signature covers the header only", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s-%s-%s: signature OK (key %s)\n",
				result.Name, result.Version, result.Release, strings.Join(result.KeyIDs, ", "))
			return nil
		},
	}

	cmd.Flags().StringVarP(&publicKeyPath, "public-key", "k", "", "Path to the armored or binary PGP public key")
	return cmd
}
