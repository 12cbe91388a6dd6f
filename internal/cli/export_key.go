package cli

import (
	"github.com/ralt/rpm-builder/internal/models"
	"github.com/ralt/rpm-builder/internal/signer"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewExportKeyCmd creates the export-key command
func NewExportKeyCmd() *cobra.Command {
	var passphrase string

	cmd := &cobra.Command{
		Use:   "export-key KEY",
		Short: "Print the armored public key of a PGP signing key",
		Long: `Prints the public half of the key passed to --sign-with-pgp-asc so it can
be distributed for verification with 'rpm --import' or 'rpm-builder verify'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := signer.NewGPGSigner(args[0], passphrase)
			if err != nil {
				return &models.BuildError{Type: models.ErrSigningCredential, Input: args[0], Err: err}
			}

			pub, err := s.GetPublicKey()
			if err != nil {
				return &models.BuildError{Type: models.ErrSigningCredential, Input: args[0], Err: err}
			}

			logrus.Debugf("Exporting public key %s", s.KeyID())
			_, err = cmd.OutOrStdout().Write(pub)
			return err
		},
	}

	cmd.Flags().StringVar(&passphrase, models.DefaultArgNames().PGPPassphrase, "", "Passphrase of the PGP secret key")
	return cmd
}
