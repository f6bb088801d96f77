package commands

import (
	"github.com/spf13/cobra"

	"github.com/gaborage/go-settings/logger"
	"github.com/gaborage/go-settings/secret"
)

type secretOutput struct {
	State         string `json:"state"`
	Valid         bool   `json:"valid"`
	SecretKeyBase string `json:"secret_key_base"`
}

// NewSecretCommand creates the secret command
func NewSecretCommand(root *RootOptions) *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Acquire the application secret",
		Long: `Acquires the application secret exactly as a server process would:
from configuration when valid, else from the coordination store, seeding it
when empty. The secret itself is masked unless --reveal is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := root.App(cmd)
			if err != nil {
				return err
			}
			value := a.SecretKeyBase(cmd.Context())
			out := secretOutput{
				State:         a.SecretState().String(),
				Valid:         secret.Valid(value),
				SecretKeyBase: logger.DefaultMaskValue,
			}
			if reveal {
				out.SecretKeyBase = value
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "Print the secret")
	return cmd
}
