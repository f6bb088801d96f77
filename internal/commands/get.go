package commands

import (
	"github.com/spf13/cobra"

	"github.com/gaborage/go-settings/config"
)

type settingOutput struct {
	Key     string `json:"key"`
	Kind    string `json:"kind"`
	Value   any    `json:"value"`
	Present bool   `json:"present"`
}

// NewGetCommand creates the get command
func NewGetCommand(root *RootOptions) *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "get KEY",
		Short: "Resolve one setting",
		Example: `  go-settings get db_pool
  go-settings get db_password --reveal`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := root.App(cmd)
			if err != nil {
				return err
			}
			key := config.NormalizeKey(args[0])
			v := a.Settings().Get(key)
			out := settingOutput{
				Key:     key,
				Kind:    v.Kind().String(),
				Value:   redact(key, v.Interface(), reveal),
				Present: v.Present(),
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "Print credentials instead of masking them")
	return cmd
}

// NewKeysCommand creates the keys command
func NewKeysCommand(root *RootOptions) *cobra.Command {
	var providerOnly bool

	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List every known setting key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := root.App(cmd)
			if err != nil {
				return err
			}
			keys := a.Settings().Keys()
			if providerOnly {
				keys = a.Settings().ProviderKeys()
			}
			if keys == nil {
				keys = []string{}
			}
			return writeJSON(cmd.OutOrStdout(), keys)
		},
	}

	cmd.Flags().BoolVar(&providerOnly, "provider", false, "List only keys the active source defines")
	return cmd
}
