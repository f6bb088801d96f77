package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gaborage/go-settings/descriptor"
)

// DescribeOptions holds options for the database and redis commands
type DescribeOptions struct {
	Reveal     bool
	Validate   bool
	Ping       bool
	MessageBus bool
	Variables  []string
}

// NewDatabaseCommand creates the database command
func NewDatabaseCommand(root *RootOptions) *cobra.Command {
	opts := &DescribeOptions{}

	cmd := &cobra.Command{
		Use:   "database",
		Short: "Print the database descriptor",
		Example: `  # Descriptor with an extra session variable
  go-settings database --var application_name=worker

  # Check that the database answers
  go-settings database --ping`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := root.App(cmd)
			if err != nil {
				return err
			}
			overrides, err := parseVariables(opts.Variables)
			if err != nil {
				return err
			}

			desc := a.DatabaseConfig(overrides)
			if opts.Validate {
				if err := descriptor.Validate(desc); err != nil {
					return err
				}
			}
			if opts.Ping {
				conn, err := a.OpenDatabase(overrides)
				if err != nil {
					return err
				}
				defer conn.Close()
				if err := conn.Health(cmd.Context()); err != nil {
					return err
				}
			}
			return writeJSON(cmd.OutOrStdout(), redact("database", desc, opts.Reveal))
		},
	}

	addDescribeFlags(cmd, opts)
	cmd.Flags().StringArrayVar(&opts.Variables, "var", nil, "Session variable override as name=value (repeatable)")
	return cmd
}

// NewRedisCommand creates the redis command
func NewRedisCommand(root *RootOptions) *cobra.Command {
	opts := &DescribeOptions{}

	cmd := &cobra.Command{
		Use:   "redis",
		Short: "Print the cache descriptor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := root.App(cmd)
			if err != nil {
				return err
			}

			desc := a.RedisConfig(cmd.Context())
			if opts.MessageBus {
				desc = a.MessageBusRedisConfig(cmd.Context())
			}
			if opts.Validate {
				if err := descriptor.Validate(desc); err != nil {
					return err
				}
			}
			if opts.Ping {
				if err := a.StoreHealth(cmd.Context()); err != nil {
					return err
				}
			}
			return writeJSON(cmd.OutOrStdout(), redact("redis", desc, opts.Reveal))
		},
	}

	addDescribeFlags(cmd, opts)
	cmd.Flags().BoolVar(&opts.MessageBus, "message-bus", false, "Describe the message bus instead of the main cache")
	return cmd
}

func addDescribeFlags(cmd *cobra.Command, opts *DescribeOptions) {
	cmd.Flags().BoolVar(&opts.Reveal, "reveal", false, "Print credentials instead of masking them")
	cmd.Flags().BoolVar(&opts.Validate, "validate", false, "Fail when the descriptor is invalid")
	cmd.Flags().BoolVar(&opts.Ping, "ping", false, "Connect and check health before printing")
}

func parseVariables(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	vars := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --var %q: want name=value", pair)
		}
		vars[name] = value
	}
	return vars, nil
}
