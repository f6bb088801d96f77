// Package commands implements the go-settings command line: inspection of the
// resolved settings, the shared secret and the synthesized connection descriptors.
package commands

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/gaborage/go-settings/app"
	"github.com/gaborage/go-settings/config"
	"github.com/gaborage/go-settings/logger"
)

// RootOptions holds the flags shared by every command.
type RootOptions struct {
	ConfigPath string
	EnvFile    string
	LogLevel   string
	TestMode   bool
	SkipRedis  bool
	Version    string

	app *app.App
}

// NewRootCommand creates the go-settings command tree.
func NewRootCommand(version string) *cobra.Command {
	opts := &RootOptions{Version: version}

	cmd := &cobra.Command{
		Use:   "go-settings",
		Short: "Inspect resolved settings and connection descriptors",
		Long: `Resolves settings the way the application does (settings file, else
environment, over the bundled defaults) and prints them, the shared secret
state and the database and cache descriptors as JSON.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if opts.EnvFile == "" {
				return nil
			}
			if err := godotenv.Load(opts.EnvFile); err != nil {
				return fmt.Errorf("failed to load env file %s: %w", opts.EnvFile, err)
			}
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if opts.app == nil {
				return nil
			}
			return opts.app.Close()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "Settings file (default $APP_CONFIG_PATH or "+config.DefaultPath+")")
	flags.StringVar(&opts.EnvFile, "env-file", "", "Load environment variables from a .env file first")
	flags.StringVar(&opts.LogLevel, "log-level", "warn", "Log level for diagnostics written to stderr")
	flags.BoolVar(&opts.TestMode, "test", false, "Ignore every settings source and use the defaults only")
	flags.BoolVar(&opts.SkipRedis, "skip-redis", false, "Do not contact the coordination store")

	cmd.AddCommand(
		NewGetCommand(opts),
		NewKeysCommand(opts),
		NewSecretCommand(opts),
		NewDatabaseCommand(opts),
		NewRedisCommand(opts),
	)

	return cmd
}

// App builds the configuration context on first use.
func (o *RootOptions) App(cmd *cobra.Command) (*app.App, error) {
	if o.app != nil {
		return o.app, nil
	}

	var configOpts []config.Option
	if o.ConfigPath != "" {
		configOpts = append(configOpts, config.WithPath(o.ConfigPath))
	}

	a, err := app.New(&app.Options{
		ConfigOptions: configOpts,
		Logger:        logger.NewWithWriter(o.LogLevel, cmd.ErrOrStderr()),
		TestMode:      o.TestMode,
		SkipRedis:     o.SkipRedis,
		Version:       o.Version,
	})
	if err != nil {
		return nil, err
	}
	o.app = a
	return a, nil
}
