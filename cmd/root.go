// Package cmd provides the entrypoint for the netbox-catalyst-bridge cli.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/isometry/netbox-catalyst-bridge/internal/config"
	"github.com/isometry/netbox-catalyst-bridge/internal/helpers"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	defaultConfigFile = "config.yaml"
	configFileEnv     = "BRIDGE_CONFIG"
)

var (
	configFilePath string
	logger         *slog.Logger
)

type boundEnvVar[T argType] struct {
	Name, Description string
	Env, Short        *string
	Hidden            bool
}

// New returns the root command for the netbox-catalyst-bridge.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "netbox-catalyst-bridge",
		Short:         "Apply NetBox interface description changes to Catalyst Center",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger = helpers.NewLogger(os.Stdout, config.Global.Logging.Verbosity, config.Global.Logging.CallerTrace)
			if sub := cmd.Name(); sub == "service" {
				config.Global.Mode = config.ModeService
			} else if sub == "http" {
				config.Global.Mode = config.ModeLambdaHTTP
			}
			if err := config.Normalise(); err != nil {
				logger.Error("invalid configuration", slog.Any("error", err))
				return err
			}
			logger = logger.With("mode", config.Global.Mode)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch config.Global.Mode {
			case config.ModeService:
				return runService(cmd)
			case config.ModeLambdaHTTP:
				return runLambdaHTTP(cmd)
			default:
				return fmt.Errorf("invalid mode: %s", config.Global.Mode)
			}
		},
	}

	// Root command flags
	cmd.PersistentFlags().StringVarP(&configFilePath, "config", "c", defaultConfigFile, "path to the configuration file")

	// Configuration loading & defaults. The file must be read before the flags are bound since its values become the flag defaults.
	if err := errors.Join(
		config.LoadFromFile(configPath(os.Args[1:])),
		config.SetDefaults(),
	); err != nil {
		panic(err)
	}

	// Dynamic flags
	setupDynamicFlags(cmd)

	// Subcommands
	cmd.AddCommand(
		cmdLambda(),
		cmdService(),
	)

	return cmd
}

func setupDynamicFlags(cmd *cobra.Command) {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(replacer)

	bindEnvMap(cmd, envMapString)
	bindEnvMap(cmd, envMapBool)
	bindEnvMap(cmd, envMapCount)
	bindEnvMap(cmd, envMapDuration)
}

// configPath finds the configuration file ahead of flag parsing: -c/--config, then BRIDGE_CONFIG, then config.yaml.
func configPath(args []string) string {
	for i, arg := range args {
		switch {
		case arg == "-c" || arg == "--config":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(arg, "--config="):
			return strings.TrimPrefix(arg, "--config=")
		case strings.HasPrefix(arg, "-c="):
			return strings.TrimPrefix(arg, "-c=")
		}
	}
	if v, ok := os.LookupEnv(configFileEnv); ok {
		return v
	}
	return defaultConfigFile
}
