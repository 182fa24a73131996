package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/replicate/mget/pkg/optname"
)

// DefaultShutdownGrace bounds how long an interrupted run waits for in-flight fetches.
const DefaultShutdownGrace = 5 * time.Second

func AddRootPersistentFlags(cmd *cobra.Command) error {
	cmd.PersistentFlags().StringP(optname.Directory, "d", "./", "Download files into `DIRECTORY` instead of the current directory")
	cmd.PersistentFlags().BoolP(optname.Verbose, "v", false, "Verbose mode (equivalent to --log-level debug)")
	cmd.PersistentFlags().String(optname.LoggingLevel, "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().Duration(optname.ShutdownGrace, DefaultShutdownGrace, "How long to wait for in-flight downloads after an interrupt")

	viper.SetEnvPrefix("MGET")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.BindPFlags(cmd.PersistentFlags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	// Hide flags from help, these are intended for debugging only
	for _, flag := range []string{optname.ShutdownGrace} {
		if err := cmd.PersistentFlags().MarkHidden(flag); err != nil {
			return fmt.Errorf("failed to hide flag %s: %w", flag, err)
		}
	}
	return nil
}

func PersistentStartupProcessFlags() error {
	if viper.GetBool(optname.Verbose) {
		viper.Set(optname.LoggingLevel, "debug")
	}
	setLogLevel(viper.GetString(optname.LoggingLevel))
	if grace := viper.GetDuration(optname.ShutdownGrace); grace < 0 {
		return fmt.Errorf("invalid %s %s: must not be negative", optname.ShutdownGrace, grace)
	}
	return nil
}

func setLogLevel(logLevel string) {
	switch logLevel {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
