// tick is the command-line client for the todo service.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Tomlord1122/tick/internal/client"
	"github.com/Tomlord1122/tick/internal/logger"
)

var (
	cfgFile  string
	logLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tick",
	Short: "Command-line client for the tick todo service",
	Long: `tick lists, creates, edits and toggles todos on a tick server.

Settings come from flags, TICK_* environment variables or
~/.config/tick/config.yaml, in that order of precedence.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.Init(logger.Options{Level: logLevel, Format: "console", Writer: os.Stderr})
		return loadConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.config/tick/config.yaml)")
	rootCmd.PersistentFlags().String("api-url", "http://localhost:8080", "base URL of the tick server")
	rootCmd.PersistentFlags().Duration("timeout", 10*time.Second, "per-request timeout")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	_ = viper.BindPFlag("api_url", rootCmd.PersistentFlags().Lookup("api-url"))
	_ = viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))

	rootCmd.AddCommand(listCmd, getCmd, createCmd, updateCmd, toggleCmd, deleteCmd, autocompleteCmd)
}

func loadConfig() error {
	viper.SetEnvPrefix("tick")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		viper.AddConfigPath(filepath.Join(home, ".config", "tick"))
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	logger.Named("config").Debug().Str("file", viper.ConfigFileUsed()).Msg("config loaded")
	return nil
}

// newClient builds the API client from the resolved settings.
func newClient() *client.Client {
	return client.New(viper.GetString("api_url"), nil)
}

// commandContext bounds one command with the configured timeout.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	timeout := viper.GetDuration("timeout")
	if timeout <= 0 {
		return context.WithCancel(cmd.Context())
	}
	return context.WithTimeout(cmd.Context(), timeout)
}
