package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yichend/billsync/internal/app"
	"github.com/yichend/billsync/internal/config"
	"github.com/yichend/billsync/internal/syncer"
)

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
)

func Execute(migrations fs.FS) {
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " ERROR ",
		Style: pterm.NewStyle(pterm.BgLightRed, pterm.FgBlack),
	}

	if err := initConfig(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	logger := newLogger()

	application, cleanup, err := app.NewApp(cfg, migrations, logger)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	defer cleanup()

	rootCmd := &cobra.Command{
		Use:           "billsync",
		Short:         "billsync is an offline-first personal finance tracker",
		Long:          `billsync records income and expense transactions, keeps them in a local cache and syncs them with the backend whenever connectivity allows.`,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "set the config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(NewAddCmd(application))
	rootCmd.AddCommand(NewListCmd(application))
	rootCmd.AddCommand(NewEditCmd(application))
	rootCmd.AddCommand(NewDeleteCmd(application))
	rootCmd.AddCommand(NewSyncCmd(application))
	rootCmd.AddCommand(NewReportCmd(application))
	rootCmd.AddCommand(NewExportCmd(application))
	rootCmd.AddCommand(NewImportCmd(application))
	rootCmd.AddCommand(NewClearCmd(application))

	rootCmd.SilenceErrors = true
	if err := rootCmd.Execute(); err != nil {
		errMsg := err.Error()
		displayMsg := capitalize(errMsg)

		pterm.Error.Println(displayMsg)
		os.Exit(1)
	}
}

// loadItems brings the engine up from the best available source before
// a read command runs, mapping the unauthenticated state to a hint.
func loadItems(ctx context.Context, a *app.App, forceNetwork bool) error {
	err := a.Engine.Load(ctx, forceNetwork)
	if errors.Is(err, syncer.ErrLoginRequired) {
		return fmt.Errorf("no stored credential, log in and place the token at the configured token path")
	}
	return err
}

func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	for _, arg := range os.Args[1:] {
		if arg == "-v" || arg == "--verbose" {
			level = zerolog.DebugLevel
		}
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		appDir, err := getAppDataDir()
		if err != nil {
			return fmt.Errorf("error getting app dir: %w", err)
		}

		viper.AddConfigPath(appDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	if err := createDefaultConfig(); err != nil {
		return fmt.Errorf("failed to ensure config file: %w", err)
	}

	viper.SetEnvPrefix("BILLSYNC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // allow using environment variables to override

	if err := viper.ReadInConfig(); err != nil {

		if cfgFile != "" {
			return fmt.Errorf("failed to read config file: %w", err)
		}

		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return fmt.Errorf("config file error: %w", err)
		}
	}

	cfg = config.NewDefault()
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode into struct, %v", err)
	}

	cfg.ConfigPath = viper.ConfigFileUsed()

	return nil
}

func getAppDataDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("unable to determine user home directory: %w", err)
		}
		return filepath.Join(home, ".billsync"), nil
	}

	return filepath.Join(configDir, "billsync"), nil
}

func createDefaultConfig() error {
	appDir, err := getAppDataDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(appDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(appDir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		return nil
	}

	viper.SetDefault("database.path", "")
	viper.SetDefault("api.base_url", config.NewDefault().API.BaseURL)
	viper.SetDefault("api.timeout_seconds", config.NewDefault().API.TimeoutSeconds)

	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func capitalize(s string) string {
	if len(s) == 0 {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
