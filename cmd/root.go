package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"limeal.fr/mcengine/pkg/config"
)

var (
	v      = config.New()
	cfg    *config.Config
	logger = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "mcengine",
	Short: "mcengine installs and launches minecraft versions",
	Long: `mcengine installs and launches minecraft versions.
It resolves a version from the remote catalog, downloads and verifies every
artifact into an instance directory, and starts the game with the right java runtime.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if file := v.GetString("config"); file != "" {
			v.SetConfigFile(file)
		}
		loaded, err := config.Load(v)
		if err != nil {
			return err
		}
		cfg = loaded

		level := slog.LevelInfo
		if cfg.Debug {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
		if used := v.ConfigFileUsed(); used != "" {
			logger.Debug("using config file", "path", used)
		}
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolP("debug", "d", false, "Enable debug logging")
	flags.String("config", "", "Path to a mcengine.toml config file")
	flags.String("instances-dir", "", "Directory holding named instances")
	flags.String("runtime-dir", "", "Directory holding bundled java runtimes")
	flags.Int("workers", 0, "Concurrent downloads")
	flags.String("catalog-url", "", "Version catalog url (http, https, file or sftp)")

	_ = v.BindPFlag("debug", flags.Lookup("debug"))
	_ = v.BindPFlag("config", flags.Lookup("config"))
	_ = v.BindPFlag("instances_dir", flags.Lookup("instances-dir"))
	_ = v.BindPFlag("runtime_dir", flags.Lookup("runtime-dir"))
	_ = v.BindPFlag("workers", flags.Lookup("workers"))
	_ = v.BindPFlag("catalog_url", flags.Lookup("catalog-url"))
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// Viper exposes the command line configuration, e.g. for embedding programs.
func Viper() *viper.Viper {
	return v
}
