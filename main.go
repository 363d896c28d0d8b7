package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"github.com/Zachkp/netfield/internal/config"
	"github.com/Zachkp/netfield/internal/content"
	"github.com/Zachkp/netfield/internal/logger"
	"github.com/Zachkp/netfield/internal/server"
)

var (
	configPath string
	envFile    string

	good = color.New(color.FgGreen)
	bad  = color.New(color.FgRed)
)

var rootCmd = &cobra.Command{
	Use:           "netfield",
	Short:         "Portfolio site with a live network backdrop",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			return config.LoadEnvFile(envFile)
		}
		return nil
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site (default)",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML config file (default $NETFIELD_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "extra .env file to load")
	rootCmd.AddCommand(serveCmd, renderCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		bad.Fprintf(os.Stderr, "netfield: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads configuration and brings up the logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := logger.Initialize(cfg.Log.JSON, cfg.Log.Level); err != nil {
		return nil, errors.Wrap(err, "init logger")
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Cleanup()
	log := logger.Component("server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := content.Open(ctx, cfg.Content.DSN)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Seed(ctx, portfolio); err != nil {
		return err
	}

	srv, err := server.New(cfg, store, log)
	if err != nil {
		return err
	}

	good.Printf("netfield listening on :%s\n", cfg.Server.Port)
	return srv.Run(ctx)
}
