// Package cmd is for command line interactions with the motifq workbench
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/strucbio/motifq/config"
	"github.com/strucbio/motifq/internal/motifq"
	"github.com/strucbio/motifq/internal/selection"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "motifq",
	Short: "Track picked residues and build structural motif search queries",
	Long: `motifq tracks residues picked in a molecular viewer, keeps per-pick
residue exchange sets, and compiles the picks into validated structural
motif search queries.

The viewer exports picks to a selection document; motifq reads it, stores
per-pick state in a local database, and submits queries to the search
service as URLs.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.motifq/config.yaml)")
	rootCmd.PersistentFlags().String("selection", "", "path to the selection document exported by the viewer")
	rootCmd.PersistentFlags().String("db", "", "path to the workbench database")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log at debug level")

	viper.BindPFlag("selection", rootCmd.PersistentFlags().Lookup("selection"))
	viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in the config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".motifq"))
		}
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("MOTIFQ")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// A missing config file is fine; flags and defaults cover everything.
	viper.ReadInConfig()
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// openWorkbench loads configuration, opens the workbench database, restores
// pick state, and reconciles it against the current selection document. The
// returned cleanup closes the database.
func openWorkbench(ctx context.Context) (*motifq.Workbench, config.Config, func(), error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, config.Config{}, nil, err
	}

	logger := newLogger(cfg.Verbose)
	slog.SetDefault(logger)

	db, err := motifq.OpenDatabase(ctx, cfg.DB)
	if err != nil {
		return nil, config.Config{}, nil, err
	}

	history := selection.NewFileHistory(cfg.Selection)
	w := motifq.NewWorkbench(db, history, workbenchOptions(cfg), logger)

	if err := w.LoadState(ctx); err != nil {
		db.Close()
		return nil, config.Config{}, nil, err
	}
	if _, err := w.SyncPicks(ctx); err != nil {
		db.Close()
		return nil, config.Config{}, nil, fmt.Errorf("sync picks: %w", err)
	}

	return w, cfg, func() { db.Close() }, nil
}

func workbenchOptions(cfg config.Config) motifq.Options {
	opts := motifq.Options{
		SearchBaseURL: cfg.Search.BaseURL,
		ReturnType:    cfg.Search.ReturnType,
		HTTPTimeout:   cfg.Search.Timeout,
		Meilisearch: motifq.MeilisearchConfig{
			Host:   cfg.Meilisearch.Host,
			APIKey: cfg.Meilisearch.APIKey,
			Index:  cfg.Meilisearch.Index,
		},
	}
	if cfg.ShellTarget.Command != "" {
		opts.ShellTarget = &motifq.ShellTargetConfig{Command: cfg.ShellTarget.Command}
	}
	return opts
}
