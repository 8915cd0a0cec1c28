package main

import (
	"fmt"
	"os"
	"path/filepath"

	"remotejobs-crawler/internal/config"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	dataDir       string
	defaultConfig string
	crawlersFile  string
}

func newRootCmd() *cobra.Command {
	var f rootFlags
	cmd := &cobra.Command{
		Use:          "crawlerd",
		Short:        "Crawl, score and dedup remote job postings for Brazil/LATAM candidates",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadDotEnv(".env", filepath.Join(f.resolveDataDir(), ".env"))
		},
	}

	cmd.PersistentFlags().StringVar(&f.dataDir, "data-dir", "", "data directory (default $CRAWLER_DATA_DIR or .)")
	cmd.PersistentFlags().StringVar(&f.defaultConfig, "default-config", filepath.Join("config", "config.yml"),
		"config copied into the data dir on first start")
	cmd.PersistentFlags().StringVar(&f.crawlersFile, "crawlers", "",
		"crawler list overriding the config (default <data-dir>/crawlers.yml)")

	cmd.AddCommand(
		newServeCmd(&f),
		newRunCmd(&f),
		newStatsCmd(&f),
		newScoreCmd(),
	)
	return cmd
}

func (f *rootFlags) resolveDataDir() string {
	if f.dataDir != "" {
		return f.dataDir
	}
	if v := os.Getenv("CRAWLER_DATA_DIR"); v != "" {
		return v
	}
	return "."
}

// loadConfig bootstraps the user config and applies the crawler overlay and env overrides.
func (f *rootFlags) loadConfig() (config.Config, string, error) {
	dataDir := f.resolveDataDir()
	userPath, err := config.EnsureUserConfig(dataDir, f.defaultConfig)
	if err != nil {
		return config.Config{}, "", fmt.Errorf("config bootstrap: %w", err)
	}

	cfg, err := config.Load(userPath)
	if err != nil {
		return cfg, userPath, fmt.Errorf("config load (%s): %w", userPath, err)
	}

	overlay := f.crawlersFile
	if overlay == "" {
		overlay = filepath.Join(dataDir, "crawlers.yml")
	}
	if err := config.OverlayCrawlers(&cfg, overlay); err != nil {
		return cfg, userPath, err
	}

	config.ApplyEnv(&cfg)
	if cfg.App.DataDir == "" || cfg.App.DataDir == "." {
		cfg.App.DataDir = dataDir
	}
	if err := config.Validate(cfg); err != nil {
		return cfg, userPath, err
	}
	return cfg, userPath, nil
}
