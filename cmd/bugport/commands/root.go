// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-03-04
// Last Modified: 2026-03-11

// Package commands implements the Bugport CLI.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/similigh/bugport/internal/core/config"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "bugport",
	Short: "Migrate Bugzilla bugs to GitHub issues",
	Long: `Bugport migrates bugs from a Bugzilla instance into GitHub issues,
preserving bug numbers as issue numbers. Imports are resumable and
idempotent: re-running over already-imported bugs converges their issues
to the derived state without duplicating anything.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file (default: .github/bugport.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

// loadConfig resolves the effective configuration: the config file when one
// is found, defaults otherwise, with environment variables filling in
// credentials either way.
func loadConfig() (*config.Config, error) {
	path := config.FindConfigPath(cfgFile)
	if path == "" && cfgFile != "" {
		return nil, fmt.Errorf("config file not found: %s", cfgFile)
	}

	var cfg *config.Config
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
		if verbose {
			fmt.Printf("Loaded config from %s\n", path)
		}
	} else {
		if verbose {
			fmt.Println("No configuration file found. Using defaults and environment variables.")
		}
		cfg = config.Default()
	}

	if cfg.Bugzilla.URL == "" {
		cfg.Bugzilla.URL = os.Getenv("BUGZILLA_URL")
	}
	if cfg.Bugzilla.APIKey == "" {
		cfg.Bugzilla.APIKey = os.Getenv("BUGZILLA_API_KEY")
	}
	if cfg.GitHub.Token == "" {
		cfg.GitHub.Token = os.Getenv("GITHUB_TOKEN")
	}
	if cfg.GitHub.Repo == "" {
		cfg.GitHub.Repo = os.Getenv("GITHUB_REPO")
	}

	return cfg, nil
}
