// Author: Sachindu Nethmin
// GitHub: https://github.com/sachindu-nethmin
// Created: 2026-03-08
// Last Modified: 2026-03-14

package commands

import (
	"context"
	"fmt"
	"hash/fnv"
	"os"

	"github.com/spf13/cobra"

	"github.com/similigh/bugport/internal/core/config"
	"github.com/similigh/bugport/internal/integrations/bugzilla"
	"github.com/similigh/bugport/internal/integrations/github"
)

const extraLabelColor = "ededed"

var (
	labelsList   bool
	labelsDelete bool
	labelsDryRun bool
	labelsRepo   string
	labelsToken  string
)

// labelsCmd represents the labels command
var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "Seed the target repository with product/component labels",
	Long: `Seed the target repository with one label per Bugzilla
product/component pair, plus the extra labels attached to every imported
issue. Creating labels up front means imported issues get colored labels
instead of the gray ones GitHub invents on the fly.

All components of a product share one color, derived from the product
name, so re-running the command is idempotent.`,
	Run: func(cmd *cobra.Command, args []string) {
		runLabels()
	},
}

func init() {
	rootCmd.AddCommand(labelsCmd)

	labelsCmd.Flags().BoolVar(&labelsList, "list", false, "List the repository's current labels and exit")
	labelsCmd.Flags().BoolVar(&labelsDelete, "delete", false, "Delete the derived labels instead of creating them")
	labelsCmd.Flags().BoolVar(&labelsDryRun, "dry-run", false, "Print the plan without touching GitHub")
	labelsCmd.Flags().StringVar(&labelsRepo, "repo", "", "Target repository as owner/name (overrides config)")
	labelsCmd.Flags().StringVar(&labelsToken, "token", "", "GitHub token (overrides config and GITHUB_TOKEN)")
}

func runLabels() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("❌ Error loading config: %v\n", err)
		os.Exit(1)
	}
	if labelsRepo != "" {
		cfg.GitHub.Repo = labelsRepo
	}
	if labelsToken != "" {
		cfg.GitHub.Token = labelsToken
	}

	if cfg.GitHub.Repo == "" {
		fmt.Println("❌ Target repository not set (config github.repo, GITHUB_REPO, or --repo)")
		os.Exit(1)
	}
	org, repo, err := config.SplitRepo(cfg.GitHub.Repo)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	target := github.NewClient(ctx, cfg.GitHub.Token, org, repo, cfg.Import.LockReason)

	if labelsList {
		labels, err := target.ListLabels(ctx)
		if err != nil {
			fmt.Printf("❌ Error listing labels: %v\n", err)
			os.Exit(1)
		}
		for _, l := range labels {
			fmt.Printf("#%s  %s\n", l.Color, l.Name)
		}
		fmt.Printf("%d labels\n", len(labels))
		return
	}

	if cfg.Bugzilla.URL == "" {
		fmt.Println("❌ Bugzilla URL not set (config bugzilla.url or BUGZILLA_URL)")
		os.Exit(1)
	}
	source := bugzilla.NewClient(cfg.Bugzilla.URL, cfg.Bugzilla.APIKey)

	if verbose {
		fmt.Printf("Fetching products from %s...\n", cfg.Bugzilla.URL)
	}
	products, err := source.ListProducts(ctx)
	if err != nil {
		fmt.Printf("❌ Error fetching products: %v\n", err)
		os.Exit(1)
	}

	plan := labelPlan(products, cfg.Import.ExtraLabels)
	fmt.Printf("Planned %d labels from %d products\n", len(plan), len(products))

	var failed int
	for _, l := range plan {
		switch {
		case labelsDryRun && labelsDelete:
			fmt.Printf("DRY RUN: would delete label %q\n", l.Name)
		case labelsDryRun:
			fmt.Printf("DRY RUN: would create label %q (#%s)\n", l.Name, l.Color)
		case labelsDelete:
			if err := target.DeleteLabel(ctx, l.Name); err != nil {
				fmt.Printf("❌ delete %q: %v\n", l.Name, err)
				failed++
			}
		default:
			// Already-existing labels come back as 422; keep going.
			if err := target.CreateLabel(ctx, l.Name, l.Description, l.Color); err != nil {
				if verbose {
					fmt.Printf("skipped %q: %v\n", l.Name, err)
				}
				failed++
			}
		}
	}

	if labelsDryRun {
		return
	}
	action := "created"
	if labelsDelete {
		action = "deleted"
	}
	fmt.Printf("✓ %d labels %s (%d skipped or failed)\n", len(plan)-failed, action, failed)
}

// labelPlan derives the full label set for a repository: one label per
// product/component pair plus the configured extra labels. The result is
// deterministic for a given product listing.
func labelPlan(products []bugzilla.Product, extraLabels []string) []github.Label {
	var plan []github.Label

	for _, p := range products {
		color := productColor(p.Name)
		for _, c := range p.Components {
			plan = append(plan, github.Label{
				Name:        fmt.Sprintf("%s/%s", p.Name, c.Name),
				Description: p.Description,
				Color:       color,
			})
		}
	}

	for _, name := range extraLabels {
		plan = append(plan, github.Label{
			Name:  name,
			Color: extraLabelColor,
		})
	}

	return plan
}

// productColor hashes a product name to a stable 6-digit hex color so all
// of the product's component labels match across runs.
func productColor(name string) string {
	h := fnv.New32a()
	h.Write([]byte(name))
	return fmt.Sprintf("%06x", h.Sum32()&0xffffff)
}
