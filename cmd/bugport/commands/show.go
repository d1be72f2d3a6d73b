// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-03-10
// Last Modified: 2026-03-14

package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/similigh/bugport/internal/core/migrate"
	"github.com/similigh/bugport/internal/integrations/bugzilla"
)

var showBugID int

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a Bugzilla bug and the issue it would become",
	Long: `Fetch a single bug from the configured Bugzilla instance and print
both its raw fields and the GitHub issue that importing it would produce.
Useful for checking the label and state derivation before a real run.`,
	Run: func(cmd *cobra.Command, args []string) {
		runShow()
	},
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().IntVar(&showBugID, "bug", 0, "Bug id to show (required)")

	if err := showCmd.MarkFlagRequired("bug"); err != nil {
		fmt.Printf("Warning: Failed to mark bug flag as required: %v\n", err)
	}
}

func runShow() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("❌ Error loading config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Bugzilla.URL == "" {
		fmt.Println("❌ Bugzilla URL not set (config bugzilla.url or BUGZILLA_URL)")
		os.Exit(1)
	}
	if showBugID < 1 {
		fmt.Println("❌ --bug must be a positive id")
		os.Exit(1)
	}

	ctx := context.Background()
	source := bugzilla.NewClient(cfg.Bugzilla.URL, cfg.Bugzilla.APIKey)

	records, err := source.GetRecordRange(ctx, showBugID, 1)
	if err != nil {
		fmt.Printf("❌ Error fetching bug %d: %v\n", showBugID, err)
		os.Exit(1)
	}
	if len(records) == 0 {
		fmt.Printf("Bug %d does not exist\n", showBugID)
		os.Exit(1)
	}
	rec := records[0]

	deriver := migrate.NewDeriver(cfg.Bugzilla.URL, cfg.Import.ExtraLabels,
		cfg.Import.ClosingStatuses, cfg.Import.ClosingResolutions)
	desired := deriver.Derive(rec)

	fmt.Printf("Bug %d  %s\n", rec.ID, deriver.BugURL(rec.ID))
	fmt.Printf("  summary:    %s\n", rec.Title)
	fmt.Printf("  product:    %s\n", rec.Product)
	fmt.Printf("  component:  %s\n", rec.Component)
	fmt.Printf("  status:     %s\n", rec.Status)
	if rec.Resolution != "" {
		fmt.Printf("  resolution: %s\n", rec.Resolution)
	}

	fmt.Printf("\nWould become issue #%d\n", rec.ID)
	fmt.Printf("  title:  %s\n", desired.Title)
	fmt.Printf("  body:   %s\n", desired.Body)
	fmt.Printf("  labels: %s\n", strings.Join(desired.Labels, ", "))
	fmt.Printf("  state:  %s\n", desired.State)
}
