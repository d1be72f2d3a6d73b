// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-03-07
// Last Modified: 2026-03-14

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/similigh/bugport/internal/core/budget"
	"github.com/similigh/bugport/internal/core/config"
	"github.com/similigh/bugport/internal/core/migrate"
	"github.com/similigh/bugport/internal/integrations/bugzilla"
	"github.com/similigh/bugport/internal/integrations/github"
	"github.com/similigh/bugport/internal/tui"
)

var (
	importStartID   int
	importBatchSize int
	importDryRun    bool
	importNoLock    bool
	importRepo      string
	importToken     string
	importOutFile   string
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import Bugzilla bugs into GitHub issues",
	Long: `Import bugs from the configured Bugzilla instance into GitHub issues,
one bug at a time in ascending id order. Each bug becomes the issue with
the same number; the run aborts if the numbers ever diverge.

The import is resumable: pass --start-id with the next id printed by a
previous run to continue where it left off. Re-running over bugs that were
already imported is safe and converges their issues without duplicates.`,
	Run: func(cmd *cobra.Command, args []string) {
		runImport()
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().IntVar(&importStartID, "start-id", 0, "First bug id to import (overrides config)")
	importCmd.Flags().IntVar(&importBatchSize, "batch-size", 0, "Bugs fetched per Bugzilla request (overrides config)")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Log intended writes without touching GitHub")
	importCmd.Flags().BoolVar(&importNoLock, "no-lock", false, "Skip locking imported issues")
	importCmd.Flags().StringVar(&importRepo, "repo", "", "Target repository as owner/name (overrides config)")
	importCmd.Flags().StringVar(&importToken, "token", "", "GitHub token (overrides config and GITHUB_TOKEN)")
	importCmd.Flags().StringVar(&importOutFile, "out-file", "", "Write the run summary as JSON to this file")
}

func runImport() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("❌ Error loading config: %v\n", err)
		os.Exit(1)
	}
	applyImportOverrides(cfg)

	if cfg.Bugzilla.URL == "" {
		fmt.Println("❌ Bugzilla URL not set (config bugzilla.url or BUGZILLA_URL)")
		os.Exit(1)
	}
	if cfg.GitHub.Repo == "" {
		fmt.Println("❌ Target repository not set (config github.repo, GITHUB_REPO, or --repo)")
		os.Exit(1)
	}
	if cfg.GitHub.Token == "" && !importDryRun {
		fmt.Println("❌ GitHub token not set (config github.token, GITHUB_TOKEN, or --token)")
		os.Exit(1)
	}

	org, repo, err := config.SplitRepo(cfg.GitHub.Repo)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	source := bugzilla.NewClient(cfg.Bugzilla.URL, cfg.Bugzilla.APIKey)
	target := github.NewClient(ctx, cfg.GitHub.Token, org, repo, cfg.Import.LockReason)

	// The reserve is headroom kept unspent: the tracker sees a budget
	// already reduced by it.
	reserve := cfg.Budget.Reserve
	tracker := budget.NewTracker(func(ctx context.Context) (int, error) {
		remaining, err := target.RateRemaining(ctx)
		if err != nil {
			return 0, err
		}
		return remaining - reserve, nil
	}, budget.Options{
		FreshFor: time.Duration(cfg.Budget.FreshForSeconds) * time.Second,
		Cooldown: time.Duration(cfg.Budget.CooldownSeconds) * time.Second,
	})

	executor := migrate.NewExecutor(tracker, cfg.Import.MaxAttempts)
	deriver := migrate.NewDeriver(cfg.Bugzilla.URL, cfg.Import.ExtraLabels,
		cfg.Import.ClosingStatuses, cfg.Import.ClosingResolutions)
	reconciler := migrate.NewReconciler(target, executor, deriver,
		!cfg.Import.SkipLock, importDryRun, verbose)
	paginator := migrate.NewPaginator(source, cfg.Import.StartID, cfg.Import.BatchSize)
	importer := migrate.NewImporter(paginator, reconciler, verbose)

	// Check if running in CI/non-interactive environment
	isCI := os.Getenv("CI") == "true" || os.Getenv("GITHUB_ACTIONS") == "true"

	var summary *migrate.Summary
	var runErr error

	if isCI {
		fmt.Println("[bugport] Running in CI mode (no TUI)")
		importer.OnRecord = func(o *migrate.Outcome) {
			fmt.Printf("[bugport] bug %d: %s\n", o.RecordID, outcomeAction(o))
		}
		summary, runErr = importer.Run(ctx)
	} else {
		statusChan := make(chan tui.StatusMsg)
		model := tui.NewModel(statusChan)
		p := tea.NewProgram(model)

		importer.OnBatch = func(start, end int) {
			statusChan <- tui.StatusMsg{Action: "batch", Message: fmt.Sprintf("fetching bugs %d-%d", start, end)}
		}
		importer.OnRecord = func(o *migrate.Outcome) {
			statusChan <- tui.StatusMsg{
				RecordID: o.RecordID,
				Action:   outcomeAction(o),
				Message:  fmt.Sprintf("bug %d: %s", o.RecordID, outcomeAction(o)),
			}
		}

		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			summary, runErr = importer.Run(runCtx)
			p.Send(tui.ResultMsg{Success: runErr == nil})
		}()

		if _, err := p.Run(); err != nil {
			cancel()
			fmt.Printf("Error running TUI: %v\n", err)
			os.Exit(1)
		}

		// The user may have quit mid-run: stop the importer, then keep
		// draining its progress messages until it actually returns, so the
		// summary read below reflects what really happened.
		cancel()
		drainUntilDone(statusChan, done)

		fmt.Println(summaryText(summary, runErr))
	}

	if summary != nil && importOutFile != "" {
		if err := writeSummary(importOutFile, summary); err != nil {
			fmt.Printf("❌ Error writing summary: %v\n", err)
			os.Exit(1)
		}
	}

	if isCI {
		fmt.Println(summaryText(summary, runErr))
	}
	if runErr != nil {
		os.Exit(1)
	}
}

// drainUntilDone discards progress messages until the import goroutine
// signals completion. Without it, quitting the TUI early could leave the
// importer blocked forever on an unread channel send.
func drainUntilDone(statusChan <-chan tui.StatusMsg, done <-chan struct{}) {
	for {
		select {
		case <-statusChan:
		case <-done:
			return
		}
	}
}

// applyImportOverrides folds command-line flags into the config.
func applyImportOverrides(cfg *config.Config) {
	if importStartID > 0 {
		cfg.Import.StartID = importStartID
	}
	if importBatchSize > 0 {
		cfg.Import.BatchSize = importBatchSize
	}
	if importNoLock {
		cfg.Import.SkipLock = true
	}
	if importRepo != "" {
		cfg.GitHub.Repo = importRepo
	}
	if importToken != "" {
		cfg.GitHub.Token = importToken
	}
}

// outcomeAction names the dominant effect of a reconciliation for display.
func outcomeAction(o *migrate.Outcome) string {
	switch {
	case o.Created:
		return "created"
	case o.StateChanged && o.FinalState == migrate.StateClosed:
		return "closed"
	case o.StateChanged:
		return "reopened"
	case o.ContentUpdated:
		return "updated"
	default:
		return "unchanged"
	}
}

func summaryText(summary *migrate.Summary, runErr error) string {
	if summary == nil {
		return fmt.Sprintf("❌ Import failed: %v", runErr)
	}

	text := fmt.Sprintf(
		"Run %s\n  processed: %d\n  created:   %d\n  updated:   %d\n  closed:    %d\n  reopened:  %d\n  locked:    %d\n  unchanged: %d",
		summary.RunID, summary.Processed, summary.Created, summary.Updated,
		summary.Closed, summary.Reopened, summary.Locked, summary.Unchanged)

	if runErr != nil {
		return fmt.Sprintf("❌ Import aborted: %v\n%s\n  resume with --start-id %d", runErr, text, summary.NextID)
	}
	return fmt.Sprintf("✓ Import complete\n%s\n  next id:   %d", text, summary.NextID)
}

func writeSummary(path string, summary *migrate.Summary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
