package runs

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	"wp2presta/pkg/journal"
)

// ListAction prints the most recent migration runs.
func ListAction(c *cli.Context) error {
	db, err := journal.Open()
	if err != nil {
		return fmt.Errorf("failed to open run journal: %w", err)
	}
	defer db.Close()

	runs, err := db.ListRuns(c.Int("limit"))
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Mode", "Source", "Started", "Duration", "CMS", "Products", "Skipped", "Failed", "Images"})

	for _, run := range runs {
		t.AppendRow(table.Row{
			run.RunID,
			run.Mode,
			run.SourceURL,
			run.StartedAt.Format(time.DateTime),
			formatDuration(run),
			run.CMSMigrated,
			run.ProductsUpdated,
			run.Skipped,
			run.Failed,
			run.Images,
		})
	}
	t.Render()
	return nil
}

// ShowAction prints one run's per-item outcomes.
func ShowAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: runs show <run-id>")
	}
	runID, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run id %q", c.Args().First())
	}

	db, err := journal.Open()
	if err != nil {
		return fmt.Errorf("failed to open run journal: %w", err)
	}
	defer db.Close()

	run, err := db.GetRun(runID)
	if err != nil {
		return err
	}
	items, err := db.GetRunItems(runID)
	if err != nil {
		return err
	}

	fmt.Printf("Run %d (%s): %s -> %s, started %s\n\n",
		run.RunID, run.Mode, run.SourceURL, run.DestinationURL,
		run.StartedAt.Format(time.DateTime))

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Slug", "Title", "Target", "Rule", "Status", "Error"})

	for _, item := range items {
		t.AppendRow(table.Row{item.Slug, item.Title, item.Target, item.Rule, item.Status, item.Error})
	}
	t.Render()

	fmt.Printf("\n%d CMS, %d products, %d skipped, %d failed, %d images\n",
		run.CMSMigrated, run.ProductsUpdated, run.Skipped, run.Failed, run.Images)
	return nil
}

func formatDuration(run *journal.Run) string {
	if run.FinishedAt == nil {
		return "-"
	}
	return run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String()
}
