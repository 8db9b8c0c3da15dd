package plan

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	"wp2presta/internal/common"
	"wp2presta/models"
	"wp2presta/pkg/router"
	"wp2presta/pkg/transform"
	"wp2presta/pkg/wordpress"
)

// PlanAction fetches the content set, routes every item, and prints the
// analysis table. Nothing is written anywhere.
func PlanAction(c *cli.Context) error {
	logger := common.NewLogger(c.Bool("quiet"), "")

	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	rt, err := router.New(cfg.Mapping)
	if err != nil {
		return fmt.Errorf("invalid mapping rules: %w", err)
	}
	tr, err := transform.New(cfg.WordPress.URL, cfg.PrestaShop.URL, logger)
	if err != nil {
		return fmt.Errorf("invalid base URLs: %w", err)
	}

	wp := wordpress.New(cfg.WordPress.APIBase(), cfg.WordPress.Username, cfg.WordPress.AppPassword, logger)
	items, err := wp.FetchAll(c.Context, cfg.WordPress.IncludePosts)
	if err != nil {
		return fmt.Errorf("failed to fetch content: %w", err)
	}
	logger.Info("analyzing content set", "items", len(items))

	analyzer := NewAnalyzer()
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		route := rt.Route(item.Slug, item.Title)

		imageCount := 0
		if result, err := tr.Transform(item); err == nil {
			imageCount = len(result.Images)
		} else {
			logger.Warn("transform failed during analysis", "slug", item.Slug, "error", err)
		}

		rows = append(rows, analyzer.Analyze(item, route, imageCount))
	}

	renderTable(rows)
	printSummary(rows)
	return nil
}

func renderTable(rows []Row) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"Slug", "Title", "Target", "Rule", "Size", "Images", "Language", "Warnings"})

	for _, row := range rows {
		t.AppendRow(table.Row{
			row.Slug,
			row.Title,
			row.Target,
			row.Rule,
			HumanSize(row.Size),
			row.ImageCount,
			row.Language,
			strings.Join(row.Warnings, ", "),
		})
	}

	t.Render()
}

func printSummary(rows []Row) {
	counts := map[string]int{}
	warned := 0
	for _, row := range rows {
		counts[row.Target]++
		if len(row.Warnings) > 0 {
			warned++
		}
	}
	fmt.Printf("\n%d items: %d cms, %d product, %d skip, %d with warnings\n",
		len(rows), counts[string(router.TargetCMS)], counts[string(router.TargetProduct)],
		counts[string(router.TargetSkip)], warned)
}
