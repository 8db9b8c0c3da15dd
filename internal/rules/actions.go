package rules

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	"wp2presta/models"
	"wp2presta/pkg/router"
)

// RulesAction validates the mapping section and prints the rule set.
// A config with invalid rules fails here with the same error the
// migrate command would produce.
func RulesAction(c *cli.Context) error {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	rt, err := router.New(cfg.Mapping)
	if err != nil {
		return fmt.Errorf("invalid mapping rules: %w", err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Name", "Target", "Slugs", "Patterns", "Match By", "Products"})

	for i, rule := range rt.Rules() {
		slugs := make([]string, 0, len(rule.Slugs))
		for slug := range rule.Slugs {
			slugs = append(slugs, slug)
		}
		t.AppendRow(table.Row{
			i + 1,
			rule.Name,
			rule.Target,
			strings.Join(slugs, ", "),
			strings.Join(rule.Patterns, ", "),
			rule.MatchBy,
			len(rule.ProductMap),
		})
	}
	t.Render()

	summary := rt.Summary()
	fmt.Printf("\n%d rules (%d cms, %d product, %d skip), default target: %s\n",
		summary.TotalRules, summary.CMSRules, summary.ProductRules, summary.SkipRules, cfg.Mapping.Default)
	return nil
}
