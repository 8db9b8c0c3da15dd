package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"wp2presta/internal/migrate"
	"wp2presta/internal/plan"
	"wp2presta/internal/rules"
	"wp2presta/internal/runs"
	"wp2presta/pkg/help"
)

func main() {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Value:   "config.yaml",
		Usage:   "path to the YAML configuration file",
	}
	quietFlag := &cli.BoolFlag{
		Name:  "quiet",
		Usage: "only log errors",
	}

	app := &cli.App{
		Name:  "wp2presta",
		Usage: "migrate WordPress pages and posts into a PrestaShop store",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "run the migration against the configured stores",
				Flags: []cli.Flag{
					configFlag,
					quietFlag,
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "report what would change without writing anything",
					},
				},
				Action: migrate.MigrateAction,
			},
			{
				Name:   "plan",
				Usage:  "analyze the content set and show routing decisions without writing",
				Flags:  []cli.Flag{configFlag, quietFlag},
				Action: plan.PlanAction,
			},
			{
				Name:   "rules",
				Usage:  "validate and display the mapping rules",
				Flags:  []cli.Flag{configFlag},
				Action: rules.RulesAction,
			},
			{
				Name:  "init",
				Usage: "write an annotated starter config.yaml",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "stdout",
						Usage: "print the example config instead of writing a file",
					},
				},
				Action: func(c *cli.Context) error {
					if c.Bool("stdout") {
						fmt.Print(help.ExampleConfig)
						return nil
					}
					if _, err := os.Stat("config.yaml"); err == nil {
						return fmt.Errorf("config.yaml already exists, not overwriting")
					}
					if err := os.WriteFile("config.yaml", []byte(help.ExampleConfig), 0o644); err != nil {
						return err
					}
					fmt.Println("Wrote config.yaml, edit it and run: wp2presta plan")
					return nil
				},
			},
			{
				Name:  "runs",
				Usage: "inspect past migration runs",
				Subcommands: []*cli.Command{
					{
						Name:  "list",
						Usage: "list recent runs",
						Flags: []cli.Flag{
							&cli.IntFlag{
								Name:  "limit",
								Value: 20,
								Usage: "maximum number of runs to show",
							},
						},
						Action: runs.ListAction,
					},
					{
						Name:      "show",
						Usage:     "show one run's per-item outcomes",
						ArgsUsage: "<run-id>",
						Action:    runs.ShowAction,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
