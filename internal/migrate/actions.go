package migrate

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"wp2presta/internal/common"
	"wp2presta/models"
	"wp2presta/pkg/assets"
	"wp2presta/pkg/journal"
	"wp2presta/pkg/migrate"
	"wp2presta/pkg/prestashop"
	"wp2presta/pkg/wordpress"
)

// MigrateAction runs one migration, live or dry-run.
func MigrateAction(c *cli.Context) error {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if c.Bool("dry-run") {
		cfg.Migration.DryRun = true
	}

	logger := common.NewLogger(c.Bool("quiet"), cfg.Migration.LogFile)

	wp := wordpress.New(cfg.WordPress.APIBase(), cfg.WordPress.Username, cfg.WordPress.AppPassword, logger)
	ps := prestashop.New(cfg.PrestaShop.APIBase(), cfg.PrestaShop.APIKey, cfg.PrestaShop.DefaultLangID, logger)

	var assetStore migrate.AssetStore
	if !cfg.Migration.DryRun && cfg.Migration.DownloadImages {
		store, err := assets.NewStore(cfg.Migration, logger)
		if err != nil {
			return fmt.Errorf("failed to prepare image store: %w", err)
		}
		assetStore = store
	}

	// The journal is best-effort; a broken database must not block a
	// migration.
	var rec migrate.Recorder
	if db, err := journal.Open(); err != nil {
		logger.Warn("run journal unavailable", "error", err)
	} else {
		defer db.Close()
		rec = db
	}

	m, err := migrate.New(cfg, wp, ps, assetStore, rec, logger)
	if err != nil {
		return err
	}

	stats, err := m.Run(c.Context)
	if err != nil {
		if stats != nil {
			printStats(stats, cfg.Migration.DryRun)
		}
		return err
	}

	printStats(stats, cfg.Migration.DryRun)
	return nil
}

func printStats(stats *migrate.Stats, dryRun bool) {
	label := "Migration complete"
	if dryRun {
		label = "Dry run complete"
	}
	fmt.Printf("%s: %d CMS pages, %d product descriptions, %d skipped, %d failed, %d images\n",
		label, stats.CMSMigrated, stats.ProductUpdated, stats.Skipped, stats.Failed, stats.Images)
}
