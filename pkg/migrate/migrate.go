// Package migrate drives a full migration run: fetch the WordPress
// content set, route each item, transform it, and write it to the
// PrestaShop store, recording every outcome in the run journal.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"wp2presta/models"
	"wp2presta/pkg/journal"
	"wp2presta/pkg/prestashop"
	"wp2presta/pkg/router"
	"wp2presta/pkg/sanitize"
	"wp2presta/pkg/transform"
)

// Source provides the content set and image bytes.
type Source interface {
	FetchAll(ctx context.Context, includePosts bool) ([]models.ContentItem, error)
	DownloadImage(ctx context.Context, imageURL string) ([]byte, error)
}

// Store is the destination shop's write surface.
type Store interface {
	TestConnection(ctx context.Context) bool
	FindCMSPageBySlug(ctx context.Context, slug string) (int, bool, error)
	CreateCMSPage(ctx context.Context, page models.TransformedPage, categoryID int) (int, error)
	UpdateCMSPage(ctx context.Context, id int, page models.TransformedPage, categoryID int) error
	FindProductByName(ctx context.Context, name string) (int, bool, error)
	FindProductByReference(ctx context.Context, reference string) (int, bool, error)
	UpdateProductDescription(ctx context.Context, id int, descriptionHTML, metaTitle, metaDescription string) error
}

// AssetStore receives downloaded image files.
type AssetStore interface {
	Save(filename string, data []byte) error
	Cleanup()
}

// Recorder persists run history. A nil Recorder disables the journal.
type Recorder interface {
	StartRun(mode, sourceURL, destinationURL string) (int64, error)
	RecordItem(runID int64, item journal.Item) error
	FinishRun(runID int64, cmsMigrated, productsUpdated, skipped, failed, images int) error
}

// Stats aggregates the outcome counters of one run.
type Stats struct {
	CMSMigrated    int
	ProductUpdated int
	Skipped        int
	Failed         int
	Images         int
}

// Migrator runs the migration state machine.
type Migrator struct {
	cfg         *models.Config
	source      Source
	store       Store
	assets      AssetStore
	router      *router.Router
	transformer *transform.Transformer
	journal     Recorder
	logger      *slog.Logger
}

// New wires a Migrator. assets and rec may be nil to disable image
// transfer and run journaling respectively.
func New(cfg *models.Config, source Source, store Store, assets AssetStore, rec Recorder, logger *slog.Logger) (*Migrator, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	rt, err := router.New(cfg.Mapping)
	if err != nil {
		return nil, fmt.Errorf("build router: %w", err)
	}
	tr, err := transform.New(cfg.WordPress.URL, cfg.PrestaShop.URL, logger)
	if err != nil {
		return nil, fmt.Errorf("build transformer: %w", err)
	}

	return &Migrator{
		cfg:         cfg,
		source:      source,
		store:       store,
		assets:      assets,
		router:      rt,
		transformer: tr,
		journal:     rec,
		logger:      logger,
	}, nil
}

// Run executes one migration run. Per-item failures are counted, never
// returned; only pre-flight failures (connectivity, fetch) produce an
// error. A cancelled context stops the loop between items and returns
// the partial stats alongside the context error.
func (m *Migrator) Run(ctx context.Context) (*Stats, error) {
	dryRun := m.cfg.Migration.DryRun
	mode := "live"
	if dryRun {
		mode = "dry-run"
	}
	m.logger.Info("starting migration", "mode", mode,
		"source", m.cfg.WordPress.URL, "destination", m.cfg.PrestaShop.URL)

	summary := m.router.Summary()
	m.logger.Info("routing rules loaded", "total", summary.TotalRules,
		"cms", summary.CMSRules, "product", summary.ProductRules, "skip", summary.SkipRules)

	if !dryRun && !m.store.TestConnection(ctx) {
		return nil, fmt.Errorf("prestashop at %s is unreachable, aborting", m.cfg.PrestaShop.URL)
	}

	items, err := m.source.FetchAll(ctx, m.cfg.WordPress.IncludePosts)
	if err != nil {
		return nil, fmt.Errorf("fetch content: %w", err)
	}
	m.logger.Info("fetched content set", "items", len(items))

	runID := m.startJournal(mode)
	stats := &Stats{}
	defer func() {
		m.finishJournal(runID, stats)
		if m.assets != nil {
			m.assets.Cleanup()
		}
	}()

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			m.logger.Warn("migration cancelled", "remaining", len(items)-stats.total())
			return stats, err
		}
		m.processItem(ctx, item, runID, stats, dryRun)
	}

	m.logger.Info("migration finished", "mode", mode,
		"cms", stats.CMSMigrated, "products", stats.ProductUpdated,
		"skipped", stats.Skipped, "failed", stats.Failed, "images", stats.Images)
	return stats, nil
}

func (s *Stats) total() int {
	return s.CMSMigrated + s.ProductUpdated + s.Skipped + s.Failed
}

func (m *Migrator) processItem(ctx context.Context, item models.ContentItem, runID int64, stats *Stats, dryRun bool) {
	route := m.router.Route(item.Slug, item.Title)
	record := journal.Item{
		Slug:   item.Slug,
		Title:  item.Title,
		Target: string(route.Target),
		Rule:   route.RuleName,
	}

	if route.Target == router.TargetSkip {
		m.logger.Info("skipping item", "slug", item.Slug, "rule", route.RuleName)
		stats.Skipped++
		record.Status = journal.StatusSkipped
		m.recordJournal(runID, record)
		return
	}

	result, err := m.transformer.Transform(item)
	if err != nil {
		m.logger.Error("transform failed", "slug", item.Slug, "error", err)
		stats.Failed++
		record.Status = journal.StatusFailed
		record.Error = err.Error()
		m.recordJournal(runID, record)
		return
	}

	switch route.Target {
	case router.TargetCMS:
		record.Status, err = m.migrateCMS(ctx, result.Page, route, dryRun)
	case router.TargetProduct:
		record.Status, err = m.migrateProduct(ctx, result.Page, item, route, dryRun)
	}

	switch {
	case err != nil:
		m.logger.Error("item failed", "slug", item.Slug, "target", route.Target, "error", err)
		stats.Failed++
		record.Status = journal.StatusFailed
		record.Error = err.Error()
	case record.Status == journal.StatusSkipped:
		stats.Skipped++
	case route.Target == router.TargetCMS:
		stats.CMSMigrated++
		stats.Images += m.handleImages(ctx, result.Images, dryRun)
	default:
		stats.ProductUpdated++
		stats.Images += m.handleImages(ctx, result.Images, dryRun)
	}
	m.recordJournal(runID, record)
}

// migrateCMS upserts one CMS page keyed by its sanitized slug.
func (m *Migrator) migrateCMS(ctx context.Context, page models.TransformedPage, route router.RouteResult, dryRun bool) (string, error) {
	categoryID := route.CMSCategoryID
	if categoryID == 0 {
		categoryID = m.cfg.PrestaShop.CMSCategoryID
	}

	id, found, err := m.store.FindCMSPageBySlug(ctx, page.Slug)
	if err != nil {
		return "", err
	}

	if dryRun {
		if found {
			m.logger.Info("dry-run: would update CMS page", "slug", page.Slug, "id", id, "category", categoryID)
			return journal.StatusUpdated, nil
		}
		m.logger.Info("dry-run: would create CMS page", "slug", page.Slug, "category", categoryID)
		return journal.StatusCreated, nil
	}

	if found {
		if err := m.store.UpdateCMSPage(ctx, id, page, categoryID); err != nil {
			return "", err
		}
		return journal.StatusUpdated, nil
	}

	_, err = m.store.CreateCMSPage(ctx, page, categoryID)
	if errors.Is(err, prestashop.ErrCreatedUnknownID) {
		m.logger.Warn("CMS page created but ID unverified", "slug", page.Slug)
		return journal.StatusCreatedUnverified, nil
	}
	if err != nil {
		return "", err
	}
	return journal.StatusCreated, nil
}

// migrateProduct resolves the destination product and updates its
// description. No matching product is a skip, not a failure.
func (m *Migrator) migrateProduct(ctx context.Context, page models.TransformedPage, item models.ContentItem, route router.RouteResult, dryRun bool) (string, error) {
	id, found, err := m.resolveProduct(ctx, item, route)
	if err != nil {
		return "", err
	}
	if !found {
		m.logger.Warn("no matching product, skipping", "slug", item.Slug, "match_by", route.MatchBy)
		return journal.StatusSkipped, nil
	}

	if dryRun {
		m.logger.Info("dry-run: would update product description", "slug", item.Slug, "product_id", id)
		return journal.StatusProductUpdated, nil
	}

	err = m.store.UpdateProductDescription(ctx, id, page.Content, page.MetaTitle, page.MetaDescription)
	if err != nil {
		return "", err
	}
	return journal.StatusProductUpdated, nil
}

// resolveProduct picks the destination product. Resolution order:
// explicit product ID, explicit reference, slug as reference, decoded
// title as fuzzy name. Lookups run in dry-run too, so a dry run
// reports the same skip decisions a live run would make.
func (m *Migrator) resolveProduct(ctx context.Context, item models.ContentItem, route router.RouteResult) (int, bool, error) {
	if route.ProductID > 0 {
		return route.ProductID, true, nil
	}
	if route.ProductReference != "" {
		return m.store.FindProductByReference(ctx, route.ProductReference)
	}
	if route.MatchBy == router.MatchByReference {
		return m.store.FindProductByReference(ctx, item.Slug)
	}
	return m.store.FindProductByName(ctx, sanitize.DecodeEntities(item.Title))
}

// handleImages downloads and stores an item's images. A dry run counts
// every discovered image; a live run counts only the transfers that
// actually landed. Per-image failures are warnings.
func (m *Migrator) handleImages(ctx context.Context, images []models.DiscoveredImage, dryRun bool) int {
	if !m.cfg.Migration.DownloadImages || len(images) == 0 {
		return 0
	}
	if dryRun || m.assets == nil {
		return len(images)
	}

	transferred := 0
	for _, img := range images {
		data, err := m.source.DownloadImage(ctx, img.OriginalURL)
		if err != nil {
			m.logger.Warn("image download failed", "url", img.OriginalURL, "error", err)
			continue
		}
		if err := m.assets.Save(img.Filename, data); err != nil {
			m.logger.Warn("image save failed", "file", img.Filename, "error", err)
			continue
		}
		transferred++
	}
	return transferred
}

func (m *Migrator) startJournal(mode string) int64 {
	if m.journal == nil {
		return 0
	}
	runID, err := m.journal.StartRun(mode, m.cfg.WordPress.URL, m.cfg.PrestaShop.URL)
	if err != nil {
		m.logger.Warn("journal start failed", "error", err)
		return 0
	}
	return runID
}

func (m *Migrator) recordJournal(runID int64, item journal.Item) {
	if m.journal == nil || runID == 0 {
		return
	}
	if err := m.journal.RecordItem(runID, item); err != nil {
		m.logger.Warn("journal record failed", "slug", item.Slug, "error", err)
	}
}

func (m *Migrator) finishJournal(runID int64, stats *Stats) {
	if m.journal == nil || runID == 0 {
		return
	}
	err := m.journal.FinishRun(runID, stats.CMSMigrated, stats.ProductUpdated, stats.Skipped, stats.Failed, stats.Images)
	if err != nil {
		m.logger.Warn("journal finish failed", "error", err)
	}
}
