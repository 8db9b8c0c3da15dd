package migrate

import (
	"context"
	"errors"
	"testing"

	"wp2presta/models"
	"wp2presta/pkg/journal"
)

func testConfig() *models.Config {
	return &models.Config{
		WordPress: models.WordPressConfig{
			URL: "https://old.example.com",
		},
		PrestaShop: models.PrestaShopConfig{
			URL:           "https://shop.example.com",
			APIKey:        "KEY",
			DefaultLangID: 1,
			CMSCategoryID: 1,
		},
		Migration: models.MigrationConfig{
			DownloadImages: true,
		},
		Mapping: models.MappingConfig{
			Default: "cms",
			Rules: []models.RuleConfig{
				{Name: "legal", Target: "skip", Slugs: []string{"privacy-policy"}},
				{Name: "widgets", Target: "product", Patterns: []string{"widget-*"}, MatchBy: "name"},
			},
		},
	}
}

type fakeSource struct {
	items     []models.ContentItem
	imageData map[string][]byte
	downloads []string
}

func (f *fakeSource) FetchAll(ctx context.Context, includePosts bool) ([]models.ContentItem, error) {
	return f.items, nil
}

func (f *fakeSource) DownloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	f.downloads = append(f.downloads, imageURL)
	data, ok := f.imageData[imageURL]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

// fakeStore keeps CMS pages keyed by slug and products keyed by
// reference and name, mimicking the destination shop.
type fakeStore struct {
	reachable bool
	nextID    int
	cmsPages  map[string]int // slug -> id
	cmsBodies map[int]models.TransformedPage
	products  map[string]int // reference -> id
	byName    map[string]int // name -> id

	creates        int
	updates        int
	productUpdates map[int]string // id -> description
	createErr      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		reachable:      true,
		nextID:         100,
		cmsPages:       map[string]int{},
		cmsBodies:      map[int]models.TransformedPage{},
		products:       map[string]int{},
		byName:         map[string]int{},
		productUpdates: map[int]string{},
	}
}

func (f *fakeStore) TestConnection(ctx context.Context) bool { return f.reachable }

func (f *fakeStore) FindCMSPageBySlug(ctx context.Context, slug string) (int, bool, error) {
	id, ok := f.cmsPages[slug]
	return id, ok, nil
}

func (f *fakeStore) CreateCMSPage(ctx context.Context, page models.TransformedPage, categoryID int) (int, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.creates++
	f.nextID++
	f.cmsPages[page.Slug] = f.nextID
	f.cmsBodies[f.nextID] = page
	return f.nextID, nil
}

func (f *fakeStore) UpdateCMSPage(ctx context.Context, id int, page models.TransformedPage, categoryID int) error {
	f.updates++
	f.cmsBodies[id] = page
	return nil
}

func (f *fakeStore) FindProductByName(ctx context.Context, name string) (int, bool, error) {
	id, ok := f.byName[name]
	return id, ok, nil
}

func (f *fakeStore) FindProductByReference(ctx context.Context, reference string) (int, bool, error) {
	id, ok := f.products[reference]
	return id, ok, nil
}

func (f *fakeStore) UpdateProductDescription(ctx context.Context, id int, descriptionHTML, metaTitle, metaDescription string) error {
	f.productUpdates[id] = descriptionHTML
	return nil
}

type fakeAssets struct {
	saved map[string][]byte
}

func (f *fakeAssets) Save(filename string, data []byte) error {
	if f.saved == nil {
		f.saved = map[string][]byte{}
	}
	f.saved[filename] = data
	return nil
}

func (f *fakeAssets) Cleanup() {}

func contentFixture() []models.ContentItem {
	return []models.ContentItem{
		{ID: 1, Title: "About Us", Slug: "about-us", Content: "<p>Hello</p>", Type: models.ContentTypePage},
		{ID: 2, Title: "Privacy", Slug: "privacy-policy", Content: "<p>Legal</p>", Type: models.ContentTypePage},
		{ID: 3, Title: "Blue Widget", Slug: "widget-blue", Content: "<p>Widget</p>", Type: models.ContentTypePage},
	}
}

func newTestMigrator(t *testing.T, cfg *models.Config, source *fakeSource, store *fakeStore, rec Recorder) *Migrator {
	t.Helper()
	m, err := New(cfg, source, store, nil, rec, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return m
}

func TestRunUpsertIsIdempotent(t *testing.T) {
	cfg := testConfig()
	store := newFakeStore()
	store.byName["Blue Widget"] = 7
	source := &fakeSource{items: contentFixture()}

	// First run creates the CMS page.
	stats, err := newTestMigrator(t, cfg, source, store, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if stats.CMSMigrated != 1 || stats.ProductUpdated != 1 || stats.Skipped != 1 || stats.Failed != 0 {
		t.Fatalf("first run stats = %+v", stats)
	}
	if store.creates != 1 || store.updates != 0 {
		t.Fatalf("first run creates/updates = %d/%d, want 1/0", store.creates, store.updates)
	}

	// Second run finds the page by slug and updates in place.
	stats, err = newTestMigrator(t, cfg, source, store, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if stats.CMSMigrated != 1 {
		t.Errorf("second run CMSMigrated = %d, want 1", stats.CMSMigrated)
	}
	if store.creates != 1 || store.updates != 1 {
		t.Errorf("after second run creates/updates = %d/%d, want 1/1", store.creates, store.updates)
	}
	if len(store.cmsPages) != 1 {
		t.Errorf("store holds %d CMS pages, want 1", len(store.cmsPages))
	}
}

func TestDryRunCountersMatchLiveRun(t *testing.T) {
	liveStore := newFakeStore()
	liveStore.byName["Blue Widget"] = 7
	dryStore := newFakeStore()
	dryStore.byName["Blue Widget"] = 7

	liveCfg := testConfig()
	liveStats, err := newTestMigrator(t, liveCfg, &fakeSource{items: contentFixture()}, liveStore, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("live Run() error = %v", err)
	}

	dryCfg := testConfig()
	dryCfg.Migration.DryRun = true
	drySource := &fakeSource{items: contentFixture()}
	dryStats, err := newTestMigrator(t, dryCfg, drySource, dryStore, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("dry Run() error = %v", err)
	}

	if *dryStats != *liveStats {
		t.Errorf("dry-run stats %+v != live stats %+v", dryStats, liveStats)
	}
	if dryStore.creates != 0 || dryStore.updates != 0 || len(dryStore.productUpdates) != 0 {
		t.Error("dry run performed writes")
	}
	if len(drySource.downloads) != 0 {
		t.Error("dry run downloaded images")
	}
}

func TestProductWithoutMatchIsSkipped(t *testing.T) {
	cfg := testConfig()
	store := newFakeStore() // no products registered
	source := &fakeSource{items: []models.ContentItem{
		{ID: 3, Title: "Blue Widget", Slug: "widget-blue", Content: "<p>w</p>", Type: models.ContentTypePage},
	}}

	stats, err := newTestMigrator(t, cfg, source, store, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.Skipped != 1 || stats.Failed != 0 || stats.ProductUpdated != 0 {
		t.Errorf("stats = %+v, want 1 skipped", stats)
	}
}

func TestProductResolutionOrder(t *testing.T) {
	tests := []struct {
		name   string
		rule   models.RuleConfig
		setup  func(*fakeStore)
		wantID int
	}{
		{
			name:   "explicit product id from map",
			rule:   models.RuleConfig{Name: "r", Target: "product", ProductMap: map[string]any{"widget-blue": 42}},
			setup:  func(s *fakeStore) {},
			wantID: 42,
		},
		{
			name:   "explicit reference from map",
			rule:   models.RuleConfig{Name: "r", Target: "product", ProductMap: map[string]any{"widget-blue": "REF-1"}},
			setup:  func(s *fakeStore) { s.products["REF-1"] = 51 },
			wantID: 51,
		},
		{
			name:   "slug as reference",
			rule:   models.RuleConfig{Name: "r", Target: "product", Patterns: []string{"widget-*"}, MatchBy: "reference"},
			setup:  func(s *fakeStore) { s.products["widget-blue"] = 60 },
			wantID: 60,
		},
		{
			name:   "decoded title as name",
			rule:   models.RuleConfig{Name: "r", Target: "product", Patterns: []string{"widget-*"}, MatchBy: "name"},
			setup:  func(s *fakeStore) { s.byName["Blue & Red Widget"] = 73 },
			wantID: 73,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Mapping.Rules = []models.RuleConfig{tt.rule}
			cfg.Mapping.Default = "skip"
			store := newFakeStore()
			tt.setup(store)
			source := &fakeSource{items: []models.ContentItem{
				{ID: 3, Title: "Blue &amp; Red Widget", Slug: "widget-blue", Content: "<p>w</p>", Type: models.ContentTypePage},
			}}

			stats, err := newTestMigrator(t, cfg, source, store, nil).Run(context.Background())
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if stats.ProductUpdated != 1 {
				t.Fatalf("stats = %+v, want 1 product updated", stats)
			}
			if _, ok := store.productUpdates[tt.wantID]; !ok {
				t.Errorf("updated products = %v, want id %d", store.productUpdates, tt.wantID)
			}
		})
	}
}

func TestImageCounterTracksSuccessfulTransfers(t *testing.T) {
	content := `<p><img src="https://old.example.com/wp-content/a.jpg">` +
		`<img src="https://old.example.com/wp-content/b.jpg"></p>`
	items := []models.ContentItem{
		{ID: 1, Title: "Gallery", Slug: "gallery", Content: content, Type: models.ContentTypePage},
	}

	t.Run("live run counts only transfers that landed", func(t *testing.T) {
		cfg := testConfig()
		source := &fakeSource{
			items: items,
			imageData: map[string][]byte{
				"https://old.example.com/wp-content/a.jpg": []byte("jpeg"),
			},
		}
		assets := &fakeAssets{}
		m, err := New(cfg, source, newFakeStore(), assets, nil, nil)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}

		stats, err := m.Run(context.Background())
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if stats.Images != 1 {
			t.Errorf("Images = %d, want 1 (b.jpg failed to download)", stats.Images)
		}
		if len(assets.saved) != 1 {
			t.Errorf("saved %d files, want 1", len(assets.saved))
		}
		if len(source.downloads) != 2 {
			t.Errorf("attempted %d downloads, want 2", len(source.downloads))
		}
	})

	t.Run("dry run counts every discovered image", func(t *testing.T) {
		cfg := testConfig()
		cfg.Migration.DryRun = true
		source := &fakeSource{items: items}

		stats, err := newTestMigrator(t, cfg, source, newFakeStore(), nil).Run(context.Background())
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if stats.Images != 2 {
			t.Errorf("Images = %d, want 2", stats.Images)
		}
		if len(source.downloads) != 0 {
			t.Error("dry run downloaded images")
		}
	})

	t.Run("disabled download counts nothing", func(t *testing.T) {
		cfg := testConfig()
		cfg.Migration.DownloadImages = false
		source := &fakeSource{items: items}

		stats, err := newTestMigrator(t, cfg, source, newFakeStore(), nil).Run(context.Background())
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if stats.Images != 0 {
			t.Errorf("Images = %d, want 0", stats.Images)
		}
		if len(source.downloads) != 0 {
			t.Error("images downloaded despite transfer being disabled")
		}
	})
}

func TestPerItemFailureDoesNotStopRun(t *testing.T) {
	cfg := testConfig()
	store := newFakeStore()
	store.byName["Blue Widget"] = 7
	store.createErr = errors.New("validator rejected content")
	source := &fakeSource{items: contentFixture()}

	stats, err := newTestMigrator(t, cfg, source, store, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.Failed != 1 {
		t.Errorf("Failed = %d, want 1", stats.Failed)
	}
	// The product and skip items still went through.
	if stats.ProductUpdated != 1 || stats.Skipped != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestLiveRunAbortsWhenStoreUnreachable(t *testing.T) {
	cfg := testConfig()
	store := newFakeStore()
	store.reachable = false
	source := &fakeSource{items: contentFixture()}

	if _, err := newTestMigrator(t, cfg, source, store, nil).Run(context.Background()); err == nil {
		t.Fatal("expected error when store is unreachable")
	}
	if store.creates != 0 {
		t.Error("writes performed despite failed connectivity check")
	}
}

func TestDryRunSkipsConnectivityCheck(t *testing.T) {
	cfg := testConfig()
	cfg.Migration.DryRun = true
	store := newFakeStore()
	store.reachable = false
	store.byName["Blue Widget"] = 7
	source := &fakeSource{items: contentFixture()}

	if _, err := newTestMigrator(t, cfg, source, store, nil).Run(context.Background()); err != nil {
		t.Fatalf("dry Run() error = %v", err)
	}
}

func TestCancellationStopsBetweenItems(t *testing.T) {
	cfg := testConfig()
	store := newFakeStore()
	source := &fakeSource{items: contentFixture()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := newTestMigrator(t, cfg, source, store, nil).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if stats == nil {
		t.Fatal("partial stats not returned on cancellation")
	}
	if store.creates != 0 {
		t.Error("items processed after cancellation")
	}
}

func TestRunRecordsJournal(t *testing.T) {
	db := setupTestJournal(t)
	defer db.Close()

	cfg := testConfig()
	store := newFakeStore()
	store.byName["Blue Widget"] = 7
	source := &fakeSource{items: contentFixture()}

	if _, err := newTestMigrator(t, cfg, source, store, db).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	runs, err := db.ListRuns(1)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	run := runs[0]
	if run.FinishedAt == nil {
		t.Error("run not finalized")
	}
	if run.CMSMigrated != 1 || run.ProductsUpdated != 1 || run.Skipped != 1 {
		t.Errorf("run counters = %+v", run)
	}

	items, err := db.GetRunItems(run.RunID)
	if err != nil {
		t.Fatalf("GetRunItems() error = %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	byStatus := map[string]int{}
	for _, item := range items {
		byStatus[item.Status]++
	}
	want := map[string]int{
		journal.StatusCreated:        1,
		journal.StatusProductUpdated: 1,
		journal.StatusSkipped:        1,
	}
	for status, count := range want {
		if byStatus[status] != count {
			t.Errorf("status %q count = %d, want %d", status, byStatus[status], count)
		}
	}
}

func setupTestJournal(t *testing.T) *journal.DB {
	t.Helper()
	db, err := journal.OpenPath(":memory:")
	if err != nil {
		t.Fatalf("failed to open test journal: %v", err)
	}
	return db
}
