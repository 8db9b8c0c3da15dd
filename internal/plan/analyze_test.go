package plan

import (
	"strings"
	"testing"

	"wp2presta/models"
	"wp2presta/pkg/router"
	"wp2presta/pkg/sanitize"
)

func TestContentWarnings(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"clean", "<p>Plain paragraph with enough text.</p>", nil},
		{"shortcodes", `<p>Before [gallery ids="1,2"] after</p>`, []string{"shortcodes"}},
		{"page builder", `<div class="et_pb_section"><p>x</p></div>`, []string{"page-builder markup"}},
		{"contact form", `<div class="wpcf7"><form></form>text</div>`, []string{"contact form"}},
		{"empty", "<p></p>", []string{"empty content"}},
		{"img only is not empty", `<p><img src="a.jpg"/></p>`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := strings.TrimSpace(sanitize.StripTags(tt.content))
			got := contentWarnings(tt.content, text)
			if len(got) != len(tt.want) {
				t.Fatalf("contentWarnings() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("contentWarnings()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestAnalyzeDetectsLanguage(t *testing.T) {
	analyzer := NewAnalyzer()
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"english", "<p>This is a perfectly ordinary English paragraph about shipping and returns.</p>", "English"},
		{"french", "<p>Ceci est un paragraphe parfaitement ordinaire sur les livraisons et les retours.</p>", "French"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := models.ContentItem{Slug: "x", Title: "X", Content: tt.content}
			row := analyzer.Analyze(item, router.RouteResult{Target: router.TargetCMS, RuleName: router.DefaultRuleName}, 0)
			if row.Language != tt.want {
				t.Errorf("Language = %q, want %q", row.Language, tt.want)
			}
		})
	}
}

func TestAnalyzeDecodesTitle(t *testing.T) {
	analyzer := NewAnalyzer()
	item := models.ContentItem{Slug: "x", Title: "Cats &amp; Dogs", Content: "<p>Some text here.</p>"}
	row := analyzer.Analyze(item, router.RouteResult{Target: router.TargetCMS, RuleName: "r"}, 2)
	if row.Title != "Cats & Dogs" {
		t.Errorf("Title = %q, want %q", row.Title, "Cats & Dogs")
	}
	if row.ImageCount != 2 {
		t.Errorf("ImageCount = %d, want 2", row.ImageCount)
	}
}

func TestHumanSize(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 << 20, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := HumanSize(tt.n); got != tt.want {
			t.Errorf("HumanSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
