package plan

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pemistahl/lingua-go"

	"wp2presta/models"
	"wp2presta/pkg/router"
	"wp2presta/pkg/sanitize"
)

var (
	shortcodeRe   = regexp.MustCompile(`\[/?[a-zA-Z][a-zA-Z0-9_]*[^\]]*\]`)
	pageBuilderRe = regexp.MustCompile(`et_pb_|wp-block-|elementor-`)
	contactFormRe = regexp.MustCompile(`wpcf7|contact-form|gravityform`)
)

// Row is the analysis of one content item for the plan table.
type Row struct {
	Slug       string
	Title      string
	Target     string
	Rule       string
	Size       int
	ImageCount int
	Language   string
	Warnings   []string
}

// Analyzer inspects content items without writing anywhere.
type Analyzer struct {
	detector lingua.LanguageDetector
}

// NewAnalyzer builds the language detector once; construction is
// expensive, so the analyzer is reused across items.
func NewAnalyzer() *Analyzer {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(lingua.French, lingua.English, lingua.German, lingua.Spanish).
		Build()
	return &Analyzer{detector: detector}
}

// Analyze produces one table row for an item and its routing decision.
func (a *Analyzer) Analyze(item models.ContentItem, route router.RouteResult, imageCount int) Row {
	row := Row{
		Slug:       item.Slug,
		Title:      sanitize.DecodeEntities(item.Title),
		Target:     string(route.Target),
		Rule:       route.RuleName,
		Size:       len(item.Content),
		ImageCount: imageCount,
	}

	text := strings.TrimSpace(sanitize.StripTags(item.Content))
	if text != "" {
		if lang, ok := a.detector.DetectLanguageOf(text); ok {
			row.Language = lang.String()
		}
	}
	row.Warnings = contentWarnings(item.Content, text)
	return row
}

// contentWarnings flags markup that tends to survive migration badly.
func contentWarnings(content, text string) []string {
	var warnings []string
	if shortcodeRe.MatchString(content) {
		warnings = append(warnings, "shortcodes")
	}
	if pageBuilderRe.MatchString(content) {
		warnings = append(warnings, "page-builder markup")
	}
	if contactFormRe.MatchString(content) {
		warnings = append(warnings, "contact form")
	}
	if text == "" && !strings.Contains(content, "<img") {
		warnings = append(warnings, "empty content")
	}
	return warnings
}

// HumanSize renders a byte count for the table.
func HumanSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
