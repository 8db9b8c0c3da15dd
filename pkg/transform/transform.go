// Package transform converts raw WordPress HTML and metadata into
// PrestaShop-safe fields. It rewrites same-host image references to their
// destination URLs and returns the catalogue of images that need to be
// transferred alongside the content.
package transform

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"wp2presta/models"
	"wp2presta/pkg/sanitize"
)

const (
	maxMetaTitleLen       = 255
	maxMetaDescriptionLen = 512

	// Destination path for CMS images under the PrestaShop base URL.
	cmsImagePath = "/img/cms/"
)

// wpClassPrefixes are WordPress-specific class prefixes stripped from
// every element. wpClassExact are stripped on exact match only.
var (
	wpClassPrefixes = []string{"wp-block-", "wp-image-", "has-", "is-layout-"}
	wpClassExact    = map[string]struct{}{"alignwide": {}, "alignfull": {}}

	imgClassPrefixes = []string{"wp-image-", "size-"}
)

// Result is the outcome of transforming one content item. Images holds
// exactly the same-host images discovered during this call; there is no
// state carried between calls.
type Result struct {
	Page   models.TransformedPage
	Images []models.DiscoveredImage
}

// Transformer rewrites WordPress content for PrestaShop.
type Transformer struct {
	wpBase    *url.URL
	wpBaseRaw string
	psBase    string
	logger    *slog.Logger
}

// New creates a Transformer for the given source and destination base URLs.
func New(wpBaseURL, psBaseURL string, logger *slog.Logger) (*Transformer, error) {
	raw := strings.TrimRight(wpBaseURL, "/")
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid wordpress base URL %q: %w", wpBaseURL, err)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Transformer{
		wpBase:    base,
		wpBaseRaw: raw,
		psBase:    strings.TrimRight(psBaseURL, "/"),
		logger:    logger,
	}, nil
}

// Transform applies all transformations to one content item and returns
// the PrestaShop-ready fields plus the discovered images.
func (t *Transformer) Transform(item models.ContentItem) (Result, error) {
	page := models.TransformedPage{
		Title:     sanitize.DecodeEntities(item.Title),
		MetaTitle: sanitize.Truncate(sanitize.DecodeEntities(item.MetaTitle), maxMetaTitleLen),
		Slug:      sanitize.Slug(item.Slug),
	}

	metaDesc := sanitize.DecodeEntities(sanitize.StripTags(item.MetaDescription))
	if metaDesc == "" {
		metaDesc = t.deriveDescription(item.Content)
	}
	page.MetaDescription = sanitize.Truncate(metaDesc, maxMetaDescriptionLen)

	content, images, err := t.transformHTML(item.Content)
	if err != nil {
		return Result{}, fmt.Errorf("transform content for %q: %w", item.Slug, err)
	}
	page.Content = content

	return Result{Page: page, Images: images}, nil
}

// transformHTML runs the content pipeline in its fixed order: shortcode
// image extraction, shortcode stripping, then the tag-aware passes
// (image rewriting, class cleanup, empty-paragraph removal).
func (t *Transformer) transformHTML(content string) (string, []models.DiscoveredImage, error) {
	if strings.TrimSpace(content) == "" {
		return "", nil, nil
	}

	content = extractShortcodeImages(content)
	content = stripShortcodes(content)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", nil, fmt.Errorf("parse HTML: %w", err)
	}

	images := t.rewriteImages(doc)
	cleanClasses(doc)
	removeEmptyParagraphs(doc)

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", nil, fmt.Errorf("serialize HTML: %w", err)
	}
	return out, images, nil
}

// rewriteImages catalogues every same-host image and points its src at
// the destination store. External images are left untouched, as are
// images whose URL has no filename component.
func (t *Transformer) rewriteImages(doc *goquery.Document) []models.DiscoveredImage {
	var images []models.DiscoveredImage

	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		if src == "" {
			return
		}

		// Resolve root-relative URLs against the source site.
		if strings.HasPrefix(src, "/") {
			src = t.wpBaseRaw + src
		}

		parsed, err := url.Parse(src)
		if err != nil {
			return
		}
		if parsed.Hostname() != "" && parsed.Hostname() != t.wpBase.Hostname() {
			t.logger.Debug("skipping external image", "src", src)
			return
		}

		filename := parsed.Path
		if idx := strings.LastIndex(filename, "/"); idx >= 0 {
			filename = filename[idx+1:]
		}
		if filename == "" {
			return
		}

		newURL := t.psBase + cmsImagePath + filename
		images = append(images, models.DiscoveredImage{
			OriginalURL: src,
			Filename:    filename,
			NewURL:      newURL,
		})

		img.SetAttr("src", newURL)
		t.logger.Debug("image rewrite", "from", src, "to", newURL)

		// Responsive variants have no destination equivalent.
		img.RemoveAttr("srcset")

		if class, ok := img.Attr("class"); ok {
			kept := filterClasses(class, imgClassPrefixes, nil)
			if kept == "" {
				img.RemoveAttr("class")
			} else {
				img.SetAttr("class", kept)
			}
		}
	})

	return images
}

// cleanClasses strips WordPress-specific class tokens from every element
// and drops class attributes that end up empty.
func cleanClasses(doc *goquery.Document) {
	doc.Find("[class]").Each(func(_ int, el *goquery.Selection) {
		class, _ := el.Attr("class")
		kept := filterClasses(class, wpClassPrefixes, wpClassExact)
		if kept == "" {
			el.RemoveAttr("class")
		} else if kept != class {
			el.SetAttr("class", kept)
		}
	})
}

func filterClasses(class string, prefixes []string, exact map[string]struct{}) string {
	var kept []string
	for _, token := range strings.Fields(class) {
		if _, drop := exact[token]; drop {
			continue
		}
		dropToken := false
		for _, p := range prefixes {
			if strings.HasPrefix(token, p) {
				dropToken = true
				break
			}
		}
		if !dropToken {
			kept = append(kept, token)
		}
	}
	return strings.Join(kept, " ")
}

// removeEmptyParagraphs drops paragraphs with no visible text and no
// image child, which would render as empty blocks in PrestaShop.
func removeEmptyParagraphs(doc *goquery.Document) {
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		if strings.TrimSpace(p.Text()) == "" && p.Find("img").Length() == 0 {
			p.Remove()
		}
	})
}

// deriveDescription extracts a plain-text description from the content
// body when the source provides no SEO description and no excerpt.
func (t *Transformer) deriveDescription(content string) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(content), t.wpBase)
	if err == nil && strings.TrimSpace(article.Excerpt) != "" {
		return sanitize.StripTags(article.Excerpt)
	}
	return sanitize.StripTags(content)
}
