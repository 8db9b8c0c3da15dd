package models

// ContentType distinguishes page-like from post-like source content.
// It is only a routing signal; the pipeline treats both the same way.
type ContentType string

const (
	ContentTypePage ContentType = "page"
	ContentTypePost ContentType = "post"
)

// ContentItem is one normalized unit of source content, built once per
// fetch cycle from the WordPress REST response and immutable afterwards.
type ContentItem struct {
	ID              int
	Title           string
	Content         string
	Excerpt         string
	Slug            string
	MetaTitle       string
	MetaDescription string
	Type            ContentType
	CategoryIDs     []int
	Date            string
	Modified        string
}

// TransformedPage is a ContentItem with PrestaShop-ready fields.
type TransformedPage struct {
	Title           string
	Content         string
	Slug            string
	MetaTitle       string
	MetaDescription string
}

// DiscoveredImage records one same-host image found during transformation.
type DiscoveredImage struct {
	OriginalURL string
	Filename    string
	NewURL      string
}
