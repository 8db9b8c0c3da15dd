// Package sanitize provides the pure text-cleaning primitives used when
// preparing WordPress content for PrestaShop: entity decoding, tag
// stripping, slug normalization, and word-boundary truncation.
package sanitize

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	tagRe        = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	nonSlugRe    = regexp.MustCompile(`[^a-z0-9]+`)
	// Characters PrestaShop's generic-name validator rejects in meta fields.
	metaDisallowedRe = regexp.MustCompile(`[<>={};]`)
)

// DecodeEntities decodes HTML entities (&amp; -> &, &#8217; -> ').
func DecodeEntities(s string) string {
	if s == "" {
		return ""
	}
	return html.UnescapeString(s)
}

// StripTags removes all HTML tags and collapses whitespace runs to
// single spaces.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	clean := tagRe.ReplaceAllString(s, "")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(clean, " "))
}

// Slug sanitizes a slug for PrestaShop's link_rewrite field: NFD
// decomposition with combining marks dropped, lowercase, every run of
// non [a-z0-9] replaced by a single hyphen, no leading or trailing
// hyphens. Idempotent; empty input yields empty output.
func Slug(s string) string {
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	ascii, _, _ := transform.String(t, s)
	ascii = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, ascii)
	ascii = strings.ToLower(ascii)
	ascii = nonSlugRe.ReplaceAllString(ascii, "-")
	return strings.Trim(ascii, "-")
}

// Truncate shortens text to at most max runes, cutting at the last word
// boundary before the limit. Text with no space inside the window is
// hard-cut at the limit.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	cut := string(r[:max])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		return cut[:idx]
	}
	return cut
}

// MetaField prepares a string for a PrestaShop meta field: tags stripped,
// entities decoded, validator-rejected characters removed, whitespace
// collapsed, word-boundary truncated to max runes.
func MetaField(s string, max int) string {
	clean := StripTags(s)
	clean = DecodeEntities(clean)
	clean = metaDisallowedRe.ReplaceAllString(clean, "")
	clean = strings.TrimSpace(whitespaceRe.ReplaceAllString(clean, " "))
	return Truncate(clean, max)
}
