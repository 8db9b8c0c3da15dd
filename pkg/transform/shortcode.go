package transform

import "regexp"

// Page builders such as Divi leave bracketed shortcodes in the rendered
// content. Image shortcodes carry a src attribute worth preserving; the
// rest is noise that PrestaShop would display literally.
var (
	// An opening or self-closing shortcode embedding a src="..." value,
	// e.g. [et_pb_image src="https://site/img.jpg" align="center"].
	shortcodeImageRe = regexp.MustCompile(`\[[a-zA-Z][a-zA-Z0-9_]*[^\]]*?\bsrc=["']([^"']+)["'][^\]]*?/?\]`)

	// Any remaining shortcode marker: opening, closing, or self-closing.
	shortcodeRe = regexp.MustCompile(`\[/?[a-zA-Z][a-zA-Z0-9_]*[^\]]*\]`)

	// Runs of three or more blank lines left behind by stripped markers.
	blankLinesRe = regexp.MustCompile(`(?:\n[ \t]*){4,}`)
)

// extractShortcodeImages rewrites image shortcodes into standard image
// tags so the image-discovery pass can find them. Must run before
// stripShortcodes, which would otherwise discard the src values.
func extractShortcodeImages(content string) string {
	return shortcodeImageRe.ReplaceAllString(content, `<img src="$1"/>`)
}

// stripShortcodes removes every remaining bracketed shortcode marker,
// keeping the plain text between paired tags, then collapses runs of
// three or more blank lines down to two.
func stripShortcodes(content string) string {
	content = shortcodeRe.ReplaceAllString(content, "")
	return blankLinesRe.ReplaceAllString(content, "\n\n\n")
}
