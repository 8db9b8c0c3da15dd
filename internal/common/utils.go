package common

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
)

// NewLogger builds the JSON logger the commands share. Logs go to
// stderr so table and summary output on stdout stays machine-readable;
// when logFile is set the stream is duplicated into it.
func NewLogger(quiet bool, logFile string) *slog.Logger {
	logLevel := slog.LevelInfo
	if quiet {
		logLevel = slog.LevelError
	}

	var out io.Writer = os.Stderr
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot open log file %s: %v\n", logFile, err)
		} else {
			out = io.MultiWriter(os.Stderr, f)
		}
	}

	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: logLevel}))
}

// SanitizeBaseURL performs basic cleanup on configured base URLs to
// handle common copy-paste issues: surrounding whitespace, trailing
// slashes, and a trailing /wp-json or /api segment pasted from the
// browser.
func SanitizeBaseURL(rawURL string) string {
	cleaned := strings.TrimSpace(rawURL)
	cleaned = strings.TrimSuffix(cleaned, "/")
	cleaned = strings.TrimSuffix(cleaned, "/wp-json")
	cleaned = strings.TrimSuffix(cleaned, "/api")
	return cleaned
}

// ValidateBaseURL rejects URLs that cannot serve as an API base.
func ValidateBaseURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL %q must use http or https", rawURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL %q has no host", rawURL)
	}
	return nil
}
