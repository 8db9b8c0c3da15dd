// Package wordpress is a thin client for the WordPress REST API (WP 4.7+).
// It fetches published content with pagination, normalizes each record
// into a models.ContentItem, and downloads images.
package wordpress

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"wp2presta/models"
)

const (
	userAgent   = "WP2Presta-Migration/2.0"
	perPage     = 100
	fetchFields = "id,title,content,excerpt,slug,date,modified,categories,yoast_head_json"
)

// rendered is the WP REST envelope for HTML fields.
type rendered struct {
	Rendered string `json:"rendered"`
}

type yoastHead struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// record is one raw page or post as returned by the API.
type record struct {
	ID         int        `json:"id"`
	Title      rendered   `json:"title"`
	Content    rendered   `json:"content"`
	Excerpt    rendered   `json:"excerpt"`
	Slug       string     `json:"slug"`
	Date       string     `json:"date"`
	Modified   string     `json:"modified"`
	Categories []int      `json:"categories"`
	Yoast      *yoastHead `json:"yoast_head_json"`
}

// Client talks to one WordPress site.
type Client struct {
	apiBase  string
	username string
	password string
	client   *http.Client
	logger   *slog.Logger
}

// New creates a Client for the given API base (…/wp-json/wp/v2). Empty
// credentials mean anonymous access to public content only.
func New(apiBase, username, appPassword string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		apiBase:  apiBase,
		username: username,
		password: appPassword,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   logger,
	}
}

// FetchAll retrieves every published page (and post, when requested) and
// returns them as normalized content items in source order. A failure on
// the first batch is an error; a failure mid-pagination returns the
// items fetched so far.
func (c *Client) FetchAll(ctx context.Context, includePosts bool) ([]models.ContentItem, error) {
	items, err := c.fetchResource(ctx, "pages", models.ContentTypePage)
	if err != nil {
		return nil, err
	}

	if includePosts {
		posts, err := c.fetchResource(ctx, "posts", models.ContentTypePost)
		if err != nil {
			c.logger.Warn("failed to fetch posts, continuing with pages only", "error", err)
		}
		items = append(items, posts...)
	}

	c.logger.Info("wordpress fetch complete", "items", len(items))
	return items, nil
}

func (c *Client) fetchResource(ctx context.Context, resource string, ctype models.ContentType) ([]models.ContentItem, error) {
	var items []models.ContentItem

	for pageNum := 1; ; pageNum++ {
		records, totalPages, err := c.fetchBatch(ctx, resource, pageNum)
		if err != nil {
			if pageNum == 1 {
				return nil, fmt.Errorf("fetch %s: %w", resource, err)
			}
			c.logger.Warn("batch fetch failed, returning partial result",
				"resource", resource, "batch", pageNum, "error", err)
			return items, nil
		}
		if len(records) == 0 {
			break
		}

		for _, r := range records {
			items = append(items, normalize(r, ctype))
		}
		c.logger.Info("fetched batch", "resource", resource, "batch", pageNum, "count", len(records))

		if pageNum >= totalPages {
			break
		}
	}

	return items, nil
}

func (c *Client) fetchBatch(ctx context.Context, resource string, pageNum int) ([]record, int, error) {
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("page", strconv.Itoa(pageNum))
	q.Set("status", "publish")
	q.Set("_fields", fetchFields)

	reqURL := fmt.Sprintf("%s/%s?%s", c.apiBase, resource, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if c.username != "" && c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var records []record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, 0, fmt.Errorf("decode response: %w", err)
	}

	totalPages := 1
	if h := resp.Header.Get("X-WP-TotalPages"); h != "" {
		if n, err := strconv.Atoi(h); err == nil {
			totalPages = n
		}
	}

	return records, totalPages, nil
}

// DownloadImage fetches an image by URL and returns its bytes.
func (c *Client) DownloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", imageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: unexpected status %d", imageURL, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// normalize flattens a raw API record into a ContentItem. SEO fields
// fall back to the title and excerpt when Yoast data is absent.
func normalize(r record, ctype models.ContentType) models.ContentItem {
	metaTitle := r.Title.Rendered
	metaDescription := r.Excerpt.Rendered
	if r.Yoast != nil {
		if r.Yoast.Title != "" {
			metaTitle = r.Yoast.Title
		}
		if r.Yoast.Description != "" {
			metaDescription = r.Yoast.Description
		}
	}

	return models.ContentItem{
		ID:              r.ID,
		Title:           r.Title.Rendered,
		Content:         r.Content.Rendered,
		Excerpt:         r.Excerpt.Rendered,
		Slug:            r.Slug,
		MetaTitle:       metaTitle,
		MetaDescription: metaDescription,
		Type:            ctype,
		CategoryIDs:     r.Categories,
		Date:            r.Date,
		Modified:        r.Modified,
	}
}
