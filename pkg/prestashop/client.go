// Package prestashop is a thin client for the PrestaShop Webservice API.
// Lookups use the JSON output format; writes use XML payloads, which is
// the only format the Webservice accepts for mutations.
package prestashop

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"wp2presta/models"
	"wp2presta/pkg/sanitize"
)

const userAgent = "WP2Presta-Migration/2.0"

// Meta field limits enforced by PrestaShop's validators.
const (
	metaTitleLimit       = 255
	metaDescriptionLimit = 512
)

// ErrCreatedUnknownID reports a create that the API accepted but whose
// response carried no parsable resource ID. The resource most likely
// exists; callers decide whether to treat this as success.
var ErrCreatedUnknownID = errors.New("prestashop: created but response had no parsable id")

// Client talks to one PrestaShop store's Webservice API.
type Client struct {
	apiBase string
	apiKey  string
	langID  int
	client  *http.Client
	logger  *slog.Logger
}

// New creates a Client for the given API base (…/api). The API key is
// sent as the Basic auth username with an empty password, per the
// Webservice convention.
func New(apiBase, apiKey string, defaultLangID int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		apiBase: apiBase,
		apiKey:  apiKey,
		langID:  defaultLangID,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// TestConnection reports whether the API root answers with 200 for the
// configured key.
func (c *Client) TestConnection(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	resp, err := c.do(ctx, http.MethodGet, c.apiBase+"/", nil, "")
	if err != nil {
		c.logger.Error("prestashop connection failed", "error", err)
		return false
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true
	case http.StatusUnauthorized:
		c.logger.Error("prestashop rejected API key (401)")
		return false
	default:
		c.logger.Error("prestashop returned unexpected status", "status", resp.StatusCode)
		return false
	}
}

// FindCMSPageBySlug looks up an existing CMS page by link_rewrite.
// Not found is (0, false, nil), not an error.
func (c *Client) FindCMSPageBySlug(ctx context.Context, slug string) (int, bool, error) {
	q := url.Values{}
	q.Set("output_format", "JSON")
	q.Set("filter[link_rewrite]", slug)
	q.Set("display", "[id]")

	return c.findID(ctx, "content_management_system", q)
}

// FindProductByReference looks up a product by its exact reference.
func (c *Client) FindProductByReference(ctx context.Context, reference string) (int, bool, error) {
	q := url.Values{}
	q.Set("output_format", "JSON")
	q.Set("filter[reference]", reference)
	q.Set("display", "[id]")

	return c.findID(ctx, "products", q)
}

// FindProductByName looks up a product by fuzzy name match (LIKE filter
// on the product name). The first match wins.
func (c *Client) FindProductByName(ctx context.Context, name string) (int, bool, error) {
	q := url.Values{}
	q.Set("output_format", "JSON")
	q.Set("filter[name]", "%"+name+"%")
	q.Set("display", "[id]")

	return c.findID(ctx, "products", q)
}

// CreateCMSPage creates a new CMS page and returns its ID. A 2xx
// response without a parsable ID returns (0, ErrCreatedUnknownID).
func (c *Client) CreateCMSPage(ctx context.Context, page models.TransformedPage, categoryID int) (int, error) {
	payload, err := c.buildCMSPayload(page, categoryID, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.do(ctx, http.MethodPost, c.apiBase+"/content_management_system", payload, "text/xml; charset=utf-8")
	if err != nil {
		return 0, fmt.Errorf("create CMS page: %w", err)
	}
	defer resp.Body.Close()

	body, err := c.readSuccess(resp)
	if err != nil {
		return 0, fmt.Errorf("create CMS page: %w", err)
	}

	var parsed cmsResponse
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return 0, ErrCreatedUnknownID
	}
	id, err := strconv.Atoi(parsed.CMS.ID)
	if err != nil || id == 0 {
		return 0, ErrCreatedUnknownID
	}

	c.logger.Info("created CMS page", "id", id, "slug", page.Slug)
	return id, nil
}

// UpdateCMSPage overwrites an existing CMS page in place.
func (c *Client) UpdateCMSPage(ctx context.Context, id int, page models.TransformedPage, categoryID int) error {
	payload, err := c.buildCMSPayload(page, categoryID, &id)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/content_management_system/%d", c.apiBase, id)
	resp, err := c.do(ctx, http.MethodPut, endpoint, payload, "text/xml; charset=utf-8")
	if err != nil {
		return fmt.Errorf("update CMS page %d: %w", id, err)
	}
	defer resp.Body.Close()

	if _, err := c.readSuccess(resp); err != nil {
		return fmt.Errorf("update CMS page %d: %w", id, err)
	}

	c.logger.Info("updated CMS page", "id", id, "slug", page.Slug)
	return nil
}

// UpdateProductDescription overwrites a product's description and SEO
// fields. The Webservice requires PUT of the full resource, so this is
// a read-modify-write: fetch the product XML, mutate the fields, strip
// the read-only nodes, and put it back.
func (c *Client) UpdateProductDescription(ctx context.Context, id int, descriptionHTML, metaTitle, metaDescription string) error {
	endpoint := fmt.Sprintf("%s/products/%d", c.apiBase, id)

	resp, err := c.do(ctx, http.MethodGet, endpoint, nil, "")
	if err != nil {
		return fmt.Errorf("fetch product %d: %w", id, err)
	}
	body, err := c.readSuccess(resp)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("fetch product %d: %w", id, err)
	}

	var root node
	if err := xml.Unmarshal(body, &root); err != nil {
		return fmt.Errorf("parse product %d: %w", id, err)
	}

	err = prepareProductUpdate(&root, c.langID,
		descriptionHTML,
		sanitize.MetaField(metaTitle, metaTitleLimit),
		sanitize.MetaField(metaDescription, metaDescriptionLimit),
	)
	if err != nil {
		return fmt.Errorf("product %d: %w", id, err)
	}

	payload, err := xml.Marshal(root)
	if err != nil {
		return fmt.Errorf("marshal product %d: %w", id, err)
	}

	putResp, err := c.do(ctx, http.MethodPut, endpoint, payload, "text/xml; charset=utf-8")
	if err != nil {
		return fmt.Errorf("update product %d: %w", id, err)
	}
	defer putResp.Body.Close()

	if _, err := c.readSuccess(putResp); err != nil {
		return fmt.Errorf("update product %d: %w", id, err)
	}

	c.logger.Info("updated product description", "id", id)
	return nil
}

func (c *Client) buildCMSPayload(page models.TransformedPage, categoryID int, existingID *int) ([]byte, error) {
	envelope := cmsEnvelope{
		Xlink: xlinkNS,
		CMS: cmsBody{
			ID:              existingID,
			CategoryID:      categoryID,
			Active:          1,
			Indexation:      1,
			MetaTitle:       newLangField(c.langID, sanitize.MetaField(page.MetaTitle, metaTitleLimit)),
			MetaDescription: newLangField(c.langID, sanitize.MetaField(page.MetaDescription, metaDescriptionLimit)),
			MetaKeywords:    newLangField(c.langID, ""),
			Content:         newLangField(c.langID, page.Content),
			LinkRewrite:     newLangField(c.langID, page.Slug),
		},
	}

	payload, err := xml.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("marshal CMS payload: %w", err)
	}
	return payload, nil
}

// findID runs a filtered list query and extracts the first resource ID.
func (c *Client) findID(ctx context.Context, resource string, q url.Values) (int, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	endpoint := fmt.Sprintf("%s/%s?%s", c.apiBase, resource, q.Encode())
	resp, err := c.do(ctx, http.MethodGet, endpoint, nil, "")
	if err != nil {
		return 0, false, fmt.Errorf("query %s: %w", resource, err)
	}
	defer resp.Body.Close()

	body, err := c.readSuccess(resp)
	if err != nil {
		return 0, false, fmt.Errorf("query %s: %w", resource, err)
	}

	id, found := extractFirstID(body, resource)
	return id, found, nil
}

// extractFirstID digs the first id out of a JSON list response.
// PrestaShop returns either {"resource": [{"id": N}, …]} for matches or
// an empty array / empty object when nothing matched, and ids may be
// numbers or strings depending on version.
func extractFirstID(body []byte, resource string) (int, bool) {
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return 0, false
	}
	raw, ok := wrapper[resource]
	if !ok {
		return 0, false
	}

	type entry struct {
		ID json.Number `json:"id"`
	}

	var list []entry
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return 0, false
		}
		return numberToID(list[0].ID)
	}

	var single entry
	if err := json.Unmarshal(raw, &single); err == nil {
		return numberToID(single.ID)
	}

	return 0, false
}

func numberToID(n json.Number) (int, bool) {
	id, err := strconv.Atoi(n.String())
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, contentType string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.SetBasicAuth(c.apiKey, "")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.client.Do(req)
}

// readSuccess returns the response body for 2xx statuses and an error
// carrying a body snippet otherwise.
func (c *Client) readSuccess(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(body)
		if len(snippet) > 500 {
			snippet = snippet[:500]
		}
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, snippet)
	}
	return body, nil
}
