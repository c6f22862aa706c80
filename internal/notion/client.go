package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.notion.com"

// searchTimeout bounds the database listing call. The query/patch calls rely
// on the client-wide timeout instead.
const searchTimeout = 10 * time.Second

// Config carries everything needed to talk to the Notion API.
type Config struct {
	// BaseURL overrides the Notion API base URL. Useful for tests.
	BaseURL string
	Token   string
	// Version is sent as the Notion-Version header on every call.
	Version string

	// RateLimitRPS caps outbound requests across all calls. Notion enforces
	// roughly 3 requests per second per integration. Set to <=0 to disable.
	RateLimitRPS float64
}

// Client is a minimal HTTP client for the search, query and page-update
// endpoints used by this service.
type Client struct {
	baseURL *url.URL
	token   string
	version string
	limiter *rate.Limiter
	http    *http.Client
}

// NewClient constructs a client for the Notion API.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, fmt.Errorf("notion token is required")
	}
	if strings.TrimSpace(cfg.Version) == "" {
		return nil, fmt.Errorf("notion version is required")
	}

	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		raw = defaultBaseURL
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse notion base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("notion base URL must include a host (got %q)", raw)
	}
	base.Path = strings.TrimRight(base.Path, "/") + "/"
	base.RawQuery = ""
	base.Fragment = ""

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), 1)
	}

	return &Client{
		baseURL: base,
		token:   strings.TrimSpace(cfg.Token),
		version: strings.TrimSpace(cfg.Version),
		limiter: limiter,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

type searchRequest struct {
	Filter searchFilter `json:"filter"`
}

type searchFilter struct {
	Property string `json:"property"`
	Value    string `json:"value"`
}

type searchResponse struct {
	Results []Database `json:"results"`
}

// Search lists the databases the integration can see.
func (c *Client) Search(ctx context.Context) ([]Database, error) {
	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	body := searchRequest{Filter: searchFilter{Property: "object", Value: "database"}}
	rb, err := c.do(ctx, "search", http.MethodPost, "v1/search", body)
	if err != nil {
		return nil, err
	}

	var out searchResponse
	if err := json.Unmarshal(rb, &out); err != nil {
		return nil, fmt.Errorf("parse search response: %w", err)
	}
	if out.Results == nil {
		return nil, fmt.Errorf("search: empty or malformed response")
	}
	return out.Results, nil
}

type queryRequest struct {
	Filter *queryFilter `json:"filter,omitempty"`
}

type queryFilter struct {
	Property string      `json:"property"`
	Select   selectEqual `json:"select"`
}

type selectEqual struct {
	Equals string `json:"equals"`
}

type queryResponse struct {
	Results []Page `json:"results"`
}

// Query returns the pages of a database. A non-empty statusFilter restricts
// results to pages whose "Competitor Status" select equals that value; an
// empty filter returns everything.
func (c *Client) Query(ctx context.Context, databaseID, statusFilter string) ([]Page, error) {
	databaseID = strings.TrimSpace(databaseID)
	if databaseID == "" {
		return nil, fmt.Errorf("database id is required")
	}

	var body queryRequest
	if strings.TrimSpace(statusFilter) != "" {
		body.Filter = &queryFilter{
			Property: "Competitor Status",
			Select:   selectEqual{Equals: strings.TrimSpace(statusFilter)},
		}
	}

	rb, err := c.do(ctx, "query", http.MethodPost, fmt.Sprintf("v1/databases/%s/query", url.PathEscape(databaseID)), body)
	if err != nil {
		return nil, err
	}

	var out queryResponse
	if err := json.Unmarshal(rb, &out); err != nil {
		return nil, fmt.Errorf("parse query response: %w", err)
	}
	if out.Results == nil {
		return nil, fmt.Errorf("query: empty or malformed response")
	}
	return out.Results, nil
}

type updatePageRequest struct {
	Properties map[string]Property `json:"properties"`
}

// UpdateCompetitorName writes the extracted name into the page's
// "Competitor Name" title property.
func (c *Client) UpdateCompetitorName(ctx context.Context, pageID, name string) error {
	pageID = strings.TrimSpace(pageID)
	if pageID == "" {
		return fmt.Errorf("page id is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("competitor name is required")
	}

	body := updatePageRequest{
		Properties: map[string]Property{
			"Competitor Name": {
				Title: []RichText{{Text: &TextContent{Content: name}}},
			},
		},
	}

	_, err := c.do(ctx, "updatePage", http.MethodPatch, fmt.Sprintf("v1/pages/%s", url.PathEscape(pageID)), body)
	return err
}

func (c *Client) do(ctx context.Context, op, method, relPath string, body any) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	u := c.resolve(relPath)
	req, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.version)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	rb, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		return nil, newHTTPError(op, resp, rb)
	}
	return rb, nil
}

func (c *Client) resolve(relPath string) *url.URL {
	relPath = strings.TrimPrefix(relPath, "/")
	rel := &url.URL{Path: relPath}
	return c.baseURL.ResolveReference(rel)
}
