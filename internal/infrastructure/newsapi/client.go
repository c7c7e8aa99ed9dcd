package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ContentPipeline/internal/config"
	"ContentPipeline/internal/domain"
	"ContentPipeline/internal/ports"
)

const (
	apiKeyHeader = "X-Api-Key"
	// removedMarker replaces title and url of articles withdrawn by the publisher.
	removedMarker = "[Removed]"
)

// Client queries the news search endpoint once per category query.
type Client struct {
	endpoint string
	apiKey   string
	domains  []string
	language string
	sortBy   string
	pageSize int
	http     *http.Client
}

var (
	_ ports.NewsSearcher = (*Client)(nil)
	_ ports.Validator    = (*Client)(nil)
)

// NewClient builds a client from configuration; a nil httpClient gets the configured timeout.
func NewClient(cfg config.NewsConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		domains:  cfg.Domains,
		language: cfg.Language,
		sortBy:   cfg.SortBy,
		pageSize: cfg.PageSize,
		http:     httpClient,
	}
}

// Validate reports missing credentials without touching the network.
func (c *Client) Validate() error {
	var missing []string
	if strings.TrimSpace(c.apiKey) == "" {
		missing = append(missing, "NEWS_API_KEY")
	}
	if strings.TrimSpace(c.endpoint) == "" {
		missing = append(missing, "news.endpoint")
	}
	return domain.NewMissingConfig("collector", missing...)
}

type searchResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title      string `json:"title"`
		URL        string `json:"url"`
		URLToImage string `json:"urlToImage"`
	} `json:"articles"`
}

// Search returns the provider's hits for query in API order.
func (c *Client) Search(ctx context.Context, query string) ([]domain.NewsArticle, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	searchURL, err := buildSearchURL(c.endpoint, query, c.domains, c.language, c.sortBy, c.pageSize)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("User-Agent", "ContentPipeline/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("news api returned %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	if decoded.Status != "" && decoded.Status != "ok" {
		return nil, fmt.Errorf("%w: news api status %s (%s): %s", domain.ErrInvalidResponse, decoded.Status, decoded.Code, decoded.Message)
	}

	articles := make([]domain.NewsArticle, 0, len(decoded.Articles))
	for _, a := range decoded.Articles {
		title := cleanText(a.Title)
		if title == removedMarker {
			title = ""
		}
		articles = append(articles, domain.NewsArticle{
			Title:      title,
			URL:        strings.TrimSpace(a.URL),
			SourceName: strings.TrimSpace(a.Source.Name),
			ImageURL:   strings.TrimSpace(a.URLToImage),
		})
	}

	return articles, nil
}

func buildSearchURL(endpoint, query string, domains []string, language, sortBy string, pageSize int) (string, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid news endpoint %s: %w", endpoint, err)
	}

	q := parsed.Query()
	q.Set("q", query)
	if len(domains) > 0 {
		q.Set("domains", strings.Join(domains, ","))
	}
	if language != "" {
		q.Set("language", language)
	}
	if sortBy != "" {
		q.Set("sortBy", sortBy)
	}
	if pageSize > 0 {
		q.Set("pageSize", strconv.Itoa(pageSize))
	}
	parsed.RawQuery = q.Encode()
	return parsed.String(), nil
}

// cleanText drops markup and entities the provider sometimes leaves in titles.
func cleanText(raw string) string {
	if !strings.ContainsAny(raw, "<&") {
		return strings.Join(strings.Fields(raw), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return strings.Join(strings.Fields(raw), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
