package storage

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

	"ContentPipeline/internal/config"
	"ContentPipeline/internal/domain"
	"ContentPipeline/internal/ports"
)

// RESTRepository inserts suggestions through the hosted backend's REST
// interface using the service-role key, which bypasses row-level security.
type RESTRepository struct {
	baseURL    string
	serviceKey string
	table      string
	http       *http.Client
}

var (
	_ ports.SuggestionRepository = (*RESTRepository)(nil)
	_ ports.Validator            = (*RESTRepository)(nil)
)

// NewRESTRepository builds a repository from publisher configuration.
func NewRESTRepository(cfg config.PublisherConfig, httpClient *http.Client) *RESTRepository {
	if httpClient == nil {
		timeout := cfg.REST.Timeout
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &RESTRepository{
		baseURL:    strings.TrimSuffix(strings.TrimSpace(cfg.REST.URL), "/"),
		serviceKey: strings.TrimSpace(cfg.REST.ServiceKey),
		table:      cfg.Table,
		http:       httpClient,
	}
}

// Validate reports missing credentials without touching the network.
func (r *RESTRepository) Validate() error {
	var missing []string
	if r.baseURL == "" {
		missing = append(missing, "SUPABASE_URL")
	}
	if r.serviceKey == "" {
		missing = append(missing, "SUPABASE_SERVICE_ROLE_KEY")
	}
	return domain.NewMissingConfig("publisher", missing...)
}

// InsertSuggestions posts all rows in one request; the backend applies them atomically.
func (r *RESTRepository) InsertSuggestions(ctx context.Context, rows []domain.PersistedSuggestion) (int, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	body, err := json.Marshal(rows)
	if err != nil {
		return 0, fmt.Errorf("marshal rows: %w", err)
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s", r.baseURL, url.PathEscape(r.table))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("apikey", r.serviceKey)
	req.Header.Set("Authorization", "Bearer "+r.serviceKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := r.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("insert suggestions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return 0, fmt.Errorf("insert suggestions: backend returned %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var inserted []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&inserted); err != nil {
		return 0, fmt.Errorf("%w: decode inserted rows: %v", domain.ErrInvalidResponse, err)
	}

	return len(inserted), nil
}
