package service

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

	"github.com/jmorris/officiantfinder/internal/model"
)

const (
	registryTimeout = 60 * time.Second
	maxRetries      = 3
	initialBackoff  = 2 * time.Second
	pageDelay       = 50 * time.Millisecond
)

// RegistryClient handles communication with the Ontario Data Catalogue
// datastore API
type RegistryClient struct {
	baseURL    string
	resourceID string
	pageSize   int
	client     *http.Client
}

// NewRegistryClient creates a new registry API client
func NewRegistryClient(baseURL, resourceID string, pageSize int) *RegistryClient {
	return &RegistryClient{
		baseURL:    baseURL,
		resourceID: resourceID,
		pageSize:   pageSize,
		client: &http.Client{
			Timeout: registryTimeout,
		},
	}
}

// datastoreResponse represents the CKAN datastore_search response envelope
type datastoreResponse struct {
	Result struct {
		Records []registryRecordJSON `json:"records"`
		Total   int                  `json:"total"`
	} `json:"result"`
}

// registryRecordJSON carries the raw source field names
type registryRecordJSON struct {
	ID           int    `json:"_id"`
	Municipality string `json:"Municipality"`
	LastName     string `json:"Last Name"`
	FirstName    string `json:"First Name"`
	Affiliation  string `json:"Affiliation"`
}

// FetchPage retrieves one page of registry records plus the total count
func (c *RegistryClient) FetchPage(ctx context.Context, offset int) ([]model.RegistryRecord, int, error) {
	params := url.Values{}
	params.Set("resource_id", c.resourceID)
	params.Set("limit", strconv.Itoa(c.pageSize))
	params.Set("offset", strconv.Itoa(offset))

	body, err := c.fetchWithRetry(ctx, c.baseURL+"?"+params.Encode())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch registry page at offset %d: %w", offset, err)
	}

	var resp datastoreResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, 0, fmt.Errorf("failed to parse registry response: %w", err)
	}

	records := make([]model.RegistryRecord, len(resp.Result.Records))
	for i, r := range resp.Result.Records {
		records[i] = normalizeRecord(r)
	}

	return records, resp.Result.Total, nil
}

// FetchAll retrieves the entire registry via paginated requests. onPage, when
// set, is invoked after each page with running and total counts.
func (c *RegistryClient) FetchAll(ctx context.Context, onPage func(fetched, total int)) ([]model.RegistryRecord, error) {
	records, total, err := c.FetchPage(ctx, 0)
	if err != nil {
		return nil, err
	}
	if onPage != nil {
		onPage(len(records), total)
	}

	for offset := c.pageSize; offset < total; offset += c.pageSize {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pageDelay):
		}

		page, _, err := c.FetchPage(ctx, offset)
		if err != nil {
			return nil, err
		}
		records = append(records, page...)

		if onPage != nil {
			onPage(len(records), total)
		}
	}

	return records, nil
}

// normalizeRecord trims all text fields; absent values become blank strings,
// never nulls
func normalizeRecord(r registryRecordJSON) model.RegistryRecord {
	return model.RegistryRecord{
		OntarioID:    r.ID,
		FirstName:    strings.TrimSpace(r.FirstName),
		LastName:     strings.TrimSpace(r.LastName),
		Municipality: strings.TrimSpace(r.Municipality),
		Affiliation:  strings.TrimSpace(r.Affiliation),
	}
}

// fetchWithRetry performs an HTTP GET with exponential backoff retry
func (c *RegistryClient) fetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()

		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
			continue
		}

		return body, nil
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}
