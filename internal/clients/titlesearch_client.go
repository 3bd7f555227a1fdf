package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/cleardeed/closing-service/internal/constants"
	"github.com/cleardeed/closing-service/internal/models"
	"github.com/cleardeed/closing-service/internal/utils"
)

// TitleSearchClient fetches title-search orders from the external
// search service. Used to hydrate stage content lazily when a stage
// that depends on order data becomes active.
type TitleSearchClient interface {
	GetTitleSearchOrder(ctx context.Context, id string) (*models.TitleSearchOrder, error)
}

type titleSearchClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewTitleSearchClient(baseURL, apiKey string) TitleSearchClient {
	return &titleSearchClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: constants.ClientRequestTimeout},
	}
}

func (c *titleSearchClient) GetTitleSearchOrder(ctx context.Context, id string) (*models.TitleSearchOrder, error) {
	u := c.baseURL + "/title-search/orders/" + url.PathEscape(id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrExternalServiceFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: title search returned %d", utils.ErrExternalServiceFailure, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return normalizeTitleSearchOrder(id, body)
}

// Loose wire shape: the order may arrive bare or under `data`, and the
// property attributes may be flattened or nested under `property`.
type rawOrder struct {
	Data *rawOrder `json:"data"`

	ID       json.Number `json:"id"`
	Address  string      `json:"address"`
	Owners   string      `json:"owners"`
	APN      string      `json:"apn"`
	Property *struct {
		Address string `json:"address"`
		Owners  string `json:"owners"`
		APN     string `json:"apn"`
	} `json:"property"`
	Stakeholders []models.Stakeholder   `json:"stakeholders"`
	Documents    []models.OrderDocument `json:"documents"`
}

func normalizeTitleSearchOrder(id string, body []byte) (*models.TitleSearchOrder, error) {
	var raw rawOrder
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("bad title search payload: %w", err)
	}
	if raw.Data != nil {
		raw = *raw.Data
	}

	order := &models.TitleSearchOrder{
		ID:           id,
		Address:      raw.Address,
		Owners:       raw.Owners,
		APN:          raw.APN,
		Stakeholders: raw.Stakeholders,
		Documents:    raw.Documents,
	}
	if raw.Property != nil {
		if order.Address == "" {
			order.Address = raw.Property.Address
		}
		if order.Owners == "" {
			order.Owners = raw.Property.Owners
		}
		if order.APN == "" {
			order.APN = raw.Property.APN
		}
	}
	return order, nil
}
