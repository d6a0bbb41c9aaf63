package pluggy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/RenatoMoratti/finance-app/internal/config"
	"github.com/RenatoMoratti/finance-app/internal/logger"
)

// transactionPageSize is the aggregator's maximum transactions-per-page.
const transactionPageSize = 500

// Client is a thin HTTP client for the Pluggy API. It authenticates lazily
// and re-authenticates on demand; callers just invoke the data methods.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	apiKey string
}

// NewClient builds a Client from configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:      cfg.PluggyBaseURL,
		clientID:     cfg.PluggyClientID,
		clientSecret: cfg.PluggyClientSecret,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Authenticate exchanges the client credentials for an API key.
func (c *Client) Authenticate(ctx context.Context) error {
	body := map[string]string{
		"clientId":     c.clientID,
		"clientSecret": c.clientSecret,
	}
	var out struct {
		APIKey string `json:"apiKey"`
	}
	if err := c.post(ctx, "/auth", body, &out); err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}
	c.apiKey = out.APIKey
	return nil
}

// GetItem fetches the current state of a connection.
func (c *Client) GetItem(ctx context.Context, itemID string) (*Item, error) {
	var item Item
	if err := c.get(ctx, "/items/"+itemID, nil, &item); err != nil {
		return nil, fmt.Errorf("get item %s: %w", itemID, err)
	}
	return &item, nil
}

// TriggerUpdate asks the aggregator to refresh a connection's data.
func (c *Client) TriggerUpdate(ctx context.Context, itemID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.baseURL+"/items/"+itemID, bytes.NewReader([]byte("{}")))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("trigger update %s: %w", itemID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("trigger update %s: status %d", itemID, resp.StatusCode)
	}
	return nil
}

// WaitForUpdate polls the item until it leaves the UPDATING state or
// maxAttempts is reached, returning the final status.
func (c *Client) WaitForUpdate(ctx context.Context, itemID string, maxAttempts int) (string, error) {
	status := ""
	for attempt := 0; attempt < maxAttempts; attempt++ {
		item, err := c.GetItem(ctx, itemID)
		if err != nil {
			return status, err
		}
		status = item.Status
		if status != ItemStatusUpdating {
			return status, nil
		}
		select {
		case <-ctx.Done():
			return status, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	return status, nil
}

// ListAccounts fetches all accounts of a connection.
func (c *Client) ListAccounts(ctx context.Context, itemID string) ([]Account, error) {
	var out struct {
		Results []Account `json:"results"`
	}
	params := url.Values{"itemId": {itemID}}
	if err := c.get(ctx, "/accounts", params, &out); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return out.Results, nil
}

// ListTransactions fetches all transactions of a connection, walking the
// paginated endpoint until exhausted.
func (c *Client) ListTransactions(ctx context.Context, itemID string) ([]Transaction, error) {
	var all []Transaction
	for page := 1; ; page++ {
		var out struct {
			Results      []Transaction `json:"results"`
			TotalResults int           `json:"totalResults"`
		}
		params := url.Values{
			"itemId":   {itemID},
			"page":     {strconv.Itoa(page)},
			"pageSize": {strconv.Itoa(transactionPageSize)},
		}
		if err := c.get(ctx, "/transactions", params, &out); err != nil {
			return nil, fmt.Errorf("list transactions page %d: %w", page, err)
		}
		if len(out.Results) == 0 {
			break
		}
		all = append(all, out.Results...)
		logger.Get().Debugw("fetched transaction page",
			"item_id", itemID, "page", page, "count", len(out.Results), "total", out.TotalResults)
		if len(out.Results) < transactionPageSize {
			break
		}
	}
	return all, nil
}

// CreateConnectToken obtains a token for the OAuth connect widget. An empty
// itemID requests a token for a brand new connection; a non-empty one allows
// re-authorizing an existing connection.
func (c *Client) CreateConnectToken(ctx context.Context, itemID string) (string, error) {
	body := map[string]string{}
	if itemID != "" {
		body["itemId"] = itemID
	}
	var out struct {
		AccessToken string `json:"accessToken"`
	}
	if err := c.post(ctx, "/connect_token", body, &out); err != nil {
		return "", fmt.Errorf("create connect token: %w", err)
	}
	return out.AccessToken, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s: status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
