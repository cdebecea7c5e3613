package pos

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client is the slice of the POS API this service depends on.
type Client interface {
	ListCatalogItems(ctx context.Context) ([]CatalogObject, error)
	ListCategories(ctx context.Context) ([]Category, error)
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	CreateOrder(ctx context.Context, roomNumber, guestName string) (*Order, error)
	AppendLineItems(ctx context.Context, orderID string, items []LineItem) (*Order, error)
}

// HTTPClient talks to the POS REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewHTTPClient(baseURL, token string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type catalogPage struct {
	Items  []CatalogObject `json:"items"`
	Cursor string          `json:"cursor"`
}

// ListCatalogItems walks the cursor-paged catalog and returns the merged list.
func (c *HTTPClient) ListCatalogItems(ctx context.Context) ([]CatalogObject, error) {
	var out []CatalogObject
	cursor := ""
	for {
		u := c.baseURL + "/v1/catalog/items"
		if cursor != "" {
			u += "?cursor=" + url.QueryEscape(cursor)
		}
		var page catalogPage
		if err := c.do(ctx, http.MethodGet, u, nil, &page); err != nil {
			return nil, err
		}
		out = append(out, page.Items...)
		if page.Cursor == "" {
			return out, nil
		}
		cursor = page.Cursor
	}
}

func (c *HTTPClient) ListCategories(ctx context.Context) ([]Category, error) {
	var resp struct {
		Categories []Category `json:"categories"`
	}
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/v1/catalog/categories", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

func (c *HTTPClient) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	var o Order
	err := c.do(ctx, http.MethodGet, c.baseURL+"/v1/orders/"+url.PathEscape(orderID), nil, &o)
	if err != nil {
		return nil, orderNotFound(err)
	}
	return &o, nil
}

func (c *HTTPClient) CreateOrder(ctx context.Context, roomNumber, guestName string) (*Order, error) {
	body := map[string]string{"room_number": roomNumber, "guest_name": guestName}
	var o Order
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/v1/orders", body, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *HTTPClient) AppendLineItems(ctx context.Context, orderID string, items []LineItem) (*Order, error) {
	body := map[string]any{"line_items": items}
	var o Order
	err := c.do(ctx, http.MethodPost, c.baseURL+"/v1/orders/"+url.PathEscape(orderID)+"/line-items", body, &o)
	if err != nil {
		return nil, orderNotFound(err)
	}
	return &o, nil
}

// orderNotFound narrows a 404 from an order endpoint to ErrOrderNotFound.
// Catalog endpoints keep the raw RemoteError; a missing catalog route must
// not read as "order gone" to the self-healing ticket reads.
func orderNotFound(err error) error {
	var re *RemoteError
	if errors.As(err, &re) && re.Status == http.StatusNotFound {
		return ErrOrderNotFound
	}
	return err
}

func (c *HTTPClient) do(ctx context.Context, method, u string, in, out any) error {
	var rd *bytes.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		var e struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &RemoteError{Status: resp.StatusCode, Code: e.Code, Message: e.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode pos response: %w", err)
	}
	return nil
}
