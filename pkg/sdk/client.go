package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// Client provides a high-level interface to the E-Panel administration API.
// Authentication is the caller's concern: pass an *http.Client that attaches
// the bearer credential (e.g. via oauth2.NewClient) for operations that
// require one.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// ClientOptions configures SDK client construction.
type ClientOptions struct {
	HTTPClient *http.Client
	UserAgent  string
}

// ClientOption mutates ClientOptions.
type ClientOption func(*ClientOptions)

// WithHTTPClient overrides the HTTP client used for API calls.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(opts *ClientOptions) {
		opts.HTTPClient = client
	}
}

// WithUserAgent sets the User-Agent header on outgoing requests.
func WithUserAgent(ua string) ClientOption {
	return func(opts *ClientOptions) {
		opts.UserAgent = ua
	}
}

// NewClient creates a new panel API client that communicates with the server
// at baseURL. An http.Client is created automatically when one is not
// supplied.
func NewClient(baseURL string, optFns ...ClientOption) *Client {
	opts := ClientOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Client{
		httpClient: opts.HTTPClient,
		baseURL:    baseURL,
		userAgent:  opts.UserAgent,
	}
}

// Login exchanges a username and password for an access token and the user's
// profile. A non-success response is returned as *APIError carrying the
// server-provided message.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	payload := map[string]string{"username": username, "password": password}

	var out LoginResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListProducts reads one page of the catalog, sorted server-side.
func (c *Client) ListProducts(ctx context.Context, p ListParams) (ProductPage, error) {
	var out ProductPage
	err := c.do(ctx, http.MethodGet, "/products", listQuery(p), nil, &out)
	return out, err
}

// SearchProducts reads one page of catalog search results. The search
// endpoint does not support sorting, so no sort parameters are sent.
func (c *Client) SearchProducts(ctx context.Context, query string, limit, skip int) (ProductPage, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("skip", strconv.Itoa(skip))

	var out ProductPage
	err := c.do(ctx, http.MethodGet, "/products/search", q, nil, &out)
	return out, err
}

// GetProduct retrieves a single product, e.g. to pre-populate an edit form.
func (c *Client) GetProduct(ctx context.Context, id int) (*Product, error) {
	var out Product
	if err := c.do(ctx, http.MethodGet, "/products/"+strconv.Itoa(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListCarts reads one page of the order list.
func (c *Client) ListCarts(ctx context.Context, p ListParams) (CartPage, error) {
	var out CartPage
	err := c.do(ctx, http.MethodGet, "/carts", listQuery(p), nil, &out)
	return out, err
}

// GetCart retrieves a single order with its line items.
func (c *Client) GetCart(ctx context.Context, id int) (*Cart, error) {
	var out Cart
	if err := c.do(ctx, http.MethodGet, "/carts/"+strconv.Itoa(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateItem creates an item in the named collection (POST /<collection>/add).
// The created item is decoded into out when out is non-nil.
func (c *Client) CreateItem(ctx context.Context, collection string, payload, out any) error {
	return c.do(ctx, http.MethodPost, "/"+collection+"/add", nil, payload, out)
}

// UpdateItem updates an item in the named collection (PUT /<collection>/<id>).
func (c *Client) UpdateItem(ctx context.Context, collection string, id int, payload, out any) error {
	return c.do(ctx, http.MethodPut, "/"+collection+"/"+strconv.Itoa(id), nil, payload, out)
}

// DeleteItem deletes an item from the named collection (DELETE /<collection>/<id>).
func (c *Client) DeleteItem(ctx context.Context, collection string, id int, out any) error {
	return c.do(ctx, http.MethodDelete, "/"+collection+"/"+strconv.Itoa(id), nil, nil, out)
}

func listQuery(p ListParams) url.Values {
	q := url.Values{}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
		q.Set("skip", strconv.Itoa(p.Skip))
	}
	if p.SortBy != "" {
		q.Set("sortBy", p.SortBy)
		q.Set("order", p.Order)
	}
	return q
}

// do issues one API request and decodes the JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	u, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var msg struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&msg); err == nil {
			apiErr.Message = msg.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
