package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/five82/salecheck/internal/product"
)

var (
	// ErrRemoteUnavailable covers transport failures, timeouts and non-2xx
	// responses.
	ErrRemoteUnavailable = errors.New("remote unavailable")
	// ErrMalformedResponse means the body could not be decoded.
	ErrMalformedResponse = errors.New("malformed response")
)

// PriceFetcher retrieves fresh prices for a batch of tracked ids.
type PriceFetcher interface {
	RefreshPrices(ctx context.Context, ids []string) ([]product.PriceUpdate, error)
}

// ProductResolver looks up a product from its store page URL.
type ProductResolver interface {
	ProductByURL(ctx context.Context, pageURL string) (product.Record, error)
}

// Ensure Client implements both interfaces at compile time.
var (
	_ PriceFetcher    = (*Client)(nil)
	_ ProductResolver = (*Client)(nil)
)

// Client talks to the SaleCheck price backend.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	DefaultBaseURL        = "https://salecheck-backend-production.up.railway.app"
	defaultUserAgent      = "salecheck/0.1"
	defaultRequestTimeout = 15 * time.Second
)

// NewClient builds a Client for base. A non-positive timeout uses the
// default of 15 seconds.
func NewClient(base string, timeout time.Duration) (*Client, error) {
	u, err := parseBaseURL(base)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		baseURL: u,
		http: &http.Client{
			Timeout: timeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

type refreshRequest struct {
	IDs []string `json:"ids"`
}

type priceEntry struct {
	ID                string `json:"id"`
	CurrentPriceText  string `json:"currentPriceText"`
	OriginalPriceText string `json:"originalPriceText,omitempty"`
}

type productEntry struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	CurrentPriceText  string `json:"currentPriceText"`
	OriginalPriceText string `json:"originalPriceText"`
}

// RefreshPrices posts every id in one batch and returns the fresh prices.
func (c *Client) RefreshPrices(ctx context.Context, ids []string) ([]product.PriceUpdate, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if ids == nil {
		ids = []string{}
	}
	body, err := json.Marshal(refreshRequest{IDs: ids})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	var payload []priceEntry
	rel := &url.URL{Path: "/products/refresh"}
	if err := c.doURL(ctx, http.MethodPost, rel, bytes.NewReader(body), &payload); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: refresh response is not an array", ErrMalformedResponse)
	}
	updates := make([]product.PriceUpdate, 0, len(payload))
	for _, entry := range payload {
		updates = append(updates, product.PriceUpdate{
			ID:                entry.ID,
			CurrentPriceText:  entry.CurrentPriceText,
			OriginalPriceText: entry.OriginalPriceText,
		})
	}
	return updates, nil
}

// ProductByURL resolves a store page into a product record.
func (c *Client) ProductByURL(ctx context.Context, pageURL string) (product.Record, error) {
	if c == nil {
		return product.Record{}, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	values.Set("url", pageURL)
	rel := &url.URL{Path: "/products/by_url", RawQuery: values.Encode()}
	var payload productEntry
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return product.Record{}, err
	}
	return product.Record{
		ID:                strings.TrimSpace(payload.ID),
		Title:             payload.Title,
		CurrentPriceText:  payload.CurrentPriceText,
		OriginalPriceText: payload.OriginalPriceText,
	}, nil
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body io.Reader, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: execute request: %w", ErrRemoteUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: api %s returned status %d", ErrRemoteUnavailable, rel.Path, resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrMalformedResponse, err)
	}
	var extra json.RawMessage
	if err := decoder.Decode(&extra); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data after response", ErrMalformedResponse)
	}
	return nil
}

func parseBaseURL(base string) (*url.URL, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_base %q: %w", base, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_base %q: missing host", base)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
