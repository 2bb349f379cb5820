// Package client is a typed HTTP client for the logistics REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/truckledger/service-logistics/internal/application"
	"github.com/truckledger/service-logistics/internal/domain/kv"
	"github.com/truckledger/service-logistics/internal/domain/session"
	"github.com/truckledger/service-logistics/internal/geocode"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
	"github.com/truckledger/service-logistics/internal/platform/response"
)

// DefaultTimeout bounds every request.
const DefaultTimeout = 10 * time.Second

// stampHeader must match the server's KV stamp header.
const stampHeader = "X-KV-Stamp"

// Options configures a Client.
type Options struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client calls the REST API. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// New creates a Client for the API rooted at opts.BaseURL (for example http://localhost:8080/api).
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    &http.Client{Timeout: opts.Timeout},
		token:   opts.Token,
	}
}

// SetToken replaces the session token sent as a bearer credential.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current session token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// LoginDriver opens a driver session and keeps its token for later calls.
func (c *Client) LoginDriver(ctx context.Context, req application.DriverLoginRequest) (*session.Session, error) {
	var sess session.Session
	if err := c.doJSON(ctx, http.MethodPost, "/drivers/login", req, &sess); err != nil {
		return nil, err
	}
	c.SetToken(sess.Token)
	return &sess, nil
}

// Logout ends the current session.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.doJSON(ctx, http.MethodPost, "/sessions/logout", nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

// ListKV returns every mirrored entry.
func (c *Client) ListKV(ctx context.Context) ([]kv.Entry, error) {
	var entries []kv.Entry
	if err := c.doJSON(ctx, http.MethodGet, "/kv", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetKV returns one entry.
func (c *Client) GetKV(ctx context.Context, key string) (kv.Entry, error) {
	var e kv.Entry
	err := c.doJSON(ctx, http.MethodGet, "/kv/"+url.PathEscape(key), nil, &e)
	return e, err
}

// PutKV stores a JSON value. A zero stamp sends no stamp header.
func (c *Client) PutKV(ctx context.Context, key string, value []byte, stamp int64) (kv.Entry, error) {
	req, err := c.newRequest(ctx, http.MethodPut, "/kv/"+url.PathEscape(key), bytes.NewReader(value))
	if err != nil {
		return kv.Entry{}, err
	}
	if stamp != 0 {
		req.Header.Set(stampHeader, strconv.FormatInt(stamp, 10))
	}
	var e kv.Entry
	err = c.do(req, &e)
	return e, err
}

// DeleteKV removes an entry.
func (c *Client) DeleteKV(ctx context.Context, key string) error {
	return c.doJSON(ctx, http.MethodDelete, "/kv/"+url.PathEscape(key), nil, nil)
}

// AddLedgerEntry records an income or expense.
func (c *Client) AddLedgerEntry(ctx context.Context, req application.LedgerEntryRequest) (*application.LedgerEntryDTO, error) {
	var dto application.LedgerEntryDTO
	if err := c.doJSON(ctx, http.MethodPost, "/ledger", req, &dto); err != nil {
		return nil, err
	}
	return &dto, nil
}

// Ledger lists a plate's entries with totals.
func (c *Client) Ledger(ctx context.Context, plate string) (*application.LedgerDTO, error) {
	var dto application.LedgerDTO
	if err := c.doJSON(ctx, http.MethodGet, "/ledger?plate="+url.QueryEscape(plate), nil, &dto); err != nil {
		return nil, err
	}
	return &dto, nil
}

// Quote prices a shipment between two addresses.
func (c *Client) Quote(ctx context.Context, req application.QuoteByAddressRequest) (*application.QuoteDTO, error) {
	var dto application.QuoteDTO
	if err := c.doJSON(ctx, http.MethodPost, "/quotes", req, &dto); err != nil {
		return nil, err
	}
	return &dto, nil
}

// Search implements geocode.Searcher over the place search endpoint.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]geocode.Place, error) {
	params := url.Values{}
	params.Set("q", query)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var places []geocode.Place
	if err := c.doJSON(ctx, http.MethodGet, "/places?"+params.Encode(), nil, &places); err != nil {
		return nil, err
	}
	return places, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := c.newRequest(ctx, method, path, reader)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

type envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorBody `json:"error"`
}

// do sends req and decodes the envelope's data into out. Non-2xx responses become
// KindHTTP errors carrying the server's message.
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := ""
		if decodeErr == nil && env.Error != nil {
			msg = env.Error.Message
		}
		return apperror.NewHTTPError(resp.StatusCode, msg)
	}
	if decodeErr != nil {
		if errors.Is(decodeErr, io.EOF) && out == nil {
			return nil
		}
		return fmt.Errorf("decode response: %w", decodeErr)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

// classify maps transport failures onto the error taxonomy.
func classify(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return apperror.NewTimeoutError(err)
	}
	return apperror.NewNetworkError(err)
}

// Status returns the HTTP status of a KindHTTP error, or 0.
func Status(err error) int {
	var e *apperror.Error
	if errors.As(err, &e) && e.Kind == apperror.KindHTTP {
		return e.Status
	}
	return 0
}
