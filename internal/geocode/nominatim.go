package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
	"go.uber.org/zap"
)

// Config configures the Nominatim client.
type Config struct {
	BaseURL     string
	UserAgent   string
	CountryCode string
	Timeout     time.Duration
	MaxRetries  uint64
}

// NominatimClient queries an OpenStreetMap Nominatim instance.
type NominatimClient struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// NewNominatimClient creates a client. Zero timeouts and retries get sane defaults.
func NewNominatimClient(cfg Config, logger *zap.Logger) *NominatimClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 2
	}
	if cfg.CountryCode == "" {
		cfg.CountryCode = "co"
	}
	return &NominatimClient{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type nominatimResult struct {
	DisplayName string          `json:"display_name"`
	Lat         string          `json:"lat"`
	Lon         string          `json:"lon"`
	Type        string          `json:"type"`
	GeoJSON     json.RawMessage `json:"geojson"`
}

// Search runs a free-text search restricted to the configured country.
// 5xx responses and transport errors are retried with exponential backoff.
func (c *NominatimClient) Search(ctx context.Context, query string, limit int) ([]Place, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	params := url.Values{}
	params.Set("format", "json")
	params.Set("q", query)
	params.Set("countrycodes", c.cfg.CountryCode)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("polygon_geojson", "1")
	endpoint := c.cfg.BaseURL + "/search?" + params.Encode()

	var results []nominatimResult
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Accept-Language", "es")
		if c.cfg.UserAgent != "" {
			req.Header.Set("User-Agent", c.cfg.UserAgent)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(classify(err))
			}
			return classify(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			_, _ = io.Copy(io.Discard, resp.Body)
			return apperror.NewHTTPError(resp.StatusCode, "geocoder unavailable")
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			_, _ = io.Copy(io.Discard, resp.Body)
			return backoff.Permanent(apperror.NewHTTPError(resp.StatusCode, "geocoder rejected the request"))
		}
		if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
			return backoff.Permanent(fmt.Errorf("decode geocoder response: %w", err))
		}
		return nil
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 250 * time.Millisecond
	exp.MaxElapsedTime = c.cfg.Timeout
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, c.cfg.MaxRetries), ctx)
	notify := func(err error, wait time.Duration) {
		c.logger.Debug("retrying geocoder", zap.String("query", query), zap.Duration("wait", wait), zap.Error(err))
	}
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return nil, err
	}

	places := make([]Place, 0, len(results))
	for _, r := range results {
		lat, errLat := strconv.ParseFloat(r.Lat, 64)
		lng, errLng := strconv.ParseFloat(r.Lon, 64)
		if errLat != nil || errLng != nil {
			continue
		}
		places = append(places, Place{
			DisplayName: r.DisplayName,
			Lat:         lat,
			Lng:         lng,
			Type:        r.Type,
			Boundary:    r.GeoJSON,
		})
	}
	return places, nil
}

// classify maps transport failures onto the error taxonomy.
func classify(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return apperror.NewTimeoutError(err)
	}
	return apperror.NewNetworkError(err)
}
