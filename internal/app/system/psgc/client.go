// Package psgc is a small client for the Philippine Standard Geographic
// Code API: regions, provinces, cities/municipalities and barangays.
package psgc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/dalemusser/admissions/internal/domain/models"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public PSGC API.
const DefaultBaseURL = "https://psgc.gitlab.io/api"

// ErrUnexpectedStatus is returned for any non-200 response.
var ErrUnexpectedStatus = errors.New("psgc: unexpected status")

// ErrUnknownLevel is returned when Children is asked for a level that has no parent.
var ErrUnknownLevel = errors.New("psgc: unknown level")

// Client fetches geographic options. It is safe for concurrent use.
type Client struct {
	base    string
	hc      *http.Client
	limiter *rate.Limiter
	log     *zap.Logger
	metrics *clientMetrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.hc = &http.Client{Timeout: d}
		}
	}
}

// WithRateLimit throttles outbound requests to perSec with a burst of
// the same size. Zero or negative disables throttling.
func WithRateLimit(perSec float64) Option {
	return func(c *Client) {
		if perSec > 0 {
			burst := int(perSec)
			if burst < 1 {
				burst = 1
			}
			c.limiter = rate.NewLimiter(rate.Limit(perSec), burst)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithMetrics registers request counters and latencies with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Client) { c.metrics = newClientMetrics(reg) }
}

// New creates a client rooted at baseURL (DefaultBaseURL when empty).
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		hc:   &http.Client{Timeout: 10 * time.Second},
		log:  zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Regions lists all regions.
func (c *Client) Regions(ctx context.Context) ([]models.GeoOption, error) {
	return c.get(ctx, models.LevelRegion, "/regions/")
}

// Provinces lists the provinces of a region.
func (c *Client) Provinces(ctx context.Context, regionCode string) ([]models.GeoOption, error) {
	return c.get(ctx, models.LevelProvince, "/regions/"+url.PathEscape(regionCode)+"/provinces/")
}

// Cities lists the cities and municipalities under parent. A region code
// selects the region endpoint, which serves regions without provinces
// such as the National Capital Region.
func (c *Client) Cities(ctx context.Context, parentCode string) ([]models.GeoOption, error) {
	if IsRegionCode(parentCode) {
		return c.get(ctx, models.LevelCity, "/regions/"+url.PathEscape(parentCode)+"/cities-municipalities/")
	}
	return c.get(ctx, models.LevelCity, "/provinces/"+url.PathEscape(parentCode)+"/cities-municipalities/")
}

// Barangays lists the barangays of a city or municipality.
func (c *Client) Barangays(ctx context.Context, cityCode string) ([]models.GeoOption, error) {
	return c.get(ctx, models.LevelBarangay, "/cities-municipalities/"+url.PathEscape(cityCode)+"/barangays/")
}

// Children returns the options at level under parent. Regions ignore parent.
func (c *Client) Children(ctx context.Context, level models.GeoLevel, parent string) ([]models.GeoOption, error) {
	switch level {
	case models.LevelRegion:
		return c.Regions(ctx)
	case models.LevelProvince:
		return c.Provinces(ctx, parent)
	case models.LevelCity:
		return c.Cities(ctx, parent)
	case models.LevelBarangay:
		return c.Barangays(ctx, parent)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownLevel, level)
}

// IsRegionCode reports whether a 9-digit PSGC code denotes a region
// (everything after the two region digits is zero).
func IsRegionCode(code string) bool {
	if len(code) != 9 {
		return false
	}
	return strings.Trim(code[2:], "0") == ""
}

func (c *Client) get(ctx context.Context, level models.GeoLevel, path string) ([]models.GeoOption, error) {
	start := time.Now()
	opts, err := c.fetch(ctx, path)
	c.metrics.observe(level, err, time.Since(start))
	if err != nil {
		c.log.Warn("psgc fetch failed",
			zap.String("level", string(level)),
			zap.String("path", path),
			zap.Error(err))
		return nil, err
	}
	return opts, nil
}

func (c *Client) fetch(ctx context.Context, path string) ([]models.GeoOption, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d for %s", ErrUnexpectedStatus, resp.StatusCode, path)
	}

	var raw []struct {
		Code string `json:"code"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	out := make([]models.GeoOption, 0, len(raw))
	for _, r := range raw {
		if r.Code == "" {
			continue
		}
		out = append(out, models.GeoOption{Name: r.Name, Code: r.Code})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
