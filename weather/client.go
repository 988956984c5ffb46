package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultServiceURL is where the original travel weather service listens.
const DefaultServiceURL = "http://127.0.0.1:8000"

// ErrInvalidSegment is returned for a country, city or month that cannot be
// sent as a single path segment.
var ErrInvalidSegment = errors.New("invalid path segment")

// StatusError is returned for non-200 answers.
type StatusError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("weather service returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("weather service returned %d", e.StatusCode)
}

// ClientOptions configures a Client.
type ClientOptions struct {
	BaseURL    string
	HTTPClient *http.Client
	// CacheSize is the number of answers kept; 0 disables caching.
	CacheSize int
}

// Client queries a travel weather service.
type Client struct {
	opts  ClientOptions
	base  *url.URL
	cache *lru.Cache[cacheKey, Temperature]
}

type cacheKey struct{ country, city, month string }

// NewClient creates a Client with default options overridden by optFns.
func NewClient(optFns ...func(o *ClientOptions)) (*Client, error) {
	opts := ClientOptions{
		BaseURL:    DefaultServiceURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		CacheSize:  128,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse weather service url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("weather service url %q must be absolute", opts.BaseURL)
	}

	c := &Client{opts: opts, base: base}
	if opts.CacheSize > 0 {
		cache, err := lru.New[cacheKey, Temperature](opts.CacheSize)
		if err != nil {
			return nil, err
		}
		c.cache = cache
	}
	return c, nil
}

// AverageTemperature returns the monthly averages of a city.
func (c *Client) AverageTemperature(ctx context.Context, country, city, month string) (Temperature, error) {
	for _, seg := range []string{country, city, month} {
		if err := checkSegment(seg); err != nil {
			return Temperature{}, err
		}
	}

	key := cacheKey{strings.ToLower(country), strings.ToLower(city), strings.ToLower(month)}
	if c.cache != nil {
		if t, ok := c.cache.Get(key); ok {
			return t, nil
		}
	}

	u := c.base.JoinPath("countries", url.PathEscape(country), url.PathEscape(city), url.PathEscape(month))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Temperature{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return Temperature{}, fmt.Errorf("weather service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Temperature{}, fmt.Errorf("weather service: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &apiErr)
		return Temperature{}, &StatusError{StatusCode: resp.StatusCode, Message: apiErr.Error}
	}

	var t Temperature
	if err := json.Unmarshal(body, &t); err != nil {
		return Temperature{}, fmt.Errorf("decode weather response: %w", err)
	}

	if c.cache != nil {
		c.cache.Add(key, t)
	}
	return t, nil
}

// checkSegment rejects values that path cleaning would drop or resolve.
func checkSegment(s string) error {
	switch strings.TrimSpace(s) {
	case "":
		return fmt.Errorf("%w: empty value", ErrInvalidSegment)
	case ".", "..":
		return fmt.Errorf("%w: %q", ErrInvalidSegment, s)
	}
	return nil
}
