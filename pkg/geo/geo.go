package geo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/projectdiscovery/gcache"
	envutil "github.com/projectdiscovery/utils/env"
	"github.com/tidwall/gjson"
)

var (
	// DefaultBaseURL is the ipinfo-compatible endpoint used for lookups.
	DefaultBaseURL = envutil.GetEnvOrDefault("EDGEPING_GEO_URL", "https://ipinfo.io")
	// APIToken is an optional lookup token sent as a bearer header.
	APIToken = envutil.GetEnvOrDefault("EDGEPING_GEO_TOKEN", "")
)

const (
	lookupTimeout = 10 * time.Second
	cacheSize     = 4096
	cacheTTL      = time.Hour
)

// Location is a best-effort city/country annotation for an address.
type Location struct {
	City    string
	Country string
}

// Client resolves address locations against an ipinfo-compatible API. Results
// are cached so repeated addresses cost a single call.
type Client struct {
	baseURL string
	http    *http.Client
	cache   gcache.Cache[string, Location]
}

// NewClient returns a lookup client for the default endpoint, attaching the
// configured API token to every request when one is set.
func NewClient() *Client {
	transport := http.DefaultTransport
	client := &http.Client{Timeout: lookupTimeout}
	if APIToken != "" {
		client.Transport = roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			req.Header.Set("Authorization", "Bearer "+APIToken)
			return transport.RoundTrip(req)
		})
	}
	return &Client{
		baseURL: DefaultBaseURL,
		http:    client,
		cache: gcache.New[string, Location](cacheSize).
			LRU().
			Expiration(cacheTTL).
			Build(),
	}
}

// NewClientForURL is like NewClient with an explicit endpoint.
func NewClientForURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = baseURL
	return c
}

// Lookup returns the location for addr. Failures come back as errors and are
// never fatal for the caller; the address simply stays unannotated.
func (c *Client) Lookup(ctx context.Context, addr string) (Location, error) {
	if loc, err := c.cache.GetIFPresent(addr); err == nil {
		return loc, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s/json", c.baseURL, addr), nil)
	if err != nil {
		return Location{}, fmt.Errorf("error creating request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("error looking up %s: %w", addr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("geo lookup for %s returned status %d", addr, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Location{}, fmt.Errorf("error reading response: %w", err)
	}

	result := gjson.ParseBytes(body)
	loc := Location{
		City:    result.Get("city").String(),
		Country: result.Get("country").String(),
	}
	_ = c.cache.Set(addr, loc)
	return loc, nil
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (rf roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return rf(req)
}
