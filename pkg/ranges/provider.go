package ranges

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	envutil "github.com/projectdiscovery/utils/env"
	"github.com/tidwall/gjson"
)

var (
	// DefaultAPIURL is the endpoint serving the provider's published IPv4 ranges.
	DefaultAPIURL = envutil.GetEnvOrDefault("EDGEPING_RANGES_URL", "https://api.cloudflare.com/client/v4/ips")
)

const fetchTimeout = 10 * time.Second

// Client fetches published CIDR ranges from the provider API.
type Client struct {
	URL        string
	HTTPClient *http.Client
}

// NewClient returns a ranges API client for the default endpoint.
func NewClient() *Client {
	return &Client{
		URL:        DefaultAPIURL,
		HTTPClient: &http.Client{Timeout: fetchTimeout},
	}
}

// Fetch downloads the published range list and returns it as newline-delimited
// CIDR text suitable for Parse. Any failure here means the scan cannot start.
func (c *Client) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error fetching ranges: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ranges api returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response: %w", err)
	}

	result := gjson.ParseBytes(body)
	if !result.Get("success").Bool() {
		return "", fmt.Errorf("ranges api response was not successful")
	}
	cidrs := result.Get("result.ipv4_cidrs")
	if !cidrs.Exists() {
		return "", fmt.Errorf("ranges api response has no ipv4_cidrs field")
	}

	var sb strings.Builder
	cidrs.ForEach(func(_, value gjson.Result) bool {
		sb.WriteString(value.String())
		sb.WriteString("\n")
		return true
	})
	return sb.String(), nil
}
