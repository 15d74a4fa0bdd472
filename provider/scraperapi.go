package provider

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/scraperlab/scraperlab/models"
)

const scraperAPIEndpoint = "https://api.scraperapi.com/"

// ScraperAPI fetches pages through the ScraperAPI rendering proxy.
type ScraperAPI struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewScraperAPI creates a ScraperAPI provider. timeout bounds the whole
// upstream call, including any render wait the hints request.
func NewScraperAPI(apiKey string, timeout time.Duration) *ScraperAPI {
	return &ScraperAPI{
		apiKey:   apiKey,
		endpoint: scraperAPIEndpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (p *ScraperAPI) Name() string { return "scraperapi" }

// Fetch builds the upstream query from the sparse hints. Absent hints
// produce absent query parameters; ScraperAPI's own server-side defaults
// then apply, which is the cheapest tier.
func (p *ScraperAPI) Fetch(ctx context.Context, target string, hints *models.ProviderOptions) (string, error) {
	params := url.Values{}
	params.Set("api_key", p.apiKey)
	params.Set("url", normalizeTargetURL(target))

	if hints != nil {
		if hints.Render != nil {
			params.Set("render", strconv.FormatBool(*hints.Render))
		}
		if hints.ResidentialProxy != nil {
			params.Set("premium", strconv.FormatBool(*hints.ResidentialProxy))
		}
		if hints.DeviceType != nil {
			params.Set("device_type", *hints.DeviceType)
		}
		if hints.CountryCode != nil {
			params.Set("country_code", *hints.CountryCode)
		}
		if hints.WaitMs != nil && *hints.WaitMs > 0 {
			params.Set("wait", strconv.Itoa(*hints.WaitMs))
		}
		if hints.WaitForSelector != nil && *hints.WaitForSelector != "" {
			params.Set("wait_for_selector", *hints.WaitForSelector)
		}
		if len(hints.Headers) > 0 {
			params.Set("keep_headers", "true")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", &FetchError{Provider: p.Name(), Message: "build request", Err: err}
	}
	if hints != nil {
		for k, v := range hints.Headers {
			req.Header.Set(k, v)
		}
	}

	// Log with the key redacted.
	logged := cloneValuesWithout(params, "api_key")
	slog.Debug("scraperapi fetch", "params", logged.Encode())

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &FetchError{Provider: p.Name(), Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{Provider: p.Name(), HTTPStatus: resp.StatusCode, Message: "read body", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{
			Provider:   p.Name(),
			HTTPStatus: resp.StatusCode,
			Message:    fmt.Sprintf("upstream returned %s", resp.Status),
		}
	}
	return string(body), nil
}

// normalizeTargetURL re-encodes the target's query parameters so search
// terms with stray whitespace survive the round trip through the proxy.
func normalizeTargetURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	params := url.Values{}
	for key, values := range u.Query() {
		for _, v := range values {
			params.Add(key, collapseSpaces(v))
		}
	}
	u.RawQuery = params.Encode()
	return u.String()
}

func collapseSpaces(s string) string {
	out := make([]byte, 0, len(s))
	space := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' || c == '\t' {
			space = len(out) > 0
			continue
		}
		if space {
			out = append(out, ' ')
			space = false
		}
		out = append(out, c)
	}
	return string(out)
}

func cloneValuesWithout(v url.Values, drop string) url.Values {
	out := url.Values{}
	for key, values := range v {
		if key == drop {
			continue
		}
		for _, val := range values {
			out.Add(key, val)
		}
	}
	return out
}
