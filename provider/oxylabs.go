package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/scraperlab/scraperlab/models"
)

const oxylabsEndpoint = "https://realtime.oxylabs.io/v1/queries"

// Oxylabs fetches pages through the Oxylabs realtime scraper API.
type Oxylabs struct {
	username string
	password string
	endpoint string
	client   *http.Client
}

// NewOxylabs creates an Oxylabs provider with basic-auth credentials.
func NewOxylabs(username, password string, timeout time.Duration) *Oxylabs {
	return &Oxylabs{
		username: username,
		password: password,
		endpoint: oxylabsEndpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (p *Oxylabs) Name() string { return "oxylabs" }

type oxylabsPayload struct {
	Source        string            `json:"source"`
	URL           string            `json:"url"`
	Render        string            `json:"render,omitempty"`
	GeoLocation   string            `json:"geo_location,omitempty"`
	UserAgentType string            `json:"user_agent_type,omitempty"`
	ContextParams map[string]string `json:"context,omitempty"`
}

type oxylabsResponse struct {
	Results []struct {
		Content    string `json:"content"`
		StatusCode int    `json:"status_code"`
	} `json:"results"`
}

// Fetch posts a realtime query. Source is provider plumbing, not a hint;
// everything else is sent only when the caller asked for it.
func (p *Oxylabs) Fetch(ctx context.Context, target string, hints *models.ProviderOptions) (string, error) {
	payload := oxylabsPayload{
		Source: "universal",
		URL:    target,
	}
	if hints != nil {
		if hints.Render != nil && *hints.Render {
			payload.Render = "html"
		}
		if hints.CountryCode != nil {
			payload.GeoLocation = *hints.CountryCode
		}
		if hints.DeviceType != nil {
			payload.UserAgentType = *hints.DeviceType
		}
		if len(hints.Headers) > 0 {
			payload.ContextParams = hints.Headers
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", &FetchError{Provider: p.Name(), Message: "encode payload", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &FetchError{Provider: p.Name(), Message: "build request", Err: err}
	}
	req.SetBasicAuth(p.username, p.password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &FetchError{Provider: p.Name(), Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
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

	var parsed oxylabsResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", &FetchError{Provider: p.Name(), Message: "decode response", Err: err}
	}
	if len(parsed.Results) == 0 {
		return "", &FetchError{Provider: p.Name(), Message: "no results in response"}
	}
	return parsed.Results[0].Content, nil
}
