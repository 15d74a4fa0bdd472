package models

// ProviderOptions is the sparse set of fetch hints stored per site. A nil
// pointer means "do not send this option at all", which is different from
// an explicit false or zero. The config layer never fills in defaults:
// every hint is opt-in per call site, because defaulted hints once kept
// premium fetch tiers billing on sites that never needed them.
type ProviderOptions struct {
	Render           *bool             `json:"render,omitempty" mapstructure:"render"`
	ResidentialProxy *bool             `json:"residential_proxy,omitempty" mapstructure:"residential_proxy"`
	DeviceType       *string           `json:"device_type,omitempty" mapstructure:"device_type"`
	CountryCode      *string           `json:"country_code,omitempty" mapstructure:"country_code"`
	WaitMs           *int              `json:"wait_ms,omitempty" mapstructure:"wait_ms"`
	WaitForSelector  *string           `json:"wait_for_selector,omitempty" mapstructure:"wait_for_selector"`
	Headers          map[string]string `json:"headers,omitempty" mapstructure:"headers"`
}

// Clone returns a copy that shares no pointers with the original, so a
// strategy can add its own hints without mutating stored configuration.
func (o *ProviderOptions) Clone() *ProviderOptions {
	if o == nil {
		return &ProviderOptions{}
	}
	c := &ProviderOptions{}
	if o.Render != nil {
		v := *o.Render
		c.Render = &v
	}
	if o.ResidentialProxy != nil {
		v := *o.ResidentialProxy
		c.ResidentialProxy = &v
	}
	if o.DeviceType != nil {
		v := *o.DeviceType
		c.DeviceType = &v
	}
	if o.CountryCode != nil {
		v := *o.CountryCode
		c.CountryCode = &v
	}
	if o.WaitMs != nil {
		v := *o.WaitMs
		c.WaitMs = &v
	}
	if o.WaitForSelector != nil {
		v := *o.WaitForSelector
		c.WaitForSelector = &v
	}
	if len(o.Headers) > 0 {
		c.Headers = make(map[string]string, len(o.Headers))
		for k, v := range o.Headers {
			c.Headers[k] = v
		}
	}
	return c
}

// DomainConfig is the per-site configuration read from the external
// configuration store. It is read-only to the extraction core and frozen
// for the duration of one extraction call.
type DomainConfig struct {
	SiteID     string `json:"site_id" mapstructure:"site_id"`
	ProviderID string `json:"provider_id" mapstructure:"provider_id"`

	// ProviderOptions holds the site's opt-in fetch hints; nil when the
	// site needs none.
	ProviderOptions *ProviderOptions `json:"provider_options,omitempty" mapstructure:"provider_options"`

	// SelectorOverrides optionally replaces a strategy's hardcoded
	// selectors, keyed by slot name (e.g. "price", "title").
	SelectorOverrides map[string]string `json:"selector_overrides,omitempty" mapstructure:"selector_overrides"`

	// SupportedTypes mirrors the registry's view of the site and is used
	// by callers to drive their own validation UI.
	SupportedTypes []ExtractionType `json:"supported_types,omitempty" mapstructure:"supported_types"`

	// RateLimitPerSecond is advisory: the core passes it through to the
	// optional limiter collaborator but never enforces it itself.
	RateLimitPerSecond float64 `json:"rate_limit_per_second,omitempty" mapstructure:"rate_limit_per_second"`
}
