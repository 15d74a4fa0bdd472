package provider

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	tls "github.com/refraction-networking/utls"

	"github.com/scraperlab/scraperlab/models"
)

// Direct fetches pages without an anti-bot backend, for sites that serve
// static markup to anyone. It presents a Chrome-like TLS fingerprint so
// basic TLS-level filtering does not single it out.
type Direct struct {
	client *http.Client
}

// chromeH1Spec is a Chrome-like TLS ClientHello with ALPN forced to http/1.1
// only. Computed once at init time and reused for every connection.
var chromeH1Spec tls.ClientHelloSpec

func init() {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		// Fallback: if spec generation fails, use HelloChrome_Auto as-is.
		// (Should never happen with a valid utls version.)
		return
	}
	// Replace h2 with http/1.1 only in the ALPN extension so the server
	// never negotiates HTTP/2 (which Go's http.Transport cannot handle
	// over a utls connection).
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	chromeH1Spec = spec
}

// NewDirect creates a Direct provider. ALPN is locked to http/1.1 to avoid
// the HTTP/2 framing mismatch that occurs when utls negotiates h2 but Go's
// http.Transport only speaks h1.
func NewDirect(timeout time.Duration) *Direct {
	transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			dialer := &net.Dialer{Timeout: 10 * time.Second}
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			host, _, _ := net.SplitHostPort(addr)
			tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
			if err := tlsConn.ApplyPreset(&chromeH1Spec); err != nil {
				conn.Close()
				return nil, fmt.Errorf("direct: apply tls spec: %w", err)
			}
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				conn.Close()
				return nil, err
			}
			return tlsConn, nil
		},
		ForceAttemptHTTP2: false,
	}
	return &Direct{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
	}
}

func (p *Direct) Name() string { return "direct" }

// Fetch issues a plain GET with browser-like headers. Rendering hints are
// ignored because this provider cannot execute JavaScript; a site that
// needs them belongs on an API-backed provider.
func (p *Direct) Fetch(ctx context.Context, target string, hints *models.ProviderOptions) (string, error) {
	if hints != nil && hints.Render != nil && *hints.Render {
		slog.Debug("direct provider cannot render, hint ignored", "url", target)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", &FetchError{Provider: p.Name(), Message: "build request", Err: err}
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "es-CO,es;q=0.9,en;q=0.8")
	req.Header.Set("Accept-Encoding", "identity")

	if hints != nil {
		for k, v := range hints.Headers {
			req.Header.Set(k, v)
		}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &FetchError{Provider: p.Name(), Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	// 10 MB cap to prevent unbounded memory use on hostile pages.
	const maxBody = 10 << 20
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return "", &FetchError{Provider: p.Name(), HTTPStatus: resp.StatusCode, Message: "read body", Err: err}
	}

	ct := resp.Header.Get("Content-Type")
	if resp.StatusCode >= 400 || !isHTMLContentType(ct) {
		return "", &FetchError{
			Provider:   p.Name(),
			HTTPStatus: resp.StatusCode,
			Message:    fmt.Sprintf("non-html or error status %d (content-type: %s)", resp.StatusCode, ct),
		}
	}
	return string(body), nil
}

// isHTMLContentType returns true if the content-type header looks like HTML.
func isHTMLContentType(ct string) bool {
	ct = strings.ToLower(ct)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml+xml")
}
