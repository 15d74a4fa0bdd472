package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scraperlab/scraperlab/models"
	"github.com/scraperlab/scraperlab/provider"
	"github.com/scraperlab/scraperlab/scraper"
	"github.com/scraperlab/scraperlab/strategy"
)

type fakeProvider struct {
	pages map[string]string
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Fetch(_ context.Context, url string, _ *models.ProviderOptions) (string, error) {
	if html, ok := p.pages[url]; ok {
		return html, nil
	}
	return "<html><body>empty</body></html>", nil
}

const productPage = `<html><body>
	<script type="application/ld+json">
	{"@type":"Product","name":"Arroz Diana 5kg","offers":{"price":42900}}
	</script>
</body></html>`

func newTestRouter(p provider.Provider, withMetrics bool) *gin.Engine {
	opts := scraper.Options{
		Registry:        strategy.DefaultRegistry(),
		Providers:       provider.NewRegistry(p),
		DefaultProvider: p.Name(),
	}
	if withMetrics {
		opts.Metrics = scraper.NewMetrics()
	}
	return NewRouter(scraper.New(opts), gin.TestMode, time.Now())
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestExtractEndpoint(t *testing.T) {
	url := "https://exito.com/arroz-diana"
	r := newTestRouter(&fakeProvider{pages: map[string]string{url: productPage}}, false)

	w := postJSON(t, r, "/api/v1/extract", models.ExtractRequest{URL: url, Type: models.TypeDetail})

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.ExtractResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 42900, resp.Product.CurrentPrice)
	assert.Equal(t, "exito.com", resp.SiteID)
}

func TestExtractEndpointFailureIsStillOK(t *testing.T) {
	r := newTestRouter(&fakeProvider{}, false)

	w := postJSON(t, r, "/api/v1/extract", models.ExtractRequest{
		URL: "https://amazon.com/dp/B00X", Type: models.TypeDetail,
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.ExtractResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, models.ErrCodeUnsupportedSite, resp.Error.Code)
}

func TestExtractEndpointRejectsBadBody(t *testing.T) {
	r := newTestRouter(&fakeProvider{}, false)

	w := postJSON(t, r, "/api/v1/extract", gin.H{"url": "not-a-url"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBatchEndpoint(t *testing.T) {
	a := "https://exito.com/a"
	b := "https://exito.com/b"
	r := newTestRouter(&fakeProvider{pages: map[string]string{a: productPage}}, false)

	w := postJSON(t, r, "/api/v1/extract/batch", models.BatchExtractRequest{
		URLs: []string{a, b},
		Type: models.TypeDetail,
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.BatchExtractResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	assert.Equal(t, 1, resp.Summary.Successful)
	assert.Equal(t, 1, resp.Summary.Failed)
}

func TestBatchEndpointRejectsOversizedBatch(t *testing.T) {
	r := newTestRouter(&fakeProvider{}, false)

	urls := make([]string, 51)
	for i := range urls {
		urls[i] = "https://exito.com/p"
	}
	w := postJSON(t, r, "/api/v1/extract/batch", models.BatchExtractRequest{URLs: urls})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(&fakeProvider{}, false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
}

func TestMetricsEndpointOnlyWhenEnabled(t *testing.T) {
	r := newTestRouter(&fakeProvider{}, true)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	bare := newTestRouter(&fakeProvider{}, false)
	w = httptest.NewRecorder()
	bare.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
