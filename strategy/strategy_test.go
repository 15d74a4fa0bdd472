package strategy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scraperlab/scraperlab/models"
)

// stubProvider replays canned pages and records what it was asked for.
type stubProvider struct {
	pages    []string
	err      error
	calls    int
	lastURL  string
	lastOpts *models.ProviderOptions
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Fetch(_ context.Context, url string, hints *models.ProviderOptions) (string, error) {
	p.calls++
	p.lastURL = url
	p.lastOpts = hints
	if p.err != nil {
		return "", p.err
	}
	idx := p.calls - 1
	if idx >= len(p.pages) {
		idx = len(p.pages) - 1
	}
	return p.pages[idx], nil
}

func stub(html string) *stubProvider {
	return &stubProvider{pages: []string{html}}
}

func TestMercadoLibreScriptData(t *testing.T) {
	html := `<html><head><title>Producto</title></head><body>
		<h1>Audifonos Inalambricos</h1>
		<script>window.melidata = {"original_price": 299900, "price": 189900};</script>
	</body></html>`
	p := stub(html)
	s := NewMercadoLibre(Deps{Provider: p})

	out := s.Extract(context.Background(), "https://mercadolibre.com.co/p/MCO123", nil)

	require.True(t, out.Success)
	require.NotNil(t, out.Product)
	assert.Equal(t, "Script-Data", out.Method)
	assert.Equal(t, 189900, out.Product.CurrentPrice)
	assert.Equal(t, 299900, out.Product.OriginalPrice)
	assert.Equal(t, "COP", out.Product.Currency)
	assert.Equal(t, "Audifonos Inalambricos", out.Product.Title)
}

func TestMercadoLibreJSONLDFallback(t *testing.T) {
	html := `<html><body>
		<script type="application/ld+json">
		{"@type":"Product","name":"Parlante JBL","offers":{"price":459900,"availability":"https://schema.org/InStock"}}
		</script>
	</body></html>`
	s := NewMercadoLibre(Deps{Provider: stub(html)})

	out := s.Extract(context.Background(), "https://mercadolibre.com.co/p/MCO9", nil)

	require.True(t, out.Success)
	assert.Equal(t, "JSON-LD", out.Method)
	assert.Equal(t, 459900, out.Product.CurrentPrice)
	// No strike-through price reported: original mirrors current.
	assert.Equal(t, 459900, out.Product.OriginalPrice)
	require.NotNil(t, out.Product.Availability)
	assert.True(t, *out.Product.Availability)
}

func TestMercadoLibreCSSFallback(t *testing.T) {
	html := `<html><body>
		<h1 class="ui-pdp-title">Celular</h1>
		<div class="ui-pdp-price__second-line"><span class="andes-money-amount__fraction">1.299.900</span></div>
	</body></html>`
	s := NewMercadoLibre(Deps{Provider: stub(html)})

	out := s.Extract(context.Background(), "https://mercadolibre.com.co/p/MCO5", nil)

	require.True(t, out.Success)
	assert.Equal(t, "CSS-Selectors", out.Method)
	assert.Equal(t, 1299900, out.Product.CurrentPrice)
	assert.Equal(t, "Celular", out.Product.Title)
}

func TestMercadoLibreChallengeDetected(t *testing.T) {
	html := `<html><body><div class="nav-header-captcha">Please verify</div></body></html>`
	s := NewMercadoLibre(Deps{Provider: stub(html)})

	out := s.Extract(context.Background(), "https://mercadolibre.com.co/p/MCO1", nil)

	require.False(t, out.Success)
	require.NotNil(t, out.Error)
	assert.Equal(t, models.ErrCodeChallenge, out.Error.Code)
	assert.NotEmpty(t, out.Method)
}

func TestFetchFailureBecomesOutcome(t *testing.T) {
	p := &stubProvider{err: errors.New("upstream 503")}
	s := NewMercadoLibre(Deps{Provider: p})

	out := s.Extract(context.Background(), "https://mercadolibre.com.co/p/MCO1", nil)

	require.False(t, out.Success)
	require.NotNil(t, out.Error)
	assert.Equal(t, models.ErrCodeFetchFailed, out.Error.Code)
	assert.Nil(t, out.Product)
}

func TestSelectorOverridesTakePriority(t *testing.T) {
	html := `<html><body>
		<h1>Televisor</h1>
		<span class="custom-price">2.100.000</span>
		<div class="ui-pdp-price__second-line"><span class="andes-money-amount__fraction">1</span></div>
	</body></html>`
	cfg := &models.DomainConfig{
		SelectorOverrides: map[string]string{"price": ".custom-price"},
	}
	s := NewMercadoLibre(Deps{Provider: stub(html)})

	out := s.Extract(context.Background(), "https://mercadolibre.com.co/p/MCO2", cfg)

	require.True(t, out.Success)
	assert.Equal(t, 2100000, out.Product.CurrentPrice)
}

func TestInvalidSelectorOverrideIsSkipped(t *testing.T) {
	html := `<html><body>
		<h1>Nevera</h1>
		<div class="ui-pdp-price__second-line"><span class="andes-money-amount__fraction">3.500.000</span></div>
	</body></html>`
	cfg := &models.DomainConfig{
		SelectorOverrides: map[string]string{"price": "[[["},
	}
	s := NewMercadoLibre(Deps{Provider: stub(html)})

	out := s.Extract(context.Background(), "https://mercadolibre.com.co/p/MCO3", cfg)

	require.True(t, out.Success)
	assert.Equal(t, 3500000, out.Product.CurrentPrice)
}

func TestAlkostoGAProductData(t *testing.T) {
	html := `<html><body>
		<h1>Lavadora</h1>
		<script>var GAProductData = {price:"1899000",previousPrice:"2299000"};</script>
	</body></html>`
	p := stub(html)
	s := NewAlkosto(Deps{Provider: p})

	out := s.Extract(context.Background(), "https://alkosto.com/lavadora", nil)

	require.True(t, out.Success)
	assert.Equal(t, "GAProductData-Extract", out.Method)
	assert.Equal(t, 1899000, out.Product.CurrentPrice)
	assert.Equal(t, 2299000, out.Product.OriginalPrice)

	// Render default is sent unless the stored config overrides it.
	require.NotNil(t, p.lastOpts)
	require.NotNil(t, p.lastOpts.Render)
	assert.True(t, *p.lastOpts.Render)
}

func TestConfigOverridesStrategyDefaults(t *testing.T) {
	html := `<html><body>
		<script>var GAProductData = {price:"100000"};</script>
	</body></html>`
	p := stub(html)
	s := NewAlkosto(Deps{Provider: p})
	render := false
	cfg := &models.DomainConfig{ProviderOptions: &models.ProviderOptions{Render: &render}}

	out := s.Extract(context.Background(), "https://alkosto.com/x", cfg)

	require.True(t, out.Success)
	require.NotNil(t, p.lastOpts.Render)
	assert.False(t, *p.lastOpts.Render)
}

func TestKtronixItempropFallback(t *testing.T) {
	html := `<html><body>
		<h1>Portatil</h1>
		<meta itemprop="price" content="3299000">
	</body></html>`
	s := NewKtronix(Deps{Provider: stub(html)})

	out := s.Extract(context.Background(), "https://ktronix.com/portatil", nil)

	require.True(t, out.Success)
	assert.Equal(t, "Itemprop-Meta", out.Method)
	assert.Equal(t, 3299000, out.Product.CurrentPrice)
}

func TestIShopAdobeAnalytics(t *testing.T) {
	html := `<html><body>
		<script id="adobeAnalyticsProductData" type="application/json">
		{"product_name":"iPhone 15","product_price":{"sellingPrice":4599000,"basePrice":4999000}}
		</script>
	</body></html>`
	s := NewIShop(Deps{Provider: stub(html)})

	out := s.Extract(context.Background(), "https://ishop.com.co/iphone-15", nil)

	require.True(t, out.Success)
	assert.Equal(t, "AdobeAnalytics-Extract", out.Method)
	assert.Equal(t, "iPhone 15", out.Product.Title)
	assert.Equal(t, 4599000, out.Product.CurrentPrice)
	assert.Equal(t, 4999000, out.Product.OriginalPrice)
}

func TestMacCenterPlainFetchDefaults(t *testing.T) {
	html := `<html><body>
		<script id="adobeAnalyticsProductData" type="application/json">
		{"product_name":"MacBook Air","product_price":{"sellingPrice":5999000,"basePrice":5999000}}
		</script>
	</body></html>`
	p := stub(html)
	s := NewMacCenter(Deps{Provider: p})

	out := s.Extract(context.Background(), "https://maccenter.com.co/macbook-air", nil)

	require.True(t, out.Success)
	require.NotNil(t, p.lastOpts)
	require.NotNil(t, p.lastOpts.Render)
	assert.False(t, *p.lastOpts.Render)
	require.NotNil(t, p.lastOpts.CountryCode)
	assert.Equal(t, "co", *p.lastOpts.CountryCode)
}

func TestExitoNestedJSONLD(t *testing.T) {
	html := `<html><head>
		<meta property="product:price:listPrice" content="59900">
	</head><body>
		<script type="application/ld+json">
		{"@graph":[{"@type":"WebPage"},{"@type":"Product","name":"Arroz Diana 5kg","offers":{"@type":"AggregateOffer","lowPrice":42900}}]}
		</script>
	</body></html>`
	s := NewExito(Deps{Provider: stub(html)})

	out := s.Extract(context.Background(), "https://exito.com/arroz", nil)

	require.True(t, out.Success)
	assert.Equal(t, "JSON-LD", out.Method)
	assert.Equal(t, "Arroz Diana 5kg", out.Product.Title)
	assert.Equal(t, 42900, out.Product.CurrentPrice)
	assert.Equal(t, 59900, out.Product.OriginalPrice)
}

func TestFalabellaEventPriceAttributes(t *testing.T) {
	html := `<html><body>
		<h1 class="product-name">Secadora</h1>
		<ul>
			<li data-event-price="1999990"></li>
			<li data-normal-price="2499990"></li>
		</ul>
	</body></html>`
	s := NewFalabella(Deps{Provider: stub(html)})

	out := s.Extract(context.Background(), "https://falabella.com.co/secadora", nil)

	require.True(t, out.Success)
	assert.Equal(t, "CSS-Selectors", out.Method)
	assert.Equal(t, 1999990, out.Product.CurrentPrice)
	assert.Equal(t, 2499990, out.Product.OriginalPrice)
}

func TestFalabellaNextDataFallback(t *testing.T) {
	html := `<html><body>
		<script id="__NEXT_DATA__" type="application/json">
		{"props":{"pageProps":{"productData":{"name":"Sofa 3 Puestos","prices":[{"eventPrice":"1.499.990","normalPrice":"1.899.990"}]}}}}
		</script>
	</body></html>`
	s := NewFalabella(Deps{Provider: stub(html)})

	out := s.Extract(context.Background(), "https://falabella.com.co/sofa", nil)

	require.True(t, out.Success)
	assert.Equal(t, "NextData-Recursive", out.Method)
	assert.Equal(t, "Sofa 3 Puestos", out.Product.Title)
	assert.Equal(t, 1499990, out.Product.CurrentPrice)
	assert.Equal(t, 1899990, out.Product.OriginalPrice)
}

func TestClaroRetriesSkeletonPage(t *testing.T) {
	full := `<html><body><h1>Moto G</h1><span class="priceNowFP">$ 899.900</span>` +
		`<div>` + pad(100000) + `</div></body></html>`
	p := &stubProvider{pages: []string{"<html><body>loading</body></html>", full}}
	s := NewClaro(Deps{Provider: p})

	out := s.Extract(context.Background(), "https://claro.com.co/moto-g", nil)

	require.True(t, out.Success)
	assert.Equal(t, 2, p.calls)
	assert.Equal(t, 899900, out.Product.CurrentPrice)

	// The wait selector is forced even with no stored config.
	require.NotNil(t, p.lastOpts)
	require.NotNil(t, p.lastOpts.WaitForSelector)
	assert.Equal(t, ".priceNowFP", *p.lastOpts.WaitForSelector)
}

func TestClaroGivesUpAfterMaxAttempts(t *testing.T) {
	p := &stubProvider{pages: []string{"<html><body>skeleton</body></html>"}}
	s := NewClaro(Deps{Provider: p})

	out := s.Extract(context.Background(), "https://claro.com.co/x", nil)

	require.False(t, out.Success)
	assert.Equal(t, 2, p.calls)
	require.NotNil(t, out.Error)
	assert.Equal(t, models.ErrCodeNoPrice, out.Error.Code)
}

func TestClaroNextDataFallback(t *testing.T) {
	html := `<html><body>
		<script id="__NEXT_DATA__" type="application/json">
		{"props":{"pageProps":{"product":{"priceNowFP":"1.099.900","priceBeforeFP":"1.299.900"}}}}
		</script>
		<div>` + pad(100000) + `</div>
	</body></html>`
	s := NewClaro(Deps{Provider: stub(html)})

	out := s.Extract(context.Background(), "https://claro.com.co/y", nil)

	require.True(t, out.Success)
	assert.Equal(t, "NextData-Recursive", out.Method)
	assert.Equal(t, 1099900, out.Product.CurrentPrice)
	assert.Equal(t, 1299900, out.Product.OriginalPrice)
}

func TestMovistarStickyBarThenItemprop(t *testing.T) {
	sticky := `<html><body>
		<h1>Plan Movil</h1>
		<span class="regularPrice-sticky">$ 45.000</span>
	</body></html>`
	s := NewMovistar(Deps{Provider: stub(sticky)})
	out := s.Extract(context.Background(), "https://movistar.com.co/plan", nil)
	require.True(t, out.Success)
	assert.Equal(t, "CSS-StickyBar", out.Method)
	assert.Equal(t, 45000, out.Product.CurrentPrice)

	meta := `<html><body>
		<h1>Router</h1>
		<meta itemprop="price" content="189000">
	</body></html>`
	s = NewMovistar(Deps{Provider: stub(meta)})
	out = s.Extract(context.Background(), "https://movistar.com.co/router", nil)
	require.True(t, out.Success)
	assert.Equal(t, "Itemprop-Meta", out.Method)
	assert.Equal(t, 189000, out.Product.CurrentPrice)
}

func pad(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'x'
	}
	return string(b)
}
