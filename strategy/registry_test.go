package strategy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scraperlab/scraperlab/models"
)

func TestRegistryResolvesDetail(t *testing.T) {
	r := DefaultRegistry()

	f, err := r.Resolve("mercadolibre.com.co", models.TypeDetail)
	require.NoError(t, err)
	require.NotNil(t, f)

	// Site matching is case-insensitive.
	_, err = r.Resolve("MercadoLibre.com.CO", models.TypeDetail)
	assert.NoError(t, err)
}

func TestRegistryDefaultAlias(t *testing.T) {
	r := DefaultRegistry()

	_, err := r.Resolve("exito.com", models.TypeDefault)
	assert.NoError(t, err)

	// automercado's default aliases to searchSpecific, its only type.
	_, err = r.Resolve("automercado.cr", models.TypeDefault)
	assert.NoError(t, err)
}

func TestRegistryUnknownSite(t *testing.T) {
	r := DefaultRegistry()

	_, err := r.Resolve("amazon.com", models.TypeDetail)
	require.Error(t, err)

	var scrapeErr *models.ScrapeError
	require.True(t, errors.As(err, &scrapeErr))
	assert.Equal(t, models.ErrCodeUnsupportedSite, scrapeErr.Code)
}

func TestRegistryUnsupportedTypeListsConcreteTypes(t *testing.T) {
	r := DefaultRegistry()

	_, err := r.Resolve("exito.com", models.TypeSearchSpecific)
	require.Error(t, err)

	var scrapeErr *models.ScrapeError
	require.True(t, errors.As(err, &scrapeErr))
	assert.Equal(t, models.ErrCodeUnsupportedType, scrapeErr.Code)
	assert.Contains(t, scrapeErr.Message, "detail")
	assert.NotContains(t, scrapeErr.Message, "default")
}

func TestRegistryErrorsCarryStructuredFields(t *testing.T) {
	r := DefaultRegistry()

	_, err := r.Resolve("amazon.com", models.TypeDetail)
	var siteErr *UnsupportedSiteError
	require.True(t, errors.As(err, &siteErr))
	assert.Equal(t, "amazon.com", siteErr.SiteID)

	_, err = r.Resolve("pequenomundo.com", models.ExtractionType("bogus"))
	var typeErr *UnsupportedTypeError
	require.True(t, errors.As(err, &typeErr))
	assert.Equal(t, "pequenomundo.com", typeErr.SiteID)
	assert.Equal(t, []string{"detail", "search", "searchSpecific"}, typeErr.Supported)
}

func TestRegistryExplicitTypeNeverFallsBackToDefault(t *testing.T) {
	r := DefaultRegistry()

	// automercado has a default alias, but an explicit detail request
	// must still be refused.
	_, err := r.Resolve("automercado.cr", models.TypeDetail)
	require.Error(t, err)

	var scrapeErr *models.ScrapeError
	require.True(t, errors.As(err, &scrapeErr))
	assert.Equal(t, models.ErrCodeUnsupportedType, scrapeErr.Code)
}

func TestRegistrySupportedTypes(t *testing.T) {
	r := DefaultRegistry()

	assert.Equal(t, []string{"detail", "search", "searchSpecific"},
		r.SupportedTypes("pequenomundo.com"))
	assert.Equal(t, []string{"detail"}, r.SupportedTypes("claro.com.co"))
	assert.Nil(t, r.SupportedTypes("nosuchsite.cr"))
}

func TestRegistrySitesSorted(t *testing.T) {
	r := DefaultRegistry()

	sites := r.Sites()
	require.NotEmpty(t, sites)
	assert.Contains(t, sites, "automercado.cr")
	assert.Contains(t, sites, "tienda.pequenomundo.com")
	for i := 1; i < len(sites); i++ {
		assert.Less(t, sites[i-1], sites[i])
	}
}

func TestRegistryAliasTargetMustExist(t *testing.T) {
	r := NewRegistry()
	assert.Panics(t, func() {
		r.RegisterAlias("example.com", models.TypeDetail)
	})
}
