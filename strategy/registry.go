package strategy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/scraperlab/scraperlab/models"
)

// Registry routes a (site, extraction type) pair to the factory that
// builds its strategy. The default type is an alias a site maps to one
// of its concrete strategies; asking for a concrete type a site never
// registered always fails, even when default would resolve.
type Registry struct {
	sites map[string]map[models.ExtractionType]Factory
}

// NewRegistry returns an empty registry. Use DefaultRegistry for the
// built-in marketplace table.
func NewRegistry() *Registry {
	return &Registry{sites: make(map[string]map[models.ExtractionType]Factory)}
}

// Register binds a factory to a site and type. Site IDs are matched
// case-insensitively.
func (r *Registry) Register(siteID string, typ models.ExtractionType, f Factory) {
	key := strings.ToLower(siteID)
	if r.sites[key] == nil {
		r.sites[key] = make(map[models.ExtractionType]Factory)
	}
	r.sites[key][typ] = f
}

// RegisterAlias makes default on a site resolve to one of its concrete
// types. The target must already be registered.
func (r *Registry) RegisterAlias(siteID string, target models.ExtractionType) {
	key := strings.ToLower(siteID)
	f, ok := r.sites[key][target]
	if !ok {
		panic(fmt.Sprintf("registry: alias target %q not registered for %s", target, siteID))
	}
	r.sites[key][models.TypeDefault] = f
}

// UnsupportedSiteError reports a site with no registered strategies.
type UnsupportedSiteError struct {
	SiteID string
}

func (e *UnsupportedSiteError) Error() string {
	return fmt.Sprintf("no strategies registered for site %q", e.SiteID)
}

// UnsupportedTypeError reports a known site asked for a type it never
// registered. Supported carries the site's concrete types so callers
// can drive their own validation from it.
type UnsupportedTypeError struct {
	SiteID    string
	Type      models.ExtractionType
	Supported []string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("site %q does not support type %q (supported: %s)",
		e.SiteID, e.Type, strings.Join(e.Supported, ", "))
}

// Resolve returns the factory for the pair, or a typed ScrapeError
// wrapping an UnsupportedSiteError or UnsupportedTypeError.
func (r *Registry) Resolve(siteID string, typ models.ExtractionType) (Factory, error) {
	byType, ok := r.sites[strings.ToLower(siteID)]
	if !ok {
		cause := &UnsupportedSiteError{SiteID: siteID}
		return nil, models.NewScrapeError(models.ErrCodeUnsupportedSite, cause.Error(), cause)
	}
	f, ok := byType[typ]
	if !ok {
		cause := &UnsupportedTypeError{
			SiteID:    siteID,
			Type:      typ,
			Supported: r.supportedTypes(byType),
		}
		return nil, models.NewScrapeError(models.ErrCodeUnsupportedType, cause.Error(), cause)
	}
	return f, nil
}

// Supports reports whether the pair would resolve.
func (r *Registry) Supports(siteID string, typ models.ExtractionType) bool {
	_, err := r.Resolve(siteID, typ)
	return err == nil
}

// Sites returns every registered site ID, sorted.
func (r *Registry) Sites() []string {
	out := make([]string, 0, len(r.sites))
	for id := range r.sites {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// SupportedTypes returns a site's concrete types, sorted, excluding the
// default alias. Unknown sites return nil.
func (r *Registry) SupportedTypes(siteID string) []string {
	byType, ok := r.sites[strings.ToLower(siteID)]
	if !ok {
		return nil
	}
	return r.supportedTypes(byType)
}

func (r *Registry) supportedTypes(byType map[models.ExtractionType]Factory) []string {
	out := make([]string, 0, len(byType))
	for t := range byType {
		if t == models.TypeDefault {
			continue
		}
		out = append(out, string(t))
	}
	sort.Strings(out)
	return out
}

// DefaultRegistry builds the registry with the built-in marketplace
// table. Every site aliases default to its primary strategy so callers
// without a type preference still get something sensible.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	detailSites := []struct {
		ids     []string
		factory Factory
	}{
		{[]string{"mercadolibre.com.co", "mercadolibre.com"}, NewMercadoLibre},
		{[]string{"exito.com"}, NewExito},
		{[]string{"falabella.com.co"}, NewFalabella},
		{[]string{"alkosto.com"}, NewAlkosto},
		{[]string{"ktronix.com"}, NewKtronix},
		{[]string{"alkomprar.com"}, NewAlkomprar},
		{[]string{"ishop.com.co"}, NewIShop},
		{[]string{"maccenter.com.co"}, NewMacCenter},
		{[]string{"claro.com.co"}, NewClaro},
		{[]string{"movistar.com.co"}, NewMovistar},
	}
	for _, site := range detailSites {
		for _, id := range site.ids {
			r.Register(id, models.TypeDetail, site.factory)
			r.RegisterAlias(id, models.TypeDetail)
		}
	}

	for _, id := range []string{"pequenomundo.com", "tienda.pequenomundo.com"} {
		r.Register(id, models.TypeDetail, NewPequenoMundo)
		r.Register(id, models.TypeSearch, NewPequenoMundoSearch)
		r.Register(id, models.TypeSearchSpecific, NewPequenoMundoSearchSpecific)
		r.RegisterAlias(id, models.TypeDetail)
	}

	r.Register("automercado.cr", models.TypeSearchSpecific, NewAutoMercado)
	r.RegisterAlias("automercado.cr", models.TypeSearchSpecific)

	return r
}
