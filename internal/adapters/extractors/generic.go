package extractors

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcloughlin/geohash"

	"property-scraper-service/internal/constants"
	"property-scraper-service/internal/contextkeys"
	"property-scraper-service/internal/core/domain"
	"property-scraper-service/internal/core/port"
	"property-scraper-service/internal/scraperutil"
)

var bodyPriceRe = regexp.MustCompile(`(?i)\$\s*[\d,.]+\s*(MXN|USD|pesos|dólares)?`)

// jsonLdListingTypes are the schema.org types a listing page plausibly
// publishes, in preference order.
var jsonLdListingTypes = []string{
	"RealEstateListing", "Product", "Place", "Residence", "ApartmentComplex",
}

var priceSelectors = []string{
	".price", ".precio", "#price", "#precio",
	`[itemprop="price"]`, "[data-price]",
	".property-price", ".listing-price",
	"span.price", "div.price", "h2.price", "h3.price",
}

var locationSelectors = []string{
	`[itemprop="address"]`, ".address", ".location", ".ubicacion",
	".property-address", ".listing-address", "#address", "#location",
}

var descriptionSelectors = []string{
	`[itemprop="description"]`, ".description", ".descripcion",
	".property-description", ".listing-description", "#description",
}

var featureContainerSelectors = []string{
	".features", ".caracteristicas", ".specs", ".details",
	".property-features", ".listing-features", "#features", "#details",
}

var summarySelectors = []string{
	".summary", ".resumen", ".overview", ".property-summary",
	"h2 + p", "h3 + p", ".property-overview p",
}

var amenitiesSelectors = []string{
	".amenities", ".amenidades", ".features", ".property-amenities",
	".listing-amenities", "#amenities",
}

// detailKeywords maps the fixed detail fields to the labels portals use for
// them, in Spanish and English.
var detailKeywords = []struct {
	assign   func(*domain.ListingDetails, string)
	keywords []string
}{
	{func(d *domain.ListingDetails, v string) { d.LotSize = v },
		[]string{"terreno", "superficie", "lote", "lot", "land", "area"}},
	{func(d *domain.ListingDetails, v string) { d.BuiltArea = v },
		[]string{"construcción", "construido", "built", "construction"}},
	{func(d *domain.ListingDetails, v string) { d.Bedrooms = v },
		[]string{"recámaras", "habitaciones", "dormitorios", "bedrooms", "rooms"}},
	{func(d *domain.ListingDetails, v string) { d.Bathrooms = v },
		[]string{"baños", "bathrooms", "wc"}},
	{func(d *domain.ListingDetails, v string) { d.ParkingSpots = v },
		[]string{"estacionamientos", "cocheras", "parking", "garage"}},
	{func(d *domain.ListingDetails, v string) { d.Age = v },
		[]string{"antigüedad", "edad", "año", "age", "year built"}},
	{func(d *domain.ListingDetails, v string) { d.Storeys = v },
		[]string{"niveles", "pisos", "plantas", "floors", "stories"}},
}

var propertyTypePatterns = []struct {
	re    *regexp.Regexp
	value string
}{
	{regexp.MustCompile(`(?i)casa`), "casa"},
	{regexp.MustCompile(`(?i)departamento|apartamento`), "departamento"},
	{regexp.MustCompile(`(?i)terreno|lote`), "terreno"},
	{regexp.MustCompile(`(?i)oficina`), "oficina"},
	{regexp.MustCompile(`(?i)local`), "local"},
	{regexp.MustCompile(`(?i)bodega`), "bodega"},
}

var operationPatterns = []struct {
	re    *regexp.Regexp
	value string
}{
	{regexp.MustCompile(`(?i)venta|compra|comprar`), "venta"},
	{regexp.MustCompile(`(?i)renta|alquiler|rentar`), "renta"},
}

// GenericExtractor is the last-resort extractor for unrecognized portals. It
// leans on structured data (JSON-LD, Open Graph) and common CSS class
// conventions rather than any one portal's markup.
type GenericExtractor struct{}

func NewGenericExtractor() *GenericExtractor {
	return &GenericExtractor{}
}

func (e *GenericExtractor) Name() string {
	return "Extractor Genérico"
}

// CanHandle always accepts; this extractor must sit last in the registry.
func (e *GenericExtractor) CanHandle(url, html string) bool {
	return true
}

func (e *GenericExtractor) Extract(ctx context.Context, html, url string) (domain.Listing, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"extractor": e.Name()})

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return domain.Listing{}, fmt.Errorf("generic extractor: parse html: %w", err)
	}

	metadata := scraperutil.ExtractMetadata(html)
	records := scraperutil.ExtractJSONLD(ctx, html)
	jsonLd := scraperutil.FindByType(records, jsonLdListingTypes...)

	images := e.extractImages(doc, jsonLd, metadata)
	logger.Debug("Gallery extracted", port.Fields{"images": len(images)})

	priceMXN, priceUSD := e.extractPrices(doc, jsonLd, metadata)

	location := runCascade(ctx, "location", []strategy{
		{"jsonld-address", jsonLd.AddressText},
		{"metadata", func() string {
			if metadata["direccion"] != "" {
				return metadata["direccion"]
			}
			return metadata["og:locality"]
		}},
		{"common-selectors", func() string { return firstSelectorText(doc, locationSelectors) }},
		{"labelled-heading", func() string {
			var loc string
			doc.Find("h1, h2, h3, h4, h5, p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
				text := strings.TrimSpace(s.Text())
				for _, label := range []string{"Ubicación:", "Dirección:", "Localización:"} {
					if strings.Contains(text, label) {
						loc = strings.TrimSpace(strings.Replace(text, label, "", 1))
						return false
					}
				}
				return true
			})
			return loc
		}},
	})

	description := runCascade(ctx, "description", []strategy{
		{"jsonld-description", func() string { return jsonLd.String("description") }},
		{"metadata", func() string {
			if metadata["og:description"] != "" {
				return metadata["og:description"]
			}
			return metadata["description"]
		}},
		{"common-selectors", func() string { return firstSelectorText(doc, descriptionSelectors) }},
		{"long-paragraph", func() string {
			var desc string
			doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
				if text := strings.TrimSpace(s.Text()); len(text) > 100 {
					desc = text
					return false
				}
				return true
			})
			return desc
		}},
	})

	features := e.extractFeatures(doc)
	details := e.extractDetails(features, metadata)

	title := doc.Find("title").Text()
	if title == "" {
		title = metadata["og:title"]
	}

	propertyType := runCascade(ctx, "property_type", []strategy{
		{"metadata", func() string { return metadata["tipoInmueble"] }},
		{"title-pattern", func() string {
			for _, p := range propertyTypePatterns {
				if p.re.MatchString(title) {
					return p.value
				}
			}
			return ""
		}},
	})

	operation := runCascade(ctx, "operation", []strategy{
		{"metadata", func() string { return metadata["tipoOperacion"] }},
		{"title-pattern", func() string {
			for _, p := range operationPatterns {
				if p.re.MatchString(title) {
					return p.value
				}
			}
			return ""
		}},
	})

	summary := runCascade(ctx, "summary", []strategy{
		{"common-selectors", func() string { return firstSelectorText(doc, summarySelectors) }},
		{"description-head", func() string {
			if description == "" {
				return ""
			}
			lines := strings.SplitN(description, "\n", 3)
			if len(lines) > 1 {
				return lines[0] + " " + lines[1]
			}
			return lines[0]
		}},
	})

	var amenities []string
	for _, sel := range amenitiesSelectors {
		doc.Find(sel).Find("li, div").Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if text != "" && !strings.Contains(text, ":") {
				amenities = append(amenities, text)
			}
		})
	}

	listing := domain.Listing{
		URL:          url,
		Description:  description,
		Features:     features,
		Summary:      summary,
		Images:       images,
		Price:        domain.Price{MXN: priceMXN, USD: priceUSD},
		Location:     location,
		PropertyType: propertyType,
		Operation:    operation,
		Details:      details,
		Amenities:    amenities,
		Portal:       constants.PortalUnknown,
	}

	if lat, lng, ok := jsonLd.Geo(); ok {
		listing.Geohash = geohash.Encode(lat, lng)
	}

	return listing, nil
}

func (e *GenericExtractor) extractImages(doc *goquery.Document, jsonLd scraperutil.JSONLD, metadata map[string]string) []string {
	var candidates []string

	candidates = append(candidates, jsonLd.Images()...)

	if og := metadata["og:image"]; og != "" {
		candidates = append(candidates, og)
	}
	if tw := metadata["twitter:image"]; tw != "" {
		candidates = append(candidates, tw)
	}

	gallerySel := "div.gallery img, div.carousel img, div.slider img, " +
		".photos img, .images img, .property-images img"
	doc.Find(gallerySel).Each(func(_ int, s *goquery.Selection) {
		if src := imgSrc(s, "src", "data-src", "data-lazy-src"); src != "" {
			candidates = append(candidates, src)
		}
	})

	altSel := `img[alt*="propiedad"], img[alt*="inmueble"], img[alt*="casa"], ` +
		`img[alt*="departamento"], img[alt*="property"]`
	doc.Find(altSel).Each(func(_ int, s *goquery.Selection) {
		if src := imgSrc(s, "src", "data-src"); src != "" {
			candidates = append(candidates, src)
		}
	})

	// Large images are assumed to be property photos.
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		width, _ := strconv.Atoi(s.AttrOr("width", "0"))
		height, _ := strconv.Atoi(s.AttrOr("height", "0"))
		if width > 400 || height > 400 {
			if src := imgSrc(s, "src", "data-src"); src != "" {
				candidates = append(candidates, src)
			}
		}
	})

	seen := make(map[string]bool)
	var images []string
	for _, u := range candidates {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		images = append(images, u)
	}
	return images
}

func (e *GenericExtractor) extractPrices(doc *goquery.Document, jsonLd scraperutil.JSONLD, metadata map[string]string) (mxn, usd string) {
	if price, currency := jsonLd.Offer(); price != "" {
		switch currency {
		case "MXN":
			mxn = "$" + price + " MXN"
		case "USD":
			usd = "$" + price + " USD"
		}
	}

	if mxn == "" && metadata["precio"] != "" && metadata["moneda"] == "MXN" {
		mxn = "$" + metadata["precio"] + " MXN"
	}
	if usd == "" && metadata["precio"] != "" && metadata["moneda"] == "USD" {
		usd = "$" + metadata["precio"] + " USD"
	}

	if mxn == "" && usd == "" {
		for _, sel := range priceSelectors {
			text := strings.TrimSpace(doc.Find(sel).First().Text())
			if text == "" {
				continue
			}
			switch {
			case strings.Contains(text, "USD") || strings.Contains(text, "US$") || strings.Contains(text, "U$D"):
				usd = text
			case strings.Contains(text, "MXN") || strings.Contains(text, "$"):
				mxn = text
			}
			if mxn != "" || usd != "" {
				break
			}
		}
	}

	if mxn == "" && usd == "" {
		if match := bodyPriceRe.FindString(doc.Find("body").Text()); match != "" {
			if strings.Contains(match, "USD") || strings.Contains(match, "dólares") {
				usd = match
			} else {
				mxn = match
			}
		}
	}

	return mxn, usd
}

func (e *GenericExtractor) extractFeatures(doc *goquery.Document) map[string]string {
	features := make(map[string]string)

	for _, sel := range featureContainerSelectors {
		doc.Find(sel).Find("li, div").Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if key, value, found := strings.Cut(text, ":"); found {
				features[strings.TrimSpace(key)] = strings.TrimSpace(value)
			} else if text != "" {
				features[text] = "Sí"
			}
		})
	}

	doc.Find("[data-feature], [data-spec], [data-detail]").Each(func(_ int, s *goquery.Selection) {
		key := s.AttrOr("data-feature", s.AttrOr("data-spec", s.AttrOr("data-detail", "")))
		if key != "" {
			features[key] = strings.TrimSpace(s.Text())
		}
	})

	return features
}

func (e *GenericExtractor) extractDetails(features map[string]string, metadata map[string]string) domain.ListingDetails {
	var details domain.ListingDetails

	if metadata["MT"] != "" {
		details.LotSize = metadata["MT"] + " m²"
	}
	if metadata["MC"] != "" {
		details.BuiltArea = metadata["MC"] + " m²"
	}
	details.Bedrooms = metadata["recamaras"]
	if metadata["banio"] != "" {
		details.Bathrooms = metadata["banio"]
	} else {
		details.Bathrooms = metadata["banos"]
	}
	details.ParkingSpots = metadata["estacionamiento"]

	for key, value := range features {
		lowerKey := strings.ToLower(key)
		for _, dk := range detailKeywords {
			matched := false
			for _, keyword := range dk.keywords {
				if strings.Contains(lowerKey, keyword) {
					matched = true
					break
				}
			}
			if matched {
				dk.assign(&details, value)
				break
			}
		}
	}

	return details
}

func firstSelectorText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

func imgSrc(s *goquery.Selection, attrs ...string) string {
	for _, attr := range attrs {
		if src, ok := s.Attr(attr); ok && src != "" {
			return src
		}
	}
	return ""
}
