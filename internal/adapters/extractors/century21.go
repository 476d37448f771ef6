package extractors

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcloughlin/geohash"

	"property-scraper-service/internal/constants"
	"property-scraper-service/internal/contextkeys"
	"property-scraper-service/internal/core/domain"
	"property-scraper-service/internal/core/port"
	"property-scraper-service/internal/scraperutil"
)

var (
	saleTypeRe      = regexp.MustCompile(`(?i)(?:Venta|Renta)\s+de\s+(.+?)\s+en`)
	saleOperationRe = regexp.MustCompile(`(?i)^(\w+)\s+de`)
	salePriceRe     = regexp.MustCompile(`Precio de Venta:\s*(.+)`)
)

// Century21Extractor understands the page structure of Century 21 México
// listings. It is strict about image provenance: only photos under the
// portal's /propiedades/ CDN path are accepted, which keeps franchise logos
// and agent avatars out of the gallery.
type Century21Extractor struct{}

func NewCentury21Extractor() *Century21Extractor {
	return &Century21Extractor{}
}

func (e *Century21Extractor) Name() string {
	return "Century 21 México"
}

func (e *Century21Extractor) CanHandle(url, html string) bool {
	if strings.Contains(url, "century21mexico.com") || strings.Contains(url, "century21.com.mx") {
		return true
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}

	hasLogo := doc.Find(`img[src*="century21"], img[alt*="Century21"], img[alt*="CENTURY21"]`).Length() > 0
	hasMeta := doc.Find(`meta[content*="Century21"], meta[content*="CENTURY21"]`).Length() > 0
	hasText := strings.Contains(html, "Century21") || strings.Contains(html, "CENTURY21") ||
		strings.Contains(html, "Century 21")

	return hasLogo || hasMeta || hasText
}

func (e *Century21Extractor) Extract(ctx context.Context, html, url string) (domain.Listing, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"extractor": e.Name()})

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return domain.Listing{}, fmt.Errorf("century21 extractor: parse html: %w", err)
	}

	metadata := scraperutil.ExtractMetadata(html)
	records := scraperutil.ExtractJSONLD(ctx, html)
	jsonLd := scraperutil.FindByType(records, "RealEstateListing")

	images := e.extractImages(jsonLd, metadata, logger)

	priceMXN := runCascade(ctx, "price_mxn", []strategy{
		{"price-element", func() string {
			el := doc.Find("h6.text-muted.fs-3.fw-bold")
			if el.Length() == 0 {
				return ""
			}
			return strings.TrimSpace(el.Contents().First().Text())
		}},
		{"features-section", func() string {
			var price string
			doc.Find("div.col-sm-12.col-md-6.my-1").EachWithBreak(func(_ int, s *goquery.Selection) bool {
				if m := salePriceRe.FindStringSubmatch(s.Text()); m != nil {
					price = strings.TrimSpace(m[1])
					return false
				}
				return true
			})
			return price
		}},
		{"side-card", func() string {
			return strings.TrimSpace(doc.Find("div.col-sm-12.h5").Text())
		}},
		{"metadata", func() string {
			if metadata["precio"] != "" && metadata["moneda"] != "" {
				return metadata["precio"] + " " + metadata["moneda"]
			}
			return ""
		}},
		{"jsonld-offer", func() string {
			price, currency := jsonLd.Offer()
			if price != "" && currency != "" {
				return price + " " + currency
			}
			return ""
		}},
	})

	priceUSD := ""
	if el := doc.Find("h6.text-muted.fs-3.fw-bold"); el.Length() > 0 {
		usd := el.Find("span.fs-5.small, span").Text()
		priceUSD = strings.TrimSpace(strings.ReplaceAll(usd, "/", ""))
	}

	location := runCascade(ctx, "location", []strategy{
		{"map-section", func() string {
			return strings.TrimSpace(doc.Find(`div#mapa div[itemprop="address"] span`).Text())
		}},
		{"location-card", func() string {
			var loc string
			doc.Find("h5.card-title").EachWithBreak(func(_ int, s *goquery.Selection) bool {
				if strings.Contains(s.Text(), "Ubicación") {
					loc = strings.TrimSpace(s.Next().Text())
					return false
				}
				return true
			})
			return loc
		}},
		{"metadata", func() string { return metadata["direccion"] }},
		{"jsonld-address", jsonLd.AddressText},
	})

	title := strings.TrimSpace(doc.Find("h1.card-title.text-primary.h5").Text())

	propertyType := runCascade(ctx, "property_type", []strategy{
		{"features-section", func() string { return featureValue(doc, "Tipo:") }},
		{"title", func() string {
			if m := saleTypeRe.FindStringSubmatch(title); m != nil {
				return strings.TrimSpace(m[1])
			}
			return ""
		}},
		{"metadata", func() string { return metadata["tipoInmueble"] }},
	})

	operation := runCascade(ctx, "operation", []strategy{
		{"title", func() string {
			if m := saleOperationRe.FindStringSubmatch(title); m != nil {
				return strings.ToLower(m[1])
			}
			return ""
		}},
		{"metadata", func() string { return metadata["tipoOperacion"] }},
	})

	description := runCascade(ctx, "description", []strategy{
		{"pre-wrap-paragraph", func() string {
			sel := `div.card-body.pt-0 div.col-12.pt-4 p.text-muted[style*="white-space: pre-wrap"], ` +
				`div.card-body p.text-muted[style*="white-space: pre-wrap"]`
			return strings.TrimSpace(doc.Find(sel).Text())
		}},
		{"muted-paragraph", func() string {
			sel := "div.card-body.pt-0 div.col-12.pt-4 p.text-muted, div.card-body p.text-muted"
			return strings.TrimSpace(doc.Find(sel).First().Text())
		}},
		{"metadata", func() string { return metadata["descripcion"] }},
		{"jsonld-description", func() string { return jsonLd.String("description") }},
	})

	features := e.extractFeatures(doc)
	details := e.extractDetails(doc, metadata)

	summary := strings.TrimSpace(doc.Find(
		"div.card-body.pt-0 .row div.col-sm-12.mt-4 h2.h5.fw-normal.fs-6, "+
			"div.card-body .row div.col-sm-12.mt-4 h2.h5.fw-normal.fs-6").Text())

	var amenities []string
	doc.Find("div.col-sm-12.col-md-6.col-lg-4.my-2").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			amenities = append(amenities, text)
		}
	})

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
		Portal:       constants.PortalCentury21,
	}

	if lat, lng, ok := jsonLd.Geo(); ok {
		listing.Geohash = geohash.Encode(lat, lng)
	}

	return listing, nil
}

// extractImages takes gallery photos only from the RealEstateListing JSON-LD
// block. og:image is a fallback, held to the same /propiedades/ filter.
func (e *Century21Extractor) extractImages(jsonLd scraperutil.JSONLD, metadata map[string]string, logger port.LoggerPort) []string {
	isPropertyPhoto := func(u string) bool {
		return strings.Contains(u, "/propiedades/") &&
			!strings.Contains(u, "/logos/") &&
			!strings.Contains(u, "/usuarios/")
	}

	var candidates []string
	if jsonLd != nil && jsonLd.Type() == "RealEstateListing" {
		for _, img := range jsonLd.Images() {
			if isPropertyPhoto(img) {
				candidates = append(candidates, img)
			}
		}
	}

	if len(candidates) == 0 {
		if og := metadata["og:image"]; og != "" && isPropertyPhoto(og) {
			logger.Debug("No JSON-LD gallery, falling back to og:image", nil)
			candidates = append(candidates, og)
		}
	}

	// The CDN serves the same photo under several size-variant URLs; the
	// filename is the stable part, so dedup on it.
	seen := make(map[string]bool)
	var images []string
	for _, u := range candidates {
		if !strings.HasPrefix(u, "http") {
			continue
		}
		name := scraperutil.FileNameFromURL(u)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		images = append(images, u)
	}

	logger.Debug("Gallery extracted", port.Fields{"images": len(images)})
	return images
}

func (e *Century21Extractor) extractFeatures(doc *goquery.Document) map[string]string {
	features := make(map[string]string)

	sel := "div.card-body.pt-0 .row div.col-sm-12.col-md-6.my-1, " +
		"div.card-body.pt-0 .row div.col-sm-12.col-md-6.col-lg-4.my-2, " +
		"div.card-body .row div.col-sm-12.col-md-6.my-1"

	doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if key, value, found := strings.Cut(text, ":"); found {
			key = scraperutil.CleanText(key)
			if key != "" {
				features[key] = scraperutil.CleanText(value)
			}
		} else if cleaned := scraperutil.CleanText(text); cleaned != "" {
			// Presence-only features ("Alberca") are recorded as flags.
			features[cleaned] = "Sí"
		}
	})

	return features
}

// extractDetails reads the bolded summary strip under the gallery. Metadata
// keys are the portal's own shorthand (MT = lot m², MC = built m²).
func (e *Century21Extractor) extractDetails(doc *goquery.Document, metadata map[string]string) domain.ListingDetails {
	var details domain.ListingDetails

	doc.Find("div.row.fw-bold.my-4 div.col").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		switch {
		case strings.Contains(text, "Terreno"):
			details.LotSize = strings.TrimSpace(strings.ReplaceAll(text, "Terreno", ""))
		case strings.Contains(text, "Construcción"):
			details.BuiltArea = strings.TrimSpace(strings.ReplaceAll(text, "Construcción", ""))
		case strings.Contains(text, "Recámaras"):
			details.Bedrooms = strings.TrimSpace(strings.ReplaceAll(text, "Recámaras", ""))
		case strings.Contains(text, "Baños"):
			details.Bathrooms = strings.TrimSpace(strings.ReplaceAll(text, "Baños", ""))
		case strings.Contains(text, "Estacionamientos"):
			details.ParkingSpots = strings.TrimSpace(strings.ReplaceAll(text, "Estacionamientos", ""))
		}
	})

	if details.LotSize == "" && metadata["MT"] != "" {
		details.LotSize = metadata["MT"] + " m²"
	}
	if details.BuiltArea == "" && metadata["MC"] != "" {
		details.BuiltArea = metadata["MC"] + " m²"
	}
	if details.Bedrooms == "" {
		details.Bedrooms = metadata["recamaras"]
	}
	if details.Bathrooms == "" {
		details.Bathrooms = metadata["banio"]
	}
	if details.ParkingSpots == "" {
		details.ParkingSpots = metadata["estacionamiento"]
	}

	return details
}

func featureValue(doc *goquery.Document, label string) string {
	var value string
	doc.Find("div.col-sm-12.col-md-6.my-1").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if idx := strings.Index(text, label); idx >= 0 {
			value = strings.TrimSpace(text[idx+len(label):])
			return false
		}
		return true
	})
	return value
}
