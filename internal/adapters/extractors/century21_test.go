package extractors

import (
	"context"
	"strings"
	"testing"

	"property-scraper-service/internal/constants"
)

const century21Fixture = `<!DOCTYPE html>
<html>
<head>
<meta property="og:site_name" content="Century 21">
<meta property="og:image" content="https://cdn.21online.lat/mexico/propiedades/900/frente.jpg">
<script type="application/ld+json">
{
  "@type": "RealEstateListing",
  "description": "desde jsonld",
  "image": [
    "https://cdn.21online.lat/mexico/propiedades/900/frente.jpg",
    "https://cdn.21online.lat/mexico/propiedades/thumb/frente.jpg",
    "https://cdn.21online.lat/mexico/propiedades/900/cocina.jpg",
    "https://cdn.21online.lat/mexico/logos/c21.png",
    "https://cdn.21online.lat/mexico/usuarios/agente.jpg"
  ],
  "offers": {"price": "2450000", "priceCurrency": "MXN"},
  "address": {
    "streetAddress": "Av. Bonampak 55",
    "addressLocality": "Cancún",
    "addressRegion": "Quintana Roo",
    "postalCode": "77500"
  },
  "geo": {"latitude": 21.1619, "longitude": -86.8515}
}
</script>
</head>
<body>
<h1 class="card-title text-primary h5">Venta de Casa en Condominio en Residencial Cumbres</h1>
<h6 class="text-muted fs-3 fw-bold">$ 2,450,000 MXN <span class="fs-5 small">/ 145,000 USD</span></h6>
<div class="row fw-bold my-4">
  <div class="col">Terreno 140 m²</div>
  <div class="col">Construcción 210 m²</div>
  <div class="col">Recámaras 3</div>
  <div class="col">Baños 2.5</div>
  <div class="col">Estacionamientos 2</div>
</div>
<div class="card-body pt-0">
  <div class="col-12 pt-4">
    <p class="text-muted" style="white-space: pre-wrap">Hermosa casa en condominio con alberca y seguridad 24h.</p>
  </div>
  <div class="row">
    <div class="col-sm-12 col-md-6 my-1">Tipo: Casa en Condominio</div>
    <div class="col-sm-12 col-md-6 my-1">Precio de Venta: $ 2,450,000 MXN</div>
    <div class="col-sm-12 col-md-6 col-lg-4 my-2">Alberca</div>
    <div class="col-sm-12 col-md-6 col-lg-4 my-2">Seguridad privada</div>
    <div class="col-sm-12 mt-4"><h2 class="h5 fw-normal fs-6">Casa 3 recámaras con alberca</h2></div>
  </div>
</div>
<div id="mapa"><div itemprop="address"><span>Residencial Cumbres, Cancún, Q.R.</span></div></div>
</body>
</html>`

func TestCentury21CanHandle(t *testing.T) {
	e := NewCentury21Extractor()

	if !e.CanHandle("https://century21mexico.com/propiedad/1", "") {
		t.Error("century21mexico.com URL should be handled")
	}
	if !e.CanHandle("https://century21.com.mx/casa", "") {
		t.Error("century21.com.mx URL should be handled")
	}
	if !e.CanHandle("https://acortador.mx/x", century21Fixture) {
		t.Error("page content mentioning Century 21 should be handled")
	}
	if e.CanHandle("https://example.com/casa", "<html><body>casa</body></html>") {
		t.Error("unrelated page should not be handled")
	}
}

func TestCentury21ExtractImagesStrictProvenance(t *testing.T) {
	e := NewCentury21Extractor()
	listing, err := e.Extract(context.Background(), century21Fixture, "https://century21mexico.com/propiedad/900")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	// Five JSON-LD entries: logo and avatar filtered out, the size-variant
	// duplicate of frente.jpg collapsed by filename.
	if len(listing.Images) != 2 {
		t.Fatalf("images: got %d (%v), want 2", len(listing.Images), listing.Images)
	}
	for _, img := range listing.Images {
		if !strings.Contains(img, "/propiedades/") {
			t.Errorf("non-property image slipped through: %s", img)
		}
	}
	if listing.Images[0] != "https://cdn.21online.lat/mexico/propiedades/900/frente.jpg" {
		t.Errorf("order not preserved: first image %s", listing.Images[0])
	}
}

func TestCentury21ExtractFields(t *testing.T) {
	e := NewCentury21Extractor()
	listing, err := e.Extract(context.Background(), century21Fixture, "https://century21mexico.com/propiedad/900")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if listing.Price.MXN != "$ 2,450,000 MXN" {
		t.Errorf("price MXN: got %q", listing.Price.MXN)
	}
	if listing.Price.USD != "145,000 USD" {
		t.Errorf("price USD: got %q", listing.Price.USD)
	}
	if listing.Location != "Residencial Cumbres, Cancún, Q.R." {
		t.Errorf("location: got %q (map section must win over JSON-LD)", listing.Location)
	}
	if listing.PropertyType != "Casa en Condominio" {
		t.Errorf("property type: got %q", listing.PropertyType)
	}
	if listing.Operation != "venta" {
		t.Errorf("operation: got %q", listing.Operation)
	}
	if !strings.HasPrefix(listing.Description, "Hermosa casa") {
		t.Errorf("description: got %q", listing.Description)
	}
	if listing.Summary != "Casa 3 recámaras con alberca" {
		t.Errorf("summary: got %q", listing.Summary)
	}
	if listing.Portal != constants.PortalCentury21 {
		t.Errorf("portal: got %q", listing.Portal)
	}

	if listing.Details.LotSize != "140 m²" {
		t.Errorf("lot size: got %q", listing.Details.LotSize)
	}
	if listing.Details.BuiltArea != "210 m²" {
		t.Errorf("built area: got %q", listing.Details.BuiltArea)
	}
	if listing.Details.Bedrooms != "3" {
		t.Errorf("bedrooms: got %q", listing.Details.Bedrooms)
	}
	if listing.Details.Bathrooms != "2.5" {
		t.Errorf("bathrooms: got %q", listing.Details.Bathrooms)
	}
	if listing.Details.ParkingSpots != "2" {
		t.Errorf("parking: got %q", listing.Details.ParkingSpots)
	}

	if listing.Features["Tipo"] != "Casa en Condominio" {
		t.Errorf("features[Tipo]: got %q", listing.Features["Tipo"])
	}
	if listing.Features["Alberca"] != "Sí" {
		t.Errorf("presence-only feature: got %q", listing.Features["Alberca"])
	}

	if listing.Geohash == "" {
		t.Error("geohash should be derived from JSON-LD geo")
	}
}

func TestCentury21FallbackToOgImage(t *testing.T) {
	html := `<html><head>
	<meta property="og:image" content="https://cdn.21online.lat/mexico/propiedades/77/frente.jpg">
	</head><body>Century 21</body></html>`

	e := NewCentury21Extractor()
	listing, err := e.Extract(context.Background(), html, "https://century21mexico.com/propiedad/77")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(listing.Images) != 1 || listing.Images[0] != "https://cdn.21online.lat/mexico/propiedades/77/frente.jpg" {
		t.Errorf("og:image fallback: got %v", listing.Images)
	}
}

func TestCentury21MissingEverything(t *testing.T) {
	e := NewCentury21Extractor()
	listing, err := e.Extract(context.Background(), "<html><body>Century 21</body></html>", "https://century21mexico.com/propiedad/1")
	if err != nil {
		t.Fatalf("partial pages must not fail extraction: %v", err)
	}
	if len(listing.Images) != 0 || listing.Price.MXN != "" || listing.Location != "" {
		t.Errorf("empty page should yield empty fields: %+v", listing)
	}
}
