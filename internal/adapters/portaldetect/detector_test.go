package portaldetect

import (
	"testing"

	"property-scraper-service/internal/constants"
)

func TestDetectByURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://century21mexico.com/propiedad/123-casa", constants.PortalCentury21},
		{"https://www.century21.com.mx/casa-venta", constants.PortalCentury21},
		{"https://www.inmuebles24.com/propiedades/depto", constants.PortalInmuebles24},
		{"https://listado.lamudi.com.mx/casa-1", constants.PortalLamudi},
		{"https://www.vivanuncios.com.mx/a-venta-casas/x", constants.PortalVivanuncios},
		{"https://propiedades.com/inmuebles/casa-9", constants.PortalPropiedades},
		{"https://example.com/listing/1", constants.PortalUnknown},
	}

	for _, tt := range tests {
		got := Detect(tt.url, "")
		if got != tt.want {
			t.Errorf("Detect(%q, \"\") = %q; want %q", tt.url, got, tt.want)
		}
	}
}

func TestDetectURLWinsOverHTML(t *testing.T) {
	// A Century 21 page that also mentions Lamudi in its body. The URL must
	// decide before any content signature runs.
	html := `<html><body>Visto en Lamudi</body></html>`
	got := Detect("https://century21mexico.com/propiedad/1", html)
	if got != constants.PortalCentury21 {
		t.Errorf("got %q; want %q", got, constants.PortalCentury21)
	}
}

func TestDetectByHTMLSignature(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			"og:site_name century21",
			`<meta property="og:site_name" content="Century 21">`,
			constants.PortalCentury21,
		},
		{
			"plain mention inmuebles24",
			`<title>Casa en venta | Inmuebles 24</title>`,
			constants.PortalInmuebles24,
		},
		{
			"og:site_name propiedades.com",
			`<meta property="og:site_name" content="Propiedades.com">`,
			constants.PortalPropiedades,
		},
		{
			"no signature",
			`<html><body>Casa en venta</body></html>`,
			constants.PortalUnknown,
		},
		{
			"empty html",
			"",
			constants.PortalUnknown,
		},
	}

	for _, tt := range tests {
		got := Detect("https://acortador.mx/x9f2", tt.html)
		if got != tt.want {
			t.Errorf("%s: Detect = %q; want %q", tt.name, got, tt.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName(constants.PortalCentury21); got != "Century 21 México" {
		t.Errorf("DisplayName(century21) = %q", got)
	}
	if got := DisplayName("nope"); got != "Portal Desconocido" {
		t.Errorf("DisplayName(unrecognized) = %q", got)
	}
}
