package constants

// Portal identifiers. PortalUnknown is the sentinel the orchestrator maps to
// the generic extractor.
const (
	PortalCentury21   = "century21"
	PortalInmuebles24 = "inmuebles24"
	PortalLamudi      = "lamudi"
	PortalVivanuncios = "vivanuncios"
	PortalPropiedades = "propiedades.com"
	PortalUnknown     = "unknown"
)

// PortalDomains maps registrable hostnames to portal identifiers. Lookup is
// exact first, then substring in both directions to tolerate subdomains and
// country-TLD variants.
var PortalDomains = map[string]string{
	"century21mexico.com": PortalCentury21,
	"century21.com.mx":    PortalCentury21,
	"inmuebles24.com":     PortalInmuebles24,
	"lamudi.com.mx":       PortalLamudi,
	"vivanuncios.com.mx":  PortalVivanuncios,
	"propiedades.com":     PortalPropiedades,
}

// PortalDisplayNames are the user-facing portal names.
var PortalDisplayNames = map[string]string{
	PortalCentury21:   "Century 21 México",
	PortalInmuebles24: "Inmuebles24",
	PortalLamudi:      "Lamudi México",
	PortalVivanuncios: "Vivanuncios",
	PortalPropiedades: "Propiedades.com",
	PortalUnknown:     "Portal Desconocido",
}
