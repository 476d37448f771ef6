package portaldetect

import (
	"regexp"
	"strings"

	"property-scraper-service/internal/constants"
	"property-scraper-service/internal/scraperutil"
)

type portalSignature struct {
	portal   string
	patterns []*regexp.Regexp
}

// Content signatures checked in a fixed order so detection stays
// deterministic when a page happens to mention more than one portal.
var portalSignatures = []portalSignature{
	{constants.PortalCentury21, []*regexp.Regexp{
		regexp.MustCompile(`(?i)century\s*21`),
		regexp.MustCompile(`(?i)<meta\s+(?:[^>]*?\s+)?property=["']og:site_name["']\s+(?:[^>]*?\s+)?content=["']Century\s*21["']`),
	}},
	{constants.PortalInmuebles24, []*regexp.Regexp{
		regexp.MustCompile(`(?i)inmuebles\s*24`),
		regexp.MustCompile(`(?i)<meta\s+(?:[^>]*?\s+)?property=["']og:site_name["']\s+(?:[^>]*?\s+)?content=["']Inmuebles24["']`),
	}},
	{constants.PortalLamudi, []*regexp.Regexp{
		regexp.MustCompile(`(?i)lamudi`),
		regexp.MustCompile(`(?i)<meta\s+(?:[^>]*?\s+)?property=["']og:site_name["']\s+(?:[^>]*?\s+)?content=["']Lamudi["']`),
	}},
	{constants.PortalVivanuncios, []*regexp.Regexp{
		regexp.MustCompile(`(?i)vivanuncios`),
		regexp.MustCompile(`(?i)<meta\s+(?:[^>]*?\s+)?property=["']og:site_name["']\s+(?:[^>]*?\s+)?content=["']Vivanuncios["']`),
	}},
	{constants.PortalPropiedades, []*regexp.Regexp{
		regexp.MustCompile(`(?i)propiedades\.com`),
		regexp.MustCompile(`(?i)<meta\s+(?:[^>]*?\s+)?property=["']og:site_name["']\s+(?:[^>]*?\s+)?content=["']Propiedades\.com["']`),
	}},
}

// Detect identifies the portal behind a listing. The URL is checked first
// since it is cheap and reliable; HTML signatures only run when the domain is
// not recognized, so mirror or shortened URLs still resolve.
func Detect(url, html string) string {
	if portal := detectByURL(url); portal != constants.PortalUnknown {
		return portal
	}
	return detectByHTML(html)
}

func detectByURL(url string) string {
	domain := scraperutil.ExtractDomain(url)
	if domain == "" {
		return constants.PortalUnknown
	}

	if portal, ok := constants.PortalDomains[domain]; ok {
		return portal
	}

	for portalDomain, portal := range constants.PortalDomains {
		if strings.Contains(domain, portalDomain) || strings.Contains(portalDomain, domain) {
			return portal
		}
	}

	return constants.PortalUnknown
}

func detectByHTML(html string) string {
	if html == "" {
		return constants.PortalUnknown
	}

	for _, sig := range portalSignatures {
		for _, pattern := range sig.patterns {
			if pattern.MatchString(html) {
				return sig.portal
			}
		}
	}

	return constants.PortalUnknown
}

// DisplayName returns the user-facing portal name.
func DisplayName(portal string) string {
	if name, ok := constants.PortalDisplayNames[portal]; ok {
		return name
	}
	return constants.PortalDisplayNames[constants.PortalUnknown]
}
