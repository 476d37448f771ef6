package scraperutil

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"property-scraper-service/internal/contextkeys"
	"property-scraper-service/internal/core/port"
)

var jsonLdScriptRe = regexp.MustCompile(`(?is)<script\s+type=["']application/ld\+json["'][^>]*>(.*?)</script>`)

// JSONLD is one embedded structured-data record. The payload is untrusted and
// frequently malformed, so every field access goes through a type-checked
// probe instead of a fixed schema.
type JSONLD map[string]interface{}

// ExtractJSONLD pulls every application/ld+json block out of the raw markup.
// Blocks that fail to parse are skipped; a block holding an array is
// flattened into multiple candidate records.
func ExtractJSONLD(ctx context.Context, html string) []JSONLD {
	logger := contextkeys.LoggerFromContext(ctx)

	var records []JSONLD
	matches := jsonLdScriptRe.FindAllStringSubmatch(html, -1)

	for _, match := range matches {
		raw := strings.TrimSpace(match[1])
		if raw == "" {
			continue
		}

		var parsed interface{}
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			logger.Debug("Skipping malformed JSON-LD block", port.Fields{"error": err.Error()})
			continue
		}

		switch v := parsed.(type) {
		case []interface{}:
			for _, item := range v {
				if obj, ok := item.(map[string]interface{}); ok {
					records = append(records, JSONLD(obj))
				}
			}
		case map[string]interface{}:
			records = append(records, JSONLD(v))
		}
	}

	logger.Debug("Extracted JSON-LD blocks", port.Fields{
		"blocks_found":   len(matches),
		"records_parsed": len(records),
	})

	return records
}

// FindByType returns the first record whose @type matches any of the given
// values, or nil.
func FindByType(records []JSONLD, types ...string) JSONLD {
	for _, rec := range records {
		recType := rec.Type()
		for _, t := range types {
			if recType == t {
				return rec
			}
		}
	}
	return nil
}

// Type returns the record's @type or "".
func (d JSONLD) Type() string {
	return d.String("@type")
}

// String probes a top-level field as a string, returning "" for any other
// shape.
func (d JSONLD) String(key string) string {
	if d == nil {
		return ""
	}
	if s, ok := d[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// Images returns every image URL the record carries. The image field may be
// a string, an array of strings, an array of {url: ...} objects, or a single
// object; all four shapes are accepted.
func (d JSONLD) Images() []string {
	if d == nil {
		return nil
	}

	var urls []string
	appendURL := func(v interface{}) {
		switch img := v.(type) {
		case string:
			if s := strings.TrimSpace(img); s != "" {
				urls = append(urls, s)
			}
		case map[string]interface{}:
			if s, ok := img["url"].(string); ok && strings.TrimSpace(s) != "" {
				urls = append(urls, strings.TrimSpace(s))
			}
		}
	}

	switch v := d["image"].(type) {
	case []interface{}:
		for _, item := range v {
			appendURL(item)
		}
	default:
		appendURL(v)
	}

	return urls
}

// AddressText flattens the address field: a plain string passes through, a
// structured postal address is joined as
// "streetAddress, addressLocality, addressRegion, postalCode" with empty
// parts skipped.
func (d JSONLD) AddressText() string {
	if d == nil {
		return ""
	}

	switch addr := d["address"].(type) {
	case string:
		return strings.TrimSpace(addr)
	case map[string]interface{}:
		obj := JSONLD(addr)
		parts := []string{
			obj.String("streetAddress"),
			obj.String("addressLocality"),
			obj.String("addressRegion"),
			obj.String("postalCode"),
		}
		var nonEmpty []string
		for _, p := range parts {
			if p != "" {
				nonEmpty = append(nonEmpty, p)
			}
		}
		return strings.Join(nonEmpty, ", ")
	}
	return ""
}

// Offer returns offers.price and offers.priceCurrency; either may be "".
// Numeric prices are formatted back to their literal representation.
func (d JSONLD) Offer() (price, currency string) {
	offers, ok := d["offers"].(map[string]interface{})
	if !ok {
		return "", ""
	}
	obj := JSONLD(offers)

	price = obj.String("price")
	if price == "" {
		if n, ok := offers["price"].(float64); ok {
			price = strconv.FormatFloat(n, 'f', -1, 64)
		}
	}
	return price, obj.String("priceCurrency")
}

// Geo returns geo.latitude/geo.longitude when both parse as coordinates.
func (d JSONLD) Geo() (lat, lng float64, ok bool) {
	geo, isObj := d["geo"].(map[string]interface{})
	if !isObj {
		return 0, 0, false
	}

	parse := func(v interface{}) (float64, bool) {
		switch n := v.(type) {
		case float64:
			return n, true
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
			return f, err == nil
		}
		return 0, false
	}

	lat, latOK := parse(geo["latitude"])
	lng, lngOK := parse(geo["longitude"])
	if !latOK || !lngOK {
		return 0, 0, false
	}
	return lat, lng, true
}
