package scraperutil

import "regexp"

// Meta tags come with name/property and content in either order; both forms
// are matched. Later duplicates overwrite earlier ones.
var metaTagRe = regexp.MustCompile(
	`(?i)<meta\s+(?:[^>]*?\s+)?(?:name|property)=["']([^"']*)["']\s+(?:[^>]*?\s+)?content=["']([^"']*)["']` +
		`|<meta\s+(?:[^>]*?\s+)?content=["']([^"']*)["']\s+(?:[^>]*?\s+)?(?:name|property)=["']([^"']*)["']`)

// ExtractMetadata parses every <meta name|property=... content=...> tag of
// the raw markup into a flat map. The input is never validated as HTML; the
// scan is purely pattern based so garbled pages still yield whatever tags are
// intact.
func ExtractMetadata(html string) map[string]string {
	metadata := make(map[string]string)

	for _, match := range metaTagRe.FindAllStringSubmatch(html, -1) {
		name, content := match[1], match[2]
		if name == "" {
			name, content = match[4], match[3]
		}
		if name != "" && content != "" {
			metadata[name] = content
		}
	}

	return metadata
}
