package scraperutil

import "testing"

func TestExtractMetadata(t *testing.T) {
	html := `<html><head>
		<meta name="description" content="Casa en venta en Cancún">
		<meta property="og:site_name" content="Century 21 México">
		<meta content="https://cdn.example.com/foto.jpg" property="og:image">
		<meta charset="utf-8">
	</head></html>`

	meta := ExtractMetadata(html)

	tests := []struct {
		key  string
		want string
	}{
		{"description", "Casa en venta en Cancún"},
		{"og:site_name", "Century 21 México"},
		{"og:image", "https://cdn.example.com/foto.jpg"},
	}

	for _, tt := range tests {
		if got := meta[tt.key]; got != tt.want {
			t.Errorf("metadata[%q] = %q; want %q", tt.key, got, tt.want)
		}
	}
}

func TestExtractMetadataLastWriteWins(t *testing.T) {
	html := `<meta name="description" content="first">
		<meta name="description" content="second">`

	meta := ExtractMetadata(html)
	if got := meta["description"]; got != "second" {
		t.Errorf("duplicate meta tag: got %q, want %q", got, "second")
	}
}

func TestExtractMetadataGarbledInput(t *testing.T) {
	html := `<<<not html at all <meta name="og:title" content="still found"> %%%`

	meta := ExtractMetadata(html)
	if got := meta["og:title"]; got != "still found" {
		t.Errorf("garbled page: got %q, want %q", got, "still found")
	}
}
