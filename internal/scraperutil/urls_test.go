package scraperutil

import "testing"

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"https://www.century21mexico.com/propiedad/123", "https://century21mexico.com/propiedad/123"},
		{"century21mexico.com/propiedad/123", "https://century21mexico.com/propiedad/123"},
		{"https://century21mexico.com/propiedad/123/", "https://century21mexico.com/propiedad/123"},
		{"https://century21mexico.com/p?utm_source=fb&utm_campaign=x&id=9", "https://century21mexico.com/p?id=9"},
		{"https://century21mexico.com/p?fbclid=abc", "https://century21mexico.com/p"},
		{"http://inmuebles24.com/propiedades/casa-1", "http://inmuebles24.com/propiedades/casa-1"},
		{"https://lamudi.com.mx/", "https://lamudi.com.mx/"},
	}

	for _, tt := range tests {
		got := NormalizeURL(tt.raw)
		if got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q; want %q", tt.raw, got, tt.want)
		}
	}
}

func TestGenerateIDFromURLStable(t *testing.T) {
	variants := []string{
		"https://www.century21mexico.com/propiedad/123",
		"https://century21mexico.com/propiedad/123/",
		"century21mexico.com/propiedad/123?utm_source=whatsapp",
	}

	want := GenerateIDFromURL(variants[0])
	if len(want) != 16 {
		t.Fatalf("id length: got %d, want 16", len(want))
	}
	for _, v := range variants[1:] {
		if got := GenerateIDFromURL(v); got != want {
			t.Errorf("GenerateIDFromURL(%q) = %q; want %q (same listing, different share)", v, got, want)
		}
	}

	other := GenerateIDFromURL("https://century21mexico.com/propiedad/456")
	if other == want {
		t.Error("different listings must not collide on id")
	}
}

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"https://www.inmuebles24.com/propiedades/x", "inmuebles24.com"},
		{"vivanuncios.com.mx/a/casa", "vivanuncios.com.mx"},
		{"https://propiedades.com/depto-1", "propiedades.com"},
	}

	for _, tt := range tests {
		got := ExtractDomain(tt.raw)
		if got != tt.want {
			t.Errorf("ExtractDomain(%q) = %q; want %q", tt.raw, got, tt.want)
		}
	}
}

func TestToAbsoluteURL(t *testing.T) {
	base := "https://century21mexico.com/propiedad/123"

	tests := []struct {
		raw  string
		want string
	}{
		{"https://cdn.21online.lat/foto.jpg", "https://cdn.21online.lat/foto.jpg"},
		{"//cdn.21online.lat/foto.jpg", "https://cdn.21online.lat/foto.jpg"},
		{"/fotos/casa.jpg", "https://century21mexico.com/fotos/casa.jpg"},
		{"casa.jpg", "https://century21mexico.com/propiedad/casa.jpg"},
	}

	for _, tt := range tests {
		got := ToAbsoluteURL(tt.raw, base)
		if got != tt.want {
			t.Errorf("ToAbsoluteURL(%q, %q) = %q; want %q", tt.raw, base, got, tt.want)
		}
	}
}

func TestFileNameFromURL(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"https://cdn.21online.lat/fotos/abc123.jpg", "abc123.jpg"},
		{"https://cdn.21online.lat/fotos/abc123.jpg?v=2", "abc123.jpg"},
		{"https://cdn.21online.lat/", ""},
	}

	for _, tt := range tests {
		got := FileNameFromURL(tt.raw)
		if got != tt.want {
			t.Errorf("FileNameFromURL(%q) = %q; want %q", tt.raw, got, tt.want)
		}
	}
}
