package scraperutil

import "testing"

func TestCleanText(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"  Casa   en  venta  ", "Casa en venta"},
		{"linea1\n\n\nlinea2", "linea1\nlinea2"},
		{"\t tab\tseparated \t", "tab separated"},
		{"", ""},
	}

	for _, tt := range tests {
		got := CleanText(tt.raw)
		if got != tt.want {
			t.Errorf("CleanText(%q) = %q; want %q", tt.raw, got, tt.want)
		}
	}
}

func TestExtractNumber(t *testing.T) {
	tests := []struct {
		raw    string
		want   int64
		wantOK bool
	}{
		{"3 recámaras", 3, true},
		{"Terreno 1,250 m²", 1250, true},
		{"$2,500,000", 2500000, true},
		{"sin datos", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := ExtractNumber(tt.raw)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ExtractNumber(%q) = (%d, %v); want (%d, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestExtractPrice(t *testing.T) {
	tests := []struct {
		raw          string
		wantValue    int64
		wantCurrency string
		wantOK       bool
	}{
		{"$2,500,000", 2500000, "MXN", true},
		{"MXN 1,200,000", 1200000, "MXN", true},
		{"US$ 350,000", 350000, "USD", true},
		{"350,000 USD", 350000, "USD", true},
		{"€ 99,000", 99000, "EUR", true},
		{"Consultar precio", 0, "", false},
	}

	for _, tt := range tests {
		value, currency, ok := ExtractPrice(tt.raw)
		if value != tt.wantValue || currency != tt.wantCurrency || ok != tt.wantOK {
			t.Errorf("ExtractPrice(%q) = (%d, %q, %v); want (%d, %q, %v)",
				tt.raw, value, currency, ok, tt.wantValue, tt.wantCurrency, tt.wantOK)
		}
	}
}
