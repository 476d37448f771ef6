package usecase

import (
	"context"
	"testing"

	"property-scraper-service/internal/adapters/portaldetect"
	"property-scraper-service/internal/constants"
)

func TestValidateURL(t *testing.T) {
	uc := NewValidateURLUseCase(portaldetect.NewDetector())

	tests := []struct {
		url        string
		wantValid  bool
		wantPortal string
	}{
		{"https://century21mexico.com/propiedad/123", true, constants.PortalCentury21},
		{"http://www.inmuebles24.com/propiedades/x", true, constants.PortalInmuebles24},
		{"https://example.com/listing/1", false, constants.PortalUnknown},
		{"century21mexico.com/propiedad/123", false, constants.PortalUnknown},
		{"ftp://century21mexico.com/x", false, constants.PortalUnknown},
		{"", false, constants.PortalUnknown},
	}

	for _, tt := range tests {
		valid, portal := uc.Execute(context.Background(), tt.url)
		if valid != tt.wantValid || portal != tt.wantPortal {
			t.Errorf("Execute(%q) = (%v, %q); want (%v, %q)", tt.url, valid, portal, tt.wantValid, tt.wantPortal)
		}
	}
}
