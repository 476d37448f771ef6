package portaldetect

// Detector exposes the package-level detection functions through the
// PortalDetectorPort interface.
type Detector struct{}

func NewDetector() *Detector {
	return &Detector{}
}

func (d *Detector) Detect(url, html string) string {
	return Detect(url, html)
}

func (d *Detector) DisplayName(portal string) string {
	return DisplayName(portal)
}
