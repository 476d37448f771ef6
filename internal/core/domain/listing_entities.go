package domain

// Price holds the listed price in both currencies a portal may display.
// Values are kept as the raw display strings ("$ 2,450,000 MXN") because the
// portals are wildly inconsistent about formatting; numeric parsing happens
// on demand via scraperutil.ExtractPrice.
type Price struct {
	MXN string `json:"mxn"`
	USD string `json:"usd"`
}

// ListingDetails are the fixed optional sub-fields portals highlight in the
// bolded summary strip of a listing page.
type ListingDetails struct {
	LotSize      string `json:"lot_size,omitempty"`
	BuiltArea    string `json:"built_area,omitempty"`
	Bedrooms     string `json:"bedrooms,omitempty"`
	Bathrooms    string `json:"bathrooms,omitempty"`
	ParkingSpots string `json:"parking_spots,omitempty"`
	Age          string `json:"age,omitempty"`
	Storeys      string `json:"storeys,omitempty"`
}

// Listing is the normalized record produced by one extraction attempt.
// URL is the natural key; ID is a pure function of the normalized URL.
// A Listing is built once per attempt and never mutated afterwards.
type Listing struct {
	ID           string            `json:"id"`
	URL          string            `json:"url"`
	Description  string            `json:"description"`
	Features     map[string]string `json:"features"`
	Summary      string            `json:"summary"`
	Images       []string          `json:"images"`
	Price        Price             `json:"price"`
	Location     string            `json:"location"`
	Geohash      string            `json:"geohash,omitempty"`
	PropertyType string            `json:"property_type,omitempty"`
	Operation    string            `json:"operation,omitempty"`
	Details      ListingDetails    `json:"details"`
	Amenities    []string          `json:"amenities,omitempty"`
	Portal       string            `json:"portal,omitempty"`
}

// ImageResult is the per-URL outcome of the image pipeline. Only successful
// entries contribute a StoredPath; failures carry the error text and turn
// into warnings at the orchestrator level.
type ImageResult struct {
	OriginalURL string `json:"original_url"`
	StoredPath  string `json:"stored_path,omitempty"`
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
	Size        int    `json:"size,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

// ScrapeResult is the shape every caller (REST handler, batch use case) gets
// back for one URL.
type ScrapeResult struct {
	Success        bool     `json:"success"`
	Data           *Listing `json:"data,omitempty"`
	ImagePaths     []string `json:"image_paths,omitempty"`
	PortalDetected string   `json:"portal_detected,omitempty"`
	ProcessingMs   int64    `json:"processing_time_ms"`
	Warnings       []string `json:"warnings,omitempty"`
	Error          string   `json:"error,omitempty"`
}
