package schemas

import "embed"

// SchemasFS holds the versioned JSON Schemas for every event this service
// publishes.
//
//go:embed events
var SchemasFS embed.FS
