package port

import "context"

// UploadResult is what the blob store reports back for one object.
type UploadResult struct {
	Path      string
	PublicURL string
}

// BlobStoragePort is the boundary to the external object store that re-hosts
// downloaded images. The store is assumed concurrent-safe.
type BlobStoragePort interface {
	Upload(ctx context.Context, bucket, path string, data []byte, contentType string, ownerID string) (UploadResult, error)
}
