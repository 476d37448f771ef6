package imagepipeline

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"property-scraper-service/internal/core/domain"
	"property-scraper-service/internal/core/port"
)

type fakeBlobStore struct {
	mu      sync.Mutex
	uploads []string
	failOn  map[string]bool
}

func (f *fakeBlobStore) Upload(ctx context.Context, bucket, path string, data []byte, contentType, ownerID string) (port.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn[path] {
		return port.UploadResult{}, context.DeadlineExceeded
	}
	f.uploads = append(f.uploads, path)
	return port.UploadResult{Path: path, PublicURL: "https://blob.local/" + bucket + "/" + path}, nil
}

func imageServer(t *testing.T, inFlight *int64, maxInFlight *int64, failPaths map[string]bool) *httptest.Server {
	t.Helper()
	payload := bytes.Repeat([]byte("x"), 2048)

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failPaths[r.URL.Path] {
			http.Error(w, "gone", http.StatusNotFound)
			return
		}

		if inFlight != nil {
			current := atomic.AddInt64(inFlight, 1)
			for {
				max := atomic.LoadInt64(maxInFlight)
				if current <= max || atomic.CompareAndSwapInt64(maxInFlight, max, current) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			atomic.AddInt64(inFlight, -1)
		}

		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(payload)
	}))
}

func testConfig() domain.ImagePipelineConfig {
	return domain.ImagePipelineConfig{
		MaxConcurrent: 5,
		MaxRetries:    0,
		Timeout:       5 * time.Second,
	}
}

func TestProcessAllConcurrencyBound(t *testing.T) {
	var inFlight, maxInFlight int64
	server := imageServer(t, &inFlight, &maxInFlight, nil)
	defer server.Close()

	urls := make([]string, 20)
	for i := range urls {
		urls[i] = server.URL + "/fotos/" + string(rune('a'+i)) + ".jpg"
	}

	store := &fakeBlobStore{}
	pipeline := NewPipeline(store)

	results := pipeline.ProcessAll(context.Background(), urls, server.URL, testConfig(), "")

	if len(results) != 20 {
		t.Fatalf("results: got %d, want 20", len(results))
	}
	for _, r := range results {
		if !r.Success {
			t.Errorf("unexpected failure for %s: %s", r.OriginalURL, r.Error)
		}
	}
	if got := atomic.LoadInt64(&maxInFlight); got > 5 {
		t.Errorf("max in-flight downloads: got %d, want <= 5", got)
	}
}

func TestProcessAllPartialFailure(t *testing.T) {
	failPaths := map[string]bool{
		"/fotos/3.jpg": true,
		"/fotos/6.jpg": true,
		"/fotos/9.jpg": true,
	}
	server := imageServer(t, nil, nil, failPaths)
	defer server.Close()

	urls := make([]string, 10)
	for i := range urls {
		urls[i] = server.URL + "/fotos/" + string(rune('0'+i)) + ".jpg"
	}

	store := &fakeBlobStore{}
	pipeline := NewPipeline(store)

	results := pipeline.ProcessAll(context.Background(), urls, server.URL, testConfig(), "")

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
			if r.Size != 2048 {
				t.Errorf("size: got %d, want 2048", r.Size)
			}
			if r.ContentType != "image/jpeg" {
				t.Errorf("content type: got %q", r.ContentType)
			}
		} else if r.Error == "" {
			t.Error("failed result must carry the error text")
		}
	}
	if succeeded != 7 {
		t.Errorf("succeeded: got %d, want 7", succeeded)
	}
	if len(store.uploads) != 7 {
		t.Errorf("uploads: got %d, want 7", len(store.uploads))
	}
}

func TestProcessAllDeduplicatesPreservingOrder(t *testing.T) {
	server := imageServer(t, nil, nil, nil)
	defer server.Close()

	a := server.URL + "/fotos/a.jpg"
	b := server.URL + "/fotos/b.jpg"
	urls := []string{a, b, a, "", a}

	store := &fakeBlobStore{}
	pipeline := NewPipeline(store)

	results := pipeline.ProcessAll(context.Background(), urls, server.URL, testConfig(), "")

	if len(results) != 2 {
		t.Fatalf("results: got %d, want 2 (duplicates and empties dropped)", len(results))
	}
	if results[0].OriginalURL != a || results[1].OriginalURL != b {
		t.Errorf("input order not preserved: %v", results)
	}
}

func TestProcessAllOwnerNamespacing(t *testing.T) {
	server := imageServer(t, nil, nil, nil)
	defer server.Close()

	store := &fakeBlobStore{}
	pipeline := NewPipeline(store)

	results := pipeline.ProcessAll(context.Background(),
		[]string{server.URL + "/fotos/a.jpg"}, server.URL, testConfig(), "user-42")

	if len(results) != 1 || !results[0].Success {
		t.Fatalf("results: %v", results)
	}
	if !strings.HasPrefix(results[0].StoredPath, "users/user-42/properties/") {
		t.Errorf("owner path: got %q", results[0].StoredPath)
	}

	anon := pipeline.ProcessAll(context.Background(),
		[]string{server.URL + "/fotos/b.jpg"}, server.URL, testConfig(), "")
	if !strings.HasPrefix(anon[0].StoredPath, "properties/") {
		t.Errorf("anonymous path: got %q", anon[0].StoredPath)
	}
}

func TestProcessAllResolvesRelativeURLs(t *testing.T) {
	server := imageServer(t, nil, nil, nil)
	defer server.Close()

	store := &fakeBlobStore{}
	pipeline := NewPipeline(store)

	results := pipeline.ProcessAll(context.Background(),
		[]string{"/fotos/rel.jpg"}, server.URL+"/propiedad/1", testConfig(), "")

	if len(results) != 1 || !results[0].Success {
		t.Fatalf("relative URL was not resolved: %v", results)
	}
}

func TestProcessAllRejectsOversizedImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(bytes.Repeat([]byte("x"), maxImageBytes+1))
	}))
	defer server.Close()

	store := &fakeBlobStore{}
	pipeline := NewPipeline(store)

	results := pipeline.ProcessAll(context.Background(),
		[]string{server.URL + "/fotos/huge.jpg"}, server.URL, testConfig(), "")

	if len(results) != 1 {
		t.Fatalf("results: got %d, want 1", len(results))
	}
	if results[0].Success {
		t.Fatal("oversized download must fail, not be truncated and stored")
	}
	if !strings.Contains(results[0].Error, "too large") {
		t.Errorf("error: got %q", results[0].Error)
	}
	if len(store.uploads) != 0 {
		t.Errorf("nothing may be uploaded for an oversized image: %v", store.uploads)
	}
}

func TestStorageKey(t *testing.T) {
	key := storageKey("https://cdn.x/fotos/a.png", 3, "")
	if !strings.HasPrefix(key, "properties/") || !strings.HasSuffix(key, "_3.png") {
		t.Errorf("storage key: got %q", key)
	}

	again := storageKey("https://cdn.x/fotos/a.png", 3, "")
	if key != again {
		t.Error("storage key must be deterministic for the same URL and slot")
	}

	noExt := storageKey("https://cdn.x/fotos/raw", 0, "")
	if !strings.HasSuffix(noExt, "_0.jpg") {
		t.Errorf("default extension: got %q", noExt)
	}
}

func TestIsLikelyImageURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://cdn.x/a.jpg", true},
		{"https://cdn.x/a.webp?v=2", true},
		{"https://cdn.x/servir/foto/12345", true},
		{"https://cdn.x/anything", true},
		{"ftp://cdn.x/a.jpg", true},
		{"", false},
	}

	for _, tt := range tests {
		if got := isLikelyImageURL(tt.url); got != tt.want {
			t.Errorf("isLikelyImageURL(%q) = %v; want %v", tt.url, got, tt.want)
		}
	}
}
