package sboms

import (
	"context"
	"fmt"
	"io"
	"strings"

	"sbom-storage/internal/shared/metrics"
	"sbom-storage/internal/shared/storage/object"
	"sbom-storage/internal/shared/telemetry"
)

// ContentPath is the public route under which stored objects are served.
const ContentPath = "/api/v1/storage/content/"

// Service stores SBOM batches and resolves stored content.
type Service struct {
	Store         object.ObjectStorage
	PublicBaseURL string
}

// NewService constructs a Service. publicBaseURL is used verbatim apart from a
// trailing slash.
func NewService(store object.ObjectStorage, publicBaseURL string) *Service {
	return &Service{
		Store:         store,
		PublicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// StoreGeneration stores files under the generation prefix and returns
// filename -> permanent URL.
func (s *Service) StoreGeneration(ctx context.Context, generationID string, files []File) (map[string]string, error) {
	return s.uploadBatch(ctx, generationID, files)
}

// StoreEnhancement stores files under generationID/enhancementID.
func (s *Service) StoreEnhancement(ctx context.Context, generationID, enhancementID string, files []File) (map[string]string, error) {
	return s.uploadBatch(ctx, generationID+"/"+enhancementID, files)
}

// Content opens the object stored at key. The caller must close it.
func (s *Service) Content(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.Store.Download(ctx, key)
}

// URL builds the permanent retrieval URL for a storage key.
func (s *Service) URL(storageKey string) string {
	return s.PublicBaseURL + ContentPath + storageKey
}

// uploadBatch uploads files sequentially and stops at the first failure.
// Objects written before the failing file are left in place; there is no
// compensating delete.
func (s *Service) uploadBatch(ctx context.Context, prefix string, files []File) (map[string]string, error) {
	telemetry.Info("sboms.batch.start", map[string]any{"prefix": prefix, "files": len(files)})

	keys := make([]string, 0, len(files))
	for i, f := range files {
		key := prefix + "/" + f.Filename
		if err := s.Store.Upload(ctx, key, f.Content, f.Size, f.ContentType); err != nil {
			telemetry.Error("sboms.batch.failed", map[string]any{
				"prefix":   prefix,
				"file":     f.Filename,
				"uploaded": i,
				"err":      err,
			})
			metrics.AddBatchFiles("stored", i)
			metrics.AddBatchFiles("failed", 1)
			return nil, fmt.Errorf("failed to upload file %s: %w", f.Filename, err)
		}
		keys = append(keys, key)
	}
	metrics.AddBatchFiles("stored", len(files))

	urls := make(map[string]string, len(files))
	for i, f := range files {
		urls[f.Filename] = s.URL(keys[i])
	}
	return urls, nil
}
