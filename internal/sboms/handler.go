package sboms

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sbom-storage/internal/shared/server/respond"
	"sbom-storage/internal/shared/storage/object"
	"sbom-storage/internal/shared/telemetry"
)

const (
	formField              = "files"
	defaultMaxUploadBytes  = 50 << 20
	octetStreamContentType = "application/octet-stream"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
}

// NewHandler constructs a Handler. maxUploadBytes <= 0 selects the default cap.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches storage routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	storage := rg.Group("/storage")
	storage.POST("/generations/:generationId", h.uploadGeneration)
	storage.POST("/generations/:generationId/enhancements/:enhancementId", h.uploadEnhancement)
	storage.GET("/content/*path", h.download)
}

func (h *Handler) uploadGeneration(c *gin.Context) {
	generationID := c.Param("generationId")
	c.Set("generationId", generationID)

	h.handleUpload(c, func(files []File) (map[string]string, error) {
		return h.Svc.StoreGeneration(c.Request.Context(), generationID, files)
	})
}

func (h *Handler) uploadEnhancement(c *gin.Context) {
	generationID := c.Param("generationId")
	enhancementID := c.Param("enhancementId")
	c.Set("generationId", generationID)
	c.Set("enhancementId", enhancementID)

	h.handleUpload(c, func(files []File) (map[string]string, error) {
		return h.Svc.StoreEnhancement(c.Request.Context(), generationID, enhancementID, files)
	})
}

func (h *Handler) handleUpload(c *gin.Context, store func([]File) (map[string]string, error)) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", fmt.Sprintf("upload exceeds %d bytes", h.MaxUploadBytes), nil)
			return
		}
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "No files provided", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid multipart form", nil)
		return
	}
	defer func() { _ = form.RemoveAll() }()

	headers := form.File[formField]
	if len(headers) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "No files provided", nil)
		return
	}

	files := make([]File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll(files)
			respond.Error(c, http.StatusInternalServerError, "internal_error", "File processing error", nil)
			return
		}
		files = append(files, File{
			Filename:    fh.Filename,
			ContentType: partContentType(fh),
			Size:        fh.Size,
			Content:     f,
		})
	}
	defer closeAll(files)

	urls, err := store(files)
	if err != nil {
		writeStorageError(c, err)
		return
	}
	respond.OK(c, urls)
}

func (h *Handler) download(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("path"), "/")

	reader, err := h.Svc.Content(c.Request.Context(), key)
	if err != nil {
		writeStorageError(c, err)
		return
	}
	defer reader.Close()

	if _, err := respond.Attachment(c, downloadFilename(key), octetStreamContentType, reader); err != nil {
		telemetry.Error("sboms.download.copy_failed", map[string]any{
			"key":        key,
			"err":        err,
			"request_id": c.GetString("requestId"),
		})
	}
}

// StatusFor maps a storage error to the HTTP status reported to clients.
func StatusFor(err error) int {
	kind, ok := object.KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case object.KindKeyInvalid:
		return http.StatusBadRequest
	case object.KindFileNotFound:
		return http.StatusNotFound
	case object.KindAccessDenied:
		return http.StatusForbidden
	case object.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeStorageError(c *gin.Context, err error) {
	code := "internal_error"
	if kind, ok := object.KindOf(err); ok {
		code = kind.String()
	}
	respond.Error(c, StatusFor(err), code, err.Error(), nil)
}

// downloadFilename is the last path segment of key, or the whole key when it
// ends in a slash.
func downloadFilename(key string) string {
	if name := key[strings.LastIndex(key, "/")+1:]; name != "" {
		return name
	}
	return key
}

func partContentType(fh *multipart.FileHeader) string {
	if ct := strings.TrimSpace(fh.Header.Get("Content-Type")); ct != "" {
		return ct
	}
	return octetStreamContentType
}

func closeAll(files []File) {
	for _, f := range files {
		if closer, ok := f.Content.(io.Closer); ok {
			_ = closer.Close()
		}
	}
}
