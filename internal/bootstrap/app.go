package bootstrap

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"sbom-storage/internal/sboms"
	"sbom-storage/internal/shared/config"
	"sbom-storage/internal/shared/server"
	"sbom-storage/internal/shared/storage/object"
	localstore "sbom-storage/internal/shared/storage/object/local"
	miniostore "sbom-storage/internal/shared/storage/object/minio"
	s3store "sbom-storage/internal/shared/storage/object/s3"
	"sbom-storage/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config      config.Config
	Router      *gin.Engine
	Store       object.ObjectStorage
	SBOMService *sboms.Service
	SBOMHandler *sboms.Handler
}

// Build validates the configuration and wires storage, service and router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	backend, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store := object.Instrument(backend, cfg.ObjectStoreType)

	if cfg.EnsureBucket {
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("ensure bucket %s: %w", cfg.Bucket, err)
		}
	}

	svc := sboms.NewService(store, cfg.PublicAPIURL)
	handler := sboms.NewHandler(svc, cfg.MaxUploadBytes)

	app := &App{
		Config:      cfg,
		Store:       store,
		SBOMService: svc,
		SBOMHandler: handler,
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:      cfg,
		SBOMHandler: handler,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"object_store":   cfg.ObjectStoreType,
		"bucket":         cfg.Bucket,
		"public_api_url": cfg.PublicAPIURL,
		"env":            cfg.Env,
	})
	return app, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStorage, error) {
	switch cfg.ObjectStoreType {
	case config.StoreS3:
		return s3store.New(ctx, s3store.Options{
			Region:       cfg.AWSRegion,
			Bucket:       cfg.Bucket,
			Endpoint:     cfg.Endpoint,
			AccessKey:    cfg.AccessKey,
			SecretKey:    cfg.SecretKey,
			UsePathStyle: cfg.UsePathStyle,
		})
	case config.StoreMinIO:
		return miniostore.New(miniostore.Options{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Bucket:    cfg.Bucket,
			Region:    cfg.AWSRegion,
			UseSSL:    cfg.UseSSL,
		})
	default:
		return localstore.New(cfg.LocalStoreDir, cfg.Bucket), nil
	}
}
