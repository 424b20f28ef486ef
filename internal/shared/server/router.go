package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sbom-storage/internal/sboms"
	"sbom-storage/internal/shared/config"
	"sbom-storage/internal/shared/metrics"
	"sbom-storage/internal/shared/server/middleware"
	"sbom-storage/internal/shared/server/respond"
)

// RouterDeps lists the handlers mounted by NewRouter.
type RouterDeps struct {
	Config      config.Config
	SBOMHandler *sboms.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	if deps.SBOMHandler != nil {
		deps.SBOMHandler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
