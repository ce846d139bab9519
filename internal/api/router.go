package api

import (
	"audioscribe/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	MetricsEnabled bool
	// MaxMultipartMemory is the in-memory part of a parsed form; larger
	// files spill to temporary files.
	MaxMultipartMemory int64
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())
	r.Use(corsMiddleware())
	if opts.MaxMultipartMemory > 0 {
		r.MaxMultipartMemory = opts.MaxMultipartMemory
	}

	RegisterRoutes(r, h)
	web.Register(r)

	if opts.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	return r
}

func RegisterRoutes(r *gin.Engine, h *Handler) {
	// Health check
	r.GET("/health", healthCheck)

	api := r.Group("/api")
	{
		api.POST("/upload", limitBody(h.uploads.MaxBytes), h.uploadAudio)
		api.POST("/transcribe", h.transcribeStored)
		api.POST("/transcribe-direct", limitBody(h.transcriber.DirectMaxBytes), h.transcribeDirect)
	}
}
