package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scraperlab/scraperlab/api/handler"
	"github.com/scraperlab/scraperlab/scraper"
)

// NewRouter creates a configured Gin engine with all routes.
//
// Health stays outside any future protection so monitoring probes
// always work; /metrics serves the service's dedicated registry when
// metrics are enabled.
func NewRouter(svc *scraper.Service, mode string, startTime time.Time) *gin.Engine {
	gin.SetMode(mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")
	v1.GET("/health", handler.Health(startTime))
	v1.POST("/extract", handler.Extract(svc))
	v1.POST("/extract/batch", handler.ExtractBatch(svc))

	if m := svc.Metrics(); m != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
	}

	return r
}
