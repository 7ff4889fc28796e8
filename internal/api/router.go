// Package api exposes the collection service over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Config carries what the router needs beyond the handler.
type Config struct {
	Handler      *Handler
	Logger       *logrus.Logger
	CORSOrigins  []string
	Production   bool
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewRouter builds the gin engine with every /api route registered.
func NewRouter(cfg *Config) *gin.Engine {
	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(requestLogger(cfg.Logger), gin.Recovery())
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	api := router.Group("/api")
	{
		api.GET("/health", cfg.Handler.Health)
		api.GET("/indicators", cfg.Handler.Indicators)
		api.POST("/download", cfg.Handler.Download)
		api.GET("/download-file/:filename", cfg.Handler.DownloadFile)
		api.GET("/list-files", cfg.Handler.ListFiles)
		api.POST("/delete-files", cfg.Handler.DeleteFiles)
		api.GET("/history", cfg.Handler.History)
	}
	return router
}

// NewHTTPServer wraps the router in an http.Server.
func NewHTTPServer(cfg *Config) *http.Server {
	return &http.Server{
		Addr:           cfg.Addr,
		Handler:        NewRouter(cfg),
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if logger == nil {
			return
		}
		logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Debug("request")
	}
}
