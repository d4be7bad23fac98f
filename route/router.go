package route

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"imagegallery/controller"
	mw "imagegallery/middlewares"
	"imagegallery/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Options struct {
	Auth    *services.AuthService
	Gallery *services.GalleryService
	Checks  map[string]controller.Pinger
	Log     logrus.FieldLogger

	Cookie         controller.CookieConfig
	AllowedOrigins []string
	RequestTimeout time.Duration
	// StaticDir holds the built client; empty or missing disables it.
	StaticDir string
}

func NewRouter(opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(mw.RequestID())
	router.Use(mw.Logger(opts.Log))
	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	authController := controller.NewAuthController(opts.Auth, opts.Cookie, opts.Log)
	imageController := controller.NewImageController(opts.Gallery, opts.Log)
	healthController := controller.NewHealthController(opts.Checks, opts.Log)

	api := router.Group("/api")
	if opts.RequestTimeout > 0 {
		api.Use(mw.Timeout(opts.RequestTimeout))
	}
	api.Use(mw.Session(opts.Auth, opts.Cookie.Name, opts.Log))

	Unprotected(api, authController, imageController, healthController)
	Protected(api, authController, imageController)

	serveClient(router, opts.StaticDir)
	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length", mw.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) > 0 {
		cfg.AllowOrigins = origins
		return cfg
	}
	cfg.AllowOriginFunc = func(origin string) bool {
		return strings.HasPrefix(origin, "http://localhost:") ||
			strings.HasPrefix(origin, "http://127.0.0.1:")
	}
	return cfg
}

// serveClient serves the built client and falls back to index.html for
// client-side routes. Unknown /api paths stay JSON 404s.
func serveClient(router *gin.Engine, dir string) {
	index := filepath.Join(dir, "index.html")
	hasClient := false
	if dir != "" {
		if _, err := os.Stat(index); err == nil {
			hasClient = true
		}
	}

	router.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/api" || strings.HasPrefix(path, "/api/") || !hasClient {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}

		clean := filepath.Clean("/" + path)
		file := filepath.Join(dir, clean)
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}
		c.File(index)
	})
}
