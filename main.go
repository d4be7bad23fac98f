package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"imagegallery/config"
	"imagegallery/controller"
	"imagegallery/database"
	"imagegallery/logger"
	"imagegallery/route"
	"imagegallery/seed"
	"imagegallery/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Println(err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logr := logger.New(cfg.IsDevelopment(), cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, err := database.Connect(ctx, cfg.MongoURI, logr)
	if err != nil {
		logr.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	db := mongoClient.Database(cfg.MongoDatabase)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		logr.WithError(err).Warn("index bootstrap failed")
	}

	checks := map[string]controller.Pinger{
		"mongo": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
	}

	var sessions services.SessionStore
	if cfg.RedisURL != "" {
		rdb, err := database.NewRedisClient(ctx, cfg.RedisURL, logr)
		if err != nil {
			logr.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer func() { _ = rdb.Close() }()
		sessions = database.NewRedisSessionStore(rdb)
		checks["redis"] = redisPinger(rdb)
	} else {
		memory := database.NewMemorySessionStore(time.Minute)
		defer func() { _ = memory.Close() }()
		sessions = memory
		logr.Info("using in-process session store")
	}

	users := database.NewUserRepository(db)
	images := database.NewImageRepository(db)

	authService := services.NewAuthService(users, sessions, cfg.SessionSecret, cfg.SessionTTL, logr)
	galleryService := services.NewGalleryService(images, cfg.PageSizeDefault, cfg.PageSizeMax, logr)

	go runSeed(ctx, cfg, images, logr)

	router := route.NewRouter(route.Options{
		Auth:    authService,
		Gallery: galleryService,
		Checks:  checks,
		Log:     logr,
		Cookie: controller.CookieConfig{
			Name:   cfg.SessionCookie,
			Secure: cfg.CookieSecure,
		},
		AllowedOrigins: cfg.CORSAllowedOrigins,
		RequestTimeout: cfg.RequestTimeout,
		StaticDir:      cfg.StaticDir,
	})

	srv := &http.Server{Addr: cfg.Addr(), Handler: router, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logr.Infof("Server is running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.WithError(err).Fatal("listen")
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.WithError(err).Error("server forced to shutdown")
	}
	logr.Info("server exited properly")
}

func runSeed(ctx context.Context, cfg *config.Config, images *database.ImageRepository, logr *logrus.Logger) {
	source, err := seed.NewSource(ctx, cfg.SeedSource, cfg.SeedHTTPTimeout)
	if err != nil {
		logr.WithError(err).Error("seed source unavailable, catalog left as is")
		return
	}
	seeder := seed.New(images, source, seed.Options{
		Limit:       cfg.SeedLimit,
		DownloadURL: cfg.SeedDownloadURL,
		Attempts:    cfg.SeedAttempts,
		Backoff:     cfg.SeedBackoff,
	}, logr)
	seeder.RunWithRetry(ctx)
}

func redisPinger(rdb *redis.Client) controller.Pinger {
	return func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
}
