// @title			memomap API
// @version		1.0
// @description	Memo locations: reverse geocoding, location names and the memo map.
// @BasePath		/
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"memomap/docs"
	"memomap/internal/avatar"
	"memomap/internal/badge"
	"memomap/internal/config"
	"memomap/internal/geocoder"
	"memomap/internal/handler"
	"memomap/internal/logger"
	"memomap/internal/mapview"
	"memomap/internal/metrics"
	"memomap/internal/models"
	"memomap/internal/repository"
	"memomap/internal/service"
	"memomap/internal/tracker"
	"memomap/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func main() {
	config, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}
	logger.Setup(config.LogLevel, config.LogPretty)

	ctx := context.Background()

	// Database connection
	conn, err := pgxpool.New(ctx, config.DBSource)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot connect to db")
	}
	defer conn.Close()

	repo := repository.NewRepository(conn)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("cannot prepare schema")
	}

	collector := metrics.NewCollector("memomap")
	httpClient := &http.Client{Timeout: config.HTTPTimeout}

	// Outbound clients
	geo := geocoder.NewClient(geocoder.Options{
		BaseURL:    config.NominatimURL,
		UserAgent:  config.NominatimUserAgent,
		HTTPClient: httpClient,
		Breaker: geocoder.BreakerConfig{
			MaxRequests:      config.BreakerMaxRequests,
			Interval:         config.BreakerInterval,
			Timeout:          config.BreakerTimeout,
			MinRequests:      config.BreakerMinRequests,
			FailureThreshold: config.BreakerFailureThreshold,
		},
		Requests: collector.GeocodeRequests,
	})
	names, err := tracker.NewNames(geo, config.GeocodeCacheSize, collector.NameLookups)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot create name resolver")
	}
	colorizer := avatar.NewColorizer(avatar.Options{
		BaseURL:      config.BaseURL,
		HTTPClient:   httpClient,
		Fallback:     config.FallbackColor,
		AllowedHosts: config.AvatarHosts,
		Outcomes:     collector.AvatarColors,
	})

	// Initialize layers
	defaults := mapview.Defaults{
		Center: models.LatLng{Lat: config.DefaultLat, Lng: config.DefaultLng},
		Zoom:   config.DefaultZoom,
	}
	locationService := service.NewLocationService(geo, repo)
	mapService := service.NewMapService(repo, colorizer, defaults)

	reverseGeocodeHandler := handler.NewReverseGeocodeHandler(locationService)
	locationHandler := handler.NewLocationHandler(locationService)
	wsConfig := handler.DefaultWebSocketConfig()
	wsConfig.AllowedOrigins = []string{config.BaseURL}
	geolocationHandler := handler.NewGeolocationHandler(names, wsConfig)
	mapHandler := handler.NewMapHandler(mapService, badge.NewLinker(config.MapLinkTemplate), handler.PageConfig{
		TileURL:         config.TileURL,
		TileAttribution: config.TileAttribution,
		Center:          defaults.Center,
		Zoom:            defaults.Zoom,
	})

	templates, err := web.Templates()
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load templates")
	}

	if config.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), handler.RequestID(), handler.Logger(), collector.Middleware())
	r.SetHTMLTemplate(templates)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
	r.GET("/metrics", gin.WrapH(collector.Handler()))

	docs.SwaggerInfo.BasePath = "/"
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/reverse-geocode", reverseGeocodeHandler.ReverseGeocode)
	r.GET("/ws/geolocation", geolocationHandler.Stream)

	api := r.Group("/api")
	api.GET("/map", mapHandler.MapData)
	api.PATCH("/memos/:name/location", locationHandler.RenameLocation)

	r.GET("/map", mapHandler.MapPage)
	r.GET("/map/:memoName", mapHandler.MapPage)
	r.GET("/m/:memoName", mapHandler.MemoPage)

	srv := &http.Server{
		Addr:              config.ServerAddress,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("address", config.ServerAddress).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	log.Info().Msg("server stopped")
}
