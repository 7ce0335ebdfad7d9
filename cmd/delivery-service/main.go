package main

import (
	"fmt"
	"os"

	"github.com/amana-asso/delivery-service/internal/auth"
	"github.com/amana-asso/delivery-service/internal/cache"
	"github.com/amana-asso/delivery-service/internal/config"
	"github.com/amana-asso/delivery-service/internal/db"
	"github.com/amana-asso/delivery-service/internal/excel"
	"github.com/amana-asso/delivery-service/internal/geocode"
	httphandler "github.com/amana-asso/delivery-service/internal/http"
	"github.com/amana-asso/delivery-service/internal/http/middleware"
	"github.com/amana-asso/delivery-service/internal/logger"
	"github.com/amana-asso/delivery-service/internal/mail"
	"github.com/amana-asso/delivery-service/internal/pdf"
	"github.com/amana-asso/delivery-service/internal/qr"
	"github.com/amana-asso/delivery-service/internal/repository"
	"github.com/amana-asso/delivery-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	redis, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect redis")
	}
	defer redis.Close()

	familyRepo := repository.NewFamilyRepository(database)
	driverRepo := repository.NewDriverRepository(database)
	sectorRepo := repository.NewSectorRepository(database)
	deliveryRepo := repository.NewDeliveryRepository(database)

	links := qr.NewLinkBuilder(cfg.Delivery.StatusBaseURL, cfg.Auth.APIToken)
	mailer := mail.NewSMTPMailer(cfg.SMTP)

	geocoder := geocode.NewClient(cfg.Geocode)
	resolver := geocode.NewResolver(geocoder, sectorRepo, redis, cfg.Geocode.CacheTTL, cfg.Geocode.PaceDelay, log)

	assignmentService := service.NewAssignmentService(familyRepo, driverRepo, deliveryRepo, redis, cfg, log)
	statusService := service.NewStatusService(deliveryRepo, familyRepo, redis, log)
	notificationService := service.NewNotificationService(deliveryRepo, familyRepo, driverRepo, mailer, links, log)
	exportService := service.NewExportService(deliveryRepo, familyRepo, driverRepo, excel.NewGenerator(), pdf.NewGenerator(links), log)
	sectorService := service.NewSectorService(familyRepo, familyRepo, resolver, redis, log)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(assignmentService, statusService, notificationService, exportService, sectorService, log)
	sharedToken := middleware.SharedToken(cfg.Auth.APIToken)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, sharedToken, authMiddleware, cfg.Environment, log)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting delivery service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
