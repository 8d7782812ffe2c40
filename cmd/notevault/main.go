package main

import (
	"fmt"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	redisstorage "github.com/gofiber/storage/redis"

	"github.com/notevault/notevault/app/controllers"
	"github.com/notevault/notevault/app/repository"
	"github.com/notevault/notevault/internal/pkg/auth"
	"github.com/notevault/notevault/internal/pkg/cache"
	"github.com/notevault/notevault/internal/pkg/config"
	"github.com/notevault/notevault/internal/pkg/database"
	"github.com/notevault/notevault/internal/pkg/payments"
	"github.com/notevault/notevault/internal/pkg/router"
	"github.com/notevault/notevault/internal/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	app := NewApplication(cfg)
	err = app.Listen(fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort))
	log.Fatal(err)
}

func NewApplication(cfg *config.Config) *fiber.App {
	database.SetupDatabase(cfg.Database)
	cache.SetupCache(cfg.Cache)
	repository.InitializeFactory(database.GetDB())

	attachments, err := storage.NewAttachmentStore(cfg.S3)
	if err != nil {
		log.Fatalf("attachment store: %v", err)
	}

	tokens := auth.NewTokenService(cfg.Auth)
	payRepo := payments.NewRepository(database.GetDB())
	reconciler := payments.NewReconciler(payRepo, cfg.Payments)
	initiator := payments.NewCheckoutInitiator(payments.NewClient(cfg.Payments), payRepo, cfg.Payments, cfg.PublicDomain)
	statusReader := payments.NewStatusReader(payRepo)

	factory := repository.GetGlobalFactory()

	cachePort, _ := strconv.Atoi(cfg.Cache.Port)
	limiterStorage := redisstorage.New(redisstorage.Config{
		Host: cfg.Cache.Host,
		Port: cachePort,
	})

	app := fiber.New(fiber.Config{
		BodyLimit: 52428800, // 50 MiB, matches the attachment size cap
	})

	app.Use(recover.New(), logger.New())
	app.Get("/metrics", monitor.New())

	// static frontend
	app.Static("/", "./public")

	router.InstallRouter(app, router.Deps{
		Verifier:       tokens,
		Auth:           controllers.NewAuthController(factory.GetUserRepository(), tokens),
		Notes:          controllers.NewNoteController(factory.GetNoteRepository(), attachments),
		Uploads:        controllers.NewUploadController(attachments),
		Payments:       controllers.NewPaymentController(initiator, reconciler, payRepo, cfg.Payments),
		Users:          controllers.NewUserController(statusReader),
		LimiterStorage: limiterStorage,
	})

	return app
}
