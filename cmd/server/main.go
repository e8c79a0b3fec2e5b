package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"formspec-backend/internal/api"
	"formspec-backend/internal/auth"
	"formspec-backend/internal/config"
	"formspec-backend/internal/remote"
	"formspec-backend/internal/schemastore"
	"formspec-backend/internal/storage"
	"formspec-backend/internal/store"
)

func main() {
	ctx := context.Background()

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Printf("Config loaded (port: %d, driver: %s)", cfg.Server.Port, cfg.Database.Driver)

	// 2. Connect to database
	db, err := store.New(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	// 3. Bootstrap system tables
	if err := db.Bootstrap(ctx); err != nil {
		log.Fatalf("Failed to bootstrap system tables: %v", err)
	}
	log.Println("System tables ready")

	// 4. Schema store over the database
	schemas := schemastore.NewSQLStore(db)

	// 5. Upload staging area
	files := storage.NewLocalStorage(cfg.Storage.LocalPath)

	// 6. Remote schema client (optional)
	var remoteHandler *api.RemoteHandler
	if cfg.Remote.URL != "" {
		remoteHandler = api.NewRemoteHandler(remote.NewClient(cfg.Remote.URL, cfg.Remote.TTL))
	}

	// 7. Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1024*1024,
	})
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))

	// 8. Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// 9. Auth routes (before middleware — no auth required)
	authHandler := auth.NewHandler(db, cfg.JWTSecret)
	auth.RegisterRoutes(app, authHandler)

	// 10. Auth middleware for protected routes
	authMW := auth.Middleware(cfg.JWTSecret)

	// 11. API routes
	handler := api.NewHandler(schemas, db)
	uploadHandler := api.NewUploadHandler(db, files, cfg.Storage.MaxFileSize)
	api.RegisterRoutes(app, handler, uploadHandler, remoteHandler, authMW)

	// 12. Start server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Starting server on %s", addr)
	log.Fatal(app.Listen(addr))
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}

	var appErr *api.AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.Status).JSON(api.ErrorResponse{Error: appErr})
	}

	log.Printf("ERROR: %v", err)
	return c.Status(code).JSON(api.ErrorResponse{
		Error: &api.AppError{
			Code:    "INTERNAL_ERROR",
			Message: "Internal server error",
		},
	})
}
