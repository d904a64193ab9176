package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/projecthub/backend/internal/config"
	"github.com/projecthub/backend/internal/database"
	"github.com/projecthub/backend/internal/handlers"
	"github.com/projecthub/backend/internal/middleware"
	"github.com/projecthub/backend/internal/repositories"
	"github.com/projecthub/backend/internal/services"
	"github.com/projecthub/backend/internal/storage"
	"github.com/projecthub/backend/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	logger.Init()

	cfg := config.Load()

	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	store, err := storage.NewLocal(cfg.Storage)
	if err != nil {
		log.Fatalf("storage initialization failed: %v", err)
	}

	tokenService := services.NewTokenService(cfg.JWT)
	accessService := services.NewAccessService(db)

	var completer services.Completer
	if cfg.GPT.URL != "" {
		completer = services.NewHTTPCompleter(cfg.GPT)
	}
	chatService := services.NewChatService(completer)

	usersRepo := repositories.NewUsersRepository(db)
	projectsRepo := repositories.NewProjectsRepository(db, store)
	documentsRepo := repositories.NewDocumentsRepository(db, store)

	authHandler := handlers.NewAuthHandler(usersRepo, tokenService, cfg.JWT)
	usersHandler := handlers.NewUsersHandler(usersRepo)
	projectsHandler := handlers.NewProjectsHandler(projectsRepo, accessService)
	documentsHandler := handlers.NewDocumentsHandler(documentsRepo, accessService)
	chatHandler := handlers.NewChatHandler(chatService)

	authMiddleware := middleware.NewAuthMiddleware(db, tokenService)

	app := fiber.New(fiber.Config{BodyLimit: 100 * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS(cfg.Server))
	app.Use(middleware.Metrics())
	app.Use(middleware.RequestLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	api.Post("/users/token", authHandler.Token)
	api.Post("/login/api/access-token", authHandler.Token)
	api.Post("/login/api/verify-token", authMiddleware.RequireAuth, authHandler.VerifyToken)

	userRoutes := api.Group("/users")
	userRoutes.Post("/", authMiddleware.OptionalAuth, usersHandler.Register)
	userRoutes.Get("/me", authMiddleware.RequireAuth, authHandler.Me)
	userRoutes.Get("/", authMiddleware.RequireAuth, middleware.AdminOnly, usersHandler.List)
	userRoutes.Get("/:id", authMiddleware.RequireAuth, middleware.AdminOnly, usersHandler.Get)
	userRoutes.Put("/:id", authMiddleware.RequireAuth, middleware.AdminOnly, usersHandler.Update)
	userRoutes.Delete("/:id", authMiddleware.RequireAuth, middleware.AdminOnly, usersHandler.Delete)

	projectRoutes := api.Group("/projects", authMiddleware.RequireAuth)
	projectRoutes.Post("/", projectsHandler.Create)
	projectRoutes.Get("/", projectsHandler.List)
	projectRoutes.Get("/:id", projectsHandler.Get)
	projectRoutes.Put("/:id", projectsHandler.Update)
	projectRoutes.Delete("/:id", projectsHandler.Delete)
	projectRoutes.Post("/:id/access", projectsHandler.GrantAccess)
	projectRoutes.Get("/:id/access", projectsHandler.ListAccess)
	projectRoutes.Delete("/:id/access/:userId", projectsHandler.RevokeAccess)

	documentRoutes := api.Group("/projects/:projectId/documents", authMiddleware.RequireAuth)
	documentRoutes.Post("/", documentsHandler.Create)
	documentRoutes.Get("/", documentsHandler.List)
	documentRoutes.Post("/upload", documentsHandler.Upload)
	documentRoutes.Get("/:id/download", documentsHandler.Download)
	documentRoutes.Get("/:id", documentsHandler.Get)
	documentRoutes.Put("/:id", documentsHandler.Update)
	documentRoutes.Delete("/:id", documentsHandler.Delete)

	chatRoutes := api.Group("/chat", authMiddleware.RequireAuth)
	chatRoutes.Post("/message", chatHandler.Message)
	chatRoutes.Get("/suggestions", chatHandler.Suggestions)

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	logger.Info("server_starting", map[string]interface{}{
		"port":         cfg.Server.Port,
		"address":      listenAddr,
		"storage_root": cfg.Storage.Root,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("shutting down server due to signal: %s", sig)
		shutdownDone := make(chan struct{})
		go func() {
			_ = app.Shutdown()
			close(shutdownDone)
		}()
		select {
		case <-shutdownDone:
		case <-time.After(10 * time.Second):
			log.Print("forced shutdown timeout reached")
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	}
}
