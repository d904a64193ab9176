package handlers

import (
	"bytes"
	"context"
	"database/sql/driver"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/projecthub/backend/internal/config"
	"github.com/projecthub/backend/internal/database"
	"github.com/projecthub/backend/internal/middleware"
	"github.com/projecthub/backend/internal/models"
	"github.com/projecthub/backend/internal/repositories"
	"github.com/projecthub/backend/internal/services"
	"github.com/projecthub/backend/internal/storage"
	"github.com/projecthub/backend/pkg/logger"
	"github.com/projecthub/backend/pkg/utils"
	"gorm.io/gorm"
)

type testEnv struct {
	app    *fiber.App
	db     *gorm.DB
	store  *storage.Local
	tokens *services.TokenService
}

var testSetupOnce sync.Once

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testSetupOnce.Do(func() {
		gosqlite.MustRegisterScalarFunction("NOW", 0, func(ctx *gosqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			return time.Now().UTC(), nil
		})
		logger.Init()
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}

	store, err := storage.NewLocal(config.StorageConfig{Root: t.TempDir()})
	if err != nil {
		t.Fatalf("failed initializing storage: %v", err)
	}

	jwtCfg := config.JWTConfig{Secret: "test-secret", ExpiryMinutes: 30}
	tokenService := services.NewTokenService(jwtCfg)
	accessService := services.NewAccessService(db)
	chatService := services.NewChatService(nil)

	usersRepo := repositories.NewUsersRepository(db)
	projectsRepo := repositories.NewProjectsRepository(db, store)
	documentsRepo := repositories.NewDocumentsRepository(db, store)

	authHandler := NewAuthHandler(usersRepo, tokenService, jwtCfg)
	usersHandler := NewUsersHandler(usersRepo)
	projectsHandler := NewProjectsHandler(projectsRepo, accessService)
	documentsHandler := NewDocumentsHandler(documentsRepo, accessService)
	chatHandler := NewChatHandler(chatService)

	authMiddleware := middleware.NewAuthMiddleware(db, tokenService)

	app := fiber.New(fiber.Config{BodyLimit: 100 * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.RequestLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

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

	return &testEnv{app: app, db: db, store: store, tokens: tokenService}
}

func (env *testEnv) createTestUser(t *testing.T, email, username, password string, role models.UserRole) (*models.User, string) {
	t.Helper()

	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("failed hashing password: %v", err)
	}

	user := &models.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		Status:       1,
	}
	if err := env.db.Create(user).Error; err != nil {
		t.Fatalf("failed creating test user: %v", err)
	}

	token, err := env.tokens.Issue(user)
	if err != nil {
		t.Fatalf("failed issuing auth token: %v", err)
	}

	return user, token
}

func (env *testEnv) createTestProject(t *testing.T, owner *models.User, name string) *models.Project {
	t.Helper()

	repo := repositories.NewProjectsRepository(env.db, env.store)
	project, err := repo.Create(context.Background(), repositories.CreateProjectInput{
		OwnerID:     owner.ID,
		Name:        name,
		Description: "test project",
	})
	if err != nil {
		t.Fatalf("failed creating test project: %v", err)
	}
	return project
}

func fileReader(content string) io.Reader {
	return bytes.NewReader([]byte(content))
}

func authHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}

	return resp
}

func performJSONRequest(t *testing.T, app *fiber.App, method, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	requestHeaders := map[string]string{}
	for key, value := range headers {
		requestHeaders[key] = value
	}
	if payload != nil {
		requestHeaders["Content-Type"] = "application/json"
	}

	return performRequest(t, app, method, path, body, requestHeaders)
}

func performMultipartUpload(t *testing.T, app *fiber.App, path string, files map[string]string, headers map[string]string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := writer.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("failed creating form file: %v", err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatalf("failed writing form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed closing multipart writer: %v", err)
	}

	requestHeaders := map[string]string{}
	for key, value := range headers {
		requestHeaders[key] = value
	}
	requestHeaders["Content-Type"] = writer.FormDataContentType()

	return performRequest(t, app, http.MethodPost, path, &buf, requestHeaders)
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON response: %v body=%q", err, string(raw))
	}

	return payload
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

func assertEnvelopeError(t *testing.T, body map[string]any, expected string) {
	t.Helper()
	if success, _ := body["success"].(bool); success {
		t.Fatalf("expected success=false, got %+v", body)
	}
	if got, _ := body["error"].(string); got != expected {
		t.Fatalf("expected error %q, got %q", expected, got)
	}
}
