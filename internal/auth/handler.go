package auth

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"formspec-backend/internal/api"
	"formspec-backend/internal/store"
)

type Handler struct {
	db     *store.Store
	secret string
}

func NewHandler(db *store.Store, secret string) *Handler {
	return &Handler{db: db, secret: secret}
}

func RegisterRoutes(app *fiber.App, h *Handler) {
	grp := app.Group("/api/auth")
	grp.Post("/register", h.Register)
	grp.Post("/login", h.Login)
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var creds credentials
	if err := c.BodyParser(&creds); err != nil {
		return api.NewAppError("INVALID_PAYLOAD", 400, "Invalid JSON body")
	}
	if creds.Email == "" || len(creds.Password) < 8 {
		return api.NewAppError("VALIDATION_FAILED", 422, "Email and a password of at least 8 characters are required")
	}

	hash, err := HashPassword(creds.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	d := h.db.Dialect
	userID := uuid.New().String()
	sqlStr := fmt.Sprintf("INSERT INTO _users (id, email, password_hash) VALUES (%s)",
		store.Placeholders(d, 3))
	if _, err := store.Exec(c.Context(), h.db.DB, sqlStr, userID, creds.Email, hash); err != nil {
		if errors.Is(h.db.MapError(err), store.ErrUniqueViolation) {
			return api.ConflictError("An account with this email already exists")
		}
		return fmt.Errorf("insert user: %w", err)
	}

	token, err := GenerateToken(userID, creds.Email, h.secret)
	if err != nil {
		return err
	}
	return c.Status(201).JSON(fiber.Map{"data": fiber.Map{"token": token}})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var creds credentials
	if err := c.BodyParser(&creds); err != nil {
		return api.NewAppError("INVALID_PAYLOAD", 400, "Invalid JSON body")
	}

	d := h.db.Dialect
	row, err := store.QueryRow(c.Context(), h.db.DB,
		fmt.Sprintf("SELECT id, password_hash FROM _users WHERE email = %s", d.Placeholder(1)), creds.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return api.UnauthorizedError("Invalid email or password")
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	hash, _ := row["password_hash"].(string)
	if !CheckPassword(creds.Password, hash) {
		return api.UnauthorizedError("Invalid email or password")
	}

	userID, _ := row["id"].(string)
	token, err := GenerateToken(userID, creds.Email, h.secret)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"token": token}})
}
