package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/simonesiega/studyWS/internal/apperr"
	"github.com/simonesiega/studyWS/internal/handler/middleware"
	"github.com/simonesiega/studyWS/internal/service"
	"github.com/simonesiega/studyWS/pkg/validator"
)

type AuthHandler struct {
	authService *service.AuthService
	validator   *validator.Validator
}

func NewAuthHandler(authService *service.AuthService, validator *validator.Validator) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validator:   validator,
	}
}

// Register handles user registration
// POST /auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req service.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	if err := h.validator.Validate(req); err != nil {
		return apperr.Validation(err.Error())
	}

	result, err := h.authService.Register(c.Context(), req, clientMeta(c))
	if err != nil {
		return err
	}

	return dataResponse(c, fiber.StatusCreated, authResultBody(result, h.expiresIn()))
}

// Login handles user login
// POST /auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	if err := h.validator.Validate(req); err != nil {
		return apperr.Validation(err.Error())
	}

	result, err := h.authService.Login(c.Context(), req, clientMeta(c))
	if err != nil {
		return err
	}

	return dataResponse(c, fiber.StatusOK, authResultBody(result, h.expiresIn()))
}

// Refresh rotates a refresh token for a new pair
// POST /auth/refresh
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}

	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	if err := h.validator.Validate(req); err != nil {
		return apperr.Validation(err.Error())
	}

	result, err := h.authService.Refresh(c.Context(), req.RefreshToken, clientMeta(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"access_token":  result.Tokens.AccessToken,
		"refresh_token": result.Tokens.RefreshToken,
		"token_type":    result.Tokens.TokenType,
		"expires_in":    h.expiresIn(),
		"session_id":    result.SessionID,
	})
}

// Logout revokes every active session of the authenticated user
// POST /auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFromCtx(c)
	if !ok {
		return apperr.Auth("authentication required")
	}

	if err := h.authService.Logout(c.Context(), identity.ID); err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "logged out",
	})
}

func (h *AuthHandler) expiresIn() int64 {
	return int64(h.authService.AccessExpiry().Seconds())
}

func authResultBody(result *service.AuthResult, expiresIn int64) fiber.Map {
	return fiber.Map{
		"user":          result.User,
		"access_token":  result.Tokens.AccessToken,
		"refresh_token": result.Tokens.RefreshToken,
		"token_type":    result.Tokens.TokenType,
		"expires_in":    expiresIn,
		"session_id":    result.SessionID,
	}
}

func clientMeta(c *fiber.Ctx) service.ClientMeta {
	return service.ClientMeta{
		UserAgent: c.Get(fiber.HeaderUserAgent),
		IP:        middleware.ClientAddress(c),
	}
}
