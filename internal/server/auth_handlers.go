package server

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer   = "folio-api"
	tokenAudience = "folio-client"
	tokenLifetime = 7 * 24 * time.Hour
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/auth/register. Signed-in callers are sent back
// to the post listing.
func (s *Server) Register(c *fiber.Ctx) error {
	if actorFrom(c) != nil {
		return c.Redirect(defaultListing, fiber.StatusSeeOther)
	}
	if !s.accountService.RegistrationOpen() {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Registration is closed"))
	}

	var req credentialsRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	user, err := s.accountService.Register(c.UserContext(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return respondError(c, err)
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	user, err := s.accountService.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if models.HasCode(err, models.CodeUnauthorized) {
			middleware.Logger.InfoContext(c.UserContext(), "login refused", slog.String("ip", c.IP()))
		}
		return respondError(c, err)
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Logout handles POST /api/auth/logout by revoking the presented token
// until it would have expired anyway.
func (s *Server) Logout(c *fiber.Ctx) error {
	claims, _ := c.Locals("claims").(*jwt.RegisteredClaims)
	if claims != nil && claims.ExpiresAt != nil {
		if err := s.revoked.Revoke(c.UserContext(), claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "failed to revoke token", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusServiceUnavailable,
				models.NewInternalError(err))
		}
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// generateToken creates a JWT token for the given user ID
func (s *Server) generateToken(userID uint) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Issuer:    tokenIssuer,
		Audience:  jwt.ClaimStrings{tokenAudience},
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.JWTSecret))
}

// AuthRequired rejects requests without a valid bearer token.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}
		user, claims, err := s.authenticate(c.UserContext(), token)
		if err != nil {
			return respondError(c, err)
		}
		setActor(c, user, claims)
		return c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is presented and
// lets everyone else through as anonymous.
func (s *Server) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := bearerToken(c); token != "" {
			if user, claims, err := s.authenticate(c.UserContext(), token); err == nil {
				setActor(c, user, claims)
			}
		}
		return c.Next()
	}
}

func (s *Server) authenticate(ctx context.Context, tokenString string) (*models.User, *jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return []byte(s.config.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, nil, models.NewUnauthorizedError("Invalid or expired token")
	}
	if s.revoked.IsRevoked(ctx, claims.ID) {
		return nil, nil, models.NewUnauthorizedError("Token has been revoked")
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil {
		return nil, nil, models.NewUnauthorizedError("Invalid user ID in token")
	}
	user, err := s.userRepo.GetByID(ctx, uint(userID))
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, nil, models.NewUnauthorizedError("Invalid or expired token")
		}
		return nil, nil, err
	}
	if user.IsBlocked() {
		return nil, nil, models.NewUnauthorizedError("Account is locked.")
	}
	return user, claims, nil
}

func bearerToken(c *fiber.Ctx) string {
	scheme, token, ok := strings.Cut(c.Get(fiber.HeaderAuthorization), " ")
	if !ok || scheme != "Bearer" {
		return ""
	}
	return strings.TrimSpace(token)
}

func setActor(c *fiber.Ctx, user *models.User, claims *jwt.RegisteredClaims) {
	c.Locals("user", user)
	c.Locals("userID", user.ID)
	c.Locals("claims", claims)
	// Sync to UserContext for logging and downstream services
	c.SetUserContext(context.WithValue(c.UserContext(), middleware.UserIDKey, user.ID))
}

// actorFrom returns the authenticated user, or nil for anonymous callers.
func actorFrom(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}
