package server

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/existflow/ironmeet/internal/api"
	"github.com/existflow/ironmeet/internal/db"
	"github.com/existflow/ironmeet/internal/logger"
	"github.com/existflow/ironmeet/internal/model"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// handleRegister handles user registration
func (s *Server) handleRegister(c echo.Context) error {
	var req api.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return badRequest(c, "username, email, and password required")
	}
	if len(req.Password) < minPasswordLength {
		return badRequest(c, "password must be at least 8 characters")
	}

	ctx := c.Request().Context()
	exists, err := s.db.UserExists(ctx, req.Username, req.Email)
	if err != nil {
		return s.fail(c, err)
	}
	if exists {
		return c.JSON(http.StatusConflict, map[string]string{"error": "username or email already exists"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return s.fail(c, err)
	}

	user := model.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.db.CreateUser(ctx, user); err != nil {
		return s.fail(c, err)
	}

	resp, err := s.createSession(c, user.ID)
	if err != nil {
		return s.fail(c, err)
	}

	s.log.Info("User registered", logger.F("username", user.Username))
	return c.JSON(http.StatusOK, resp)
}

// handleLogin handles user login
func (s *Server) handleLogin(c echo.Context) error {
	var req api.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	user, err := s.db.GetUserByUsername(c.Request().Context(), strings.TrimSpace(req.Username))
	if errors.Is(err, db.ErrNotFound) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	}
	if err != nil {
		return s.fail(c, err)
	}
	// The seeded local account has no password and cannot log in
	if user.PasswordHash == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	}

	resp, err := s.createSession(c, user.ID)
	if err != nil {
		return s.fail(c, err)
	}

	s.log.Info("User logged in", logger.F("username", user.Username))
	return c.JSON(http.StatusOK, resp)
}

// handleLogout ends the current session
func (s *Server) handleLogout(c echo.Context) error {
	token, _ := c.Get("token").(string)
	if err := s.db.DeleteSession(c.Request().Context(), token); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// handleMe returns current user info
func (s *Server) handleMe(c echo.Context) error {
	user, err := s.db.GetUser(c.Request().Context(), userID(c))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, api.UserResponse{ID: user.ID, Username: user.Username, Email: user.Email})
}

// createSession creates a new session for a user
func (s *Server) createSession(c echo.Context, userID string) (api.AuthResponse, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return api.AuthResponse{}, err
	}

	now := s.now().UTC()
	session := model.Session{
		Token:     hex.EncodeToString(tokenBytes),
		UserID:    userID,
		ExpiresAt: now.Add(s.opts.SessionTTL),
		CreatedAt: now,
	}
	if err := s.db.CreateSession(c.Request().Context(), session); err != nil {
		return api.AuthResponse{}, err
	}

	return api.AuthResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
		UserID:    userID,
	}, nil
}
