package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lalith-99/controlpanel/internal/account"
	"github.com/lalith-99/controlpanel/internal/auth"
	"github.com/lalith-99/controlpanel/internal/models"
	"github.com/lalith-99/controlpanel/internal/repository"
)

const tokenTTL = 24 * time.Hour

type AccountService interface {
	Signup(ctx context.Context, in account.SignupInput) (*models.Show, error)
	Login(ctx context.Context, email, password string) (*models.Show, error)
}

// AuthHandler serves signup and login, the only routes outside
// AuthMiddleware: they are what hands out the JWT.
type AuthHandler struct {
	accounts  AccountService
	jwtSecret string
	logger    *zap.Logger
}

func NewAuthHandler(accounts AccountService, jwtSecret string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, jwtSecret: jwtSecret, logger: logger}
}

type signupRequest struct {
	ShowName string `json:"show_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	Token     string `json:"token"`
	ShowToken string `json:"show_token"`
}

// Signup handles POST /v1/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	show, err := h.accounts.Signup(c.Request.Context(), account.SignupInput{
		ShowName: req.ShowName,
		Email:    req.Email,
		Password: req.Password,
	})
	switch {
	case errors.Is(err, repository.ErrShowExists):
		c.JSON(http.StatusConflict, gin.H{"error": "email or show name already registered"})
		return
	case errors.Is(err, account.ErrInvalidSignup):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.logger.Error("failed to sign up", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "signup failed"})
		return
	}

	h.respondWithToken(c, http.StatusCreated, show, "signup failed")
}

// Login handles POST /v1/auth/login. Unknown email and wrong password get
// the same 401.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	show, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, account.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}
	if err != nil {
		h.logger.Error("failed to log in", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	h.respondWithToken(c, http.StatusOK, show, "login failed")
}

func (h *AuthHandler) respondWithToken(c *gin.Context, status int, show *models.Show, fallback string) {
	token, err := auth.GenerateToken(auth.Identity{
		ShowToken:     show.ShowToken,
		Email:         show.Email,
		ShowSubdomain: show.ShowSubdomain,
		Role:          auth.Role(show.ShowRole),
	}, h.jwtSecret, tokenTTL)
	if err != nil {
		h.logger.Error("failed to generate token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
		return
	}

	c.JSON(status, authResponse{Token: token, ShowToken: show.ShowToken})
}
