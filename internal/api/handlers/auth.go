package handlers

import (
	"crypto/subtle"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/crickwise/dream11-optimizer/internal/api/middleware"
	"github.com/crickwise/dream11-optimizer/pkg/config"
	"github.com/crickwise/dream11-optimizer/pkg/utils"
)

const tokenLifetime = 24 * time.Hour

// AuthHandler issues admin tokens for the protected maintenance routes.
type AuthHandler struct {
	cfg *config.Config
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

// Login validates the admin credentials and returns a signed JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid login request", err.Error())
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.cfg.AdminUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.cfg.AdminPassword)) == 1
	if !userOK || !passOK {
		utils.SendUnauthorized(c, "Invalid credentials")
		return
	}

	expiresAt := time.Now().Add(tokenLifetime)
	claims := middleware.Claims{
		Username: req.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.cfg.JWTSecret))
	if err != nil {
		utils.SendInternalError(c, "Failed to sign token")
		return
	}

	utils.SendSuccess(c, AuthResponse{Token: signed, ExpiresAt: expiresAt})
}
