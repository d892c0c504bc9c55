package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/WhitelistAdmin/internal/config"
	"github.com/router-for-me/WhitelistAdmin/internal/metrics"
	"github.com/router-for-me/WhitelistAdmin/internal/models"
	"github.com/router-for-me/WhitelistAdmin/internal/security"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TokenCookie carries the admin token for browser flows.
const TokenCookie = "admin_token"

// AuthHandler handles admin authentication endpoints.
type AuthHandler struct {
	db            *gorm.DB
	jwtCfg        config.JWTConfig
	secureCookies bool
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, jwtCfg config.JWTConfig, secureCookies bool) *AuthHandler {
	return &AuthHandler{db: db, jwtCfg: jwtCfg, secureCookies: secureCookies}
}

// loginRequest defines the request body for admin login.
type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Login authenticates an admin and issues a JWT, also set as a cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBind(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "invalid body"})
		return
	}

	username := strings.TrimSpace(body.Username)
	password := strings.TrimSpace(body.Password)
	if username == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "username and password are required"})
		return
	}

	var admin models.Admin
	if errFind := h.db.WithContext(c.Request.Context()).Where("username = ?", username).First(&admin).Error; errFind != nil {
		if !errors.Is(errFind, gorm.ErrRecordNotFound) {
			log.WithError(errFind).Error("auth: load admin failed")
		}
		metrics.Action("auth.login", metrics.OutcomeDenied)
		c.JSON(http.StatusUnauthorized, gin.H{"error": true, "message": "invalid credentials"})
		return
	}
	if !security.CheckPassword(admin.Password, password) {
		metrics.Action("auth.login", metrics.OutcomeDenied)
		c.JSON(http.StatusUnauthorized, gin.H{"error": true, "message": "invalid credentials"})
		return
	}
	if !admin.Active {
		metrics.Action("auth.login", metrics.OutcomeDenied)
		c.JSON(http.StatusForbidden, gin.H{"error": true, "message": "admin account is disabled"})
		return
	}

	token, errToken := security.GenerateAdminToken(h.jwtCfg.Secret, admin.ID, admin.Username, h.jwtCfg.Expiry)
	if errToken != nil {
		log.WithError(errToken).Error("auth: sign admin token failed")
		metrics.Action("auth.login", metrics.OutcomeFailed)
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": "issue token failed"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(TokenCookie, token, int(h.jwtCfg.Expiry/time.Second), "/", "", h.secureCookies, true)
	metrics.Action("auth.login", metrics.OutcomeOK)
	c.JSON(http.StatusOK, gin.H{
		"error":      false,
		"token":      token,
		"expires_in": int64(h.jwtCfg.Expiry / time.Second),
		"admin": gin.H{
			"id":        admin.ID,
			"username":  admin.Username,
			"is_admin":  admin.IsAdmin,
			"user_type": admin.UserType,
		},
	})
}
