package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	dbutil "github.com/router-for-me/WhitelistAdmin/internal/db"
	"github.com/router-for-me/WhitelistAdmin/internal/http/api/admin/permissions"
	"github.com/router-for-me/WhitelistAdmin/internal/http/respond"
	"github.com/router-for-me/WhitelistAdmin/internal/metrics"
	"github.com/router-for-me/WhitelistAdmin/internal/models"
	"github.com/router-for-me/WhitelistAdmin/internal/security"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AdminHandler manages admin accounts. Every endpoint requires an is_admin actor.
type AdminHandler struct {
	db *gorm.DB
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

func adminView(admin models.Admin) gin.H {
	return gin.H{
		"id":           admin.ID,
		"username":     admin.Username,
		"active":       admin.Active,
		"is_admin":     admin.IsAdmin,
		"user_type":    admin.UserType,
		"capabilities": permissions.ParsePermissions(admin.Capabilities),
		"created_at":   admin.CreatedAt,
		"updated_at":   admin.UpdatedAt,
	}
}

func requireSuperAdmin(c *gin.Context, actor permissions.Actor) bool {
	if actor.IsAdmin {
		return true
	}
	metrics.Action("admins.manage", metrics.OutcomeDenied)
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": true, "message": respond.DeniedMessage})
	return false
}

// List returns admin accounts, optionally filtered by username.
func (h *AdminHandler) List(c *gin.Context, actor permissions.Actor) {
	if !requireSuperAdmin(c, actor) {
		return
	}
	q := h.db.WithContext(c.Request.Context()).Model(&models.Admin{})
	if usernameQ := strings.TrimSpace(c.Query("username")); usernameQ != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+usernameQ+"%")
		q = q.Where(dbutil.CaseInsensitiveLikeExpr(h.db, "username"), pattern)
	}

	var rows []models.Admin
	if errFind := q.Order("id ASC").Find(&rows).Error; errFind != nil {
		log.WithError(errFind).Error("admins: list failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": "list admins failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, adminView(row))
	}
	c.JSON(http.StatusOK, gin.H{"admins": out})
}

// createAdminRequest defines the request body for admin creation.
type createAdminRequest struct {
	Username     string   `json:"username" binding:"required"`
	Password     string   `json:"password" binding:"required"`
	IsAdmin      bool     `json:"is_admin"`
	UserType     string   `json:"user_type"`
	Capabilities []string `json:"capabilities"`
}

// Create adds an admin account.
func (h *AdminHandler) Create(c *gin.Context, actor permissions.Actor) {
	if !requireSuperAdmin(c, actor) {
		return
	}
	var body createAdminRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": true, "message": invalidDataMessage, "errors": validationErrors(errBind)})
		return
	}

	admin, errNew := NewAdminAccount(body.Username, body.Password, body.IsAdmin, body.UserType, body.Capabilities)
	if errNew != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": true, "message": errNew.Error()})
		return
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&admin).Error; errCreate != nil {
		log.WithError(errCreate).WithField("username", admin.Username).Error("admins: create failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": "create admin failed"})
		return
	}
	metrics.Action("admins.create", metrics.OutcomeOK)
	c.JSON(http.StatusCreated, adminView(admin))
}

// NewAdminAccount validates the inputs and builds an unsaved admin row.
func NewAdminAccount(username, password string, isAdmin bool, userType string, capabilities []string) (models.Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.Admin{}, errors.New("missing username")
	}
	if errPassword := security.ValidatePassword(password); errPassword != nil {
		return models.Admin{}, errPassword
	}
	normalized := permissions.NormalizePermissions(capabilities)
	if errValidate := permissions.ValidatePermissions(normalized); errValidate != nil {
		return models.Admin{}, errValidate
	}
	capabilitiesJSON, errMarshal := permissions.MarshalPermissions(normalized)
	if errMarshal != nil {
		return models.Admin{}, errMarshal
	}
	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		return models.Admin{}, errHash
	}
	userType = strings.TrimSpace(userType)
	if userType == "" {
		userType = "staff"
	}
	return models.Admin{
		Username:     username,
		Password:     hash,
		Active:       true,
		IsAdmin:      isAdmin,
		UserType:     userType,
		Capabilities: datatypes.JSON(capabilitiesJSON),
	}, nil
}

// updateAdminRequest defines the request body for admin updates.
type updateAdminRequest struct {
	Active       *bool     `json:"active"`
	IsAdmin      *bool     `json:"is_admin"`
	UserType     *string   `json:"user_type"`
	Capabilities *[]string `json:"capabilities"`
	Password     *string   `json:"password"`
}

// Update modifies admin account fields.
func (h *AdminHandler) Update(c *gin.Context, actor permissions.Actor) {
	if !requireSuperAdmin(c, actor) {
		return
	}
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "invalid id"})
		return
	}
	var body updateAdminRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "invalid json"})
		return
	}

	updates := map[string]any{}
	if body.Active != nil {
		updates["active"] = *body.Active
	}
	if body.IsAdmin != nil {
		updates["is_admin"] = *body.IsAdmin
	}
	if body.UserType != nil {
		updates["user_type"] = strings.TrimSpace(*body.UserType)
	}
	if body.Capabilities != nil {
		normalized := permissions.NormalizePermissions(*body.Capabilities)
		if errValidate := permissions.ValidatePermissions(normalized); errValidate != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": true, "message": errValidate.Error()})
			return
		}
		capabilitiesJSON, errMarshal := permissions.MarshalPermissions(normalized)
		if errMarshal != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": "marshal capabilities failed"})
			return
		}
		updates["capabilities"] = datatypes.JSON(capabilitiesJSON)
	}
	if body.Password != nil {
		if errPassword := security.ValidatePassword(*body.Password); errPassword != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": true, "message": errPassword.Error()})
			return
		}
		hash, errHash := security.HashPassword(*body.Password)
		if errHash != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": "hash password failed"})
			return
		}
		updates["password"] = hash
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "nothing to update"})
		return
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.Admin{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		log.WithError(res.Error).WithField("admin_id", id).Error("admins: update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": true, "message": "not found"})
		return
	}
	metrics.Action("admins.update", metrics.OutcomeOK)
	c.JSON(http.StatusOK, gin.H{"error": false, "message": "Updated successfully"})
}
