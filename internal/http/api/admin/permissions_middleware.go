package admin

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/WhitelistAdmin/internal/http/api/admin/handlers"
	"github.com/router-for-me/WhitelistAdmin/internal/http/api/admin/permissions"
	"github.com/router-for-me/WhitelistAdmin/internal/http/respond"
	"github.com/router-for-me/WhitelistAdmin/internal/models"
	"github.com/router-for-me/WhitelistAdmin/internal/security"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const actorContextKey = "adminActor"

// adminActorMiddleware authenticates the admin token and stores the resolved actor on the context.
func adminActorMiddleware(db *gorm.DB, secret string, r *respond.Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		format := respond.FormatOf(c)

		token := bearerToken(c)
		if token == "" {
			r.Abort(c, format, http.StatusUnauthorized, "Unauthenticated")
			return
		}
		claims, errParse := security.ParseAdminToken(secret, token)
		if errParse != nil {
			r.Abort(c, format, http.StatusUnauthorized, "Unauthenticated")
			return
		}

		var admin models.Admin
		errFind := db.WithContext(c.Request.Context()).
			Select("id", "username", "active", "is_admin", "user_type", "capabilities").
			First(&admin, claims.AdminID).Error
		if errFind != nil {
			if !errors.Is(errFind, gorm.ErrRecordNotFound) {
				log.WithError(errFind).Error("admin: load actor failed")
			}
			r.Abort(c, format, http.StatusUnauthorized, "Unauthenticated")
			return
		}
		if !admin.Active {
			r.Deny(c, format)
			return
		}

		c.Set(actorContextKey, permissions.Actor{
			AdminID:      admin.ID,
			Username:     admin.Username,
			IsAdmin:      admin.IsAdmin,
			UserType:     admin.UserType,
			Capabilities: permissions.ParsePermissions(admin.Capabilities),
		})
		c.Next()
	}
}

// bearerToken reads the token from the Authorization header, falling back to the cookie.
func bearerToken(c *gin.Context) string {
	if header := strings.TrimSpace(c.GetHeader("Authorization")); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, errCookie := c.Cookie(handlers.TokenCookie); errCookie == nil {
		return strings.TrimSpace(cookie)
	}
	return ""
}

// withActor adapts an actor-taking handler to gin.
func withActor(fn func(*gin.Context, permissions.Actor)) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, ok := c.Get(actorContextKey)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": true, "message": "Unauthenticated"})
			return
		}
		actor, ok := value.(permissions.Actor)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": true, "message": "Unauthenticated"})
			return
		}
		fn(c, actor)
	}
}
