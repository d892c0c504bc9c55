package admin

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/WhitelistAdmin/internal/config"
	"github.com/router-for-me/WhitelistAdmin/internal/http/api/admin/handlers"
	"github.com/router-for-me/WhitelistAdmin/internal/http/api/admin/permissions"
	"github.com/router-for-me/WhitelistAdmin/internal/http/flash"
	"github.com/router-for-me/WhitelistAdmin/internal/http/respond"
	"github.com/router-for-me/WhitelistAdmin/internal/store"
	"gorm.io/gorm"
)

// WhitelistGroup is the whitelist route group relative to the admin prefix.
const WhitelistGroup = "/birthdate-ban-whitelist"

// RegisterAdminRoutes mounts the admin API under cfg.Admin.RoutePrefix.
func RegisterAdminRoutes(engine *gin.Engine, db *gorm.DB, cfg config.Config, flashStore flash.Store) error {
	handlers.RegisterValidation()

	entries, errEntries := store.NewWhitelistStore(db)
	if errEntries != nil {
		return errEntries
	}
	users, errUsers := store.NewUserStore(db)
	if errUsers != nil {
		return errUsers
	}
	packages, errPackages := store.NewPackageStore(db)
	if errPackages != nil {
		return errPackages
	}

	prefix := "/" + strings.Trim(cfg.Admin.RoutePrefix, "/")
	responder := respond.NewResponder(flashStore, cfg.Admin.FallbackRedirect)

	whitelistHandler := handlers.NewWhitelistHandler(entries, users, responder, prefix+WhitelistGroup)
	packageHandler := handlers.NewPackageHandler(packages, responder, prefix+WhitelistGroup, cfg.Admin.UpdateSuccessOK)
	authHandler := handlers.NewAuthHandler(db, cfg.JWT, cfg.Admin.SecureCookies)
	adminHandler := handlers.NewAdminHandler(db)
	permissionHandler := handlers.NewPermissionHandler()

	root := engine.Group(prefix)
	root.POST("/login", authHandler.Login)

	authed := root.Group("")
	authed.Use(adminActorMiddleware(db, cfg.JWT.Secret, responder))
	authed.GET("/permissions", withActor(permissionHandler.List))
	authed.GET("/admins", withActor(adminHandler.List))
	authed.POST("/admins", withActor(adminHandler.Create))
	authed.PUT("/admins/:id", withActor(adminHandler.Update))

	whitelist := authed.Group(WhitelistGroup)
	whitelist.GET("", withActor(whitelistHandler.Index))
	whitelist.GET("/view", withActor(whitelistHandler.View))
	whitelist.GET("/create", withActor(whitelistHandler.Create))
	whitelist.POST("/store", withActor(whitelistHandler.Store))
	whitelist.DELETE("/destroy/:t/:id", withActor(whitelistHandler.Destroy))

	whitelist.GET("/edit/:t/:package", withActor(packageHandler.Edit))
	whitelist.PUT("/update/:t/:id", withActor(packageHandler.Update))
	whitelist.PATCH("/update/:t/:id", withActor(packageHandler.Update))
	return checkRouteCapabilities(engine.Routes(), prefix)
}

// checkRouteCapabilities fails when a whitelist route has no capability guarding it.
func checkRouteCapabilities(routes gin.RoutesInfo, prefix string) error {
	routeMap := permissions.RouteMap()
	for _, route := range routes {
		if !strings.HasPrefix(route.Path, prefix+WhitelistGroup) {
			continue
		}
		key := permissions.Key(route.Method, strings.TrimPrefix(route.Path, prefix))
		if _, ok := routeMap[key]; !ok {
			return fmt.Errorf("admin: route %s has no capability", key)
		}
	}
	return nil
}
