package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/WhitelistAdmin/internal/http/api/admin/permissions"
)

// PermissionHandler exposes the capability catalogue.
type PermissionHandler struct{}

// NewPermissionHandler constructs a PermissionHandler.
func NewPermissionHandler() *PermissionHandler {
	return &PermissionHandler{}
}

// List returns every capability with the routes it guards.
func (h *PermissionHandler) List(c *gin.Context, actor permissions.Actor) {
	defs := permissions.Definitions()
	out := make([]gin.H, 0, len(defs))
	for _, def := range defs {
		out = append(out, gin.H{
			"key":    def.Key,
			"label":  def.Label,
			"module": def.Module,
			"routes": def.Routes,
			"held":   actor.Can(def.Key),
		})
	}
	c.JSON(http.StatusOK, gin.H{"permissions": out})
}
