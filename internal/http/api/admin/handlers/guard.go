package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/WhitelistAdmin/internal/http/api/admin/permissions"
	"github.com/router-for-me/WhitelistAdmin/internal/http/respond"
	"github.com/router-for-me/WhitelistAdmin/internal/metrics"
)

// authorize resolves the response format and denies the request unless actor holds capability.
func authorize(c *gin.Context, r *respond.Responder, actor permissions.Actor, capability, action string) (respond.Format, bool) {
	format := respond.FormatOf(c)
	if !actor.Can(capability) {
		metrics.Action(action, metrics.OutcomeDenied)
		r.Deny(c, format)
		return format, false
	}
	return format, true
}

// truthy follows form semantics: empty, 0, false, off and no are false.
func truthy(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "0", "false", "off", "no":
		return false
	}
	return true
}

// missingID reports whether a path id is absent.
func missingID(raw string) bool {
	raw = strings.TrimSpace(raw)
	return raw == "" || raw == "0"
}
