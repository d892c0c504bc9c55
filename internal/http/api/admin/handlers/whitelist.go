package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/WhitelistAdmin/internal/http/api/admin/permissions"
	"github.com/router-for-me/WhitelistAdmin/internal/http/respond"
	"github.com/router-for-me/WhitelistAdmin/internal/metrics"
	"github.com/router-for-me/WhitelistAdmin/internal/query"
	"github.com/router-for-me/WhitelistAdmin/internal/store"
	"github.com/router-for-me/WhitelistAdmin/internal/view"
	log "github.com/sirupsen/logrus"
)

// WhitelistHandler manages birthdate ban whitelist entries.
type WhitelistHandler struct {
	entries *store.WhitelistStore
	users   *store.UserStore
	respond *respond.Responder
	base    string // Route group path, e.g. /v0/admin/birthdate-ban-whitelist.
}

// NewWhitelistHandler constructs a WhitelistHandler serving the group mounted at base.
func NewWhitelistHandler(entries *store.WhitelistStore, users *store.UserStore, r *respond.Responder, base string) *WhitelistHandler {
	return &WhitelistHandler{entries: entries, users: users, respond: r, base: strings.TrimRight(base, "/")}
}

// Index lists entries: a searchable page of active entries when pagination is set, else every row.
func (h *WhitelistHandler) Index(c *gin.Context, actor permissions.Actor) {
	if _, ok := authorize(c, h.respond, actor, permissions.CanAccess, "whitelist.index"); !ok {
		return
	}
	ctx := c.Request.Context()

	if truthy(c.Query("pagination")) {
		page, errPage := h.entries.ActivePage(ctx, query.FromRequest(c.Request))
		if errPage != nil {
			log.WithError(errPage).Error("whitelist: list page failed")
			metrics.Action("whitelist.index", metrics.OutcomeFailed)
			c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": "Failure to list"})
			return
		}
		metrics.Action("whitelist.index", metrics.OutcomeOK)
		c.JSON(http.StatusOK, page)
		return
	}

	rows, errAll := h.entries.All(ctx)
	if errAll != nil {
		log.WithError(errAll).Error("whitelist: list all failed")
		metrics.Action("whitelist.index", metrics.OutcomeFailed)
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": "Failure to list"})
		return
	}
	metrics.Action("whitelist.index", metrics.OutcomeOK)
	c.JSON(http.StatusOK, gin.H{"error": false, "message": "Whitelisted User List", "result": rows})
}

// View renders the list page shell; rows are fetched from Index by the page.
func (h *WhitelistHandler) View(c *gin.Context, actor permissions.Actor) {
	format, ok := authorize(c, h.respond, actor, permissions.CanAccess, "whitelist.view")
	if !ok {
		return
	}
	h.respond.Page(c, format, view.WhitelistList, gin.H{
		"title":     "Birthdate Ban Whitelist",
		"userType":  actor.UserType,
		"listURL":   h.base + "?pagination=1",
		"createURL": h.base + "/create",
	})
}

// Create renders the add form with the users that can be whitelisted.
func (h *WhitelistHandler) Create(c *gin.Context, actor permissions.Actor) {
	format, ok := authorize(c, h.respond, actor, permissions.CanCreate, "whitelist.create")
	if !ok {
		return
	}
	users, errUsers := h.users.Candidates(c.Request.Context())
	if errUsers != nil {
		log.WithError(errUsers).Error("whitelist: list candidate users failed")
		h.respond.Abort(c, format, http.StatusInternalServerError, "Failure to load users")
		return
	}
	h.respond.Page(c, format, view.WhitelistAdd, gin.H{
		"title":    "Add Whitelisted User",
		"userType": actor.UserType,
		"users":    users,
		"storeURL": h.base + "/store",
	})
}

// storeWhitelistRequest is the body of Store.
type storeWhitelistRequest struct {
	UserID  numberField `json:"user_id" form:"user_id" binding:"required"`
	Remarks *string     `json:"remarks" form:"remarks"`
}

// Store activates the whitelist entry of a user, creating it when absent.
func (h *WhitelistHandler) Store(c *gin.Context, actor permissions.Actor) {
	format, ok := authorize(c, h.respond, actor, permissions.CanSave, "whitelist.store")
	if !ok {
		return
	}

	var body storeWhitelistRequest
	if errBind := c.ShouldBind(&body); errBind != nil {
		h.invalid(c, format, "whitelist.store", validationErrors(errBind))
		return
	}
	userID, errParse := strconv.ParseUint(strings.TrimSpace(string(body.UserID)), 10, 64)
	if errParse != nil || userID == 0 {
		h.invalid(c, format, "whitelist.store", addError(nil, "user_id", "The user id must be an integer."))
		return
	}

	res, errUpsert := h.entries.Upsert(c.Request.Context(), userID, body.Remarks)
	if errUpsert != nil {
		log.WithError(errUpsert).WithField("user_id", userID).Error("whitelist: upsert failed")
		metrics.Action("whitelist.store", metrics.OutcomeFailed)
		h.respond.Write(c, format, respond.Outcome{
			Status:  http.StatusInternalServerError,
			Error:   true,
			Message: "Failure to add",
		})
		return
	}

	log.WithFields(log.Fields{
		"admin_id": actor.AdminID,
		"entry_id": res.Entry.ID,
		"user_id":  userID,
		"created":  res.Created,
	}).Info("whitelist: user whitelisted")
	metrics.Action("whitelist.store", metrics.OutcomeOK)
	h.respond.Write(c, format, respond.Outcome{
		Status:  http.StatusCreated,
		Message: "Added successfully",
	})
}

// Destroy hard-deletes a whitelist entry.
func (h *WhitelistHandler) Destroy(c *gin.Context, actor permissions.Actor) {
	format, ok := authorize(c, h.respond, actor, permissions.CanDelete, "whitelist.destroy")
	if !ok {
		return
	}

	rawID := c.Param("id")
	if missingID(rawID) {
		metrics.Action("whitelist.destroy", metrics.OutcomeInvalid)
		h.respond.Abort(c, format, http.StatusInternalServerError, "Missing id")
		return
	}

	noID := respond.Outcome{
		Status:    http.StatusInternalServerError,
		Error:     true,
		Message:   "No id",
		FlashText: "No id found",
	}
	id, errParse := strconv.ParseUint(strings.TrimSpace(rawID), 10, 64)
	if errParse != nil {
		metrics.Action("whitelist.destroy", metrics.OutcomeInvalid)
		h.respond.Write(c, format, noID)
		return
	}

	res, errDelete := h.entries.Delete(c.Request.Context(), id)
	if errDelete != nil {
		log.WithError(errDelete).WithField("entry_id", id).Error("whitelist: delete failed")
		metrics.Action("whitelist.destroy", metrics.OutcomeFailed)
		h.respond.Write(c, format, noID)
		return
	}
	if !res.Applied() {
		metrics.Action("whitelist.destroy", metrics.OutcomeInvalid)
		h.respond.Write(c, format, noID)
		return
	}

	log.WithFields(log.Fields{"admin_id": actor.AdminID, "entry_id": id}).Info("whitelist: entry deleted")
	metrics.Action("whitelist.destroy", metrics.OutcomeOK)
	h.respond.Write(c, format, respond.Outcome{
		Status:  http.StatusOK,
		Message: "Record deleted successfully",
	})
}

func (h *WhitelistHandler) invalid(c *gin.Context, format respond.Format, action string, errs map[string][]string) {
	metrics.Action(action, metrics.OutcomeInvalid)
	h.respond.Write(c, format, invalidOutcome(errs))
}

// invalidOutcome shapes a validation failure; the flash carries the first message.
func invalidOutcome(errs map[string][]string) respond.Outcome {
	outcome := respond.Outcome{
		Status:  http.StatusUnprocessableEntity,
		Error:   true,
		Message: invalidDataMessage,
		Errors:  errs,
	}
	for _, field := range sortedKeys(errs) {
		if msgs := errs[field]; len(msgs) > 0 {
			outcome.FlashText = msgs[0]
			break
		}
	}
	return outcome
}
