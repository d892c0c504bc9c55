package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/WhitelistAdmin/internal/http/api/admin/permissions"
	"github.com/router-for-me/WhitelistAdmin/internal/http/respond"
	"github.com/router-for-me/WhitelistAdmin/internal/metrics"
	"github.com/router-for-me/WhitelistAdmin/internal/models"
	"github.com/router-for-me/WhitelistAdmin/internal/store"
	"github.com/router-for-me/WhitelistAdmin/internal/view"
	log "github.com/sirupsen/logrus"
)

// PackageHandler edits packages. Its routes live under the whitelist group.
type PackageHandler struct {
	packages  *store.PackageStore
	respond   *respond.Responder
	base      string
	successOK bool // Answer a successful update with 200 instead of 500.
}

// NewPackageHandler constructs a PackageHandler serving the group mounted at base.
func NewPackageHandler(packages *store.PackageStore, r *respond.Responder, base string, successOK bool) *PackageHandler {
	return &PackageHandler{
		packages:  packages,
		respond:   r,
		base:      strings.TrimRight(base, "/"),
		successOK: successOK,
	}
}

// Edit renders the package form. An unknown package renders with a nil row.
func (h *PackageHandler) Edit(c *gin.Context, actor permissions.Actor) {
	format, ok := authorize(c, h.respond, actor, permissions.CanEdit, "package.edit")
	if !ok {
		return
	}

	var row *models.Package
	rawID := strings.TrimSpace(c.Param("package"))
	if id, errParse := strconv.ParseUint(rawID, 10, 64); errParse == nil {
		found, errFind := h.packages.Find(c.Request.Context(), id)
		if errFind != nil {
			log.WithError(errFind).WithField("package_id", id).Error("package: find failed")
			h.respond.Abort(c, format, http.StatusInternalServerError, "Failure to load package")
			return
		}
		row = found
	}

	h.respond.Page(c, format, view.PackageEdit, gin.H{
		"title":     "Edit Package",
		"userType":  actor.UserType,
		"row":       row,
		"updateURL": h.base + "/update/" + c.Param("t") + "/" + rawID,
	})
}

// updatePackageRequest is the body of Update.
// Sequence is only written when its key was sent. thumbnail_color must be sent but may be empty or null.
type updatePackageRequest struct {
	Name           string      `json:"name" form:"name" binding:"required"`
	Description    string      `json:"description" form:"description" binding:"required"`
	Rate           numberField `json:"rate" form:"rate" binding:"required,decimal"`
	MaxQuestions   numberField `json:"max_questions" form:"max_questions" binding:"required,decimal"`
	Sequence       numberField `json:"sequence" form:"sequence" binding:"omitempty,decimal"`
	ThumbnailColor *string     `json:"thumbnail_color" form:"thumbnail_color"`

	sent map[string]bool
}

func (r *updatePackageRequest) UnmarshalJSON(raw []byte) error {
	type plain updatePackageRequest
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, (*plain)(r)); err != nil {
		return err
	}
	r.sent = make(map[string]bool, len(keys))
	for key := range keys {
		r.sent[key] = true
	}
	return nil
}

// markSentForm records the keys of a form body; JSON bodies record them while decoding.
func (r *updatePackageRequest) markSentForm(c *gin.Context) {
	if r.sent != nil || c.Request.PostForm == nil {
		return
	}
	r.sent = make(map[string]bool, len(c.Request.PostForm))
	for key := range c.Request.PostForm {
		r.sent[key] = true
	}
}

func (r updatePackageRequest) toUpdate() store.PackageUpdate {
	rate, _ := r.Rate.Decimal()
	maxQuestions, _ := r.MaxQuestions.Decimal()
	out := store.PackageUpdate{
		Name:         strings.TrimSpace(r.Name),
		Description:  r.Description,
		Rate:         rate,
		MaxQuestions: maxQuestions.IntPart(),
		SequenceSet:  r.sent["sequence"],
	}
	if value, ok := r.Sequence.Decimal(); ok && out.SequenceSet {
		n := value.IntPart()
		out.Sequence = &n
	}
	if r.ThumbnailColor != nil {
		out.ThumbnailColor = *r.ThumbnailColor
	}
	return out
}

// Update validates and writes every editable field of a package.
func (h *PackageHandler) Update(c *gin.Context, actor permissions.Actor) {
	format, ok := authorize(c, h.respond, actor, permissions.CanUpdate, "package.update")
	if !ok {
		return
	}

	noID := respond.Outcome{
		Status:    http.StatusInternalServerError,
		Error:     true,
		Message:   "No id",
		FlashText: "No id found",
	}
	rawID := c.Param("id")
	if missingID(rawID) {
		metrics.Action("package.update", metrics.OutcomeInvalid)
		h.respond.Write(c, format, noID)
		return
	}
	id, errParse := strconv.ParseUint(strings.TrimSpace(rawID), 10, 64)
	if errParse != nil {
		metrics.Action("package.update", metrics.OutcomeInvalid)
		h.respond.Write(c, format, noID)
		return
	}

	var body updatePackageRequest
	var errs map[string][]string
	if errBind := c.ShouldBind(&body); errBind != nil {
		errs = validationErrors(errBind)
	}
	body.markSentForm(c)
	if _, unreadable := errs["body"]; !unreadable && !body.sent["thumbnail_color"] {
		errs = addError(errs, "thumbnail_color", "The thumbnail color field must be present.")
	}
	if len(errs) > 0 {
		metrics.Action("package.update", metrics.OutcomeInvalid)
		h.respond.Write(c, format, invalidOutcome(errs))
		return
	}
	in := body.toUpdate()

	ctx := c.Request.Context()
	taken, errTaken := h.packages.NameTaken(ctx, in.Name, id)
	if errTaken != nil {
		log.WithError(errTaken).WithField("package_id", id).Error("package: name check failed")
		h.failed(c, format)
		return
	}
	if taken {
		metrics.Action("package.update", metrics.OutcomeInvalid)
		h.respond.Write(c, format, invalidOutcome(addError(nil, "name", "The name has already been taken.")))
		return
	}

	res, errUpdate := h.packages.Update(ctx, id, in)
	if errUpdate != nil {
		log.WithError(errUpdate).WithField("package_id", id).Error("package: update failed")
		h.failed(c, format)
		return
	}
	if !res.Applied() {
		h.failed(c, format)
		return
	}

	status := http.StatusInternalServerError
	if h.successOK {
		status = http.StatusOK
	}
	log.WithFields(log.Fields{"admin_id": actor.AdminID, "package_id": id}).Info("package: updated")
	metrics.Action("package.update", metrics.OutcomeOK)
	h.respond.Write(c, format, respond.Outcome{
		Status:  status,
		Message: "Updated successfully",
	})
}

func (h *PackageHandler) failed(c *gin.Context, format respond.Format) {
	metrics.Action("package.update", metrics.OutcomeFailed)
	h.respond.Write(c, format, respond.Outcome{
		Status:  http.StatusInternalServerError,
		Error:   true,
		Message: "Failure to update",
	})
}
