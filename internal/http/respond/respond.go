package respond

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/WhitelistAdmin/internal/http/flash"
	log "github.com/sirupsen/logrus"
)

// DeniedMessage is returned for every authorization failure.
const DeniedMessage = "Request denied"

// ErrorTemplate renders non-redirect failures for browsers.
const ErrorTemplate = "error.html"

// Outcome is the result of an admin action before it is shaped for the client.
type Outcome struct {
	Status  int
	Error   bool
	Message string
	// FlashKey overrides the flash key; defaults to error/success from Error.
	FlashKey string
	// FlashText overrides Message in the flash.
	FlashText string
	Result   any
	Errors   map[string][]string
}

// Responder maps outcomes to responses.
type Responder struct {
	Flash    flash.Store
	Fallback string // Redirect target when the request carries no Referer.
}

// NewResponder constructs a Responder.
func NewResponder(store flash.Store, fallback string) *Responder {
	return &Responder{Flash: store, Fallback: fallback}
}

// Write sends outcome as a JSON envelope or as a redirect back with a flash message.
func (r *Responder) Write(c *gin.Context, format Format, outcome Outcome) {
	if format == FormatJSON {
		body := gin.H{"error": outcome.Error, "message": outcome.Message}
		if outcome.Result != nil {
			body["result"] = outcome.Result
		}
		if len(outcome.Errors) > 0 {
			body["errors"] = outcome.Errors
		}
		c.JSON(outcome.Status, body)
		return
	}

	key := outcome.FlashKey
	if key == "" {
		key = flash.KeySuccess
		if outcome.Error {
			key = flash.KeyError
		}
	}
	text := outcome.Message
	if outcome.FlashText != "" {
		text = outcome.FlashText
	}
	if r.Flash != nil {
		if errFlash := r.Flash.Set(c, flash.Message{Key: key, Text: text}); errFlash != nil {
			log.WithError(errFlash).Warn("respond: store flash message failed")
		}
	}
	c.Redirect(http.StatusFound, r.back(c))
}

// Deny aborts the request with 403 before any validation or I/O.
func (r *Responder) Deny(c *gin.Context, format Format) {
	r.Abort(c, format, http.StatusForbidden, DeniedMessage)
}

// Abort stops the request with status and message without redirecting.
func (r *Responder) Abort(c *gin.Context, format Format, status int, message string) {
	if format == FormatJSON {
		c.AbortWithStatusJSON(status, gin.H{"error": true, "message": message})
		return
	}
	c.HTML(status, ErrorTemplate, gin.H{"title": http.StatusText(status), "status": status, "message": message})
	c.Abort()
}

// Page renders template for browsers, or data itself for JSON clients.
func (r *Responder) Page(c *gin.Context, format Format, template string, data gin.H) {
	if format == FormatJSON {
		c.JSON(http.StatusOK, data)
		return
	}
	page := gin.H{}
	for k, v := range data {
		page[k] = v
	}
	if r.Flash != nil {
		if msg, ok := r.Flash.Pop(c); ok {
			page["flash"] = msg
		}
	}
	c.HTML(http.StatusOK, template, page)
}

// back returns the Referer when it is a local path or same-host URL, else the fallback.
func (r *Responder) back(c *gin.Context) string {
	referer := strings.TrimSpace(c.GetHeader("Referer"))
	if referer != "" {
		if strings.HasPrefix(referer, "/") && !strings.HasPrefix(referer, "//") {
			return referer
		}
		for _, scheme := range []string{"http://", "https://"} {
			if strings.HasPrefix(referer, scheme+c.Request.Host+"/") || referer == scheme+c.Request.Host {
				return referer
			}
		}
	}
	if r.Fallback != "" {
		return r.Fallback
	}
	return "/"
}
