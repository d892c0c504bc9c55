// Package view embeds the admin HTML pages.
package view

import (
	"embed"
	"html/template"

	"github.com/gin-gonic/gin"
)

// Template names rendered by the admin handlers.
const (
	WhitelistList = "whitelist_list.html"
	WhitelistAdd  = "whitelist_add.html"
	PackageEdit   = "package_edit.html"
	Error         = "error.html"
)

//go:embed templates/*.html
var templates embed.FS

// Load parses the embedded templates.
func Load() (*template.Template, error) {
	return template.New("").ParseFS(templates, "templates/*.html")
}

// Install registers the embedded templates as the engine's HTML renderer.
func Install(engine *gin.Engine) error {
	tmpl, err := Load()
	if err != nil {
		return err
	}
	engine.SetHTMLTemplate(tmpl)
	return nil
}
