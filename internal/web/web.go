// Package web embeds the landing page, legal pages and admin templates.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/gofiber/template/html/v2"
	"github.com/palpitesia/palpites-backend/internal/phone"
)

//go:embed views
var views embed.FS

// Engine returns the view engine over the embedded templates. Pages render
// inside "layouts/main".
func Engine() *html.Engine {
	sub, err := fs.Sub(views, "views")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("mask", phone.Mask)
	engine.AddFunc("pct", Percent)
	engine.AddFunc("odd", func(v float64) string {
		return strconv.FormatFloat(v, 'f', 2, 64)
	})
	return engine
}

// Percent is part/total as a whole percentage, 0 when total is 0.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return part * 100 / total
}
