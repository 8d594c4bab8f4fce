// Package web holds the storefront's HTML templates.
package web

import (
	"embed"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var files embed.FS

// Funcs returns the helpers available to every template
func Funcs(loc *time.Location) template.FuncMap {
	if loc == nil {
		loc = time.UTC
	}
	return template.FuncMap{
		"money": func(d decimal.Decimal) string {
			return d.StringFixed(2)
		},
		"pickupTime": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.In(loc).Format("2006-01-02 15:04")
		},
	}
}

// Templates parses every page and partial, showing times in loc
func Templates(loc *time.Location) *template.Template {
	return template.Must(template.New("").Funcs(Funcs(loc)).ParseFS(files, "templates/*.html"))
}
