package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/shindakun/csmarket/internal/models"
)

// pageNames lists the templates under pages/ that are rendered inside the base layout
var pageNames = []string{"auth", "prices", "404", "500"}

// TemplateData holds common data passed to templates
type TemplateData struct {
	Auth       *models.AuthPageData
	Skins      *models.SkinPage
	LatestSync *models.PriceSync
	Query      string
	Message    string
	Version    string
	CSRFField  template.HTML // hidden csrf input for POST forms
}

var moscow = func() *time.Location {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		return time.FixedZone("MSK", 3*60*60)
	}
	return loc
}()

// templateFuncs returns custom template functions
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"inc": func(i int) int {
			return i + 1
		},
		"dec": func(i int) int {
			return i - 1
		},
		"price": formatPrice,
		"count": func(n int) string {
			return humanize.FormatInteger("# ###,", n)
		},
		"datetime": func(t time.Time) string {
			if t.IsZero() {
				return "—"
			}
			return t.In(moscow).Format("02.01.2006 15:04")
		},
		"syncStatus": func(s models.PriceSyncStatus) string {
			switch s {
			case models.PriceSyncStatusPending:
				return "в очереди"
			case models.PriceSyncStatusRunning:
				return "выполняется"
			case models.PriceSyncStatusCompleted:
				return "успешно"
			case models.PriceSyncStatusFailed:
				return "ошибка"
			}
			return string(s)
		},
	}
}

// formatPrice renders a nullable price with Russian digit grouping
func formatPrice(v *float64) string {
	if v == nil {
		return "—"
	}
	return humanize.FormatFloat("# ###,##", *v)
}

// parseTemplates builds one template set per page, each combined with the base layout
func parseTemplates(fsys fs.FS) (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))

	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(templateFuncs()).ParseFS(fsys,
			"layouts/base.html",
			"pages/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}

	return pages, nil
}

// renderTemplate renders a page with the base layout.
// Output is buffered so a failing template never leaves a half-written page.
func (h *Handlers) renderTemplate(w http.ResponseWriter, status int, templateName string, data TemplateData) error {
	tmpl, ok := h.pages[templateName]
	if !ok {
		return fmt.Errorf("unknown template %q", templateName)
	}

	data.Version = h.version

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
