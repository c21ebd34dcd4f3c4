// ABOUTME: Template loading and rendering for the admin UI.
// ABOUTME: Embeds HTML templates; each page is parsed with its own copy of the layout.

package admin

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/2389/provadmin/internal/i18n"
	"github.com/2389/provadmin/internal/provider"
)

//go:embed templates/*
var templateFS embed.FS

var (
	layoutTmpl *template.Template
	pageTmpls  map[string]*template.Template
)

// partialPaths are shared fragments parsed into every page.
var partialPaths = []string{
	"templates/partials/alerts.html",
	"templates/partials/provider_row.html",
	"templates/partials/modal.html",
}

// pageDefinitions maps page names to their template files
func getPageDefinitions() map[string]string {
	return map[string]string{
		"login":       "templates/login.html",
		"restaurants": "templates/restaurants.html",
		"detail":      "templates/detail.html",
		"logs-list":   "templates/logs.html",
	}
}

var templateFuncs = template.FuncMap{
	"fieldError": func(errs map[string]string, field string) string {
		return errs[field]
	},
	"row": func(d detailData, p provider.Provider) rowData {
		return rowData{T: d.T, BasePath: d.BasePath, Confirm: d.T(i18n.MsgDeleteConfirm), Provider: p}
	},
}

// rowData is the context of one provider-row partial.
type rowData struct {
	T        func(string) string
	BasePath string
	Confirm  string
	Provider provider.Provider
}

// parsePageTemplates creates a map of page templates, each with layout and partials
func parsePageTemplates() map[string]*template.Template {
	templates := make(map[string]*template.Template)

	for name, path := range getPageDefinitions() {
		tmpl := template.Must(layoutTmpl.Clone())
		tmpl = template.Must(tmpl.ParseFS(templateFS, path))
		tmpl = template.Must(tmpl.ParseFS(templateFS, partialPaths...))
		templates[name] = tmpl
	}

	return templates
}

func init() {
	layoutTmpl = template.Must(template.New("layout").Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html"))
	pageTmpls = parsePageTemplates()
}

func renderPage(w io.Writer, page string, data any) error {
	tmpl, ok := pageTmpls[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}
