package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"studyrooms/internal/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

func parseTemplates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

// templateData is the single payload shape every page template receives.
// User is the authenticated caller (nil when anonymous), Form holds submitted
// values for re-rendering, Errors the field-level validation messages.
type templateData struct {
	Title   string
	User    *storage.User
	Flash   *Flash
	Form    map[string]string
	Errors  fieldErrors
	Listing *storage.RoomPage
	Room    *storage.Room
	Owner   *storage.User
	Profile *storage.User
	Next    string
}

// render executes the named page template into a buffer first, so a template
// error still produces a clean 500 instead of a half-written page.
func (h *handler) render(w http.ResponseWriter, name string, data *templateData) {
	if data == nil {
		data = &templateData{}
	}

	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Errorf("rendering %s: %v", name, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}
