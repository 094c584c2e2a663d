package server

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const sessionCookie = "session"

// maxUploadBytes caps profile picture uploads.
const maxUploadBytes = 2 << 20

type handler struct {
	logger    *zap.SugaredLogger
	users     UserDirectory
	sessions  SessionManager
	rooms     RoomStore
	templates *template.Template
}

func (h *handler) serverError(w http.ResponseWriter, err error) {
	h.logger.Error(err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *handler) forbidden(w http.ResponseWriter) {
	http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
}

// pathID extracts the numeric id following prefix in an URL path.
func pathID(path, prefix string) (int64, bool) {
	s := strings.TrimPrefix(path, prefix)
	if s == "" || strings.Contains(s, "/") {
		return 0, false
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// pathName extracts the trailing path segment following prefix.
func pathName(path, prefix string) (string, bool) {
	s := strings.TrimPrefix(path, prefix)
	if s == "" || strings.Contains(s, "/") {
		return "", false
	}
	return s, true
}

// queryPage reads the 1-indexed "page" parameter, defaulting to the first page.
func queryPage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
