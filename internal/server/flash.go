package server

import (
	"encoding/base64"
	"net/http"
	"strconv"

	"github.com/valyala/fastjson"
)

// Flash is a one-shot notice shown on the next rendered page.
type Flash struct {
	Message  string
	Category string
}

const flashCookie = "flash"

// setFlash queues a notice for the next request in a short-lived cookie.
// The payload is a tiny JSON document, base64-wrapped to stay cookie-safe.
func setFlash(w http.ResponseWriter, message, category string) {
	payload := `{"message":` + strconv.Quote(message) + `,"category":` + strconv.Quote(category) + `}`
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.URLEncoding.EncodeToString([]byte(payload)),
		Path:     "/",
		HttpOnly: true,
	})
}

// popFlash reads and clears the queued notice, if any. Anything unparseable is
// dropped silently; a broken flash cookie must never break a page.
func popFlash(w http.ResponseWriter, r *http.Request) *Flash {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	raw, err := base64.URLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	if fastjson.ValidateBytes(raw) != nil {
		return nil
	}

	message := fastjson.GetString(raw, "message")
	if message == "" {
		return nil
	}

	return &Flash{
		Message:  message,
		Category: fastjson.GetString(raw, "category"),
	}
}
