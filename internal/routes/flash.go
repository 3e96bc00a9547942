package routes

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

const flashCookie = "polls_messages"

type FlashLevel string

const (
	FlashInfo    FlashLevel = "info"
	FlashSuccess FlashLevel = "success"
	FlashError   FlashLevel = "error"
)

type Flash struct {
	Level FlashLevel `json:"l"`
	Text  string     `json:"t"`
}

// readFlashes decodes the pending messages. A malformed cookie reads as empty.
func readFlashes(r *http.Request) []Flash {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(raw, &flashes); err != nil {
		return nil
	}
	return flashes
}

// addFlash queues a message for the next rendered page, usually the target
// of a redirect.
func (routes *Routes) addFlash(w http.ResponseWriter, r *http.Request, level FlashLevel, text string) {
	flashes := append(readFlashes(r), Flash{Level: level, Text: text})
	raw, _ := json.Marshal(flashes)
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		HttpOnly: true,
		Secure:   routes.envConfig.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlashes returns the pending messages and clears them.
func (routes *Routes) popFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	flashes := readFlashes(r)
	if _, err := r.Cookie(flashCookie); err == nil {
		http.SetCookie(w, &http.Cookie{
			Name:     flashCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   routes.envConfig.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return flashes
}
