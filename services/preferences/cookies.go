package preferences

import (
	"net/http"
	"time"
)

// Cookie names holding the persisted choices.
const (
	ThemeCookie  = "theme"
	LocaleCookie = "locale"
)

// CookieStore persists preferences in first-party cookies. Invalid cookie
// values are ignored on load.
type CookieStore struct {
	MaxAge time.Duration
	Secure bool
}

// NewCookieStore keeps choices for a year.
func NewCookieStore(secure bool) *CookieStore {
	return &CookieStore{MaxAge: 365 * 24 * time.Hour, Secure: secure}
}

// Load returns whatever valid settings r carries. Missing or invalid
// settings are left empty.
func (s *CookieStore) Load(r *http.Request) Preferences {
	var p Preferences
	if c, err := r.Cookie(ThemeCookie); err == nil {
		if t, err := ParseTheme(c.Value); err == nil {
			p.Theme = t
		}
	}
	if c, err := r.Cookie(LocaleCookie); err == nil {
		if l, err := ParseLocale(c.Value); err == nil {
			p.Locale = l
			p.Dir = l.Dir()
		}
	}
	return p
}

// Save writes both settings of p to w.
func (s *CookieStore) Save(w http.ResponseWriter, p Preferences) {
	http.SetCookie(w, s.cookie(ThemeCookie, string(p.Theme)))
	http.SetCookie(w, s.cookie(LocaleCookie, string(p.Locale)))
}

func (s *CookieStore) cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(s.MaxAge.Seconds()),
		Secure:   s.Secure,
		HttpOnly: false, // the front-end reads these before first paint
		SameSite: http.SameSiteLaxMode,
	}
}
