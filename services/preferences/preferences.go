package preferences

import (
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

// Theme is the colour scheme of the site.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Locale is one of the languages the site is translated into.
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleFrench  Locale = "fr"
	LocaleArabic  Locale = "ar"
)

// Text directions.
const (
	DirLTR = "ltr"
	DirRTL = "rtl"
)

// Preferences is the display configuration a page is rendered with.
// Dir is derived from Locale and never set on its own.
type Preferences struct {
	Theme  Theme  `json:"theme"`
	Locale Locale `json:"locale"`
	Dir    string `json:"dir"`
}

// New returns preferences for theme and locale with the matching direction.
func New(theme Theme, locale Locale) Preferences {
	return Preferences{Theme: theme, Locale: locale, Dir: locale.Dir()}
}

// Default is light and English.
func Default() Preferences {
	return New(ThemeLight, LocaleEnglish)
}

// ParseTheme accepts light or dark, case-insensitively.
func ParseTheme(s string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case ThemeLight, ThemeDark:
		return t, nil
	}
	return "", fmt.Errorf("unknown theme %q", s)
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// ParseLocale accepts en, fr or ar, case-insensitively.
func ParseLocale(s string) (Locale, error) {
	switch l := Locale(strings.ToLower(strings.TrimSpace(s))); l {
	case LocaleEnglish, LocaleFrench, LocaleArabic:
		return l, nil
	}
	return "", fmt.Errorf("unknown locale %q", s)
}

// Dir reports the text direction of l.
func (l Locale) Dir() string {
	if l == LocaleArabic {
		return DirRTL
	}
	return DirLTR
}

// supported is ordered so that index 0 is the fallback locale.
var supported = []Locale{LocaleEnglish, LocaleFrench, LocaleArabic}

var matcher = language.NewMatcher([]language.Tag{
	language.English,
	language.French,
	language.Arabic,
})

// NegotiateLocale picks the supported locale that best matches an
// Accept-Language header. English wins when nothing matches.
func NegotiateLocale(acceptLanguage string) Locale {
	if strings.TrimSpace(acceptLanguage) == "" {
		return LocaleEnglish
	}
	_, idx := language.MatchStrings(matcher, acceptLanguage)
	if idx < 0 || idx >= len(supported) {
		return LocaleEnglish
	}
	return supported[idx]
}

// Client hint headers consulted when no preference has been stored.
const (
	HeaderColorScheme = "Sec-CH-Prefers-Color-Scheme"
	HeaderLanguage    = "Accept-Language"
)

// LangParam overrides the locale for a single request, e.g. /?lang=ar.
const LangParam = "lang"

// Resolve works out the preferences for r. For each setting the first
// source that yields a valid value wins: the lang query parameter (locale
// only), the stored cookie, then the client hint header. Anything left
// falls back to Default.
func Resolve(r *http.Request, store *CookieStore) Preferences {
	p := Default()
	stored := store.Load(r)

	switch {
	case stored.Theme != "":
		p.Theme = stored.Theme
	default:
		if t, err := ParseTheme(strings.Trim(r.Header.Get(HeaderColorScheme), `"`)); err == nil {
			p.Theme = t
		}
	}

	if l, err := ParseLocale(r.URL.Query().Get(LangParam)); err == nil {
		p.Locale = l
	} else if stored.Locale != "" {
		p.Locale = stored.Locale
	} else {
		p.Locale = NegotiateLocale(r.Header.Get(HeaderLanguage))
	}

	p.Dir = p.Locale.Dir()
	return p
}
