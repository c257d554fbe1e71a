package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
	"github.com/boddenberg/sparkhub-bfa/internal/i18n"
)

// ============================================================
// Translations
// ============================================================

type dictionaryResponse struct {
	Locale   domain.Locale     `json:"locale"`
	Messages map[string]string `json:"messages"`
}

type translationResponse struct {
	Locale domain.Locale `json:"locale"`
	Key    string        `json:"key"`
	Value  string        `json:"value"`
	Found  bool          `json:"found"`
}

// resolveLocale reads {locale}; "auto" negotiates from Accept-Language.
func resolveLocale(c *i18n.Catalog, r *http.Request) (domain.Locale, bool) {
	raw := chi.URLParam(r, "locale")
	if raw == "auto" {
		return c.Negotiate(r.Header.Get("Accept-Language")), true
	}
	if !c.IsSupported(raw) {
		return "", false
	}
	return domain.ParseLocale(raw), true
}

func dictionaryHandler(c *i18n.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locale, ok := resolveLocale(c, r)
		if !ok {
			writeError(w, http.StatusNotFound, "unsupported locale: "+chi.URLParam(r, "locale"))
			return
		}
		w.Header().Set("Content-Language", string(locale))
		writeJSON(w, http.StatusOK, dictionaryResponse{Locale: locale, Messages: c.Dictionary(locale)})
	}
}

// translateHandler always answers 200: unknown keys fall back to English
// and then to the key itself.
func translateHandler(c *i18n.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locale, ok := resolveLocale(c, r)
		if !ok {
			writeError(w, http.StatusNotFound, "unsupported locale: "+chi.URLParam(r, "locale"))
			return
		}
		key := chi.URLParam(r, "key")
		value, found := c.Lookup(locale, key)
		w.Header().Set("Content-Language", string(locale))
		writeJSON(w, http.StatusOK, translationResponse{Locale: locale, Key: key, Value: value, Found: found})
	}
}
