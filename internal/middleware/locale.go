package middleware

import (
	"net/http"

	"github.com/bertomartin/ashoka-survey-web/internal/i18n"
	"github.com/go-chi/chi/v5"
)

// Locale reads the {locale} route parameter, falling back to the
// translator's default, and stores it in the request context.
func Locale(tr *i18n.Translator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := chi.URLParam(r, "locale")
			if locale == "" || !tr.Supported(locale) {
				locale = tr.DefaultLocale()
			}
			next.ServeHTTP(w, r.WithContext(i18n.WithLocale(r.Context(), locale)))
		})
	}
}
