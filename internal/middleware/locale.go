package middleware

import (
	"net/http"

	"github.com/sakif/todo-api/internal/i18n"
)

// Locale picks the response language from Accept-Language and stores the
// matching translator in the request context. The chosen locale is echoed
// in Content-Language.
func Locale(bundle *i18n.Bundle) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			trans := bundle.Match(r.Header.Get("Accept-Language"))
			w.Header().Set("Content-Language", trans.Locale())
			next.ServeHTTP(w, r.WithContext(bundle.WithTranslator(r.Context(), trans)))
		})
	}
}
