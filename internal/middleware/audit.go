package middleware

import (
	"net/http"

	"github.com/bertomartin/ashoka-survey-web/internal/audit"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// AuditRequestMeta copies the request id, client address and user agent
// into the context so audit entries can carry them.
func AuditRequestMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		meta := audit.RequestMeta{
			RequestID: chimw.GetReqID(r.Context()),
			ClientIP:  r.RemoteAddr,
			UserAgent: r.UserAgent(),
		}
		next.ServeHTTP(w, r.WithContext(audit.WithRequestMeta(r.Context(), meta)))
	})
}
