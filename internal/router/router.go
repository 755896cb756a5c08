// Package router assembles the HTTP routes of the survey web application.
package router

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bertomartin/ashoka-survey-web/internal/auth"
	"github.com/bertomartin/ashoka-survey-web/internal/handler"
	"github.com/bertomartin/ashoka-survey-web/internal/i18n"
	"github.com/bertomartin/ashoka-survey-web/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// LocalePattern matches the optional leading locale segment.
const LocalePattern = "/{locale:^(en|fr)$}"

type Deps struct {
	Logger            *slog.Logger
	Tokens            *auth.TokenManager
	CookieName        string
	LoadOrganizations middleware.OrganizationLoader
	Translator        *i18n.Translator

	Surveys              *handler.SurveyHandler
	Responses            *handler.ResponseHandler
	Questions            *handler.QuestionHandler
	AuditLogs            *handler.AuditLogHandler
	DeletedOrganizations *handler.DeletedOrganizationsHandler

	// UploadDir is served below UploadPath when both are set.
	UploadDir  string
	UploadPath string
}

func New(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.AuditRequestMeta)
	r.Use(middleware.MethodOverride)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	if d.UploadDir != "" && strings.HasPrefix(d.UploadPath, "/") {
		prefix := strings.TrimSuffix(d.UploadPath, "/")
		r.Handle(prefix+"/*", http.StripPrefix(prefix, http.FileServer(http.Dir(d.UploadDir))))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"https://*", "http://*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-Webhook-Secret"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: true,
			MaxAge:           300,
		}))

		// Directory webhook, authenticated by its shared secret
		r.With(chimw.AllowContentType("application/json")).
			Post("/deleted_organizations", d.DeletedOrganizations.Receive)

		r.Group(func(r chi.Router) {
			r.Use(middleware.SessionAuth(d.Tokens, d.CookieName, d.LoadOrganizations))

			r.Route("/questions", func(r chi.Router) {
				r.With(chimw.AllowContentType("application/json")).Post("/", d.Questions.Create)
				r.With(chimw.AllowContentType("application/json")).Put("/{id}", d.Questions.Update)
				r.Delete("/{id}", d.Questions.Destroy)
				r.Post("/{id}/image_upload", d.Questions.ImageUpload)
			})

			r.Route("/audit_logs", func(r chi.Router) {
				r.Use(middleware.RequirePermission(auth.PermissionViewAuditLogs))
				r.Get("/", d.AuditLogs.GetAuditLogs)
				r.Get("/{id}", d.AuditLogs.GetAuditLogByID)
			})
		})
	})

	pages := func(r chi.Router) {
		r.Use(middleware.SessionAuth(d.Tokens, d.CookieName, d.LoadOrganizations))
		r.Use(middleware.Locale(d.Translator))

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, strings.TrimSuffix(r.URL.Path, "/")+"/surveys", http.StatusFound)
		})

		r.Route("/surveys", func(r chi.Router) {
			r.Get("/", d.Surveys.Index)
			r.Get("/new", d.Surveys.New)
			r.Post("/", d.Surveys.Create)
			r.Delete("/{survey_id}", d.Surveys.Destroy)
			r.Get("/{survey_id}/build", d.Surveys.Build)
			r.Put("/{survey_id}/finalize", d.Surveys.Finalize)
			r.Put("/{survey_id}/publish", d.Surveys.Publish)
			r.Put("/{survey_id}/unpublish", d.Surveys.Unpublish)
			r.Get("/{survey_id}/share", d.Surveys.Share)
			r.Put("/{survey_id}/share", d.Surveys.UpdateShare)
			r.Get("/{survey_id}/publish_to_users", d.Surveys.PublishToUsersForm)
			r.Put("/{survey_id}/publish_to_users", d.Surveys.PublishToUsers)

			r.Get("/{survey_id}/responses", d.Responses.Index)
			r.Post("/{survey_id}/responses", d.Responses.Create)
			r.Get("/{survey_id}/responses/{id}/edit", d.Responses.Edit)
			r.Put("/{survey_id}/responses/{id}", d.Responses.Update)
			r.Put("/{survey_id}/responses/{id}/complete", d.Responses.Complete)
		})
	}

	r.Group(pages)
	r.Route(LocalePattern, pages)

	return r
}
