package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bertomartin/ashoka-survey-web/internal/domain"
	"github.com/bertomartin/ashoka-survey-web/internal/i18n"
	"github.com/bertomartin/ashoka-survey-web/internal/session"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type ErrorResponse struct {
	BaseResponse
	Error   string    `json:"error,omitempty"`
	Details *[]string `json:"details,omitempty"`
}

type BaseResponse struct {
	Ok bool `json:"ok"`
}

// ValidationErrorResponse is the body of a rejected question write.
type ValidationErrorResponse struct {
	Errors []string `json:"errors"`
}

// respondWithError sends an error response with a message
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

// respondWithJSON sends a JSON response
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	// Sets content type header
	w.Header().Set("Content-Type", "application/json")

	// Sets the HTTP status code
	w.WriteHeader(code)

	// Encodes the response
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// If encoding fails, logs the error and sends a plain text response
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// currentUser returns the session user. Routes are mounted behind the
// session middleware, so a missing user is a wiring error.
func currentUser(r *http.Request) session.UserInfo {
	u, _ := session.UserFromContext(r.Context())
	return u
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", name, domain.ErrNotFound)
	}
	return id, nil
}

// localePath prefixes p with the locale segment of the current request, if
// the request carried one.
func localePath(r *http.Request, format string, args ...any) string {
	p := fmt.Sprintf(format, args...)
	if l := chi.URLParam(r, "locale"); l != "" {
		return "/" + l + p
	}
	return p
}

// redirect sends a 303 to path, leaving flash for the next page.
func redirect(w http.ResponseWriter, r *http.Request, path string, flash session.Flash) {
	if !flash.Empty() {
		session.SetFlash(w, flash)
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// translate looks key up in the request locale.
func translate(tr *i18n.Translator, r *http.Request, key string, vars map[string]string) string {
	return tr.T(i18n.LocaleFromContext(r.Context()), key, vars)
}

// failPage maps a service error on an HTML route to a redirect back to the
// survey list with an explanatory flash.
func failPage(w http.ResponseWriter, r *http.Request, tr *i18n.Translator, err error) {
	var unpublished *domain.UnpublishedSurveyError
	key := ""
	var vars map[string]string

	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		key = "flash.not_authorized"
	case errors.As(err, &unpublished):
		key = "flash.reponse_to_unpublished_survey"
		vars = map[string]string{"survey_name": unpublished.SurveyName}
	case errors.Is(err, domain.ErrSurveyNotFound), errors.Is(err, domain.ErrNotFound):
		key = "flash.survey_not_found"
	case errors.Is(err, domain.ErrResponseNotFound):
		key = "flash.response_not_found"
	default:
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err, "requestID", chimw.GetReqID(r.Context()))
		key = "flash.something_went_wrong"
	}

	redirect(w, r, localePath(r, "/surveys"), session.Flash{Error: translate(tr, r, key, vars)})
}
