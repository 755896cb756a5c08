package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/bertomartin/ashoka-survey-web/internal/audit"
	"github.com/bertomartin/ashoka-survey-web/internal/auth"
	"github.com/bertomartin/ashoka-survey-web/internal/i18n"
	"github.com/bertomartin/ashoka-survey-web/internal/model"
	"github.com/bertomartin/ashoka-survey-web/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionAuth(t *testing.T) {
	tm := auth.NewTokenManager("secret", time.Hour)
	user := session.UserInfo{UserID: 7, Role: model.RoleCSOAdmin, OrgID: 3, AccessToken: "oauth"}
	token, err := tm.Generate(user)
	require.NoError(t, err)

	var seen session.UserInfo
	loads := 0
	loader := func(ctx context.Context, sessionID, accessToken string) ([]model.Organization, error) {
		loads++
		assert.NotEmpty(t, sessionID)
		assert.Equal(t, "oauth", accessToken)
		return []model.Organization{{ID: 3, Name: "Own"}}, nil
	}
	h := SessionAuth(tm, "session", loader)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = session.UserFromContext(r.Context())
	}))

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/surveys", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: token})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(7), seen.UserID)
		assert.Equal(t, []model.Organization{{ID: 3, Name: "Own"}}, seen.Organizations)
		assert.Equal(t, 1, loads)
	})

	t.Run("bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/questions", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/surveys", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("tampered", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/surveys", nil)
		req.Header.Set("Authorization", "Bearer "+token+"x")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("organization lookup failure is not fatal", func(t *testing.T) {
		failing := SessionAuth(tm, "session", func(ctx context.Context, sessionID, accessToken string) ([]model.Organization, error) {
			return nil, errors.New("directory down")
		})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		req := httptest.NewRequest(http.MethodGet, "/surveys", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: token})
		rec := httptest.NewRecorder()
		failing.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequirePermission(t *testing.T) {
	h := RequirePermission(auth.PermissionViewAuditLogs)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for role, want := range map[model.UserRole]int{
		model.RoleCSOAdmin:   http.StatusOK,
		model.RoleFieldAgent: http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/audit_logs", nil)
		req = req.WithContext(session.WithUser(req.Context(), session.UserInfo{Role: role}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, role)
	}
}

func TestMethodOverride(t *testing.T) {
	var method string
	h := MethodOverride(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { method = r.Method }))

	form := url.Values{"_method": {"delete"}}
	req := httptest.NewRequest(http.MethodPost, "/surveys/1", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, http.MethodDelete, method)

	form = url.Values{"_method": {"GET"}}
	req = httptest.NewRequest(http.MethodPost, "/surveys", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, http.MethodPost, method)
}

func TestLocale(t *testing.T) {
	tr, err := i18n.Load(fstest.MapFS{
		"locales/en.yml": {Data: []byte("en:\n  hello: Hello\n")},
		"locales/fr.yml": {Data: []byte("fr:\n  hello: Bonjour\n")},
	}, "locales", "en")
	require.NoError(t, err)

	var locale string
	r := chi.NewRouter()
	handler := func(w http.ResponseWriter, r *http.Request) { locale = i18n.LocaleFromContext(r.Context()) }
	r.With(Locale(tr)).Get("/surveys", handler)
	r.With(Locale(tr)).Get("/{locale:en|fr}/surveys", handler)

	for path, want := range map[string]string{"/surveys": "en", "/fr/surveys": "fr", "/en/surveys": "en"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, want, locale, path)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/abc/surveys", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuditRequestMeta(t *testing.T) {
	var meta audit.RequestMeta
	h := AuditRequestMeta(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		meta = audit.RequestMetaFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("User-Agent", "tester")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "tester", meta.UserAgent)
	assert.Equal(t, "192.0.2.1:1234", meta.ClientIP)
}
