package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/bertomartin/ashoka-survey-web/internal/i18n"
	"github.com/bertomartin/ashoka-survey-web/internal/session"
	"github.com/go-chi/chi/v5"
)

const viewRoot = "templates/views"

// Pages rendered by the web handlers. Each is parsed together with the
// shared layout.
var pages = []string{
	"surveys/index",
	"surveys/new",
	"surveys/build",
	"surveys/share",
	"surveys/publish_to_users",
	"responses/index",
	"responses/edit",
}

// Views renders the server-side HTML pages.
type Views struct {
	templates map[string]*template.Template
	tr        *i18n.Translator
}

// Page is the data every view receives. Data holds the page specifics.
type Page struct {
	Title  string
	Locale string
	Prefix string
	User   session.UserInfo
	Flash  session.Flash
	Data   any
}

func NewViews(fsys fs.FS, tr *i18n.Translator) (*Views, error) {
	v := &Views{templates: make(map[string]*template.Template, len(pages)), tr: tr}

	funcs := template.FuncMap{
		"t": func(locale, key string, kv ...string) string {
			vars := make(map[string]string, len(kv)/2)
			for i := 0; i+1 < len(kv); i += 2 {
				vars[kv[i]] = kv[i+1]
			}
			return tr.T(locale, key, vars)
		},
		"date": func(t time.Time) string {
			return t.Format("2006-01-02")
		},
		"contains": func(ids []int64, id int64) bool {
			for _, x := range ids {
				if x == id {
					return true
				}
			}
			return false
		},
		"has": func(values []string, v string) bool {
			for _, x := range values {
				if x == v {
					return true
				}
			}
			return false
		},
		"seq": func(n int) []int {
			out := make([]int, n)
			for i := range out {
				out[i] = i + 1
			}
			return out
		},
		"join": strings.Join,
	}

	for _, page := range pages {
		t, err := template.New("layout.tmpl").Funcs(funcs).ParseFS(fsys,
			path.Join(viewRoot, "layout.tmpl"),
			path.Join(viewRoot, page+".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("parsing view %s: %w", page, err)
		}
		v.templates[page] = t
	}
	return v, nil
}

// Render writes page with status. The pending flash is consumed unless the
// caller supplies one for an inline re-render.
func (v *Views) Render(w http.ResponseWriter, r *http.Request, status int, page, titleKey string, flash *session.Flash, data any) {
	t, ok := v.templates[page]
	if !ok {
		http.Error(w, "unknown view", http.StatusInternalServerError)
		return
	}

	locale := i18n.LocaleFromContext(r.Context())
	if locale == "" {
		locale = v.tr.DefaultLocale()
	}

	p := Page{
		Title:  v.tr.T(locale, titleKey, nil),
		Locale: locale,
		User:   currentUser(r),
		Data:   data,
	}
	if l := chi.URLParam(r, "locale"); l != "" {
		p.Prefix = "/" + l
	}
	if flash != nil {
		p.Flash = *flash
	} else {
		p.Flash = session.PopFlash(w, r)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, p); err != nil {
		slog.ErrorContext(r.Context(), "failed to render view", "view", page, "error", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
