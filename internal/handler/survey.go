package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/bertomartin/ashoka-survey-web/internal/domain"
	"github.com/bertomartin/ashoka-survey-web/internal/i18n"
	"github.com/bertomartin/ashoka-survey-web/internal/model"
	"github.com/bertomartin/ashoka-survey-web/internal/service"
	"github.com/bertomartin/ashoka-survey-web/internal/session"
	"github.com/go-chi/render"
	"github.com/google/uuid"
)

// SurveyHandler serves the survey authoring pages.
type SurveyHandler struct {
	surveys *service.SurveyService
	views   *Views
	tr      *i18n.Translator
}

func NewSurveyHandler(surveys *service.SurveyService, views *Views, tr *i18n.Translator) *SurveyHandler {
	return &SurveyHandler{surveys: surveys, views: views, tr: tr}
}

type surveyIndex struct {
	Surveys []model.Survey
	Filter  string
}

type surveyForm struct {
	Input service.SurveyInput
}

type surveyShare struct {
	Survey        *model.Survey
	Organizations []model.Organization
}

type surveyRecipients struct {
	Survey *model.Survey
	Users  []model.User
}

// Index lists surveys. Admins may pass ?published=true|false.
func (h *SurveyHandler) Index(w http.ResponseWriter, r *http.Request) {
	var published *bool
	filter := r.URL.Query().Get("published")
	if b, err := strconv.ParseBool(filter); err == nil {
		published = &b
	} else {
		filter = ""
	}

	surveys, err := h.surveys.List(r.Context(), currentUser(r), published)
	if err != nil {
		failPage(w, r, h.tr, err)
		return
	}
	h.views.Render(w, r, http.StatusOK, "surveys/index", "surveys.title", nil, surveyIndex{Surveys: surveys, Filter: filter})
}

func (h *SurveyHandler) New(w http.ResponseWriter, r *http.Request) {
	if _, err := h.surveys.New(r.Context(), currentUser(r)); err != nil {
		failPage(w, r, h.tr, err)
		return
	}
	h.views.Render(w, r, http.StatusOK, "surveys/new", "surveys.new", nil, surveyForm{})
}

// Create saves a new survey and opens it for building. A rejected form is
// shown again with the messages inline.
func (h *SurveyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.SurveyInput
	if render.GetRequestContentType(r) == render.ContentTypeJSON {
		if err := render.DecodeJSON(r.Body, &input); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}
	} else {
		input = service.SurveyInput{
			Name:        r.PostFormValue("name"),
			Description: r.PostFormValue("description"),
			ExpiryDate:  r.PostFormValue("expiry_date"),
		}
	}

	survey, err := h.surveys.Create(r.Context(), currentUser(r), input)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			flash := session.Flash{Error: strings.Join(verr.Messages, ", ")}
			h.views.Render(w, r, http.StatusOK, "surveys/new", "surveys.new", &flash, surveyForm{Input: input})
			return
		}
		failPage(w, r, h.tr, err)
		return
	}

	redirect(w, r, localePath(r, "/surveys/%s/build", survey.ID), session.Flash{Notice: translate(h.tr, r, "flash.survey_created", nil)})
}

func (h *SurveyHandler) Build(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "survey_id")
	if err != nil {
		failPage(w, r, h.tr, err)
		return
	}

	survey, err := h.surveys.Build(r.Context(), currentUser(r), id)
	if err != nil {
		failPage(w, r, h.tr, err)
		return
	}
	h.views.Render(w, r, http.StatusOK, "surveys/build", "surveys.build", nil, survey)
}

func (h *SurveyHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.surveys.Finalize, "flash.survey_finalized")
}

func (h *SurveyHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.surveys.Publish, "flash.survey_published")
}

func (h *SurveyHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.surveys.Unpublish, "flash.survey_unpublished")
}

func (h *SurveyHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "survey_id")
	if err != nil {
		failPage(w, r, h.tr, err)
		return
	}

	if err := h.surveys.Destroy(r.Context(), currentUser(r), id); err != nil {
		failPage(w, r, h.tr, err)
		return
	}
	redirect(w, r, localePath(r, "/surveys"), session.Flash{Notice: translate(h.tr, r, "flash.survey_deleted", nil)})
}

// Share shows the organizations the survey can be shared with.
func (h *SurveyHandler) Share(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "survey_id")
	if err != nil {
		failPage(w, r, h.tr, err)
		return
	}

	survey, orgs, err := h.surveys.Share(r.Context(), currentUser(r), id)
	if err != nil {
		failPage(w, r, h.tr, err)
		return
	}
	h.views.Render(w, r, http.StatusOK, "surveys/share", "surveys.share", nil, surveyShare{Survey: survey, Organizations: orgs})
}

func (h *SurveyHandler) UpdateShare(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "survey_id")
	if err != nil {
		failPage(w, r, h.tr, err)
		return
	}

	orgIDs, err := formIDs(r, "participating_organization_ids")
	if err != nil {
		redirect(w, r, localePath(r, "/surveys/%s/share", id), session.Flash{Error: translate(h.tr, r, "flash.invalid_organizations", nil)})
		return
	}

	if _, err := h.surveys.UpdateShare(r.Context(), currentUser(r), id, orgIDs); err != nil {
		if errors.Is(err, domain.ErrInvalidOrganizations) {
			redirect(w, r, localePath(r, "/surveys/%s/share", id), session.Flash{Error: translate(h.tr, r, "flash.invalid_organizations", nil)})
			return
		}
		failPage(w, r, h.tr, err)
		return
	}
	redirect(w, r, localePath(r, "/surveys"), session.Flash{Notice: translate(h.tr, r, "flash.survey_shared", nil)})
}

// PublishToUsersForm shows the users a survey can be published to.
func (h *SurveyHandler) PublishToUsersForm(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "survey_id")
	if err != nil {
		failPage(w, r, h.tr, err)
		return
	}

	survey, users, err := h.surveys.PublishableUsers(r.Context(), currentUser(r), id)
	if err != nil {
		failPage(w, r, h.tr, err)
		return
	}
	h.views.Render(w, r, http.StatusOK, "surveys/publish_to_users", "surveys.publish_to_users", nil, surveyRecipients{Survey: survey, Users: users})
}

func (h *SurveyHandler) PublishToUsers(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "survey_id")
	if err != nil {
		failPage(w, r, h.tr, err)
		return
	}
	back := localePath(r, "/surveys/%s/publish_to_users", id)

	userIDs, err := formIDs(r, "user_ids")
	if err != nil {
		redirect(w, r, back, session.Flash{Error: translate(h.tr, r, "flash.invalid_recipients", nil)})
		return
	}

	input := service.PublishInput{
		UserIDs: userIDs,
		Subject: func(s *model.Survey) string {
			return translate(h.tr, r, "emails.survey_published.subject", map[string]string{"survey_name": s.Name})
		},
	}
	if _, err := h.surveys.PublishToUsers(r.Context(), currentUser(r), id, input); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRecipients):
			redirect(w, r, back, session.Flash{Error: translate(h.tr, r, "flash.invalid_recipients", nil)})
			return
		case errors.Is(err, domain.ErrSurveyUnpublished):
			redirect(w, r, back, session.Flash{Error: translate(h.tr, r, "flash.survey_not_published", nil)})
			return
		}
		failPage(w, r, h.tr, err)
		return
	}
	redirect(w, r, localePath(r, "/surveys"), session.Flash{Notice: translate(h.tr, r, "flash.survey_published_to_users", nil)})
}

func (h *SurveyHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, user session.UserInfo, id uuid.UUID) (*model.Survey, error),
	noticeKey string,
) {
	id, err := uuidParam(r, "survey_id")
	if err != nil {
		failPage(w, r, h.tr, err)
		return
	}

	if _, err := fn(r.Context(), currentUser(r), id); err != nil {
		failPage(w, r, h.tr, err)
		return
	}
	redirect(w, r, localePath(r, "/surveys"), session.Flash{Notice: translate(h.tr, r, noticeKey, nil)})
}

// formIDs reads a repeated integer form field. Blank values are skipped.
func formIDs(r *http.Request, field string) ([]int64, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}

	values := r.PostForm[field]
	if len(values) == 0 {
		values = r.PostForm[field+"[]"]
	}

	ids := make([]int64, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
