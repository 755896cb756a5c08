package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/bertomartin/ashoka-survey-web/internal/domain"
	"github.com/bertomartin/ashoka-survey-web/internal/i18n"
	"github.com/bertomartin/ashoka-survey-web/internal/model"
	"github.com/bertomartin/ashoka-survey-web/internal/service"
	"github.com/bertomartin/ashoka-survey-web/internal/session"
	"github.com/go-chi/render"
	"github.com/google/uuid"
)

// ResponseHandler serves response collection pages for a survey.
type ResponseHandler struct {
	responses *service.ResponseService
	views     *Views
	tr        *i18n.Translator
}

func NewResponseHandler(responses *service.ResponseService, views *Views, tr *i18n.Translator) *ResponseHandler {
	return &ResponseHandler{responses: responses, views: views, tr: tr}
}

type responseIndex struct {
	Survey *model.Survey
	Page   service.ResponsePage
}

type responseEdit struct {
	SurveyID uuid.UUID
	Survey   *model.Survey
	Response *model.Response
	Errors   []string
}

func (h *ResponseHandler) Index(w http.ResponseWriter, r *http.Request) {
	surveyID, err := uuidParam(r, "survey_id")
	if err != nil {
		failPage(w, r, h.tr, err)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	survey, responses, err := h.responses.List(r.Context(), currentUser(r), surveyID, page)
	if err != nil {
		failPage(w, r, h.tr, err)
		return
	}
	h.views.Render(w, r, http.StatusOK, "responses/index", "responses.title", nil, responseIndex{Survey: survey, Page: responses})
}

// Create starts a response and sends the user to fill it in.
func (h *ResponseHandler) Create(w http.ResponseWriter, r *http.Request) {
	surveyID, err := uuidParam(r, "survey_id")
	if err != nil {
		failPage(w, r, h.tr, err)
		return
	}

	response, err := h.responses.Create(r.Context(), currentUser(r), surveyID)
	if err != nil {
		failPage(w, r, h.tr, err)
		return
	}
	redirect(w, r, localePath(r, "/surveys/%s/responses/%s/edit", surveyID, response.ID),
		session.Flash{Notice: translate(h.tr, r, "flash.response_created", nil)})
}

func (h *ResponseHandler) Edit(w http.ResponseWriter, r *http.Request) {
	surveyID, id, err := responseParams(r)
	if err != nil {
		failPage(w, r, h.tr, err)
		return
	}

	survey, response, err := h.responses.Edit(r.Context(), currentUser(r), surveyID, id)
	if err != nil {
		failPage(w, r, h.tr, err)
		return
	}
	h.views.Render(w, r, http.StatusOK, "responses/edit", "responses.edit", nil,
		responseEdit{SurveyID: surveyID, Survey: survey, Response: response})
}

func (h *ResponseHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, h.responses.Update)
}

func (h *ResponseHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, h.responses.Complete)
}

func (h *ResponseHandler) save(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, user session.UserInfo, surveyID, id uuid.UUID, input service.ResponseInput) (*model.Response, error),
) {
	surveyID, id, err := responseParams(r)
	if err != nil {
		failPage(w, r, h.tr, err)
		return
	}

	input, err := bindResponse(r)
	if err != nil {
		flash := session.Flash{Error: translate(h.tr, r, "flash.response_error", nil)}
		redirect(w, r, localePath(r, "/surveys/%s/responses/%s/edit", surveyID, id), flash)
		return
	}

	response, err := fn(r.Context(), currentUser(r), surveyID, id, input)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) && response != nil {
			flash := session.Flash{Error: translate(h.tr, r, "flash.response_error", nil)}
			h.views.Render(w, r, http.StatusOK, "responses/edit", "responses.edit", &flash,
				responseEdit{SurveyID: surveyID, Survey: response.Survey, Response: response, Errors: verr.Messages})
			return
		}
		failPage(w, r, h.tr, err)
		return
	}

	redirect(w, r, localePath(r, "/surveys/%s/responses", surveyID),
		session.Flash{Notice: translate(h.tr, r, "flash.response_updated", nil)})
}

func responseParams(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	surveyID, err := uuidParam(r, "survey_id")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		return uuid.Nil, uuid.Nil, domain.ErrResponseNotFound
	}
	return surveyID, id, nil
}

// bindResponse reads answers from JSON or from the edit form, where each
// answer posts its id under answer_ids and its values under content_<id>
// and choices_<id>.
func bindResponse(r *http.Request) (service.ResponseInput, error) {
	var input service.ResponseInput
	if render.GetRequestContentType(r) == render.ContentTypeJSON {
		err := render.DecodeJSON(r.Body, &input)
		return input, err
	}

	if err := r.ParseForm(); err != nil {
		return input, err
	}
	for _, raw := range r.PostForm["answer_ids"] {
		id, err := uuid.Parse(raw)
		if err != nil {
			return input, err
		}
		input.Answers = append(input.Answers, service.AnswerInput{
			ID:      id,
			Content: r.PostForm.Get("content_" + raw),
			Choices: r.PostForm["choices_"+raw],
		})
	}
	return input, nil
}
