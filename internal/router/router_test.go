package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	surveyweb "github.com/bertomartin/ashoka-survey-web"
	"github.com/bertomartin/ashoka-survey-web/internal/auth"
	"github.com/bertomartin/ashoka-survey-web/internal/domain"
	"github.com/bertomartin/ashoka-survey-web/internal/handler"
	"github.com/bertomartin/ashoka-survey-web/internal/i18n"
	"github.com/bertomartin/ashoka-survey-web/internal/mocks"
	"github.com/bertomartin/ashoka-survey-web/internal/model"
	"github.com/bertomartin/ashoka-survey-web/internal/repository"
	"github.com/bertomartin/ashoka-survey-web/internal/router"
	"github.com/bertomartin/ashoka-survey-web/internal/service"
	"github.com/bertomartin/ashoka-survey-web/internal/session"
	"github.com/bertomartin/ashoka-survey-web/internal/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const webhookSecret = "directory-webhook-secret"

var (
	admin = session.UserInfo{
		UserID:        1,
		Name:          "Admin",
		Role:          model.RoleCSOAdmin,
		OrgID:         12,
		Organizations: []model.Organization{{ID: 12, Name: "nid"}, {ID: 123, Name: "foo"}},
		AccessToken:   "token",
	}
	agent = session.UserInfo{UserID: 2, Name: "Agent", Role: model.RoleFieldAgent, OrgID: 12, AccessToken: "token"}
)

type memoryAuditRepo struct {
	logs []model.AuditLog
}

func (m *memoryAuditRepo) Create(ctx context.Context, log *model.AuditLog) error {
	log.ID = uuid.New()
	m.logs = append(m.logs, *log)
	return nil
}

func (m *memoryAuditRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.AuditLog, error) {
	for i := range m.logs {
		if m.logs[i].ID == id {
			return &m.logs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memoryAuditRepo) Query(ctx context.Context, params repository.QueryParams) ([]model.AuditLog, int64, error) {
	var out []model.AuditLog
	for _, l := range m.logs {
		if params.Action == "" || l.Action == params.Action {
			out = append(out, l)
		}
	}
	return out, int64(len(out)), nil
}

type recordingPurger struct {
	ids []int64
}

func (p *recordingPurger) PurgeOrganizations(ctx context.Context, ids []int64) (int, error) {
	p.ids = append(p.ids, ids...)
	return len(ids) * 2, nil
}

type harness struct {
	surveys   *mocks.MockSurveyRepositoryIface
	questions *mocks.MockQuestionRepositoryIface
	responses *mocks.MockResponseRepositoryIface
	directory *mocks.MockDirectoryIface
	audit     *memoryAuditRepo
	purger    *recordingPurger
	tokens    *auth.TokenManager
	handler   http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)

	h := &harness{
		surveys:   mocks.NewMockSurveyRepositoryIface(ctrl),
		questions: mocks.NewMockQuestionRepositoryIface(ctrl),
		responses: mocks.NewMockResponseRepositoryIface(ctrl),
		directory: mocks.NewMockDirectoryIface(ctrl),
		audit:     &memoryAuditRepo{},
		purger:    &recordingPurger{},
		tokens:    auth.NewTokenManager("test-secret", time.Hour),
	}

	tr, err := i18n.Load(surveyweb.LocaleFS, "locales", "en")
	require.NoError(t, err)
	views, err := handler.NewViews(surveyweb.ViewFS, tr)
	require.NoError(t, err)

	hasher := auth.NewSecretHasher()
	secretHash, err := hasher.Hash(webhookSecret)
	require.NoError(t, err)

	auditService := service.NewAuditLogService(h.audit)
	images := storage.NewImageStore(t.TempDir(), "/uploads")

	h.handler = router.New(router.Deps{
		Tokens:     h.tokens,
		CookieName: "session",
		Translator: tr,
		Surveys: handler.NewSurveyHandler(
			service.NewSurveyService(h.surveys, h.directory, auditService, nil), views, tr),
		Responses: handler.NewResponseHandler(
			service.NewResponseService(h.responses, h.surveys), views, tr),
		Questions: handler.NewQuestionHandler(
			service.NewQuestionService(h.questions, h.surveys, images, auditService)),
		AuditLogs:            handler.NewAuditLogHandler(auditService),
		DeletedOrganizations: handler.NewDeletedOrganizationsHandler(h.purger, hasher, secretHash),
	})
	return h
}

func (h *harness) do(t *testing.T, user *session.UserInfo, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	if user != nil {
		token, err := h.tokens.Generate(*user)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: "session", Value: token})
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func form(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func flashOf(t *testing.T, rec *httptest.ResponseRecorder) session.Flash {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return session.PopFlash(httptest.NewRecorder(), req)
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, nil, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestLocaleRouting(t *testing.T) {
	h := newHarness(t)
	h.surveys.EXPECT().List(gomock.Any(), gomock.Any()).Return([]model.Survey{{ID: uuid.New(), Name: "Health"}}, nil).Times(3)

	rec := h.do(t, &admin, httptest.NewRequest(http.MethodGet, "/surveys", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Surveys")

	rec = h.do(t, &admin, httptest.NewRequest(http.MethodGet, "/en/surveys", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="/en/surveys/new"`)

	rec = h.do(t, &admin, httptest.NewRequest(http.MethodGet, "/fr/surveys", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Enquêtes")

	rec = h.do(t, &admin, httptest.NewRequest(http.MethodGet, "/abc/surveys", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPagesRequireSession(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, nil, httptest.NewRequest(http.MethodGet, "/surveys", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSurveyCreate(t *testing.T) {
	expiry := time.Now().AddDate(1, 0, 0).Format("2006-01-02")

	t.Run("redirects to build", func(t *testing.T) {
		h := newHarness(t)
		id := uuid.New()
		h.surveys.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, s *model.Survey) error {
			assert.Equal(t, "Health", s.Name)
			assert.Equal(t, int64(12), s.OwnerOrgID)
			s.ID = id
			return nil
		})

		rec := h.do(t, &admin, form(http.MethodPost, "/fr/surveys", url.Values{
			"name":        {"Health"},
			"expiry_date": {expiry},
		}))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/fr/surveys/"+id.String()+"/build", rec.Header().Get("Location"))
		assert.NotEmpty(t, flashOf(t, rec).Notice)
		require.Len(t, h.audit.logs, 1)
		assert.Equal(t, model.ActionSurveyCreate, h.audit.logs[0].Action)
	})

	t.Run("re-renders the form on validation failure", func(t *testing.T) {
		h := newHarness(t)
		rec := h.do(t, &admin, form(http.MethodPost, "/surveys", url.Values{"expiry_date": {expiry}}))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Name can&#39;t be blank")
		assert.Contains(t, rec.Body.String(), expiry)
	})

	t.Run("non-admins are sent back to the list", func(t *testing.T) {
		h := newHarness(t)
		rec := h.do(t, &agent, httptest.NewRequest(http.MethodGet, "/surveys/new", nil))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/surveys", rec.Header().Get("Location"))
		assert.Equal(t, "You are not authorized to do that.", flashOf(t, rec).Error)
		require.Len(t, h.audit.logs, 1)
		assert.Equal(t, model.ActionAccessDenied, h.audit.logs[0].Action)
	})
}

func TestSurveyDestroyThroughMethodOverride(t *testing.T) {
	h := newHarness(t)
	id := uuid.New()
	h.surveys.EXPECT().Delete(gomock.Any(), id).Return(nil)

	rec := h.do(t, &admin, form(http.MethodPost, "/surveys/"+id.String(), url.Values{"_method": {"DELETE"}}))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/surveys", rec.Header().Get("Location"))
}

func TestSurveyShare(t *testing.T) {
	id := uuid.New()

	t.Run("lists organizations other than the owner", func(t *testing.T) {
		h := newHarness(t)
		h.surveys.EXPECT().FindByID(gomock.Any(), id).Return(&model.Survey{ID: id, Name: "Health", OwnerOrgID: 12}, nil)

		rec := h.do(t, &admin, httptest.NewRequest(http.MethodGet, "/surveys/"+id.String()+"/share", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "foo")
		assert.NotContains(t, rec.Body.String(), `value="12"`)
	})

	t.Run("rejects unknown organizations", func(t *testing.T) {
		h := newHarness(t)
		h.surveys.EXPECT().FindByID(gomock.Any(), id).Return(&model.Survey{ID: id, OwnerOrgID: 12}, nil)
		h.directory.EXPECT().Exists(gomock.Any(), "token", []int64{999}).Return(false, nil)

		rec := h.do(t, &admin, form(http.MethodPost, "/surveys/"+id.String()+"/share", url.Values{
			"_method":                        {"PUT"},
			"participating_organization_ids": {"999"},
		}))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/surveys/"+id.String()+"/share", rec.Header().Get("Location"))
		assert.Equal(t, "Some of the selected organizations do not exist.", flashOf(t, rec).Error)
	})
}

func TestResponsesOfUnpublishedSurvey(t *testing.T) {
	h := newHarness(t)
	id := uuid.New()
	h.surveys.EXPECT().FindByID(gomock.Any(), id).Return(&model.Survey{ID: id, Name: "Health"}, nil)

	rec := h.do(t, &agent, httptest.NewRequest(http.MethodGet, "/surveys/"+id.String()+"/responses", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/surveys", rec.Header().Get("Location"))
	assert.Equal(t, "You can not respond to the unpublished survey: Health", flashOf(t, rec).Error)
}

func TestResponseLifecycle(t *testing.T) {
	surveyID := uuid.New()
	question := &model.Question{ID: uuid.New(), SurveyID: surveyID, Type: model.KindSingleLine, Content: "Name", Mandatory: true}
	published := &model.Survey{ID: surveyID, Name: "Health", Published: true, Questions: []model.Question{*question}}

	t.Run("create opens the edit page", func(t *testing.T) {
		h := newHarness(t)
		responseID := uuid.New()
		h.surveys.EXPECT().FindWithQuestions(gomock.Any(), surveyID).Return(published, nil)
		h.responses.EXPECT().CreateDraft(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, r *model.Response) error {
			require.Len(t, r.Answers, 1)
			assert.Equal(t, question.ID, r.Answers[0].QuestionID)
			r.ID = responseID
			return nil
		})

		rec := h.do(t, &agent, httptest.NewRequest(http.MethodPost, "/surveys/"+surveyID.String()+"/responses", nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/surveys/"+surveyID.String()+"/responses/"+responseID.String()+"/edit", rec.Header().Get("Location"))
	})

	t.Run("completing with a blank mandatory answer re-renders", func(t *testing.T) {
		h := newHarness(t)
		answerID := uuid.New()
		response := &model.Response{
			ID:       uuid.New(),
			SurveyID: surveyID,
			UserID:   agent.UserID,
			Survey:   published,
			Answers:  []model.Answer{{ID: answerID, QuestionID: question.ID, Question: question}},
		}
		h.surveys.EXPECT().FindByID(gomock.Any(), surveyID).Return(published, nil)
		h.responses.EXPECT().FindByID(gomock.Any(), response.ID).Return(response, nil)

		values := url.Values{"_method": {"PUT"}, "answer_ids": {answerID.String()}}
		values.Set("content_"+answerID.String(), "")
		target := "/surveys/" + surveyID.String() + "/responses/" + response.ID.String() + "/complete"
		rec := h.do(t, &agent, form(http.MethodPost, target, values))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Name can&#39;t be blank")
		assert.False(t, response.Completed)
	})

	t.Run("edit shows sub-questions under their multi-record question", func(t *testing.T) {
		h := newHarness(t)
		multiID := uuid.New()
		child := model.Question{ID: uuid.New(), SurveyID: surveyID, Content: "Child name", ParentQuestionID: &multiID}
		multi := &model.Question{ID: multiID, SurveyID: surveyID, Type: model.KindMultiRecord, Content: "Children", Questions: []model.Question{child}}

		parentAnswer := uuid.New()
		childAnswer := uuid.New()
		response := &model.Response{
			ID:       uuid.New(),
			SurveyID: surveyID,
			UserID:   agent.UserID,
			Answers: []model.Answer{
				{ID: parentAnswer, QuestionID: multiID, Question: multi},
				{ID: childAnswer, QuestionID: child.ID, ParentAnswerID: &parentAnswer, Question: &child},
			},
		}
		h.surveys.EXPECT().FindByID(gomock.Any(), surveyID).Return(published, nil)
		h.responses.EXPECT().FindByID(gomock.Any(), response.ID).Return(response, nil)

		target := "/surveys/" + surveyID.String() + "/responses/" + response.ID.String() + "/edit"
		rec := h.do(t, &agent, httptest.NewRequest(http.MethodGet, target, nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Children")
		assert.Contains(t, body, "Child name")
		assert.Contains(t, body, `name="content_`+childAnswer.String()+`"`)
		assert.Contains(t, body, `value="`+childAnswer.String()+`"`)
		assert.NotContains(t, body, `value="`+parentAnswer.String()+`"`)
	})

	t.Run("update saves and returns to the list", func(t *testing.T) {
		h := newHarness(t)
		answerID := uuid.New()
		response := &model.Response{
			ID:       uuid.New(),
			SurveyID: surveyID,
			UserID:   agent.UserID,
			Answers:  []model.Answer{{ID: answerID, QuestionID: question.ID, Question: question}},
		}
		h.surveys.EXPECT().FindByID(gomock.Any(), surveyID).Return(published, nil)
		h.responses.EXPECT().FindByID(gomock.Any(), response.ID).Return(response, nil)
		h.responses.EXPECT().SaveAnswers(gomock.Any(), response).Return(nil)

		values := url.Values{"_method": {"PUT"}, "answer_ids": {answerID.String()}}
		values.Set("content_"+answerID.String(), "Asha")
		target := "/fr/surveys/" + surveyID.String() + "/responses/" + response.ID.String()
		rec := h.do(t, &agent, form(http.MethodPost, target, values))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/fr/surveys/"+surveyID.String()+"/responses", rec.Header().Get("Location"))
		assert.Equal(t, "Asha", response.Answers[0].Content)
	})
}

func TestQuestionAPI(t *testing.T) {
	surveyID := uuid.New()

	t.Run("create returns the question", func(t *testing.T) {
		h := newHarness(t)
		h.surveys.EXPECT().FindByID(gomock.Any(), surveyID).Return(&model.Survey{ID: surveyID}, nil)
		h.questions.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		body := `{"question":{"type":"RadioQuestion","content":"Colour","survey_id":"` + surveyID.String() + `","options":[{"content":"Red"},{"content":"Blue"}]}}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/questions", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := h.do(t, &admin, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "RadioQuestion", got["type"])
		assert.Equal(t, "Colour", got["content"])
	})

	t.Run("validation errors are a 400", func(t *testing.T) {
		h := newHarness(t)
		h.surveys.EXPECT().FindByID(gomock.Any(), surveyID).Return(&model.Survey{ID: surveyID, Finalized: true}, nil)

		body := `{"type":"SingleLineQuestion","content":"Name","survey_id":"` + surveyID.String() + `"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/questions", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := h.do(t, &admin, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Survey is finalized and can no longer be edited")
	})

	t.Run("destroying an unknown question is a 400", func(t *testing.T) {
		h := newHarness(t)
		id := uuid.New()
		h.questions.EXPECT().Delete(gomock.Any(), id).Return(domain.ErrQuestionNotFound)

		rec := h.do(t, &admin, httptest.NewRequest(http.MethodDelete, "/api/v1/questions/"+id.String(), nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("non-admins are refused", func(t *testing.T) {
		h := newHarness(t)
		rec := h.do(t, &agent, httptest.NewRequest(http.MethodDelete, "/api/v1/questions/"+uuid.NewString(), nil))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("image upload returns the thumbnail url", func(t *testing.T) {
		h := newHarness(t)
		id := uuid.New()
		h.questions.EXPECT().FindByID(gomock.Any(), id).Return(&model.Question{ID: id, SurveyID: surveyID}, nil)
		h.questions.EXPECT().UpdateImageURL(gomock.Any(), id, gomock.Any()).Return(nil)

		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("image", "cat.png")
		require.NoError(t, err)
		img := image.NewRGBA(image.Rect(0, 0, 200, 100))
		img.Set(1, 1, color.RGBA{R: 255, A: 255})
		require.NoError(t, png.Encode(part, img))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/questions/"+id.String()+"/image_upload", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := h.do(t, &admin, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got handler.ImageUploadResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.True(t, strings.HasPrefix(got.ImageURL, "/uploads/thumb/"), got.ImageURL)
	})

	t.Run("image upload of an undecodable format is a validation error", func(t *testing.T) {
		h := newHarness(t)
		id := uuid.New()
		h.questions.EXPECT().FindByID(gomock.Any(), id).Return(&model.Question{ID: id, SurveyID: surveyID}, nil)

		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("image", "cat.webp")
		require.NoError(t, err)
		_, err = part.Write([]byte("RIFF\x24\x00\x00\x00WEBPVP8 \x18\x00\x00\x00"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/questions/"+id.String()+"/image_upload", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := h.do(t, &admin, req)

		require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		var got handler.ValidationErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, []string{"Image must be a JPEG, PNG, GIF or BMP picture of at most 10 MB"}, got.Errors)
	})
}

func TestAuditLogsRequireAdmin(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.audit.Create(context.Background(), &model.AuditLog{Action: model.ActionSurveyPublish}))

	rec := h.do(t, &agent, httptest.NewRequest(http.MethodGet, "/api/v1/audit_logs", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(t, &admin, httptest.NewRequest(http.MethodGet, "/api/v1/audit_logs?action=survey_publish", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list handler.AuditLogList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, int64(1), list.Total)

	rec = h.do(t, &admin, httptest.NewRequest(http.MethodGet, "/api/v1/audit_logs/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeletedOrganizationsWebhook(t *testing.T) {
	h := newHarness(t)
	send := func(secret string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/deleted_organizations", strings.NewReader(`{"organization_ids":[4,5]}`))
		req.Header.Set("Content-Type", "application/json")
		if secret != "" {
			req.Header.Set("X-Webhook-Secret", secret)
		}
		return h.do(t, nil, req)
	}

	assert.Equal(t, http.StatusUnauthorized, send("").Code)
	assert.Equal(t, http.StatusUnauthorized, send("wrong").Code)
	assert.Empty(t, h.purger.ids)

	rec := send(webhookSecret)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"surveys_deleted":4}`, rec.Body.String())
	assert.Equal(t, []int64{4, 5}, h.purger.ids)
}
