// internal/service/response.go
package service

import (
	"context"
	"fmt"

	"github.com/bertomartin/ashoka-survey-web/internal/auth"
	"github.com/bertomartin/ashoka-survey-web/internal/domain"
	"github.com/bertomartin/ashoka-survey-web/internal/model"
	"github.com/bertomartin/ashoka-survey-web/internal/repository"
	"github.com/bertomartin/ashoka-survey-web/internal/session"
	"github.com/google/uuid"
)

// ResponsesPerPage is the page size of the response listing.
const ResponsesPerPage = 10

type ResponseService struct {
	repo    repository.ResponseRepositoryIface
	surveys repository.SurveyRepositoryIface
}

func NewResponseService(repo repository.ResponseRepositoryIface, surveys repository.SurveyRepositoryIface) *ResponseService {
	return &ResponseService{repo: repo, surveys: surveys}
}

type AnswerInput struct {
	ID      uuid.UUID `json:"id"`
	Content string    `json:"content"`
	Choices []string  `json:"choices"`
}

type ResponseInput struct {
	Answers []AnswerInput `json:"answers"`
}

type ResponsePage struct {
	Responses []model.Response
	Page      int
	PerPage   int
	Total     int64
}

func (p ResponsePage) TotalPages() int {
	if p.PerPage <= 0 {
		return 0
	}
	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}

func (p ResponsePage) HasNext() bool { return p.Page < p.TotalPages() }
func (p ResponsePage) HasPrev() bool { return p.Page > 1 }
func (p ResponsePage) NextPage() int { return p.Page + 1 }
func (p ResponsePage) PrevPage() int { return p.Page - 1 }

// List pages through a published survey's responses. Only admins see
// responses other than their own.
func (s *ResponseService) List(ctx context.Context, user session.UserInfo, surveyID uuid.UUID, page int) (*model.Survey, ResponsePage, error) {
	survey, err := s.publishedSurvey(ctx, surveyID, s.surveys.FindByID)
	if err != nil {
		return nil, ResponsePage{}, err
	}

	if page < 1 {
		page = 1
	}
	var userID *int64
	if !auth.Can(user, auth.PermissionViewAllResponses) {
		id := user.UserID
		userID = &id
	}

	responses, total, err := s.repo.ListBySurvey(ctx, surveyID, userID, (page-1)*ResponsesPerPage, ResponsesPerPage)
	if err != nil {
		return nil, ResponsePage{}, fmt.Errorf("listing responses: %w", err)
	}

	return survey, ResponsePage{Responses: responses, Page: page, PerPage: ResponsesPerPage, Total: total}, nil
}

// Create starts a response with one empty answer per first-level question.
// The draft is stored without answer validation.
func (s *ResponseService) Create(ctx context.Context, user session.UserInfo, surveyID uuid.UUID) (*model.Response, error) {
	survey, err := s.publishedSurvey(ctx, surveyID, s.surveys.FindWithQuestions)
	if err != nil {
		return nil, err
	}

	response := &model.Response{
		SurveyID:       survey.ID,
		UserID:         user.UserID,
		OrganizationID: user.OrgID,
	}
	for _, q := range survey.FirstLevelQuestions() {
		response.Answers = append(response.Answers, model.NewAnswer(q.ID))
	}

	if err := s.repo.CreateDraft(ctx, response); err != nil {
		return nil, fmt.Errorf("creating response: %w", err)
	}
	return response, nil
}

// Edit loads a response narrowed to its first-level answers, each carrying
// its sub-answers. Sub-answers missing for a multi-record question are
// created empty first.
func (s *ResponseService) Edit(ctx context.Context, user session.UserInfo, surveyID, id uuid.UUID) (*model.Survey, *model.Response, error) {
	survey, err := s.publishedSurvey(ctx, surveyID, s.surveys.FindByID)
	if err != nil {
		return nil, nil, err
	}

	response, err := s.load(ctx, user, surveyID, id)
	if err != nil {
		return nil, nil, err
	}
	if err := s.addSubAnswers(ctx, response); err != nil {
		return nil, nil, err
	}
	response.Answers = response.FirstLevelAnswers()
	return survey, response, nil
}

// Update saves submitted answers, keeping the completion state. On a
// validation failure the response is returned with the submitted values
// alongside a *domain.ValidationError.
func (s *ResponseService) Update(ctx context.Context, user session.UserInfo, surveyID, id uuid.UUID, input ResponseInput) (*model.Response, error) {
	return s.save(ctx, user, surveyID, id, input, false)
}

// Complete marks the response complete and saves it with full validation,
// sub-answers included. On failure the flag is reverted and no answer
// content is written.
func (s *ResponseService) Complete(ctx context.Context, user session.UserInfo, surveyID, id uuid.UUID, input ResponseInput) (*model.Response, error) {
	return s.save(ctx, user, surveyID, id, input, true)
}

func (s *ResponseService) save(ctx context.Context, user session.UserInfo, surveyID, id uuid.UUID, input ResponseInput, complete bool) (*model.Response, error) {
	if _, err := s.publishedSurvey(ctx, surveyID, s.surveys.FindByID); err != nil {
		return nil, err
	}

	response, err := s.load(ctx, user, surveyID, id)
	if err != nil {
		return nil, err
	}
	if err := s.addSubAnswers(ctx, response); err != nil {
		return nil, err
	}

	if err := applyAnswers(response, input); err != nil {
		return nil, err
	}
	if complete {
		response.MarkComplete()
	}

	if messages := response.Validate(); len(messages) > 0 {
		if complete {
			response.MarkIncomplete()
		}
		response.Answers = response.FirstLevelAnswers()
		return response, domain.NewValidationError(messages...)
	}

	if err := s.repo.SaveAnswers(ctx, response); err != nil {
		return nil, fmt.Errorf("saving response: %w", err)
	}
	return response, nil
}

// addSubAnswers stores an empty answer for every sub-question of a
// multi-record answer that has none, and adds them to the response.
func (s *ResponseService) addSubAnswers(ctx context.Context, response *model.Response) error {
	missing := response.MissingSubAnswers()
	if len(missing) == 0 {
		return nil
	}
	if err := s.repo.AddAnswers(ctx, missing); err != nil {
		return fmt.Errorf("adding sub-question answers: %w", err)
	}
	response.Answers = append(response.Answers, missing...)
	return nil
}

func (s *ResponseService) load(ctx context.Context, user session.UserInfo, surveyID, id uuid.UUID) (*model.Response, error) {
	response, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if response.SurveyID != surveyID {
		return nil, domain.ErrResponseNotFound
	}
	if response.UserID != user.UserID && !auth.Can(user, auth.PermissionViewAllResponses) {
		return nil, fmt.Errorf("response %s belongs to another user: %w", id, domain.ErrUnauthorized)
	}
	return response, nil
}

// publishedSurvey refuses every response action on an unpublished survey
// before anything is written.
func (s *ResponseService) publishedSurvey(
	ctx context.Context,
	surveyID uuid.UUID,
	find func(context.Context, uuid.UUID) (*model.Survey, error),
) (*model.Survey, error) {
	survey, err := find(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if !survey.Published {
		return nil, &domain.UnpublishedSurveyError{SurveyName: survey.Name}
	}
	return survey, nil
}

func applyAnswers(response *model.Response, input ResponseInput) error {
	byID := make(map[uuid.UUID]AnswerInput, len(input.Answers))
	for _, a := range input.Answers {
		byID[a.ID] = a
	}

	for i := range response.Answers {
		in, ok := byID[response.Answers[i].ID]
		if !ok {
			continue
		}
		response.Answers[i].Content = in.Content
		if err := response.Answers[i].SetChoices(in.Choices); err != nil {
			return err
		}
	}
	return nil
}
