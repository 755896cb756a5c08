// internal/service/question.go
package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bertomartin/ashoka-survey-web/internal/audit"
	"github.com/bertomartin/ashoka-survey-web/internal/auth"
	"github.com/bertomartin/ashoka-survey-web/internal/domain"
	"github.com/bertomartin/ashoka-survey-web/internal/model"
	"github.com/bertomartin/ashoka-survey-web/internal/repository"
	"github.com/bertomartin/ashoka-survey-web/internal/session"
	"github.com/bertomartin/ashoka-survey-web/internal/storage"
	"github.com/google/uuid"
)

// ImageStore keeps question images and their derived renditions.
type ImageStore interface {
	SaveOriginal(ctx context.Context, folder, filename string, data []byte) (string, error)
	Thumbnail(ctx context.Context, key string) (string, error)
}

type QuestionService struct {
	repo    repository.QuestionRepositoryIface
	surveys repository.SurveyRepositoryIface
	images  ImageStore
	audit   audit.Logger
}

func NewQuestionService(
	repo repository.QuestionRepositoryIface,
	surveys repository.SurveyRepositoryIface,
	images ImageStore,
	auditLogger audit.Logger,
) *QuestionService {
	if auditLogger == nil {
		auditLogger = &audit.NoOpLogger{}
	}
	return &QuestionService{
		repo:    repo,
		surveys: surveys,
		images:  images,
		audit:   auditLogger,
	}
}

type OptionInput struct {
	Content     string `json:"content"`
	OrderNumber int    `json:"order_number"`
}

// QuestionInput is the flat attribute set accepted by create and update.
// Nil fields are left untouched on update.
type QuestionInput struct {
	Type             string         `json:"type"`
	Content          *string        `json:"content"`
	SurveyID         *uuid.UUID     `json:"survey_id"`
	ParentQuestionID *uuid.UUID     `json:"parent_question_id"`
	CategoryID       *uuid.UUID     `json:"category_id"`
	OrderNumber      *int           `json:"order_number"`
	Mandatory        *bool          `json:"mandatory"`
	MaxLength        *int           `json:"max_length"`
	MinValue         *int           `json:"min_value"`
	MaxValue         *int           `json:"max_value"`
	Options          *[]OptionInput `json:"options"`
}

func (s *QuestionService) Create(ctx context.Context, user session.UserInfo, input QuestionInput) (*model.Question, error) {
	if err := s.authorize(ctx, user, ""); err != nil {
		return nil, err
	}

	kind, err := model.ParseQuestionKind(input.Type)
	if err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("Type %s is not a valid question type", input.Type))
	}
	if input.SurveyID == nil {
		return nil, domain.NewValidationError("Survey can't be blank")
	}

	question := &model.Question{Type: kind, SurveyID: *input.SurveyID}
	apply(question, input)

	if err := s.check(ctx, question); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, question); err != nil {
		return nil, fmt.Errorf("creating question: %w", err)
	}
	return question, nil
}

func (s *QuestionService) Update(ctx context.Context, user session.UserInfo, id uuid.UUID, input QuestionInput) (*model.Question, error) {
	if err := s.authorize(ctx, user, id.String()); err != nil {
		return nil, err
	}

	question, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Type != "" && model.QuestionKind(input.Type) != question.Kind() {
		return nil, domain.NewValidationError("Type can't be changed")
	}
	if input.SurveyID != nil && *input.SurveyID != question.SurveyID {
		return nil, domain.NewValidationError("Survey can't be changed")
	}

	apply(question, input)

	if err := s.check(ctx, question); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, question); err != nil {
		return nil, fmt.Errorf("updating question: %w", err)
	}
	return question, nil
}

// Destroy removes a question. A missing id surfaces as
// domain.ErrQuestionNotFound.
func (s *QuestionService) Destroy(ctx context.Context, user session.UserInfo, id uuid.UUID) error {
	if err := s.authorize(ctx, user, id.String()); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// UploadImage stores the original upload, then derives the thumbnail and
// records its URL on the question. The original is not removed when the
// derivation fails.
func (s *QuestionService) UploadImage(ctx context.Context, user session.UserInfo, id uuid.UUID, filename string, r io.Reader) (string, error) {
	if err := s.authorize(ctx, user, id.String()); err != nil {
		return "", err
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return "", err
	}

	data, err := io.ReadAll(io.LimitReader(r, storage.MaxUploadSize+1))
	if err != nil {
		return "", fmt.Errorf("reading upload: %w", err)
	}

	key, err := s.images.SaveOriginal(ctx, "questions/"+id.String(), filename, data)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return "", domain.NewValidationError("Image must be a JPEG, PNG, GIF or BMP picture of at most 10 MB")
		}
		return "", fmt.Errorf("saving image: %w", err)
	}

	url, err := s.images.Thumbnail(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return "", domain.NewValidationError("Image could not be read")
		}
		return "", fmt.Errorf("generating thumbnail: %w", err)
	}

	if err := s.repo.UpdateImageURL(ctx, id, url); err != nil {
		return "", err
	}
	return url, nil
}

// check validates the question against its survey and parent.
func (s *QuestionService) check(ctx context.Context, question *model.Question) error {
	survey, err := s.surveys.FindByID(ctx, question.SurveyID)
	if err != nil {
		if errors.Is(err, domain.ErrSurveyNotFound) {
			return domain.NewValidationError("Survey does not exist")
		}
		return err
	}

	messages := question.Validate()
	if survey.Finalized {
		messages = append(messages, "Survey is finalized and can no longer be edited")
	}

	if question.ParentQuestionID != nil {
		if *question.ParentQuestionID == question.ID {
			messages = append(messages, "Parent question can't be the question itself")
		} else {
			parent, err := s.repo.FindByID(ctx, *question.ParentQuestionID)
			switch {
			case errors.Is(err, domain.ErrQuestionNotFound):
				messages = append(messages, "Parent question does not exist")
			case err != nil:
				return err
			case !parent.Kind().AllowsChildren():
				messages = append(messages, "Parent question must be a multi-record question")
			case parent.SurveyID != question.SurveyID:
				messages = append(messages, "Parent question belongs to another survey")
			}
		}
	}

	if len(messages) > 0 {
		return domain.NewValidationError(messages...)
	}
	return nil
}

func (s *QuestionService) authorize(ctx context.Context, user session.UserInfo, questionID string) error {
	err := auth.Authorize(user, auth.PermissionEditQuestions)
	if err == nil {
		return nil
	}

	entity := model.Entity{Type: model.EntityQuestion, ID: questionID}
	record(ctx, s.audit.LogAccessDenied(ctx, actorOf(user), string(auth.PermissionEditQuestions), entity), model.ActionAccessDenied)
	return err
}

func apply(q *model.Question, input QuestionInput) {
	if input.Content != nil {
		q.Content = *input.Content
	}
	if input.ParentQuestionID != nil {
		q.ParentQuestionID = input.ParentQuestionID
	}
	if input.CategoryID != nil {
		q.CategoryID = input.CategoryID
	}
	if input.OrderNumber != nil {
		q.OrderNumber = *input.OrderNumber
	}
	if input.Mandatory != nil {
		q.Mandatory = *input.Mandatory
	}
	if input.MaxLength != nil {
		q.MaxLength = input.MaxLength
	}
	if input.MinValue != nil {
		q.MinValue = input.MinValue
	}
	if input.MaxValue != nil {
		q.MaxValue = input.MaxValue
	}
	if input.Options != nil {
		q.Options = make([]model.Option, 0, len(*input.Options))
		for i, o := range *input.Options {
			order := o.OrderNumber
			if order == 0 {
				order = i + 1
			}
			q.Options = append(q.Options, model.Option{Content: o.Content, OrderNumber: order})
		}
	}
}
