// internal/repository/response.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/bertomartin/ashoka-survey-web/internal/domain"
	"github.com/bertomartin/ashoka-survey-web/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ResponseRepositoryIface interface {
	CreateDraft(ctx context.Context, response *model.Response) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Response, error)
	AddAnswers(ctx context.Context, answers []model.Answer) error
	SaveAnswers(ctx context.Context, response *model.Response) error
	ListBySurvey(ctx context.Context, surveyID uuid.UUID, userID *int64, offset, limit int) ([]model.Response, int64, error)
}

type ResponseRepository struct {
	db *gorm.DB
}

func NewResponseRepository(db *gorm.DB) *ResponseRepository {
	return &ResponseRepository{db: db}
}

// CreateDraft inserts the response and its pre-filled answers. No answer
// validation happens here; drafts may be incomplete.
func (r *ResponseRepository) CreateDraft(ctx context.Context, response *model.Response) error {
	result := r.db.WithContext(ctx).Omit("Survey", "Answers.Question").Create(response)
	if result.Error != nil {
		return fmt.Errorf("failed to create response: %w", result.Error)
	}
	return nil
}

// FindByID loads the response with its answers, each answer's question and
// the question's options and sub-questions. Answers follow question order.
func (r *ResponseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Response, error) {
	var response model.Response
	result := r.db.WithContext(ctx).
		Preload("Survey").
		Preload("Answers").
		Preload("Answers.Question").
		Preload("Answers.Question.Options", func(db *gorm.DB) *gorm.DB { return db.Order("order_number") }).
		Preload("Answers.Question.Questions", func(db *gorm.DB) *gorm.DB { return db.Order("order_number") }).
		Preload("Answers.Question.Questions.Options", func(db *gorm.DB) *gorm.DB { return db.Order("order_number") }).
		First(&response, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrResponseNotFound
		}
		return nil, fmt.Errorf("failed to find response: %w", result.Error)
	}

	sort.SliceStable(response.Answers, func(i, j int) bool {
		qi, qj := response.Answers[i].Question, response.Answers[j].Question
		if qi == nil || qj == nil {
			return false
		}
		return qi.OrderNumber < qj.OrderNumber
	})
	return &response, nil
}

// AddAnswers inserts empty answers for sub-questions of a response that
// already exists.
func (r *ResponseRepository) AddAnswers(ctx context.Context, answers []model.Answer) error {
	if len(answers) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Omit("Question", "Answers").Create(&answers)
	if result.Error != nil {
		return fmt.Errorf("failed to add answers: %w", result.Error)
	}
	return nil
}

// SaveAnswers writes answer contents and the completion flag atomically.
func (r *ResponseRepository) SaveAnswers(ctx context.Context, response *model.Response) error {
	return withTransaction(ctx, r.db, func(tx *gorm.DB) error {
		now := time.Now().UTC()
		for _, a := range response.Answers {
			result := tx.Model(&model.Answer{}).
				Where("id = ? AND response_id = ?", a.ID, response.ID).
				Updates(map[string]interface{}{
					"content":    a.Content,
					"choices":    a.Choices,
					"updated_at": now,
				})
			if result.Error != nil {
				return fmt.Errorf("failed to save answer: %w", result.Error)
			}
		}

		result := tx.Model(&model.Response{}).
			Where("id = ?", response.ID).
			Updates(map[string]interface{}{
				"completed":  response.Completed,
				"updated_at": now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to save response: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.ErrResponseNotFound
		}
		return nil
	})
}

// ListBySurvey pages through a survey's responses, newest first. A non-nil
// userID restricts the page to that user's responses.
func (r *ResponseRepository) ListBySurvey(ctx context.Context, surveyID uuid.UUID, userID *int64, offset, limit int) ([]model.Response, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Response{}).Where("survey_id = ?", surveyID)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count responses: %w", err)
	}

	var responses []model.Response
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&responses).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list responses: %w", err)
	}
	return responses, count, nil
}
