// internal/repository/survey.go
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/bertomartin/ashoka-survey-web/internal/domain"
	"github.com/bertomartin/ashoka-survey-web/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SurveyFilter narrows a survey listing. Nil fields do not filter.
type SurveyFilter struct {
	Published  *bool
	OwnerOrgID *int64
}

type SurveyRepositoryIface interface {
	Create(ctx context.Context, survey *model.Survey) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Survey, error)
	FindWithQuestions(ctx context.Context, id uuid.UUID) (*model.Survey, error)
	List(ctx context.Context, filter SurveyFilter) ([]model.Survey, error)
	Update(ctx context.Context, survey *model.Survey) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByOrganization(ctx context.Context, orgID int64) (int, error)
	AddSurveyUsers(ctx context.Context, surveyID uuid.UUID, userIDs []int64) error
}

type SurveyRepository struct {
	db *gorm.DB
}

func NewSurveyRepository(db *gorm.DB) *SurveyRepository {
	return &SurveyRepository{db: db}
}

func (r *SurveyRepository) Create(ctx context.Context, survey *model.Survey) error {
	result := r.db.WithContext(ctx).Omit(clause.Associations).Create(survey)
	if result.Error != nil {
		return fmt.Errorf("failed to create survey: %w", result.Error)
	}
	return nil
}

func (r *SurveyRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Survey, error) {
	var survey model.Survey
	result := r.db.WithContext(ctx).First(&survey, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to find survey: %w", result.Error)
	}
	return &survey, nil
}

// FindWithQuestions loads the survey with its categories, questions,
// options and sub-questions, each in display order.
func (r *SurveyRepository) FindWithQuestions(ctx context.Context, id uuid.UUID) (*model.Survey, error) {
	byOrder := func(db *gorm.DB) *gorm.DB { return db.Order("order_number") }

	var survey model.Survey
	result := r.db.WithContext(ctx).
		Preload("Categories", byOrder).
		Preload("Questions", byOrder).
		Preload("Questions.Options", byOrder).
		Preload("Questions.Questions", byOrder).
		Preload("Questions.Questions.Options", byOrder).
		First(&survey, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to find survey: %w", result.Error)
	}
	return &survey, nil
}

func (r *SurveyRepository) List(ctx context.Context, filter SurveyFilter) ([]model.Survey, error) {
	query := r.db.WithContext(ctx).Model(&model.Survey{})
	if filter.Published != nil {
		query = query.Where("published = ?", *filter.Published)
	}
	if filter.OwnerOrgID != nil {
		query = query.Where("owner_org_id = ?", *filter.OwnerOrgID)
	}

	var surveys []model.Survey
	if err := query.Order("created_at DESC").Find(&surveys).Error; err != nil {
		return nil, fmt.Errorf("failed to list surveys: %w", err)
	}
	return surveys, nil
}

// Update saves the survey's own columns. Questions and categories are
// managed through the question repository.
func (r *SurveyRepository) Update(ctx context.Context, survey *model.Survey) error {
	result := r.db.WithContext(ctx).Omit(clause.Associations).Save(survey)
	if result.Error != nil {
		return fmt.Errorf("failed to update survey: %w", result.Error)
	}
	return nil
}

// Delete removes the survey and everything it owns.
func (r *SurveyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return withTransaction(ctx, r.db, func(tx *gorm.DB) error {
		deleted, err := deleteSurveys(tx, []uuid.UUID{id})
		if err != nil {
			return err
		}
		if deleted == 0 {
			return domain.ErrSurveyNotFound
		}
		return nil
	})
}

// DeleteByOrganization removes every survey owned by orgID in one
// transaction and returns how many were removed.
func (r *SurveyRepository) DeleteByOrganization(ctx context.Context, orgID int64) (int, error) {
	var deleted int64
	err := withTransaction(ctx, r.db, func(tx *gorm.DB) error {
		var ids []uuid.UUID
		if err := tx.Model(&model.Survey{}).Where("owner_org_id = ?", orgID).Pluck("id", &ids).Error; err != nil {
			return fmt.Errorf("failed to find organization surveys: %w", err)
		}

		n, err := deleteSurveys(tx, ids)
		if err != nil {
			return err
		}
		deleted = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(deleted), nil
}

func (r *SurveyRepository) AddSurveyUsers(ctx context.Context, surveyID uuid.UUID, userIDs []int64) error {
	if len(userIDs) == 0 {
		return nil
	}

	rows := make([]model.SurveyUser, 0, len(userIDs))
	for _, id := range userIDs {
		rows = append(rows, model.SurveyUser{SurveyID: surveyID, UserID: id})
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
	if result.Error != nil {
		return fmt.Errorf("failed to add survey users: %w", result.Error)
	}
	return nil
}

// deleteSurveys removes the surveys and their dependents, children first.
func deleteSurveys(tx *gorm.DB, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	responses := tx.Model(&model.Response{}).Select("id").Where("survey_id IN ?", ids)
	if err := tx.Where("response_id IN (?)", responses).Delete(&model.Answer{}).Error; err != nil {
		return 0, fmt.Errorf("failed to delete answers: %w", err)
	}
	if err := tx.Where("survey_id IN ?", ids).Delete(&model.Response{}).Error; err != nil {
		return 0, fmt.Errorf("failed to delete responses: %w", err)
	}

	questions := tx.Model(&model.Question{}).Select("id").Where("survey_id IN ?", ids)
	if err := tx.Where("question_id IN (?)", questions).Delete(&model.Option{}).Error; err != nil {
		return 0, fmt.Errorf("failed to delete options: %w", err)
	}
	if err := tx.Where("survey_id IN ? AND parent_question_id IS NOT NULL", ids).Delete(&model.Question{}).Error; err != nil {
		return 0, fmt.Errorf("failed to delete sub-questions: %w", err)
	}
	if err := tx.Where("survey_id IN ?", ids).Delete(&model.Question{}).Error; err != nil {
		return 0, fmt.Errorf("failed to delete questions: %w", err)
	}
	if err := tx.Where("survey_id IN ?", ids).Delete(&model.Category{}).Error; err != nil {
		return 0, fmt.Errorf("failed to delete categories: %w", err)
	}
	if err := tx.Where("survey_id IN ?", ids).Delete(&model.SurveyUser{}).Error; err != nil {
		return 0, fmt.Errorf("failed to delete survey users: %w", err)
	}

	result := tx.Where("id IN ?", ids).Delete(&model.Survey{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete surveys: %w", result.Error)
	}
	return result.RowsAffected, nil
}
