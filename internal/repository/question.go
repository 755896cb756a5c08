// internal/repository/question.go
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

type QuestionRepositoryIface interface {
	Create(ctx context.Context, question *model.Question) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Question, error)
	Update(ctx context.Context, question *model.Question) error
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateImageURL(ctx context.Context, id uuid.UUID, url string) error
}

type QuestionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// Create inserts the question together with its options.
func (r *QuestionRepository) Create(ctx context.Context, question *model.Question) error {
	return withTransaction(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(question).Error; err != nil {
			return fmt.Errorf("failed to create question: %w", err)
		}
		return createOptions(tx, question)
	})
}

func (r *QuestionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	byOrder := func(db *gorm.DB) *gorm.DB { return db.Order("order_number") }

	var question model.Question
	result := r.db.WithContext(ctx).
		Preload("Options", byOrder).
		Preload("Questions", byOrder).
		First(&question, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to find question: %w", result.Error)
	}
	return &question, nil
}

// Update saves the question's columns and replaces its options.
func (r *QuestionRepository) Update(ctx context.Context, question *model.Question) error {
	return withTransaction(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(question).Error; err != nil {
			return fmt.Errorf("failed to update question: %w", err)
		}
		if err := tx.Where("question_id = ?", question.ID).Delete(&model.Option{}).Error; err != nil {
			return fmt.Errorf("failed to replace options: %w", err)
		}
		return createOptions(tx, question)
	})
}

// Delete removes the question, its sub-questions, their options and any
// answers given to them.
func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return withTransaction(ctx, r.db, func(tx *gorm.DB) error {
		ids := []uuid.UUID{id}
		var children []uuid.UUID
		if err := tx.Model(&model.Question{}).Where("parent_question_id = ?", id).Pluck("id", &children).Error; err != nil {
			return fmt.Errorf("failed to find sub-questions: %w", err)
		}
		ids = append(ids, children...)

		if err := tx.Where("question_id IN ?", ids).Delete(&model.Answer{}).Error; err != nil {
			return fmt.Errorf("failed to delete answers: %w", err)
		}
		if err := tx.Where("question_id IN ?", ids).Delete(&model.Option{}).Error; err != nil {
			return fmt.Errorf("failed to delete options: %w", err)
		}
		if len(children) > 0 {
			if err := tx.Where("id IN ?", children).Delete(&model.Question{}).Error; err != nil {
				return fmt.Errorf("failed to delete sub-questions: %w", err)
			}
		}

		result := tx.Where("id = ?", id).Delete(&model.Question{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete question: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.ErrQuestionNotFound
		}
		return nil
	})
}

func (r *QuestionRepository) UpdateImageURL(ctx context.Context, id uuid.UUID, url string) error {
	result := r.db.WithContext(ctx).Model(&model.Question{}).Where("id = ?", id).Update("image_url", url)
	if result.Error != nil {
		return fmt.Errorf("failed to update question image: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

func createOptions(tx *gorm.DB, question *model.Question) error {
	if len(question.Options) == 0 {
		return nil
	}
	for i := range question.Options {
		question.Options[i].ID = uuid.Nil
		question.Options[i].QuestionID = question.ID
	}
	if err := tx.Create(&question.Options).Error; err != nil {
		return fmt.Errorf("failed to create options: %w", err)
	}
	return nil
}
