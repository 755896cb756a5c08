// internal/model/survey.go
package model

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Survey struct {
	ID                  uuid.UUID     `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name                string        `gorm:"type:varchar(255);not null" json:"name"`
	Description         string        `gorm:"type:text;not null;default:''" json:"description"`
	ExpiryDate          time.Time     `gorm:"type:date;not null" json:"expiry_date"`
	Finalized           bool          `gorm:"not null;default:false" json:"finalized"`
	Published           bool          `gorm:"not null;default:false" json:"published"`
	OwnerOrgID          int64         `gorm:"not null;index" json:"owner_org_id"`
	ParticipatingOrgIDs pq.Int64Array `gorm:"type:bigint[];not null;default:'{}'" json:"participating_org_ids"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`

	Questions  []Question `gorm:"foreignKey:SurveyID" json:"questions,omitempty"`
	Categories []Category `gorm:"foreignKey:SurveyID" json:"categories,omitempty"`
}

// Finalize locks the question structure.
func (s *Survey) Finalize() {
	s.Finalized = true
}

func (s *Survey) Publish() {
	s.Published = true
}

func (s *Survey) Unpublish() {
	s.Published = false
}

// Expired reports whether the survey stopped accepting responses before now.
func (s *Survey) Expired(now time.Time) bool {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return s.ExpiryDate.Before(today)
}

// OwnedBy reports whether orgID owns the survey.
func (s *Survey) OwnedBy(orgID int64) bool {
	return s.OwnerOrgID == orgID
}

// FirstLevelQuestions returns the questions not nested under a multi-record
// question, in display order.
func (s *Survey) FirstLevelQuestions() []Question {
	var out []Question
	for _, q := range s.Questions {
		if q.FirstLevel() {
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OrderNumber < out[j].OrderNumber
	})
	return out
}

type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SurveyID    uuid.UUID `gorm:"type:uuid;not null" json:"survey_id"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	OrderNumber int       `gorm:"not null;default:0" json:"order_number"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SurveyUser records a user a survey was published to.
type SurveyUser struct {
	SurveyID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"survey_id"`
	UserID    int64     `gorm:"primaryKey" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
