// internal/model/response.go
package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ResponseState is where a response sits in the collection workflow.
// A response that does not exist yet is not-started.
type ResponseState string

const (
	StateNotStarted ResponseState = "not_started"
	StateInProgress ResponseState = "in_progress"
	StateCompleted  ResponseState = "completed"
)

// DateLayout is the accepted format for date answers.
const DateLayout = "2006-01-02"

type Response struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SurveyID       uuid.UUID `gorm:"type:uuid;not null;index" json:"survey_id"`
	UserID         int64     `gorm:"not null;index" json:"user_id"`
	OrganizationID int64     `gorm:"not null" json:"organization_id"`
	Completed      bool      `gorm:"not null;default:false" json:"completed"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Survey  *Survey  `gorm:"foreignKey:SurveyID" json:"-"`
	Answers []Answer `gorm:"foreignKey:ResponseID" json:"answers,omitempty"`
}

func (r *Response) MarkComplete() {
	r.Completed = true
}

func (r *Response) MarkIncomplete() {
	r.Completed = false
}

func (r *Response) State() ResponseState {
	if r == nil {
		return StateNotStarted
	}
	if r.Completed {
		return StateCompleted
	}
	return StateInProgress
}

// FirstLevelAnswers returns the answers to top-level questions. Answers to
// sub-questions are attached to their parent answer's Answers instead of
// appearing as siblings.
func (r *Response) FirstLevelAnswers() []Answer {
	var out []Answer
	for _, a := range r.Answers {
		if a.ParentAnswerID != nil || (a.Question != nil && !a.Question.FirstLevel()) {
			continue
		}
		a.Answers = r.subAnswers(a.ID)
		out = append(out, a)
	}
	return out
}

func (r *Response) subAnswers(parentID uuid.UUID) []Answer {
	var out []Answer
	for _, a := range r.Answers {
		if a.ParentAnswerID != nil && *a.ParentAnswerID == parentID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		qi, qj := out[i].Question, out[j].Question
		if qi == nil || qj == nil {
			return false
		}
		return qi.OrderNumber < qj.OrderNumber
	})
	return out
}

// MissingSubAnswers returns empty answers for the sub-questions of
// multi-record answers that have none yet. The new answers carry their
// question, response and parent but are not added to r.
func (r *Response) MissingSubAnswers() []Answer {
	var out []Answer
	for _, parent := range r.Answers {
		q := parent.Question
		if q == nil || q.Kind() != KindMultiRecord || parent.ParentAnswerID != nil {
			continue
		}

		have := make(map[uuid.UUID]bool)
		for _, a := range r.subAnswers(parent.ID) {
			have[a.QuestionID] = true
		}
		for i := range q.Questions {
			child := q.Questions[i]
			if have[child.ID] {
				continue
			}
			parentID := parent.ID
			out = append(out, Answer{
				ID:             uuid.New(),
				ResponseID:     r.ID,
				QuestionID:     child.ID,
				ParentAnswerID: &parentID,
				Question:       &child,
			})
		}
	}
	return out
}

// Validate checks every answer. Mandatory answers are only enforced when
// the response is complete.
func (r *Response) Validate() []string {
	return validateAnswers(r.Answers, r.Completed)
}

func validateAnswers(answers []Answer, completing bool) []string {
	var msgs []string
	for _, a := range answers {
		msgs = append(msgs, a.Validate(completing)...)
		msgs = append(msgs, validateAnswers(a.Answers, completing)...)
	}
	return msgs
}

// Answer holds one question's answer. Answers to the sub-questions of a
// multi-record question point at the multi-record answer through
// ParentAnswerID.
type Answer struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ResponseID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"response_id"`
	QuestionID     uuid.UUID      `gorm:"type:uuid;not null" json:"question_id"`
	ParentAnswerID *uuid.UUID     `gorm:"type:uuid;index" json:"parent_answer_id,omitempty"`
	Content        string         `gorm:"type:text;not null;default:''" json:"content"`
	Choices        datatypes.JSON `gorm:"type:jsonb" json:"choices,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`

	Question *Question `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
	Answers  []Answer  `gorm:"foreignKey:ParentAnswerID" json:"answers,omitempty"`
}

// NewAnswer returns an empty answer for the question.
func NewAnswer(questionID uuid.UUID) Answer {
	return Answer{QuestionID: questionID}
}

// ChoiceList decodes the selected options of a multi-choice answer.
func (a Answer) ChoiceList() []string {
	if len(a.Choices) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(a.Choices, &out); err != nil {
		return nil
	}
	return out
}

// SetChoices stores the selected options of a multi-choice answer.
func (a *Answer) SetChoices(choices []string) error {
	if len(choices) == 0 {
		a.Choices = nil
		return nil
	}
	b, err := json.Marshal(choices)
	if err != nil {
		return fmt.Errorf("encoding choices: %w", err)
	}
	a.Choices = datatypes.JSON(b)
	return nil
}

// Blank reports whether nothing has been answered.
func (a Answer) Blank() bool {
	return strings.TrimSpace(a.Content) == "" && len(a.ChoiceList()) == 0
}

// Validate returns messages for an answer against its question. Answers
// without a loaded question are not checked, and a multi-record answer is
// judged only through its sub-answers.
func (a Answer) Validate(completing bool) []string {
	q := a.Question
	if q == nil || q.Kind() == KindMultiRecord {
		return nil
	}

	label := q.Content
	if a.Blank() {
		if completing && q.Mandatory {
			return []string{label + " can't be blank"}
		}
		return nil
	}

	content := strings.TrimSpace(a.Content)
	switch q.Kind() {
	case KindSingleLine:
		if q.MaxLength != nil && len([]rune(a.Content)) > *q.MaxLength {
			return []string{fmt.Sprintf("%s is too long (maximum is %d characters)", label, *q.MaxLength)}
		}
	case KindNumeric:
		value, err := decimal.NewFromString(content)
		if err != nil {
			return []string{label + " is not a number"}
		}
		if q.MinValue != nil && value.LessThan(decimal.NewFromInt(int64(*q.MinValue))) {
			return []string{fmt.Sprintf("%s must be greater than or equal to %d", label, *q.MinValue)}
		}
		if q.MaxValue != nil && value.GreaterThan(decimal.NewFromInt(int64(*q.MaxValue))) {
			return []string{fmt.Sprintf("%s must be less than or equal to %d", label, *q.MaxValue)}
		}
	case KindDate:
		if _, err := time.Parse(DateLayout, content); err != nil {
			return []string{label + " is not a valid date"}
		}
	case KindRadio, KindDropDown:
		if !q.HasOption(a.Content) {
			return []string{label + " is not one of the options"}
		}
	case KindMultiChoice:
		for _, choice := range a.ChoiceList() {
			if !q.HasOption(choice) {
				return []string{fmt.Sprintf("%s has an unknown choice %q", label, choice)}
			}
		}
	case KindRating:
		n, err := strconv.Atoi(content)
		if err != nil || n < 1 || n > q.RatingScale() {
			return []string{fmt.Sprintf("%s must be a rating between 1 and %d", label, q.RatingScale())}
		}
	}

	return nil
}
