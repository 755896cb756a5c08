// internal/model/question.go
package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// QuestionKind is the closed set of question variants.
type QuestionKind string

const (
	KindQuestion    QuestionKind = "Question"
	KindSingleLine  QuestionKind = "SingleLineQuestion"
	KindMultiline   QuestionKind = "MultilineQuestion"
	KindNumeric     QuestionKind = "NumericQuestion"
	KindDate        QuestionKind = "DateQuestion"
	KindRadio       QuestionKind = "RadioQuestion"
	KindDropDown    QuestionKind = "DropDownQuestion"
	KindMultiChoice QuestionKind = "MultiChoiceQuestion"
	KindRating      QuestionKind = "RatingQuestion"
	KindMultiRecord QuestionKind = "MultiRecordQuestion"
)

// DefaultRatingScale is used when a rating question has no max value.
const DefaultRatingScale = 5

var questionKinds = []QuestionKind{
	KindQuestion,
	KindSingleLine,
	KindMultiline,
	KindNumeric,
	KindDate,
	KindRadio,
	KindDropDown,
	KindMultiChoice,
	KindRating,
	KindMultiRecord,
}

// ParseQuestionKind resolves a type name. An empty name is a plain Question.
func ParseQuestionKind(s string) (QuestionKind, error) {
	if s == "" {
		return KindQuestion, nil
	}
	for _, k := range questionKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown question type %q", s)
}

// HasOptions reports whether answers are picked from a list of options.
func (k QuestionKind) HasOptions() bool {
	return k == KindRadio || k == KindDropDown || k == KindMultiChoice
}

// AllowsChildren reports whether the kind owns sub-questions.
func (k QuestionKind) AllowsChildren() bool {
	return k == KindMultiRecord
}

func (k QuestionKind) HasMaxLength() bool {
	return k == KindSingleLine
}

func (k QuestionKind) HasRange() bool {
	return k == KindNumeric || k == KindRating
}

type Question struct {
	ID               uuid.UUID    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Type             QuestionKind `gorm:"type:varchar(64);not null;default:'Question'" json:"type"`
	Content          string       `gorm:"type:text;not null" json:"content"`
	SurveyID         uuid.UUID    `gorm:"type:uuid;not null;index" json:"survey_id"`
	ParentQuestionID *uuid.UUID   `gorm:"type:uuid;index" json:"parent_question_id"`
	CategoryID       *uuid.UUID   `gorm:"type:uuid" json:"category_id"`
	OrderNumber      int          `gorm:"not null;default:0" json:"order_number"`
	Mandatory        bool         `gorm:"not null;default:false" json:"mandatory"`
	MaxLength        *int         `json:"max_length,omitempty"`
	MinValue         *int         `json:"min_value,omitempty"`
	MaxValue         *int         `json:"max_value,omitempty"`
	ImageURL         string       `gorm:"type:text;not null;default:''" json:"image_url"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`

	Options   []Option   `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
	Questions []Question `gorm:"foreignKey:ParentQuestionID" json:"-"`
}

// Kind returns the question's variant, treating an unset type as Question.
func (q Question) Kind() QuestionKind {
	if q.Type == "" {
		return KindQuestion
	}
	return q.Type
}

// FirstLevel reports whether the question sits at the top of the survey
// rather than under a multi-record question.
func (q Question) FirstLevel() bool {
	return q.ParentQuestionID == nil
}

// RatingScale is the highest accepted rating.
func (q Question) RatingScale() int {
	if q.MaxValue != nil && *q.MaxValue > 0 {
		return *q.MaxValue
	}
	return DefaultRatingScale
}

// OrderedOptions returns the options sorted by order number.
func (q Question) OrderedOptions() []Option {
	out := append([]Option(nil), q.Options...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OrderNumber < out[j].OrderNumber
	})
	return out
}

// HasOption reports whether content matches one of the question's options.
func (q Question) HasOption(content string) bool {
	for _, o := range q.Options {
		if o.Content == content {
			return true
		}
	}
	return false
}

// Validate checks the shared fields and that only the question's own kind
// carries kind-specific data.
func (q Question) Validate() []string {
	var msgs []string
	kind := q.Kind()

	if _, err := ParseQuestionKind(string(kind)); err != nil {
		msgs = append(msgs, fmt.Sprintf("Type %s is not a valid question type", kind))
	}
	if strings.TrimSpace(q.Content) == "" {
		msgs = append(msgs, "Content can't be blank")
	}

	if len(q.Options) > 0 && !kind.HasOptions() {
		msgs = append(msgs, fmt.Sprintf("Options are not allowed for %s", kind))
	}
	for _, o := range q.Options {
		if strings.TrimSpace(o.Content) == "" {
			msgs = append(msgs, "Option content can't be blank")
			break
		}
	}

	if len(q.Questions) > 0 && !kind.AllowsChildren() {
		msgs = append(msgs, fmt.Sprintf("Questions are not allowed for %s", kind))
	}
	if kind.AllowsChildren() && q.ParentQuestionID != nil {
		msgs = append(msgs, "Multi-record questions cannot be nested")
	}
	for _, child := range q.Questions {
		if child.Kind().AllowsChildren() {
			msgs = append(msgs, "Multi-record questions cannot be nested")
			break
		}
	}

	if q.MaxLength != nil {
		if !kind.HasMaxLength() {
			msgs = append(msgs, fmt.Sprintf("Max length is not allowed for %s", kind))
		} else if *q.MaxLength <= 0 {
			msgs = append(msgs, "Max length must be greater than 0")
		}
	}

	if (q.MinValue != nil || q.MaxValue != nil) && !kind.HasRange() {
		msgs = append(msgs, fmt.Sprintf("Min and max values are not allowed for %s", kind))
	}
	if q.MinValue != nil && q.MaxValue != nil && *q.MinValue > *q.MaxValue {
		msgs = append(msgs, "Min value must be less than or equal to max value")
	}

	return msgs
}

// MarshalJSON always includes the type and, for multi-record questions, the
// sub-questions each serialized with their own type.
func (q Question) MarshalJSON() ([]byte, error) {
	type plain Question
	out := struct {
		plain
		Type      QuestionKind `json:"type"`
		Questions *[]Question  `json:"questions,omitempty"`
	}{
		plain: plain(q),
		Type:  q.Kind(),
	}

	if q.Kind().AllowsChildren() {
		children := q.Questions
		if children == nil {
			children = []Question{}
		}
		out.Questions = &children
	}

	return json.Marshal(out)
}

type Option struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	QuestionID  uuid.UUID `gorm:"type:uuid;not null" json:"question_id"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	OrderNumber int       `gorm:"not null;default:0" json:"order_number"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
