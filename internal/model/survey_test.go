package model_test

import (
	"testing"
	"time"

	"github.com/bertomartin/ashoka-survey-web/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSurveyPublishToggle(t *testing.T) {
	s := &model.Survey{Name: "Household"}

	s.Publish()
	s.Publish()
	assert.True(t, s.Published)

	s.Unpublish()
	assert.False(t, s.Published)
	s.Unpublish()
	assert.False(t, s.Published, "unpublish is idempotent")
}

func TestSurveyFinalize(t *testing.T) {
	s := &model.Survey{}
	s.Finalize()
	assert.True(t, s.Finalized)
	assert.False(t, s.Published, "finalizing does not publish")
}

func TestSurveyExpired(t *testing.T) {
	now := time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC)

	assert.False(t, (&model.Survey{ExpiryDate: time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)}).Expired(now))
	assert.True(t, (&model.Survey{ExpiryDate: time.Date(2026, 5, 9, 0, 0, 0, 0, time.UTC)}).Expired(now))
}

func TestSurveyFirstLevelQuestions(t *testing.T) {
	parent := uuid.New()
	s := &model.Survey{
		Questions: []model.Question{
			{ID: uuid.New(), Content: "second", OrderNumber: 2},
			{ID: uuid.New(), Content: "child", ParentQuestionID: &parent},
			{ID: parent, Content: "first", OrderNumber: 1, Type: model.KindMultiRecord},
		},
	}

	got := s.FirstLevelQuestions()
	if assert.Len(t, got, 2) {
		assert.Equal(t, "first", got[0].Content)
		assert.Equal(t, "second", got[1].Content)
	}
}

func TestExcludeOrganization(t *testing.T) {
	orgs := []model.Organization{{ID: 123, Name: "foo"}, {ID: 12, Name: "nid"}}

	assert.Equal(t, []model.Organization{{ID: 123, Name: "foo"}}, model.ExcludeOrganization(orgs, 12))
	assert.Len(t, model.ExcludeOrganization(orgs, 99), 2)
}
