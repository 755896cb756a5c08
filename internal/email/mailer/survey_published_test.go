package mailer

import (
	"context"
	"testing"
	"time"

	"github.com/bertomartin/ashoka-survey-web/internal/config"
	"github.com/bertomartin/ashoka-survey-web/internal/email"
	"github.com/bertomartin/ashoka-survey-web/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSurveyPublishedNotifiesEveryRecipient(t *testing.T) {
	svc, err := email.NewEmailService(&config.Config{}, email.ProviderLog)
	require.NoError(t, err)

	n := NewSurveyNotifier(svc, "http://surveys.test")
	survey := &model.Survey{ID: uuid.New(), Name: "Census", ExpiryDate: time.Now().AddDate(0, 1, 0)}

	err = n.SurveyPublished(context.Background(), survey, "CSO", "A survey was published to you", []model.User{
		{ID: 1, Name: "A", Email: "a@example.org"},
		{ID: 2, Name: "B", Email: "b@example.org"},
	})
	assert.NoError(t, err)
}
