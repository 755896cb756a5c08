// internal/email/mailer/survey_published.go
package mailer

import (
	"context"
	"fmt"

	"github.com/bertomartin/ashoka-survey-web/internal/email"
	"github.com/bertomartin/ashoka-survey-web/internal/model"
)

// SurveyPublishedTemplateData contains data for the survey published template
type SurveyPublishedTemplateData struct {
	RecipientName    string
	SurveyName       string
	OrganizationName string
	ExpiryDate       string
	SurveyLink       string
}

// SendSurveyPublishedEmail tells a field agent a survey was published to them
func SendSurveyPublishedEmail(ctx context.Context, s *email.Service, to, subject string, data SurveyPublishedTemplateData) error {
	emailData := email.EmailData{
		To:           to,
		FromName:     "Survey Web",
		Subject:      subject,
		TemplateName: "survey_published",
		TemplateData: data,
	}

	return s.SendEmail(ctx, emailData)
}

// SurveyNotifier delivers survey-published emails to each recipient.
type SurveyNotifier struct {
	service *email.Service
	baseURL string
}

func NewSurveyNotifier(service *email.Service, baseURL string) *SurveyNotifier {
	return &SurveyNotifier{service: service, baseURL: baseURL}
}

// SurveyPublished sends one email per recipient and stops at the first failure.
func (n *SurveyNotifier) SurveyPublished(ctx context.Context, survey *model.Survey, publisher string, subject string, recipients []model.User) error {
	for _, user := range recipients {
		data := SurveyPublishedTemplateData{
			RecipientName:    user.Name,
			SurveyName:       survey.Name,
			OrganizationName: publisher,
			SurveyLink:       fmt.Sprintf("%s/surveys/%s/responses", n.baseURL, survey.ID),
		}
		if !survey.ExpiryDate.IsZero() {
			data.ExpiryDate = survey.ExpiryDate.Format("2006-01-02")
		}

		if err := SendSurveyPublishedEmail(ctx, n.service, user.Email, subject, data); err != nil {
			return fmt.Errorf("notifying user %d: %w", user.ID, err)
		}
	}
	return nil
}
