package email

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// sendgridSender is the part of *sendgrid.Client the service calls.
type sendgridSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// sendWithSendgrid delivers one message through the SendGrid v3 API. The
// request is bound to ctx, so a cancelled publish request stops the call.
// Messages are tagged with their template name as a SendGrid category.
func (s *Service) sendWithSendgrid(ctx context.Context, data EmailData, htmlContent, textContent string) error {
	from := mail.NewEmail(data.FromName, data.From)
	to := mail.NewEmail("", data.To)
	message := mail.NewSingleEmail(from, data.Subject, to, textContent, htmlContent)
	if data.TemplateName != "" {
		message.AddCategories(data.TemplateName)
	}

	response, err := s.sendgridClient.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sending %s email via SendGrid: %w", data.TemplateName, err)
	}

	if response.StatusCode != http.StatusAccepted {
		return fmt.Errorf("sendgrid rejected %s email to %s: status %d, body: %s", data.TemplateName, data.To, response.StatusCode, response.Body)
	}

	return nil
}
