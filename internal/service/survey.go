// internal/service/survey.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bertomartin/ashoka-survey-web/internal/audit"
	"github.com/bertomartin/ashoka-survey-web/internal/auth"
	"github.com/bertomartin/ashoka-survey-web/internal/directory"
	"github.com/bertomartin/ashoka-survey-web/internal/domain"
	"github.com/bertomartin/ashoka-survey-web/internal/model"
	"github.com/bertomartin/ashoka-survey-web/internal/repository"
	"github.com/bertomartin/ashoka-survey-web/internal/session"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// SurveyNotifier tells recipients that a survey was published to them.
type SurveyNotifier interface {
	SurveyPublished(ctx context.Context, survey *model.Survey, publisher, subject string, recipients []model.User) error
}

type SurveyService struct {
	repo      repository.SurveyRepositoryIface
	directory directory.DirectoryIface
	audit     audit.Logger
	notifier  SurveyNotifier
	validate  *validator.Validate
	now       func() time.Time
}

func NewSurveyService(
	repo repository.SurveyRepositoryIface,
	dir directory.DirectoryIface,
	auditLogger audit.Logger,
	notifier SurveyNotifier,
) *SurveyService {
	if auditLogger == nil {
		auditLogger = &audit.NoOpLogger{}
	}
	return &SurveyService{
		repo:      repo,
		directory: dir,
		audit:     auditLogger,
		notifier:  notifier,
		validate:  validator.New(),
		now:       time.Now,
	}
}

type SurveyInput struct {
	Name        string `json:"name" form:"name" validate:"required,max=255"`
	Description string `json:"description" form:"description"`
	ExpiryDate  string `json:"expiry_date" form:"expiry_date" validate:"required,datetime=2006-01-02"`
}

// PublishInput names the users a survey is published to.
type PublishInput struct {
	UserIDs []int64
	// Subject builds the localized notification subject for the survey.
	Subject func(*model.Survey) string
}

// List returns the surveys visible to user. Admins may filter on the
// published flag; everyone else only sees their organization's published
// surveys.
func (s *SurveyService) List(ctx context.Context, user session.UserInfo, published *bool) ([]model.Survey, error) {
	filter := repository.SurveyFilter{Published: published}
	if !user.IsAdmin() {
		yes := true
		orgID := user.OrgID
		filter = repository.SurveyFilter{Published: &yes, OwnerOrgID: &orgID}
	}

	surveys, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing surveys: %w", err)
	}
	return surveys, nil
}

// New returns an unsaved survey owned by the admin's organization.
func (s *SurveyService) New(ctx context.Context, user session.UserInfo) (*model.Survey, error) {
	if err := s.authorize(ctx, user, auth.PermissionCreateSurvey, ""); err != nil {
		return nil, err
	}
	return &model.Survey{OwnerOrgID: user.OrgID}, nil
}

func (s *SurveyService) Create(ctx context.Context, user session.UserInfo, input SurveyInput) (*model.Survey, error) {
	if err := s.authorize(ctx, user, auth.PermissionCreateSurvey, ""); err != nil {
		return nil, err
	}

	expiry, err := s.validateSurveyInput(input)
	if err != nil {
		return nil, err
	}

	survey := &model.Survey{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		ExpiryDate:  expiry,
		OwnerOrgID:  user.OrgID,
	}
	if err := s.repo.Create(ctx, survey); err != nil {
		return nil, fmt.Errorf("creating survey: %w", err)
	}

	record(ctx, s.audit.LogAction(ctx, model.ActionSurveyCreate, actorOf(user), surveyEntity(survey.ID),
		map[string]interface{}{"name": survey.Name}), model.ActionSurveyCreate)

	return survey, nil
}

// Build loads a survey with its questions for the authoring page.
func (s *SurveyService) Build(ctx context.Context, user session.UserInfo, id uuid.UUID) (*model.Survey, error) {
	if err := s.authorize(ctx, user, auth.PermissionBuildSurvey, id.String()); err != nil {
		return nil, err
	}
	return s.repo.FindWithQuestions(ctx, id)
}

func (s *SurveyService) Finalize(ctx context.Context, user session.UserInfo, id uuid.UUID) (*model.Survey, error) {
	return s.toggle(ctx, user, id, auth.PermissionFinalizeSurvey, model.ActionSurveyFinalize, (*model.Survey).Finalize)
}

// Publish does not require the survey to be finalized.
func (s *SurveyService) Publish(ctx context.Context, user session.UserInfo, id uuid.UUID) (*model.Survey, error) {
	return s.toggle(ctx, user, id, auth.PermissionPublishSurvey, model.ActionSurveyPublish, (*model.Survey).Publish)
}

func (s *SurveyService) Unpublish(ctx context.Context, user session.UserInfo, id uuid.UUID) (*model.Survey, error) {
	return s.toggle(ctx, user, id, auth.PermissionUnpublishSurvey, model.ActionSurveyUnpublish, (*model.Survey).Unpublish)
}

// Destroy deletes a survey with everything it owns.
func (s *SurveyService) Destroy(ctx context.Context, user session.UserInfo, id uuid.UUID) error {
	if err := s.authorize(ctx, user, auth.PermissionDestroySurvey, id.String()); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting survey: %w", err)
	}

	record(ctx, s.audit.LogAction(ctx, model.ActionSurveyDestroy, actorOf(user), surveyEntity(id), nil), model.ActionSurveyDestroy)
	return nil
}

// Share returns the organizations from the caller's session that the
// survey can be shared with, leaving out its owner.
func (s *SurveyService) Share(ctx context.Context, user session.UserInfo, id uuid.UUID) (*model.Survey, []model.Organization, error) {
	if err := s.authorize(ctx, user, auth.PermissionShareSurvey, id.String()); err != nil {
		return nil, nil, err
	}

	survey, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return survey, model.ExcludeOrganization(user.Organizations, survey.OwnerOrgID), nil
}

// UpdateShare stores the participating organizations after checking them
// against the directory.
func (s *SurveyService) UpdateShare(ctx context.Context, user session.UserInfo, id uuid.UUID, orgIDs []int64) (*model.Survey, error) {
	if err := s.authorize(ctx, user, auth.PermissionShareSurvey, id.String()); err != nil {
		return nil, err
	}

	survey, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	orgIDs = uniqueIDs(orgIDs)
	if len(orgIDs) > 0 {
		ok, err := s.directory.Exists(ctx, user.AccessToken, orgIDs)
		if err != nil {
			return nil, fmt.Errorf("validating organizations: %w", err)
		}
		if !ok {
			return nil, domain.ErrInvalidOrganizations
		}
	}

	survey.ParticipatingOrgIDs = orgIDs
	if err := s.repo.Update(ctx, survey); err != nil {
		return nil, fmt.Errorf("sharing survey: %w", err)
	}

	record(ctx, s.audit.LogAction(ctx, model.ActionSurveyShare, actorOf(user), surveyEntity(id),
		map[string]interface{}{"organization_ids": orgIDs}), model.ActionSurveyShare)

	return survey, nil
}

// PublishableUsers lists the caller's organization members a survey can be
// published to.
func (s *SurveyService) PublishableUsers(ctx context.Context, user session.UserInfo, id uuid.UUID) (*model.Survey, []model.User, error) {
	if err := s.authorize(ctx, user, auth.PermissionPublishToUsers, id.String()); err != nil {
		return nil, nil, err
	}

	survey, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	users, err := s.directory.PublishableUsers(ctx, user.AccessToken, user.OrgID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading publishable users: %w", err)
	}
	return survey, users, nil
}

// PublishToUsers records the recipients of a published survey and emails
// each of them.
func (s *SurveyService) PublishToUsers(ctx context.Context, user session.UserInfo, id uuid.UUID, input PublishInput) (*model.Survey, error) {
	if err := s.authorize(ctx, user, auth.PermissionPublishToUsers, id.String()); err != nil {
		return nil, err
	}

	survey, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !survey.Published {
		return nil, &domain.UnpublishedSurveyError{SurveyName: survey.Name}
	}

	ids := uniqueIDs(input.UserIDs)
	if len(ids) == 0 {
		return nil, domain.ErrInvalidRecipients
	}

	publishable, err := s.directory.PublishableUsers(ctx, user.AccessToken, user.OrgID)
	if err != nil {
		return nil, fmt.Errorf("loading publishable users: %w", err)
	}

	byID := make(map[int64]model.User, len(publishable))
	for _, u := range publishable {
		byID[u.ID] = u
	}
	recipients := make([]model.User, 0, len(ids))
	for _, uid := range ids {
		u, ok := byID[uid]
		if !ok {
			return nil, fmt.Errorf("user %d cannot receive surveys: %w", uid, domain.ErrInvalidRecipients)
		}
		recipients = append(recipients, u)
	}

	if err := s.repo.AddSurveyUsers(ctx, survey.ID, ids); err != nil {
		return nil, fmt.Errorf("publishing survey to users: %w", err)
	}

	if s.notifier != nil {
		publisher := organizationName(user.Organizations, user.OrgID)
		subject := survey.Name
		if input.Subject != nil {
			subject = input.Subject(survey)
		}
		if err := s.notifier.SurveyPublished(ctx, survey, publisher, subject, recipients); err != nil {
			slog.WarnContext(ctx, "failed to notify survey recipients", "surveyID", survey.ID, "error", err)
		}
	}

	record(ctx, s.audit.LogAction(ctx, model.ActionSurveyPublishToUsers, actorOf(user), surveyEntity(id),
		map[string]interface{}{"user_ids": ids}), model.ActionSurveyPublishToUsers)

	return survey, nil
}

func (s *SurveyService) toggle(
	ctx context.Context,
	user session.UserInfo,
	id uuid.UUID,
	p auth.Permission,
	action string,
	mutate func(*model.Survey),
) (*model.Survey, error) {
	if err := s.authorize(ctx, user, p, id.String()); err != nil {
		return nil, err
	}

	survey, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	mutate(survey)
	if err := s.repo.Update(ctx, survey); err != nil {
		return nil, fmt.Errorf("updating survey: %w", err)
	}

	record(ctx, s.audit.LogAction(ctx, action, actorOf(user), surveyEntity(id), nil), action)
	return survey, nil
}

// authorize checks p and records refusals.
func (s *SurveyService) authorize(ctx context.Context, user session.UserInfo, p auth.Permission, surveyID string) error {
	err := auth.Authorize(user, p)
	if err == nil {
		return nil
	}

	entity := model.Entity{Type: model.EntitySurvey, ID: surveyID}
	record(ctx, s.audit.LogAccessDenied(ctx, actorOf(user), string(p), entity), model.ActionAccessDenied)
	return err
}

func (s *SurveyService) validateSurveyInput(input SurveyInput) (time.Time, error) {
	var messages []string

	if err := s.validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return time.Time{}, fmt.Errorf("validation failed: %w", err)
		}
		for _, fe := range verrs {
			messages = append(messages, fieldMessage(fe))
		}
		return time.Time{}, domain.NewValidationError(messages...)
	}

	expiry, err := time.Parse(dateLayout, input.ExpiryDate)
	if err != nil {
		return time.Time{}, domain.NewValidationError("Expiry date is invalid")
	}
	probe := model.Survey{ExpiryDate: expiry}
	if probe.Expired(s.now()) {
		return time.Time{}, domain.NewValidationError("Expiry date can't be in the past")
	}
	return expiry, nil
}

var fieldLabels = map[string]string{
	"Name":        "Name",
	"Description": "Description",
	"ExpiryDate":  "Expiry date",
}

func fieldMessage(fe validator.FieldError) string {
	label := fieldLabels[fe.Field()]
	if label == "" {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return label + " can't be blank"
	case "max":
		return fmt.Sprintf("%s is too long (maximum is %s characters)", label, fe.Param())
	default:
		return label + " is invalid"
	}
}

func actorOf(user session.UserInfo) audit.Actor {
	return audit.Actor{UserID: user.UserID, OrgID: user.OrgID}
}

func surveyEntity(id uuid.UUID) model.Entity {
	return model.Entity{Type: model.EntitySurvey, ID: id.String()}
}

func organizationName(orgs []model.Organization, id int64) string {
	for _, o := range orgs {
		if o.ID == id {
			return o.Name
		}
	}
	return ""
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
