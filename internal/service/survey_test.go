package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bertomartin/ashoka-survey-web/internal/domain"
	"github.com/bertomartin/ashoka-survey-web/internal/mocks"
	"github.com/bertomartin/ashoka-survey-web/internal/model"
	"github.com/bertomartin/ashoka-survey-web/internal/repository"
	"github.com/bertomartin/ashoka-survey-web/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestSurveyList(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	t.Run("admin filter is passed through", func(t *testing.T) {
		repo := mocks.NewMockSurveyRepositoryIface(ctrl)
		svc := service.NewSurveyService(repo, nil, nil, nil)

		repo.EXPECT().
			List(gomock.Any(), repository.SurveyFilter{Published: boolPtr(false)}).
			Return([]model.Survey{{Name: "draft"}}, nil)

		surveys, err := svc.List(ctx, admin, boolPtr(false))
		require.NoError(t, err)
		assert.Len(t, surveys, 1)
	})

	t.Run("admin without filter sees everything", func(t *testing.T) {
		repo := mocks.NewMockSurveyRepositoryIface(ctrl)
		svc := service.NewSurveyService(repo, nil, nil, nil)

		repo.EXPECT().List(gomock.Any(), repository.SurveyFilter{}).Return(nil, nil)

		_, err := svc.List(ctx, admin, nil)
		require.NoError(t, err)
	})

	t.Run("user only sees own organization's published surveys", func(t *testing.T) {
		repo := mocks.NewMockSurveyRepositoryIface(ctrl)
		svc := service.NewSurveyService(repo, nil, nil, nil)

		repo.EXPECT().
			List(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, f repository.SurveyFilter) ([]model.Survey, error) {
				require.NotNil(t, f.Published)
				require.NotNil(t, f.OwnerOrgID)
				assert.True(t, *f.Published)
				assert.Equal(t, int64(12), *f.OwnerOrgID)
				return nil, nil
			})

		// The requested filter is ignored for non-admins.
		_, err := svc.List(ctx, fieldUser, boolPtr(false))
		require.NoError(t, err)
	})
}

func TestSurveyAdminOperationsRefuseUsers(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()
	id := uuid.New()

	// No repository expectations: any call fails the test.
	repo := mocks.NewMockSurveyRepositoryIface(ctrl)
	rec := &recordingAudit{}
	svc := service.NewSurveyService(repo, mocks.NewMockDirectoryIface(ctrl), rec, nil)

	ops := map[string]func() error{
		"new":       func() error { _, err := svc.New(ctx, fieldUser); return err },
		"create":    func() error { _, err := svc.Create(ctx, fieldUser, service.SurveyInput{Name: "x"}); return err },
		"build":     func() error { _, err := svc.Build(ctx, fieldUser, id); return err },
		"finalize":  func() error { _, err := svc.Finalize(ctx, fieldUser, id); return err },
		"publish":   func() error { _, err := svc.Publish(ctx, fieldUser, id); return err },
		"unpublish": func() error { _, err := svc.Unpublish(ctx, fieldUser, id); return err },
		"destroy":   func() error { return svc.Destroy(ctx, fieldUser, id) },
		"share":     func() error { _, _, err := svc.Share(ctx, fieldUser, id); return err },
		"publish to users": func() error {
			_, err := svc.PublishToUsers(ctx, fieldUser, id, service.PublishInput{UserIDs: []int64{5}})
			return err
		},
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			err := op()
			assert.True(t, errors.Is(err, domain.ErrUnauthorized), "got %v", err)
		})
	}

	for _, action := range rec.actions() {
		assert.Equal(t, model.ActionAccessDenied, action)
	}
	assert.Len(t, rec.actions(), len(ops))
}

func TestSurveyCreate(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	t.Run("owner is the admin's organization", func(t *testing.T) {
		repo := mocks.NewMockSurveyRepositoryIface(ctrl)
		rec := &recordingAudit{}
		svc := service.NewSurveyService(repo, nil, rec, nil)

		expiry := time.Now().AddDate(0, 1, 0).Format("2006-01-02")
		repo.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, s *model.Survey) error {
				s.ID = uuid.New()
				return nil
			})

		survey, err := svc.Create(ctx, admin, service.SurveyInput{Name: " Census ", ExpiryDate: expiry})
		require.NoError(t, err)
		assert.Equal(t, "Census", survey.Name)
		assert.Equal(t, admin.OrgID, survey.OwnerOrgID)
		assert.False(t, survey.Finalized)
		assert.False(t, survey.Published)
		assert.Equal(t, []string{model.ActionSurveyCreate}, rec.actions())
	})

	t.Run("blank name is a validation error", func(t *testing.T) {
		repo := mocks.NewMockSurveyRepositoryIface(ctrl)
		svc := service.NewSurveyService(repo, nil, nil, nil)

		_, err := svc.Create(ctx, admin, service.SurveyInput{})
		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Messages, "Name can't be blank")
		assert.Contains(t, verr.Messages, "Expiry date can't be blank")
	})

	t.Run("expiry date in the past", func(t *testing.T) {
		repo := mocks.NewMockSurveyRepositoryIface(ctrl)
		svc := service.NewSurveyService(repo, nil, nil, nil)

		past := time.Now().AddDate(0, 0, -2).Format("2006-01-02")
		_, err := svc.Create(ctx, admin, service.SurveyInput{Name: "Old", ExpiryDate: past})
		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, []string{"Expiry date can't be in the past"}, verr.Messages)
	})
}

func TestSurveyPublishToggle(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	repo := mocks.NewMockSurveyRepositoryIface(ctrl)
	svc := service.NewSurveyService(repo, nil, nil, nil)

	stored := &model.Survey{ID: uuid.New(), Name: "Census"}
	repo.EXPECT().FindByID(gomock.Any(), stored.ID).Return(stored, nil).AnyTimes()
	repo.EXPECT().Update(gomock.Any(), stored).Return(nil).AnyTimes()

	s, err := svc.Publish(ctx, admin, stored.ID)
	require.NoError(t, err)
	assert.True(t, s.Published)

	s, err = svc.Publish(ctx, admin, stored.ID)
	require.NoError(t, err)
	assert.True(t, s.Published)

	s, err = svc.Unpublish(ctx, admin, stored.ID)
	require.NoError(t, err)
	assert.False(t, s.Published)

	s, err = svc.Unpublish(ctx, admin, stored.ID)
	require.NoError(t, err)
	assert.False(t, s.Published)
}

func TestSurveyDestroyMissing(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockSurveyRepositoryIface(ctrl)
	svc := service.NewSurveyService(repo, nil, nil, nil)

	id := uuid.New()
	repo.EXPECT().Delete(gomock.Any(), id).Return(domain.ErrSurveyNotFound)

	err := svc.Destroy(context.Background(), admin, id)
	assert.True(t, errors.Is(err, domain.ErrSurveyNotFound))
}

func TestSurveyShare(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	t.Run("lists session organizations except the owner", func(t *testing.T) {
		repo := mocks.NewMockSurveyRepositoryIface(ctrl)
		dir := mocks.NewMockDirectoryIface(ctrl)
		svc := service.NewSurveyService(repo, dir, nil, nil)

		survey := &model.Survey{ID: uuid.New(), OwnerOrgID: 12}
		repo.EXPECT().FindByID(gomock.Any(), survey.ID).Return(survey, nil)

		_, orgs, err := svc.Share(ctx, admin, survey.ID)
		require.NoError(t, err)
		assert.Equal(t, []model.Organization{{ID: 123, Name: "foo"}}, orgs)
	})

	t.Run("unknown organizations are rejected", func(t *testing.T) {
		repo := mocks.NewMockSurveyRepositoryIface(ctrl)
		dir := mocks.NewMockDirectoryIface(ctrl)
		svc := service.NewSurveyService(repo, dir, nil, nil)

		survey := &model.Survey{ID: uuid.New(), OwnerOrgID: 12}
		repo.EXPECT().FindByID(gomock.Any(), survey.ID).Return(survey, nil)
		dir.EXPECT().Exists(gomock.Any(), "token", []int64{123, 999}).Return(false, nil)

		_, err := svc.UpdateShare(ctx, admin, survey.ID, []int64{123, 999, 123})
		assert.True(t, errors.Is(err, domain.ErrInvalidOrganizations))
	})

	t.Run("valid organizations are stored", func(t *testing.T) {
		repo := mocks.NewMockSurveyRepositoryIface(ctrl)
		dir := mocks.NewMockDirectoryIface(ctrl)
		svc := service.NewSurveyService(repo, dir, nil, nil)

		survey := &model.Survey{ID: uuid.New(), OwnerOrgID: 12}
		repo.EXPECT().FindByID(gomock.Any(), survey.ID).Return(survey, nil)
		dir.EXPECT().Exists(gomock.Any(), "token", []int64{123}).Return(true, nil)
		repo.EXPECT().Update(gomock.Any(), survey).Return(nil)

		updated, err := svc.UpdateShare(ctx, admin, survey.ID, []int64{123})
		require.NoError(t, err)
		assert.Equal(t, []int64{123}, []int64(updated.ParticipatingOrgIDs))
	})
}

func TestSurveyPublishToUsers(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	agents := []model.User{
		{ID: 5, Name: "Five", Email: "five@example.org", Role: model.RoleFieldAgent},
		{ID: 6, Name: "Six", Email: "six@example.org", Role: model.RoleSupervisor},
	}

	t.Run("unpublished survey", func(t *testing.T) {
		repo := mocks.NewMockSurveyRepositoryIface(ctrl)
		svc := service.NewSurveyService(repo, mocks.NewMockDirectoryIface(ctrl), nil, nil)

		survey := &model.Survey{ID: uuid.New(), Name: "Census"}
		repo.EXPECT().FindByID(gomock.Any(), survey.ID).Return(survey, nil)

		_, err := svc.PublishToUsers(ctx, admin, survey.ID, service.PublishInput{UserIDs: []int64{5}})
		var unpublished *domain.UnpublishedSurveyError
		require.True(t, errors.As(err, &unpublished))
		assert.Equal(t, "Census", unpublished.SurveyName)
	})

	t.Run("recipient outside the publishable users", func(t *testing.T) {
		repo := mocks.NewMockSurveyRepositoryIface(ctrl)
		dir := mocks.NewMockDirectoryIface(ctrl)
		svc := service.NewSurveyService(repo, dir, nil, nil)

		survey := &model.Survey{ID: uuid.New(), Published: true}
		repo.EXPECT().FindByID(gomock.Any(), survey.ID).Return(survey, nil)
		dir.EXPECT().PublishableUsers(gomock.Any(), "token", int64(12)).Return(agents, nil)

		_, err := svc.PublishToUsers(ctx, admin, survey.ID, service.PublishInput{UserIDs: []int64{5, 7}})
		assert.True(t, errors.Is(err, domain.ErrInvalidRecipients))
	})

	t.Run("records and notifies recipients", func(t *testing.T) {
		repo := mocks.NewMockSurveyRepositoryIface(ctrl)
		dir := mocks.NewMockDirectoryIface(ctrl)
		notifier := &recordingNotifier{}
		svc := service.NewSurveyService(repo, dir, nil, notifier)

		survey := &model.Survey{ID: uuid.New(), Name: "Health", Published: true}
		gomock.InOrder(
			repo.EXPECT().FindByID(gomock.Any(), survey.ID).Return(survey, nil),
			dir.EXPECT().PublishableUsers(gomock.Any(), "token", int64(12)).Return(agents, nil),
			repo.EXPECT().AddSurveyUsers(gomock.Any(), survey.ID, []int64{6, 5}).Return(nil),
		)

		_, err := svc.PublishToUsers(ctx, admin, survey.ID, service.PublishInput{UserIDs: []int64{6, 5}, Subject: func(s *model.Survey) string { return "New survey: " + s.Name }})
		require.NoError(t, err)
		assert.Equal(t, "New survey: Health", notifier.subject)
		require.Len(t, notifier.recipients, 2)
		assert.Equal(t, int64(6), notifier.recipients[0].ID)
	})
}
