package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bertomartin/ashoka-survey-web/internal/domain"
	"github.com/bertomartin/ashoka-survey-web/internal/mocks"
	"github.com/bertomartin/ashoka-survey-web/internal/model"
	"github.com/bertomartin/ashoka-survey-web/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestCacheServiceGetOrSet(t *testing.T) {
	ctx := context.Background()
	cache := service.NewCacheService(ctx, service.CacheConfig{TTL: time.Minute, CleanupFreq: time.Minute})
	defer cache.Close()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return map[string]int{"answer": 42}, nil
	}

	var first, second map[string]int
	require.NoError(t, cache.GetOrSet(ctx, "k", &first, fetch))
	require.NoError(t, cache.GetOrSet(ctx, "k", &second, fetch))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 42, second["answer"])

	assert.True(t, errors.Is(cache.Set(ctx, "", 1), domain.ErrInvalidInput))

	require.NoError(t, cache.Delete(ctx, "k"))
	var missing map[string]int
	assert.True(t, errors.Is(cache.Get(ctx, "k", &missing), domain.ErrNotFound))
}

func TestSessionOrganizationsAreLoadedOncePerSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()
	cache := service.NewCacheService(ctx, service.CacheConfig{TTL: time.Minute, CleanupFreq: time.Minute})
	defer cache.Close()

	orgs := []model.Organization{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}
	dir := mocks.NewMockDirectoryIface(ctrl)
	dir.EXPECT().Organizations(gomock.Any(), "token", nil).Return(orgs, nil).Times(1)

	for i := 0; i < 3; i++ {
		got, err := cache.SessionOrganizations(ctx, dir, "session-1", "token")
		require.NoError(t, err)
		assert.Equal(t, orgs, got)
	}
}
