// Package session carries the signed-in user's details through a request.
// The details are issued by the external login flow; this service only
// reads them.
package session

import (
	"context"

	"github.com/bertomartin/ashoka-survey-web/internal/model"
)

type contextKey string

const userKey = contextKey("user_info")

// UserInfo is the caller's session state.
type UserInfo struct {
	UserID        int64                `json:"user_id"`
	Name          string               `json:"name"`
	Email         string               `json:"email"`
	Role          model.UserRole       `json:"role"`
	OrgID         int64                `json:"org_id"`
	Organizations []model.Organization `json:"organizations,omitempty"`
	// AccessToken authenticates directory calls made on the user's behalf.
	AccessToken string `json:"access_token"`
}

func (u UserInfo) IsAdmin() bool {
	return u.Role == model.RoleCSOAdmin
}

func WithUser(ctx context.Context, u UserInfo) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func UserFromContext(ctx context.Context) (UserInfo, bool) {
	u, ok := ctx.Value(userKey).(UserInfo)
	return u, ok
}
