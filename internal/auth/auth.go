// internal/auth/auth.go

package auth

import (
	"fmt"

	"github.com/bertomartin/ashoka-survey-web/internal/domain"
	"github.com/bertomartin/ashoka-survey-web/internal/model"
	"github.com/bertomartin/ashoka-survey-web/internal/session"
)

// Permission names an action guarded by role.
type Permission string

const (
	PermissionCreateSurvey     Permission = "survey.create"
	PermissionBuildSurvey      Permission = "survey.build"
	PermissionFinalizeSurvey   Permission = "survey.finalize"
	PermissionPublishSurvey    Permission = "survey.publish"
	PermissionUnpublishSurvey  Permission = "survey.unpublish"
	PermissionDestroySurvey    Permission = "survey.destroy"
	PermissionShareSurvey      Permission = "survey.share"
	PermissionPublishToUsers   Permission = "survey.publish_to_users"
	PermissionEditQuestions    Permission = "question.edit"
	PermissionViewAllResponses Permission = "response.view_all"
	PermissionViewAuditLogs    Permission = "audit_log.view"
)

var rolePermissions = map[model.UserRole][]Permission{
	model.RoleCSOAdmin: {
		PermissionCreateSurvey,
		PermissionBuildSurvey,
		PermissionFinalizeSurvey,
		PermissionPublishSurvey,
		PermissionUnpublishSurvey,
		PermissionDestroySurvey,
		PermissionShareSurvey,
		PermissionPublishToUsers,
		PermissionEditQuestions,
		PermissionViewAllResponses,
		PermissionViewAuditLogs,
	},
}

// Can reports whether the user's role grants the permission.
func Can(user session.UserInfo, p Permission) bool {
	for _, granted := range rolePermissions[user.Role] {
		if granted == p {
			return true
		}
	}
	return false
}

// Authorize returns domain.ErrUnauthorized when the user lacks p.
func Authorize(user session.UserInfo, p Permission) error {
	if !Can(user, p) {
		return fmt.Errorf("%s not granted to role %q: %w", p, user.Role, domain.ErrUnauthorized)
	}
	return nil
}
