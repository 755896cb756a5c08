package service_test

import (
	"context"
	"sync"

	"github.com/bertomartin/ashoka-survey-web/internal/audit"
	"github.com/bertomartin/ashoka-survey-web/internal/model"
	"github.com/bertomartin/ashoka-survey-web/internal/session"
)

var (
	admin = session.UserInfo{
		UserID: 1,
		Name:   "Admin",
		Role:   model.RoleCSOAdmin,
		OrgID:  12,
		Organizations: []model.Organization{
			{ID: 123, Name: "foo"},
			{ID: 12, Name: "nid"},
		},
		AccessToken: "token",
	}
	fieldUser = session.UserInfo{UserID: 2, Name: "Agent", Role: model.RoleUser, OrgID: 12, AccessToken: "token"}
)

type auditEntry struct {
	action string
	entity model.Entity
}

// recordingAudit keeps the actions it was asked to log.
type recordingAudit struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (a *recordingAudit) add(action string, entity model.Entity) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, auditEntry{action: action, entity: entity})
	return nil
}

func (a *recordingAudit) LogAction(ctx context.Context, action string, actor audit.Actor, entity model.Entity, contextData map[string]interface{}) error {
	return a.add(action, entity)
}

func (a *recordingAudit) LogAccessDenied(ctx context.Context, actor audit.Actor, permission string, entity model.Entity) error {
	return a.add(model.ActionAccessDenied, entity)
}

func (a *recordingAudit) LogOrganizationPurge(ctx context.Context, orgID int64, surveysDeleted int, dryRun bool) error {
	return a.add(model.ActionOrganizationPurge, model.Entity{Type: model.EntityOrganization})
}

func (a *recordingAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.action)
	}
	return out
}

type recordingNotifier struct {
	recipients []model.User
	subject    string
}

func (n *recordingNotifier) SurveyPublished(ctx context.Context, survey *model.Survey, publisher, subject string, recipients []model.User) error {
	n.subject = subject
	n.recipients = append(n.recipients, recipients...)
	return nil
}

func boolPtr(b bool) *bool { return &b }
