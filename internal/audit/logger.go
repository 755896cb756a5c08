package audit

import (
	"context"
	"strconv"
	"time"

	"github.com/bertomartin/ashoka-survey-web/internal/model"
)

// Actor is the signed-in user an audit entry is attributed to.
type Actor struct {
	UserID int64
	OrgID  int64
}

// Logger defines the interface for auditing operations
type Logger interface {
	// LogAction records a successful administrative action on an entity.
	LogAction(
		ctx context.Context,
		action string,
		actor Actor,
		entity model.Entity,
		contextData map[string]interface{},
	) error

	// LogAccessDenied records an administrative action refused to a non-admin.
	LogAccessDenied(
		ctx context.Context,
		actor Actor,
		permission string,
		entity model.Entity,
	) error

	// LogOrganizationPurge records the removal of a deleted organization's surveys.
	LogOrganizationPurge(
		ctx context.Context,
		orgID int64,
		surveysDeleted int,
		dryRun bool,
	) error
}

// NewEntry builds an audit row, filling request metadata from ctx.
func NewEntry(ctx context.Context, action string, result bool, actor Actor, entity model.Entity, contextData map[string]interface{}) *model.AuditLog {
	meta := RequestMetaFromContext(ctx)

	entry := &model.AuditLog{
		Action:     action,
		Result:     &result,
		EntityType: entity.Type,
		EntityID:   entity.ID,
		OrgID:      actor.OrgID,
		Context:    model.JSONMap(contextData),
		RequestID:  meta.RequestID,
		ClientIP:   meta.ClientIP,
		UserAgent:  meta.UserAgent,
		Timestamp:  time.Now().UTC(),
	}
	if actor.UserID != 0 {
		entry.SubjectID = strconv.FormatInt(actor.UserID, 10)
	}
	return entry
}

// NoOpLogger is a logger that does nothing
type NoOpLogger struct{}

var _ Logger = (*NoOpLogger)(nil)

func (l *NoOpLogger) LogAction(ctx context.Context, action string, actor Actor, entity model.Entity, contextData map[string]interface{}) error {
	return nil
}

func (l *NoOpLogger) LogAccessDenied(ctx context.Context, actor Actor, permission string, entity model.Entity) error {
	return nil
}

func (l *NoOpLogger) LogOrganizationPurge(ctx context.Context, orgID int64, surveysDeleted int, dryRun bool) error {
	return nil
}
