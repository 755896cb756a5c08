package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/bertomartin/ashoka-survey-web/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is the part of *pgxpool.Pool the logger needs.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PgxLogger writes audit entries with plain SQL, for processes that run
// without the gorm stack.
type PgxLogger struct {
	pool Execer
}

var _ Logger = (*PgxLogger)(nil)

func NewPgxLogger(pool Execer) *PgxLogger {
	return &PgxLogger{pool: pool}
}

func (l *PgxLogger) LogAction(ctx context.Context, action string, actor Actor, entity model.Entity, contextData map[string]interface{}) error {
	return l.insert(ctx, NewEntry(ctx, action, true, actor, entity, contextData))
}

func (l *PgxLogger) LogAccessDenied(ctx context.Context, actor Actor, permission string, entity model.Entity) error {
	data := map[string]interface{}{"permission": permission}
	return l.insert(ctx, NewEntry(ctx, model.ActionAccessDenied, false, actor, entity, data))
}

func (l *PgxLogger) LogOrganizationPurge(ctx context.Context, orgID int64, surveysDeleted int, dryRun bool) error {
	entity := model.Entity{Type: model.EntityOrganization, ID: strconv.FormatInt(orgID, 10)}
	data := map[string]interface{}{"surveys_deleted": surveysDeleted, "dry_run": dryRun}
	return l.insert(ctx, NewEntry(ctx, model.ActionOrganizationPurge, true, Actor{OrgID: orgID}, entity, data))
}

func (l *PgxLogger) insert(ctx context.Context, entry *model.AuditLog) error {
	contextJSON, err := json.Marshal(entry.Context)
	if err != nil {
		slog.WarnContext(ctx, "failed to marshal audit context", "error", err)
		contextJSON = []byte("{}")
	}

	_, err = l.pool.Exec(ctx, `
		INSERT INTO audit_logs (
			timestamp, action, result, entity_type, entity_id, subject_id,
			org_id, context, request_id, client_ip, user_agent
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
	`,
		entry.Timestamp, entry.Action, entry.Result, entry.EntityType, entry.EntityID,
		entry.SubjectID, entry.OrgID, contextJSON,
		entry.RequestID, entry.ClientIP, entry.UserAgent)
	if err != nil {
		slog.ErrorContext(ctx, "failed to write audit log", "action", entry.Action, "error", err)
		return err
	}
	return nil
}
