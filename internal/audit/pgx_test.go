package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/bertomartin/ashoka-survey-web/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExecer struct {
	sql  string
	args []any
	err  error
}

func (e *recordingExecer) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	e.sql = sql
	e.args = args
	return pgconn.NewCommandTag("INSERT 0 1"), e.err
}

func TestPgxLoggerLogAction(t *testing.T) {
	exec := &recordingExecer{}
	logger := NewPgxLogger(exec)

	ctx := WithRequestMeta(context.Background(), RequestMeta{RequestID: "req-1", ClientIP: "10.0.0.1", UserAgent: "curl"})
	err := logger.LogAction(ctx, model.ActionSurveyPublish, Actor{UserID: 7, OrgID: 3},
		model.Entity{Type: model.EntitySurvey, ID: "abc"}, map[string]interface{}{"name": "Census"})
	require.NoError(t, err)

	assert.Contains(t, exec.sql, "INSERT INTO audit_logs")
	require.Len(t, exec.args, 11)
	assert.Equal(t, model.ActionSurveyPublish, exec.args[1])
	assert.Equal(t, true, *exec.args[2].(*bool))
	assert.Equal(t, "survey", exec.args[3])
	assert.Equal(t, "abc", exec.args[4])
	assert.Equal(t, "7", exec.args[5])
	assert.Equal(t, int64(3), exec.args[6])
	assert.JSONEq(t, `{"name":"Census"}`, string(exec.args[7].([]byte)))
	assert.Equal(t, "req-1", exec.args[8])
	assert.Equal(t, "10.0.0.1", exec.args[9])
	assert.Equal(t, "curl", exec.args[10])
}

func TestPgxLoggerAccessDeniedIsUnsuccessful(t *testing.T) {
	exec := &recordingExecer{}
	logger := NewPgxLogger(exec)

	err := logger.LogAccessDenied(context.Background(), Actor{UserID: 9}, "survey.destroy",
		model.Entity{Type: model.EntitySurvey, ID: "s1"})
	require.NoError(t, err)

	assert.Equal(t, model.ActionAccessDenied, exec.args[1])
	assert.Equal(t, false, *exec.args[2].(*bool))
	assert.JSONEq(t, `{"permission":"survey.destroy"}`, string(exec.args[7].([]byte)))
}

func TestPgxLoggerPropagatesErrors(t *testing.T) {
	exec := &recordingExecer{err: errors.New("connection refused")}
	logger := NewPgxLogger(exec)

	err := logger.LogOrganizationPurge(context.Background(), 4, 2, false)
	assert.EqualError(t, err, "connection refused")
	assert.Equal(t, "4", exec.args[4])
}
