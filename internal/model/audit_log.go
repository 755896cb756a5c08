package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// AuditLog records an administrative action on a survey or organization.
type AuditLog struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Timestamp  time.Time `json:"timestamp" gorm:"default:CURRENT_TIMESTAMP"`
	Action     string    `json:"action"`
	Result     *bool     `json:"result"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	SubjectID  string    `json:"subject_id"`
	OrgID      int64     `json:"org_id"`
	Context    JSONMap   `json:"context" gorm:"type:jsonb"`
	RequestID  string    `json:"request_id"`
	ClientIP   string    `json:"client_ip"`
	UserAgent  string    `json:"user_agent"`
	CreatedAt  time.Time `json:"created_at" gorm:"default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"default:CURRENT_TIMESTAMP"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// JSONMap represents a generic map stored as JSONB in the database
type JSONMap map[string]interface{}

// Value implements the driver.Valuer interface for JSONMap
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface for JSONMap
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = make(JSONMap)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("type assertion failed: failed to decode JSONB")
	}

	return json.Unmarshal(bytes, m)
}

// Audit actions
const (
	ActionSurveyCreate         = "survey_create"
	ActionSurveyFinalize       = "survey_finalize"
	ActionSurveyPublish        = "survey_publish"
	ActionSurveyUnpublish      = "survey_unpublish"
	ActionSurveyDestroy        = "survey_destroy"
	ActionSurveyShare          = "survey_share"
	ActionSurveyPublishToUsers = "survey_publish_to_users"
	ActionAccessDenied         = "access_denied"
	ActionOrganizationPurge    = "organization_purge"
)
