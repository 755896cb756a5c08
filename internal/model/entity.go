package model

const (
	EntitySurvey       = "survey"
	EntityQuestion     = "question"
	EntityResponse     = "response"
	EntityOrganization = "organization"
)

// Entity identifies the record an audit entry is about.
type Entity struct {
	Type string
	ID   string
}
