// internal/model/organization.go
package model

// Organization is a directory value object. Only its id is stored locally,
// as a survey's owner or participant.
type Organization struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ExcludeOrganization returns orgs without the one identified by id.
func ExcludeOrganization(orgs []Organization, id int64) []Organization {
	out := make([]Organization, 0, len(orgs))
	for _, o := range orgs {
		if o.ID != id {
			out = append(out, o)
		}
	}
	return out
}
