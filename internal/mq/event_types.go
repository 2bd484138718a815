package mq

import "time"

// Routing keys for the events exchange. Nothing in this process consumes
// them; they exist for downstream integrations.
const (
	RouteIssueCreated   = "issue.created"
	RouteIssueUpdated   = "issue.updated"
	RouteIssueDeleted   = "issue.deleted"
	RouteIssueLinked    = "issue.linked"
	RouteIssueUnlinked  = "issue.unlinked"
	RouteProjectCreated = "project.created"
	RouteProjectUpdated = "project.updated"
	RouteProjectDeleted = "project.deleted"
	RouteProjectsSeeded = "projects.seeded"
)

type IssueEventPayload struct {
	IssueID      string    `json:"issue_id"`
	Category     string    `json:"category"`
	Neighborhood string    `json:"neighborhood"`
	ProjectID    string    `json:"project_id,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type ProjectEventPayload struct {
	ProjectID  string    `json:"project_id"`
	Title      string    `json:"title,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type SeedEventPayload struct {
	Count      int       `json:"count"`
	OccurredAt time.Time `json:"occurred_at"`
}
