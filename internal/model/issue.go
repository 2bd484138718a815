package model

import "time"

type Issue struct {
	ID           string    `json:"id"`
	IssueText    string    `json:"issueText"`
	IssueImage   string    `json:"issueImage"`
	Category     string    `json:"category"`
	Neighborhood string    `json:"neighborhood"`
	Status       string    `json:"status"` // open / in-progress / resolved (free text)
	ReportedBy   string    `json:"reportedBy"`
	ProjectID    *string   `json:"projectId"` // weak reference to Project.ID, may dangle
	Comments     []string  `json:"comments"`
	Likes        int       `json:"likes"`
	CreatedAt    time.Time `json:"createdAt"`
	ModifiedAt   time.Time `json:"modifiedAt"`
}
