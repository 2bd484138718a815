package model

import "time"

const (
	ProjectStatusPlanned    = "planned"
	ProjectStatusInProgress = "in_progress"
	ProjectStatusCompleted  = "completed"
)

type Project struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Neighborhoods []string  `json:"neighborhoods"`
	Status        string    `json:"status"` // planned / in_progress / completed
	EstCompletion string    `json:"estCompletion"`
	ImageURL      string    `json:"imageUrl"`
	CreatedAt     time.Time `json:"createdAt"`
	ModifiedAt    time.Time `json:"modifiedAt"`

	// LinkedIssues is computed per request from the issues collection,
	// never persisted.
	LinkedIssues int `json:"linkedIssues"`
}
