package models

import "time"

const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// IssueEvent is published on NATS for every mutation and stored in ClickHouse.
type IssueEvent struct {
	ID          int64       `json:"Id"`
	ProjectID   int64       `json:"ProjectId"`
	AssigneeID  int64       `json:"AssigneeId"`
	Title       string      `json:"Title"`
	IssueStatus IssueStatus `json:"IssueStatus"`
	Removed     bool        `json:"Removed"`
	EventType   string      `json:"EventType"`
	EventTime   time.Time   `json:"EventTime"`
}

func NewIssueEvent(eventType string, issue *Issue) *IssueEvent {
	return &IssueEvent{
		ID:          issue.ID,
		ProjectID:   issue.ProjectID,
		AssigneeID:  issue.AssigneeID,
		Title:       issue.Title,
		IssueStatus: issue.IssueStatus,
		Removed:     issue.Removed,
		EventType:   eventType,
		EventTime:   time.Now().UTC(),
	}
}

// Subject is the NATS subject the event is published on.
func (e *IssueEvent) Subject() string {
	return "issue." + e.EventType
}
