package models

import (
	"fmt"
	"time"
)

type IssueStatus string

const (
	IssueStatusOpen       IssueStatus = "OPEN"
	IssueStatusInReview   IssueStatus = "IN_REVIEW"
	IssueStatusInProgress IssueStatus = "IN_PROGRESS"
	IssueStatusClosed     IssueStatus = "CLOSED"
)

var issueStatuses = [...]IssueStatus{
	IssueStatusOpen,
	IssueStatusInReview,
	IssueStatusInProgress,
	IssueStatusClosed,
}

// Statuses returns every IssueStatus in declaration order. The slice is a fresh copy.
func Statuses() []IssueStatus {
	out := make([]IssueStatus, len(issueStatuses))
	copy(out, issueStatuses[:])
	return out
}

func (s IssueStatus) Valid() bool {
	for _, v := range issueStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func ParseIssueStatus(s string) (IssueStatus, error) {
	status := IssueStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return status, nil
}

// Issue is the summary view.
type Issue struct {
	ID          int64       `json:"id" db:"id"`
	Title       string      `json:"title" db:"title"`
	Description string      `json:"description" db:"description"`
	Details     string      `json:"details" db:"details"`
	Date        time.Time   `json:"date" db:"date"`
	IssueStatus IssueStatus `json:"issueStatus" db:"issue_status"`
	AssigneeID  int64       `json:"assigneeId" db:"assignee_id"`
	ProjectID   int64       `json:"projectId" db:"project_id"`
	Removed     bool        `json:"-" db:"removed"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at"`
}

type ProjectRef struct {
	ID          int64  `json:"id" db:"id"`
	ProjectName string `json:"projectName" db:"project_name"`
	ProjectCode string `json:"projectCode" db:"project_code"`
}

type UserRef struct {
	ID          int64  `json:"id" db:"id"`
	Username    string `json:"username" db:"username"`
	NameSurname string `json:"nameSurname" db:"name_surname"`
}

// IssueHistory is a snapshot of an issue taken before each change.
type IssueHistory struct {
	ID          int64       `json:"id" db:"id"`
	IssueID     int64       `json:"issueId" db:"issue_id"`
	Title       string      `json:"title" db:"title"`
	Description string      `json:"description" db:"description"`
	Details     string      `json:"details" db:"details"`
	Date        time.Time   `json:"date" db:"date"`
	IssueStatus IssueStatus `json:"issueStatus" db:"issue_status"`
	AssigneeID  int64       `json:"assigneeId" db:"assignee_id"`
}

// IssueDetail is the summary view with its relations expanded.
type IssueDetail struct {
	Issue
	Project        *ProjectRef    `json:"project"`
	Assignee       *UserRef       `json:"assignee"`
	IssueHistories []IssueHistory `json:"issueHistories"`
}

// IssueInput is the body accepted on create and update.
type IssueInput struct {
	Title       string      `json:"title" validate:"required,max=255"`
	Description string      `json:"description" validate:"max=4000"`
	Details     string      `json:"details" validate:"max=4000"`
	Date        *time.Time  `json:"date"`
	IssueStatus IssueStatus `json:"issueStatus" validate:"required,issuestatus"`
	ProjectID   int64       `json:"projectId" validate:"required,gt=0"`
	AssigneeID  int64       `json:"assigneeId" validate:"required,gt=0"`
}

// ToIssue maps the input onto a new Issue; now is used when Date is unset.
func (in IssueInput) ToIssue(now time.Time) Issue {
	date := now
	if in.Date != nil {
		date = *in.Date
	}

	return Issue{
		Title:       in.Title,
		Description: in.Description,
		Details:     in.Details,
		Date:        date,
		IssueStatus: in.IssueStatus,
		AssigneeID:  in.AssigneeID,
		ProjectID:   in.ProjectID,
	}
}

// HistoryOf snapshots the current state of an issue.
func HistoryOf(issue *Issue) IssueHistory {
	return IssueHistory{
		IssueID:     issue.ID,
		Title:       issue.Title,
		Description: issue.Description,
		Details:     issue.Details,
		Date:        issue.Date,
		IssueStatus: issue.IssueStatus,
		AssigneeID:  issue.AssigneeID,
	}
}
