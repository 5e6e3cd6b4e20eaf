package repository

import (
	"fmt"
	"issue-service/internal/models"
	"strings"
)

// IssueFilter narrows issue queries. Zero-valued fields are not applied.
type IssueFilter struct {
	ProjectID  int64
	AssigneeID int64
	Status     models.IssueStatus
}

// where renders the WHERE clause body and its positional arguments.
// Removed issues are always excluded.
func (f IssueFilter) where() (string, []any) {
	conds := []string{"NOT removed"}
	var args []any

	if f.ProjectID > 0 {
		args = append(args, f.ProjectID)
		conds = append(conds, fmt.Sprintf("project_id = $%d", len(args)))
	}
	if f.AssigneeID > 0 {
		args = append(args, f.AssigneeID)
		conds = append(conds, fmt.Sprintf("assignee_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		conds = append(conds, fmt.Sprintf("issue_status = $%d", len(args)))
	}

	return strings.Join(conds, " AND "), args
}
