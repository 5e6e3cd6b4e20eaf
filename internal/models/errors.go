package models

import "errors"

var (
	ErrNotFound         = errors.New("issue not found")
	ErrProjectNotFound  = errors.New("project not found")
	ErrAssigneeNotFound = errors.New("assignee not found")
	ErrInvalidStatus    = errors.New("invalid issue status")
	ErrInvalidSort      = errors.New("invalid sort parameter")
)
