package service

import (
	"context"
	"issue-service/internal/models"
	"issue-service/internal/repository"
)

// IssueStore is the persistence the service needs; *repository.PostgresRepository implements it.
type IssueStore interface {
	CreateIssue(ctx context.Context, issue *models.Issue) error
	UpdateIssue(ctx context.Context, issue *models.Issue) error
	MarkAsRemoved(ctx context.Context, id int64) (*models.Issue, error)
	GetIssue(ctx context.Context, id int64) (*models.Issue, error)
	ListIssues(ctx context.Context, filter repository.IssueFilter, page models.PageRequest) ([]models.Issue, error)
	ListAllIssues(ctx context.Context, filter repository.IssueFilter) ([]models.Issue, error)
	CountIssues(ctx context.Context, filter repository.IssueFilter) (int64, error)
	ListHistory(ctx context.Context, issueID int64) ([]models.IssueHistory, error)
	GetProject(ctx context.Context, id int64) (*models.ProjectRef, error)
	GetUser(ctx context.Context, id int64) (*models.UserRef, error)
	CheckProjectExists(ctx context.Context, id int64) (bool, error)
	CheckUserExists(ctx context.Context, id int64) (bool, error)
}

// IssueCache is implemented by *repository.RedisRepository.
type IssueCache interface {
	SetIssue(ctx context.Context, issue *models.Issue) error
	GetIssue(ctx context.Context, id int64) (*models.Issue, error)
	InvalidateIssue(ctx context.Context, id int64) error
}

type EventPublisher interface {
	Publish(event *models.IssueEvent) error
}

// EventSink is implemented by *repository.ClickhouseRepository.
type EventSink interface {
	LogIssueEvent(ctx context.Context, event *models.IssueEvent) error
}

var (
	_ IssueStore = (*repository.PostgresRepository)(nil)
	_ IssueCache = (*repository.RedisRepository)(nil)
	_ EventSink  = (*repository.ClickhouseRepository)(nil)
)
