package service

import (
	"context"
	"fmt"
	"go.uber.org/zap"
	"issue-service/internal/models"
	"issue-service/internal/repository"
	"time"
)

type IssueService struct {
	store     IssueStore
	cache     IssueCache
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewIssueService(
	store IssueStore,
	cache IssueCache,
	publisher EventPublisher,
	logger *zap.Logger,
) *IssueService {
	return &IssueService{
		store:     store,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *IssueService) GetAllPageable(ctx context.Context, page models.PageRequest) (*models.Page[models.Issue], error) {
	return s.findPage(ctx, repository.IssueFilter{}, page)
}

func (s *IssueService) GetByProjectID(ctx context.Context, projectID int64, page models.PageRequest) (*models.Page[models.Issue], error) {
	return s.findPage(ctx, repository.IssueFilter{ProjectID: projectID}, page)
}

func (s *IssueService) GetByAssigneeAndStatus(
	ctx context.Context,
	assigneeID int64,
	status models.IssueStatus,
	page models.PageRequest,
) (*models.Page[models.Issue], error) {
	return s.findPage(ctx, repository.IssueFilter{AssigneeID: assigneeID, Status: status}, page)
}

func (s *IssueService) GetAllByAssigneeAndStatus(ctx context.Context, assigneeID int64, status models.IssueStatus) ([]models.Issue, error) {
	issues, err := s.store.ListAllIssues(ctx, repository.IssueFilter{AssigneeID: assigneeID, Status: status})
	if err != nil {
		return nil, fmt.Errorf("list issues by assignee and status: %w", err)
	}

	return issues, nil
}

func (s *IssueService) GetAllByAssignee(ctx context.Context, assigneeID int64) ([]models.Issue, error) {
	issues, err := s.store.ListAllIssues(ctx, repository.IssueFilter{AssigneeID: assigneeID})
	if err != nil {
		return nil, fmt.Errorf("list issues by assignee: %w", err)
	}

	return issues, nil
}

func (s *IssueService) findPage(ctx context.Context, filter repository.IssueFilter, page models.PageRequest) (*models.Page[models.Issue], error) {
	issues, err := s.store.ListIssues(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}

	total, err := s.store.CountIssues(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count issues: %w", err)
	}

	return models.NewPage(issues, page, total), nil
}

// GetByID reads through the cache. A cache failure degrades to a database read.
func (s *IssueService) GetByID(ctx context.Context, id int64) (*models.Issue, error) {
	issue, err := s.cache.GetIssue(ctx, id)
	if err != nil {
		s.logger.Warn("failed to read issue from cache", zap.Int64("issue_id", id), zap.Error(err))
	}
	if issue != nil {
		return issue, nil
	}

	issue, err = s.store.GetIssue(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get issue %d: %w", id, err)
	}
	if issue == nil {
		return nil, models.ErrNotFound
	}

	if err := s.cache.SetIssue(ctx, issue); err != nil {
		s.logger.Warn("failed to cache issue", zap.Int64("issue_id", id), zap.Error(err))
	}

	return issue, nil
}

func (s *IssueService) GetByIDWithDetails(ctx context.Context, id int64) (*models.IssueDetail, error) {
	issue, err := s.store.GetIssue(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get issue %d: %w", id, err)
	}
	if issue == nil {
		return nil, models.ErrNotFound
	}

	return s.expand(ctx, issue)
}

func (s *IssueService) expand(ctx context.Context, issue *models.Issue) (*models.IssueDetail, error) {
	project, err := s.store.GetProject(ctx, issue.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("get project %d: %w", issue.ProjectID, err)
	}

	assignee, err := s.store.GetUser(ctx, issue.AssigneeID)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", issue.AssigneeID, err)
	}

	history, err := s.store.ListHistory(ctx, issue.ID)
	if err != nil {
		return nil, fmt.Errorf("list history of issue %d: %w", issue.ID, err)
	}

	return &models.IssueDetail{
		Issue:          *issue,
		Project:        project,
		Assignee:       assignee,
		IssueHistories: history,
	}, nil
}

func (s *IssueService) Create(ctx context.Context, input models.IssueInput) (*models.Issue, error) {
	if err := s.checkReferences(ctx, input); err != nil {
		return nil, err
	}

	issue := input.ToIssue(s.now().UTC())
	if err := s.store.CreateIssue(ctx, &issue); err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}

	s.logger.Info("issue created",
		zap.Int64("issue_id", issue.ID),
		zap.Int64("project_id", issue.ProjectID))

	if err := s.cache.SetIssue(ctx, &issue); err != nil {
		s.logger.Warn("failed to cache issue", zap.Int64("issue_id", issue.ID), zap.Error(err))
	}

	s.publishEvent(models.EventCreated, &issue)

	return &issue, nil
}

func (s *IssueService) Update(ctx context.Context, id int64, input models.IssueInput) (*models.IssueDetail, error) {
	existing, err := s.store.GetIssue(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get issue %d: %w", id, err)
	}
	if existing == nil {
		return nil, models.ErrNotFound
	}

	if err := s.checkReferences(ctx, input); err != nil {
		return nil, err
	}

	issue := input.ToIssue(existing.Date)
	issue.ID = id
	if err := s.store.UpdateIssue(ctx, &issue); err != nil {
		return nil, fmt.Errorf("update issue %d: %w", id, err)
	}

	s.logger.Info("issue updated",
		zap.Int64("issue_id", id),
		zap.String("status", string(issue.IssueStatus)))

	if err := s.cache.InvalidateIssue(ctx, id); err != nil {
		s.logger.Warn("failed to invalidate cached issue", zap.Int64("issue_id", id), zap.Error(err))
	}

	s.publishEvent(models.EventUpdated, &issue)

	return s.expand(ctx, &issue)
}

// Delete soft-deletes the issue. It reports false when there was no live issue with this id.
func (s *IssueService) Delete(ctx context.Context, id int64) (bool, error) {
	issue, err := s.store.MarkAsRemoved(ctx, id)
	if err != nil {
		return false, fmt.Errorf("remove issue %d: %w", id, err)
	}
	if issue == nil {
		return false, nil
	}

	s.logger.Info("issue removed", zap.Int64("issue_id", id))

	if err := s.cache.InvalidateIssue(ctx, id); err != nil {
		s.logger.Warn("failed to invalidate cached issue", zap.Int64("issue_id", id), zap.Error(err))
	}

	s.publishEvent(models.EventDeleted, issue)

	return true, nil
}

func (s *IssueService) checkReferences(ctx context.Context, input models.IssueInput) error {
	exists, err := s.store.CheckProjectExists(ctx, input.ProjectID)
	if err != nil {
		return fmt.Errorf("check project %d: %w", input.ProjectID, err)
	}
	if !exists {
		return fmt.Errorf("%w: %d", models.ErrProjectNotFound, input.ProjectID)
	}

	exists, err = s.store.CheckUserExists(ctx, input.AssigneeID)
	if err != nil {
		return fmt.Errorf("check user %d: %w", input.AssigneeID, err)
	}
	if !exists {
		return fmt.Errorf("%w: %d", models.ErrAssigneeNotFound, input.AssigneeID)
	}

	return nil
}

// publishEvent is best effort: the write is already committed.
func (s *IssueService) publishEvent(eventType string, issue *models.Issue) {
	if err := s.publisher.Publish(models.NewIssueEvent(eventType, issue)); err != nil {
		s.logger.Error("failed to publish issue event",
			zap.String("event_type", eventType),
			zap.Int64("issue_id", issue.ID),
			zap.Error(err))
	}
}
