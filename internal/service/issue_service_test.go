package service

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"issue-service/internal/models"
	"testing"
	"time"
)

type testEnv struct {
	svc   *IssueService
	store *memStore
	cache *memCache
	pub   *recordingPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		store: newMemStore(),
		cache: newMemCache(),
		pub:   &recordingPublisher{},
	}
	env.svc = NewIssueService(env.store, env.cache, env.pub, zaptest.NewLogger(t))
	env.svc.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return env
}

func validInput() models.IssueInput {
	return models.IssueInput{
		Title:       "Fix bug",
		IssueStatus: models.IssueStatusOpen,
		ProjectID:   1,
		AssigneeID:  2,
	}
}

func TestIssueServiceCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	issue, err := env.svc.Create(ctx, validInput())
	require.NoError(t, err)
	assert.NotZero(t, issue.ID)
	assert.Equal(t, "Fix bug", issue.Title)
	assert.Equal(t, models.IssueStatusOpen, issue.IssueStatus)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), issue.Date)
	assert.Equal(t, []string{models.EventCreated}, env.pub.types())

	cached, err := env.cache.GetIssue(ctx, issue.ID)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, issue.ID, cached.ID)

	got, err := env.svc.GetByID(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, issue.Title, got.Title)
	assert.Equal(t, issue.ProjectID, got.ProjectID)
}

func TestIssueServiceCreateUnknownReferences(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	in := validInput()
	in.ProjectID = 99
	_, err := env.svc.Create(ctx, in)
	assert.ErrorIs(t, err, models.ErrProjectNotFound)

	in = validInput()
	in.AssigneeID = 99
	_, err = env.svc.Create(ctx, in)
	assert.ErrorIs(t, err, models.ErrAssigneeNotFound)

	assert.Empty(t, env.pub.types())
}

func TestIssueServiceGetByIDNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = env.svc.GetByIDWithDetails(context.Background(), 404)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestIssueServiceGetByIDCacheFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.svc.Create(ctx, validInput())
	require.NoError(t, err)

	env.cache.failGet = true
	got, err := env.svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, 1, env.store.getCalls)
}

func TestIssueServiceGetByIDUsesCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.svc.Create(ctx, validInput())
	require.NoError(t, err)

	_, err = env.svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, env.store.getCalls)
}

func TestIssueServiceUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.svc.Create(ctx, validInput())
	require.NoError(t, err)

	in := validInput()
	in.Title = "Fix bug properly"
	in.IssueStatus = models.IssueStatusInProgress
	in.AssigneeID = 3

	detail, err := env.svc.Update(ctx, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, created.ID, detail.ID)
	assert.Equal(t, "Fix bug properly", detail.Title)
	assert.Equal(t, models.IssueStatusInProgress, detail.IssueStatus)
	assert.Equal(t, created.Date, detail.Date)
	require.NotNil(t, detail.Assignee)
	assert.Equal(t, "asmith", detail.Assignee.Username)
	require.NotNil(t, detail.Project)
	assert.Equal(t, "TRK", detail.Project.ProjectCode)

	require.Len(t, detail.IssueHistories, 1)
	assert.Equal(t, created.ID, detail.IssueHistories[0].IssueID)
	assert.Equal(t, "Fix bug", detail.IssueHistories[0].Title)
	assert.Equal(t, models.IssueStatusOpen, detail.IssueHistories[0].IssueStatus)
	assert.EqualValues(t, 2, detail.IssueHistories[0].AssigneeID)

	_, cached := env.cache.issues[created.ID]
	assert.False(t, cached)
	assert.Equal(t, []string{models.EventCreated, models.EventUpdated}, env.pub.types())
}

func TestIssueServiceHistoryHoldsReplacedStates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.svc.Create(ctx, validInput())
	require.NoError(t, err)

	fresh, err := env.svc.GetByIDWithDetails(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, fresh.IssueHistories)

	in := validInput()
	in.Title = "second"
	_, err = env.svc.Update(ctx, created.ID, in)
	require.NoError(t, err)

	in.Title = "third"
	in.IssueStatus = models.IssueStatusClosed
	detail, err := env.svc.Update(ctx, created.ID, in)
	require.NoError(t, err)

	assert.Equal(t, "third", detail.Title)
	require.Len(t, detail.IssueHistories, 2)
	assert.Equal(t, "second", detail.IssueHistories[0].Title)
	assert.Equal(t, "Fix bug", detail.IssueHistories[1].Title)
	for _, h := range detail.IssueHistories {
		assert.Equal(t, models.IssueStatusOpen, h.IssueStatus)
	}
}

func TestIssueServiceUpdateMissing(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Update(context.Background(), 7, validInput())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestIssueServiceDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.svc.Create(ctx, validInput())
	require.NoError(t, err)

	ok, err := env.svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = env.svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	ok, err = env.svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = env.svc.Delete(ctx, 12345)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, []string{models.EventCreated, models.EventDeleted}, env.pub.types())
	assert.True(t, env.pub.events[1].Removed)
}

func TestIssueServicePublishFailureIsNotFatal(t *testing.T) {
	env := newTestEnv(t)
	env.pub.err = errBackend

	issue, err := env.svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.NotZero(t, issue.ID)
}

func TestIssueServicePagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		_, err := env.svc.Create(ctx, validInput())
		require.NoError(t, err)
	}

	seen := map[int64]bool{}
	for p := 0; p < 3; p++ {
		page, err := env.svc.GetAllPageable(ctx, models.PageRequest{Page: p, Size: 3})
		require.NoError(t, err)
		assert.LessOrEqual(t, len(page.Content), 3)
		assert.EqualValues(t, 7, page.TotalElements)
		assert.Equal(t, 3, page.TotalPages)
		assert.Equal(t, p, page.Number)
		for _, issue := range page.Content {
			assert.False(t, seen[issue.ID], "issue %d returned twice", issue.ID)
			seen[issue.ID] = true
		}
	}
	assert.Len(t, seen, 7)
}

func TestIssueServiceFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.store.projects[5] = models.ProjectRef{ID: 5, ProjectName: "Other", ProjectCode: "OTH"}

	mk := func(project, assignee int64, status models.IssueStatus) {
		in := validInput()
		in.ProjectID, in.AssigneeID, in.IssueStatus = project, assignee, status
		_, err := env.svc.Create(ctx, in)
		require.NoError(t, err)
	}
	mk(1, 2, models.IssueStatusOpen)
	mk(1, 3, models.IssueStatusOpen)
	mk(5, 2, models.IssueStatusClosed)
	mk(5, 2, models.IssueStatusOpen)

	page := models.PageRequest{Size: 10}

	byProject, err := env.svc.GetByProjectID(ctx, 5, page)
	require.NoError(t, err)
	require.Len(t, byProject.Content, 2)
	for _, i := range byProject.Content {
		assert.EqualValues(t, 5, i.ProjectID)
	}

	byBoth, err := env.svc.GetByAssigneeAndStatus(ctx, 2, models.IssueStatusOpen, page)
	require.NoError(t, err)
	require.Len(t, byBoth.Content, 2)
	for _, i := range byBoth.Content {
		assert.EqualValues(t, 2, i.AssigneeID)
		assert.Equal(t, models.IssueStatusOpen, i.IssueStatus)
	}

	dashboard, err := env.svc.GetAllByAssigneeAndStatus(ctx, 2, models.IssueStatusClosed)
	require.NoError(t, err)
	require.Len(t, dashboard, 1)
	assert.EqualValues(t, 5, dashboard[0].ProjectID)

	byAssignee, err := env.svc.GetAllByAssignee(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, byAssignee, 3)

	none, err := env.svc.GetAllByAssignee(ctx, 77)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	emptyPage, err := env.svc.GetByProjectID(ctx, 77, page)
	require.NoError(t, err)
	assert.Empty(t, emptyPage.Content)
	assert.EqualValues(t, 0, emptyPage.TotalElements)
}

func TestIssueServiceListFailure(t *testing.T) {
	env := newTestEnv(t)
	env.store.failList = true

	_, err := env.svc.GetAllPageable(context.Background(), models.PageRequest{Size: 10})
	assert.ErrorIs(t, err, errBackend)

	_, err = env.svc.GetAllByAssignee(context.Background(), 2)
	assert.ErrorIs(t, err, errBackend)
}
