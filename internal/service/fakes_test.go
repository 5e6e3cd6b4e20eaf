package service

import (
	"context"
	"errors"
	"issue-service/internal/models"
	"issue-service/internal/repository"
	"sort"
	"sync"
)

var errBackend = errors.New("backend unavailable")

type memStore struct {
	mu       sync.Mutex
	nextID   int64
	issues   map[int64]*models.Issue
	history  map[int64][]models.IssueHistory
	projects map[int64]models.ProjectRef
	users    map[int64]models.UserRef
	failList bool
	getCalls int
}

func newMemStore() *memStore {
	return &memStore{
		issues:   map[int64]*models.Issue{},
		history:  map[int64][]models.IssueHistory{},
		projects: map[int64]models.ProjectRef{1: {ID: 1, ProjectName: "Tracker", ProjectCode: "TRK"}},
		users: map[int64]models.UserRef{
			2: {ID: 2, Username: "jdoe", NameSurname: "J Doe"},
			3: {ID: 3, Username: "asmith", NameSurname: "A Smith"},
		},
	}
}

func (m *memStore) match(f repository.IssueFilter, i *models.Issue) bool {
	if i.Removed {
		return false
	}
	if f.ProjectID > 0 && i.ProjectID != f.ProjectID {
		return false
	}
	if f.AssigneeID > 0 && i.AssigneeID != f.AssigneeID {
		return false
	}
	if f.Status != "" && i.IssueStatus != f.Status {
		return false
	}
	return true
}

func (m *memStore) filtered(f repository.IssueFilter) []models.Issue {
	out := []models.Issue{}
	for _, i := range m.issues {
		if m.match(f, i) {
			out = append(out, *i)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

func (m *memStore) CreateIssue(_ context.Context, issue *models.Issue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	issue.ID = m.nextID
	stored := *issue
	m.issues[issue.ID] = &stored
	return nil
}

func (m *memStore) UpdateIssue(_ context.Context, issue *models.Issue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.issues[issue.ID]
	if !ok || cur.Removed {
		return models.ErrNotFound
	}
	m.history[issue.ID] = append([]models.IssueHistory{models.HistoryOf(cur)}, m.history[issue.ID]...)
	updated := *issue
	m.issues[issue.ID] = &updated
	return nil
}

func (m *memStore) MarkAsRemoved(_ context.Context, id int64) (*models.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.issues[id]
	if !ok || cur.Removed {
		return nil, nil
	}
	cur.Removed = true
	out := *cur
	return &out, nil
}

func (m *memStore) GetIssue(_ context.Context, id int64) (*models.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	cur, ok := m.issues[id]
	if !ok || cur.Removed {
		return nil, nil
	}
	out := *cur
	return &out, nil
}

func (m *memStore) ListIssues(_ context.Context, f repository.IssueFilter, page models.PageRequest) ([]models.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList {
		return nil, errBackend
	}
	all := m.filtered(f)
	start := page.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + page.Size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

func (m *memStore) ListAllIssues(_ context.Context, f repository.IssueFilter) ([]models.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList {
		return nil, errBackend
	}
	return m.filtered(f), nil
}

func (m *memStore) CountIssues(_ context.Context, f repository.IssueFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.filtered(f))), nil
}

func (m *memStore) ListHistory(_ context.Context, issueID int64) ([]models.IssueHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.IssueHistory{}, m.history[issueID]...), nil
}

func (m *memStore) GetProject(_ context.Context, id int64) (*models.ProjectRef, error) {
	p, ok := m.projects[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memStore) GetUser(_ context.Context, id int64) (*models.UserRef, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *memStore) CheckProjectExists(_ context.Context, id int64) (bool, error) {
	_, ok := m.projects[id]
	return ok, nil
}

func (m *memStore) CheckUserExists(_ context.Context, id int64) (bool, error) {
	_, ok := m.users[id]
	return ok, nil
}

type memCache struct {
	mu      sync.Mutex
	issues  map[int64]models.Issue
	failGet bool
}

func newMemCache() *memCache {
	return &memCache{issues: map[int64]models.Issue{}}
}

func (c *memCache) SetIssue(_ context.Context, issue *models.Issue) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issues[issue.ID] = *issue
	return nil
}

func (c *memCache) GetIssue(_ context.Context, id int64) (*models.Issue, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return nil, errBackend
	}
	i, ok := c.issues[id]
	if !ok {
		return nil, nil
	}
	return &i, nil
}

func (c *memCache) InvalidateIssue(_ context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.issues, id)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.IssueEvent
	err    error
}

func (p *recordingPublisher) Publish(event *models.IssueEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, *event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType)
	}
	return out
}

type recordingSink struct {
	mu     sync.Mutex
	events []models.IssueEvent
}

func (s *recordingSink) LogIssueEvent(_ context.Context, event *models.IssueEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *event)
	return nil
}
