package service_test

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"projecthub/internal/model"
	"projecthub/internal/repository"
)

// memStore is an in-memory repository.Store. Transaction snapshots the issue
// table and restores it when fn fails.
type memStore struct {
	users            map[uuid.UUID]model.User
	projects         map[uint]model.Project
	projectTasks     map[uint]model.ProjectTask
	independentTasks map[uint]model.IndependentTask
	issues           map[uint]model.Issue
	nextIssueID      uint

	// createErr, when set, is returned by every issue insert.
	createErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:            make(map[uuid.UUID]model.User),
		projects:         make(map[uint]model.Project),
		projectTasks:     make(map[uint]model.ProjectTask),
		independentTasks: make(map[uint]model.IndependentTask),
		issues:           make(map[uint]model.Issue),
	}
}

func (s *memStore) addUser(name string) uuid.UUID {
	id := uuid.New()
	s.users[id] = model.User{ID: id, Username: name, Email: name + "@example.com", Role: model.RoleMember}
	return id
}

func (s *memStore) Users() repository.UserLookup                       { return memUsers{s} }
func (s *memStore) Projects() repository.ProjectLookup                 { return memProjects{s} }
func (s *memStore) ProjectTasks() repository.ProjectTaskLookup         { return memProjectTasks{s} }
func (s *memStore) IndependentTasks() repository.IndependentTaskLookup { return memIndependentTasks{s} }
func (s *memStore) Issues() repository.IssueRepositoryInterface        { return memIssues{s} }

func (s *memStore) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	snapshot := make(map[uint]model.Issue, len(s.issues))
	for k, v := range s.issues {
		snapshot[k] = v
	}
	next := s.nextIssueID
	if err := fn(s); err != nil {
		s.issues = snapshot
		s.nextIssueID = next
		return err
	}
	return nil
}

type memUsers struct{ s *memStore }

func (m memUsers) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := m.s.users[id]
	return ok, nil
}

func (m memUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := m.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

type memProjects struct{ s *memStore }

func (m memProjects) Exists(_ context.Context, id uint) (bool, error) {
	_, ok := m.s.projects[id]
	return ok, nil
}

func (m memProjects) GetByID(_ context.Context, id uint) (*model.Project, error) {
	p, ok := m.s.projects[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

type memProjectTasks struct{ s *memStore }

func (m memProjectTasks) Exists(_ context.Context, id uint) (bool, error) {
	_, ok := m.s.projectTasks[id]
	return ok, nil
}

func (m memProjectTasks) GetByID(_ context.Context, id uint) (*model.ProjectTask, error) {
	t, ok := m.s.projectTasks[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

type memIndependentTasks struct{ s *memStore }

func (m memIndependentTasks) Exists(_ context.Context, id uint) (bool, error) {
	_, ok := m.s.independentTasks[id]
	return ok, nil
}

func (m memIndependentTasks) GetByID(_ context.Context, id uint) (*model.IndependentTask, error) {
	t, ok := m.s.independentTasks[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

type memIssues struct{ s *memStore }

func (m memIssues) Create(_ context.Context, issue *model.Issue) error {
	if m.s.createErr != nil {
		return m.s.createErr
	}
	m.s.nextIssueID++
	issue.ID = m.s.nextIssueID
	m.s.issues[issue.ID] = *issue
	return nil
}

func (m memIssues) GetByID(_ context.Context, id uint) (*model.Issue, error) {
	issue, ok := m.s.issues[id]
	if !ok {
		return nil, nil
	}
	return &issue, nil
}

func (m memIssues) List(ctx context.Context) ([]model.Issue, error) {
	return m.Search(ctx, repository.IssueFilter{})
}

func (m memIssues) Search(_ context.Context, f repository.IssueFilter) ([]model.Issue, error) {
	contains := func(haystack, needle string) bool {
		return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
	}

	var out []model.Issue
	for _, issue := range m.s.issues {
		if f.Title != "" && !contains(issue.Title, f.Title) {
			continue
		}
		if f.Status != "" && issue.Status != f.Status {
			continue
		}
		if f.Priority != "" && issue.Priority != f.Priority {
			continue
		}
		if f.AssigneeID != nil && (issue.AssigneeID == nil || *issue.AssigneeID != *f.AssigneeID) {
			continue
		}
		if f.ReporterID != nil && issue.ReporterID != *f.ReporterID {
			continue
		}
		if f.Keywords != "" && !contains(issue.Title, f.Keywords) && !contains(issue.Description, f.Keywords) {
			continue
		}
		out = append(out, issue)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m memIssues) Update(_ context.Context, issue *model.Issue) error {
	if _, ok := m.s.issues[issue.ID]; !ok {
		return repository.ErrIssueNotFound
	}
	m.s.issues[issue.ID] = *issue
	return nil
}

func (m memIssues) Delete(_ context.Context, id uint) error {
	if _, ok := m.s.issues[id]; !ok {
		return repository.ErrIssueNotFound
	}
	delete(m.s.issues, id)
	return nil
}

// CountByStatus orders by the status text, like ORDER BY status in SQL.
func (m memIssues) CountByStatus(_ context.Context) ([]model.StatusCount, error) {
	counts := make(map[model.IssueStatus]int64)
	for _, issue := range m.s.issues {
		counts[issue.Status]++
	}
	rows := make([]model.StatusCount, 0, len(counts))
	for status, n := range counts {
		rows = append(rows, model.StatusCount{Status: status, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Status < rows[j].Status })
	return rows, nil
}
