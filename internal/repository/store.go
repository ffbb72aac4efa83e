package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"projecthub/internal/model"
)

// UserLookup is the read side of the user table used when validating and
// presenting issues.
type UserLookup interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type ProjectLookup interface {
	Exists(ctx context.Context, id uint) (bool, error)
	GetByID(ctx context.Context, id uint) (*model.Project, error)
}

type ProjectTaskLookup interface {
	Exists(ctx context.Context, id uint) (bool, error)
	GetByID(ctx context.Context, id uint) (*model.ProjectTask, error)
}

type IndependentTaskLookup interface {
	Exists(ctx context.Context, id uint) (bool, error)
	GetByID(ctx context.Context, id uint) (*model.IndependentTask, error)
}

type IssueRepositoryInterface interface {
	Create(ctx context.Context, issue *model.Issue) error
	GetByID(ctx context.Context, id uint) (*model.Issue, error)
	List(ctx context.Context) ([]model.Issue, error)
	Search(ctx context.Context, filter IssueFilter) ([]model.Issue, error)
	Update(ctx context.Context, issue *model.Issue) error
	Delete(ctx context.Context, id uint) error
	CountByStatus(ctx context.Context) ([]model.StatusCount, error)
}

var (
	_ UserLookup               = (*UserRepository)(nil)
	_ ProjectLookup            = (*ProjectRepository)(nil)
	_ ProjectTaskLookup        = (*ProjectTaskRepository)(nil)
	_ IndependentTaskLookup    = (*IndependentTaskRepository)(nil)
	_ IssueRepositoryInterface = (*IssueRepository)(nil)
)

// Store groups the repositories the issue service works with. Transaction runs
// fn against a Store bound to a single database transaction; returning an error
// from fn rolls it back.
type Store interface {
	Users() UserLookup
	Projects() ProjectLookup
	ProjectTasks() ProjectTaskLookup
	IndependentTasks() IndependentTaskLookup
	Issues() IssueRepositoryInterface
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type GormStore struct {
	db               *gorm.DB
	users            *UserRepository
	projects         *ProjectRepository
	projectTasks     *ProjectTaskRepository
	independentTasks *IndependentTaskRepository
	issues           *IssueRepository
}

var _ Store = (*GormStore)(nil)

func NewStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db:               db,
		users:            NewUserRepository(db),
		projects:         NewProjectRepository(db),
		projectTasks:     NewProjectTaskRepository(db),
		independentTasks: NewIndependentTaskRepository(db),
		issues:           NewIssueRepository(db),
	}
}

func (s *GormStore) Users() UserLookup                       { return s.users }
func (s *GormStore) Projects() ProjectLookup                 { return s.projects }
func (s *GormStore) ProjectTasks() ProjectTaskLookup         { return s.projectTasks }
func (s *GormStore) IndependentTasks() IndependentTaskLookup { return s.independentTasks }
func (s *GormStore) Issues() IssueRepositoryInterface        { return s.issues }

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
