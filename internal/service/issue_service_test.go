package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/internal/model"
	"projecthub/internal/service"
)

// stepClock returns a time one second later on every call.
type stepClock struct {
	t time.Time
}

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func setupService() (*service.IssueService, *memStore) {
	store := newMemStore()
	clock := &stepClock{t: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	return service.NewIssueService(store, service.WithClock(clock.Now)), store
}

func uintPtr(v uint) *uint { return &v }

func TestCreate_DefaultsStatusAndPriority(t *testing.T) {
	// Arrange
	svc, store := setupService()
	reporter := store.addUser("alice")

	// Act
	rec, err := svc.Create(context.Background(), reporter, service.CreateIssueInput{Title: "Broken build"})

	// Assert
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.NotZero(t, rec.ID)
	assert.Equal(t, model.IssueStatusOpen, rec.Status)
	assert.Equal(t, model.IssuePriorityMedium, rec.Priority)
	assert.Equal(t, reporter, rec.ReporterID)
	assert.Equal(t, "alice", rec.ReporterName)
	assert.Equal(t, rec.CreatedAt, rec.UpdatedAt)
	assert.Nil(t, rec.AssigneeID)
	assert.Empty(t, rec.AssigneeName)
}

func TestCreate_RoundTrip(t *testing.T) {
	svc, store := setupService()
	ctx := context.Background()
	reporter := store.addUser("alice")

	created, err := svc.Create(ctx, reporter, service.CreateIssueInput{
		Title:       "Login page times out",
		Description: "Only on slow networks",
		Status:      model.IssueStatusInProgress,
		Priority:    model.IssuePriorityUrgent,
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Login page times out", got.Title)
	assert.Equal(t, "Only on slow networks", got.Description)
	assert.Equal(t, model.IssueStatusInProgress, got.Status)
	assert.Equal(t, model.IssuePriorityUrgent, got.Priority)
	assert.Equal(t, reporter, got.ReporterID)
	assert.Equal(t, "alice", got.ReporterName)
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)
}

func TestCreate_ResolvesRelatedNames(t *testing.T) {
	svc, store := setupService()
	reporter := store.addUser("alice")
	assignee := store.addUser("bob")
	store.projects[3] = model.Project{ID: 3, Name: "Apollo"}
	store.projectTasks[5] = model.ProjectTask{ID: 5, ProjectID: 3, Title: "Wire telemetry"}
	store.independentTasks[8] = model.IndependentTask{ID: 8, Title: "Renew certificates"}

	rec, err := svc.Create(context.Background(), reporter, service.CreateIssueInput{
		Title:             "Telemetry drops packets",
		AssigneeID:        &assignee,
		ProjectID:         uintPtr(3),
		ProjectTaskID:     uintPtr(5),
		IndependentTaskID: uintPtr(8),
	})

	require.NoError(t, err)
	assert.Equal(t, "bob", rec.AssigneeName)
	assert.Equal(t, "Apollo", rec.ProjectName)
	assert.Equal(t, "Wire telemetry", rec.ProjectTaskTitle)
	assert.Equal(t, "Renew certificates", rec.IndependentTaskTitle)
}

func TestCreate_BlankTitle(t *testing.T) {
	svc, store := setupService()
	reporter := store.addUser("alice")

	rec, err := svc.Create(context.Background(), reporter, service.CreateIssueInput{Title: "   "})

	assert.ErrorIs(t, err, service.ErrTitleRequired)
	assert.Nil(t, rec)
	assert.Empty(t, store.issues)
}

func TestCreate_ReferenceFailures(t *testing.T) {
	missing := uuid.New()

	tests := []struct {
		name    string
		input   service.CreateIssueInput
		ghost   bool
		wantErr error
		wantMsg string
	}{
		{name: "reporter", input: service.CreateIssueInput{Title: "x"}, ghost: true, wantErr: service.ErrReporterNotFound, wantMsg: "reporter not found"},
		{name: "assignee", input: service.CreateIssueInput{Title: "x", AssigneeID: &missing}, wantErr: service.ErrAssigneeNotFound, wantMsg: "assignee not found"},
		{name: "project", input: service.CreateIssueInput{Title: "x", ProjectID: uintPtr(41)}, wantErr: service.ErrProjectNotFound, wantMsg: "id 41"},
		{name: "project task", input: service.CreateIssueInput{Title: "x", ProjectTaskID: uintPtr(42)}, wantErr: service.ErrProjectTaskNotFound, wantMsg: "id 42"},
		{name: "independent task", input: service.CreateIssueInput{Title: "x", IndependentTaskID: uintPtr(43)}, wantErr: service.ErrIndependentTaskNotFound, wantMsg: "id 43"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := setupService()
			ctx := context.Background()
			reporter := store.addUser("alice")
			if tt.ghost {
				reporter = uuid.New()
			}

			rec, err := svc.Create(ctx, reporter, tt.input)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.True(t, service.IsValidationError(err))
			assert.Nil(t, rec)

			all, err := svc.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestCreate_ReporterCheckedBeforeAssignee(t *testing.T) {
	svc, _ := setupService()
	ghost := uuid.New()

	_, err := svc.Create(context.Background(), uuid.New(), service.CreateIssueInput{Title: "x", AssigneeID: &ghost})

	assert.ErrorIs(t, err, service.ErrReporterNotFound)
}

func TestCreate_InvalidEnums(t *testing.T) {
	svc, store := setupService()
	reporter := store.addUser("alice")

	_, err := svc.Create(context.Background(), reporter, service.CreateIssueInput{Title: "x", Status: "Pending"})
	assert.ErrorIs(t, err, service.ErrInvalidStatus)

	_, err = svc.Create(context.Background(), reporter, service.CreateIssueInput{Title: "x", Priority: "Critical"})
	assert.ErrorIs(t, err, service.ErrInvalidPriority)
	assert.Empty(t, store.issues)
}

func TestCreate_PersistenceFailurePropagates(t *testing.T) {
	svc, store := setupService()
	reporter := store.addUser("alice")
	store.createErr = errors.New("connection reset")

	rec, err := svc.Create(context.Background(), reporter, service.CreateIssueInput{Title: "x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.False(t, service.IsValidationError(err))
	assert.Nil(t, rec)
}

func TestGet_NotFound(t *testing.T) {
	svc, _ := setupService()

	rec, err := svc.Get(context.Background(), 404)

	assert.NoError(t, err)
	assert.Nil(t, rec)
}

func TestGet_MissingRelatedRowsResolveToEmptyNames(t *testing.T) {
	svc, store := setupService()
	ctx := context.Background()
	reporter := store.addUser("alice")
	assignee := store.addUser("bob")
	store.projects[3] = model.Project{ID: 3, Name: "Apollo"}

	created, err := svc.Create(ctx, reporter, service.CreateIssueInput{Title: "x", AssigneeID: &assignee, ProjectID: uintPtr(3)})
	require.NoError(t, err)

	delete(store.users, assignee)
	delete(store.projects, 3)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, &assignee, got.AssigneeID)
	assert.Empty(t, got.AssigneeName)
	assert.Equal(t, uintPtr(3), got.ProjectID)
	assert.Empty(t, got.ProjectName)
	assert.Equal(t, "alice", got.ReporterName)
}

func TestUpdate_BlankTitleKeepsOriginal(t *testing.T) {
	svc, store := setupService()
	ctx := context.Background()
	reporter := store.addUser("alice")
	created, err := svc.Create(ctx, reporter, service.CreateIssueInput{Title: "Original", Description: "Keep me"})
	require.NoError(t, err)

	rec, err := svc.Update(ctx, created.ID, service.IssuePatch{
		Title:       service.Some("   "),
		Description: service.Some(""),
	})

	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "Original", rec.Title)
	assert.Equal(t, "Keep me", rec.Description)
}

func TestUpdate_TitleChangesAndUpdatedAtAdvances(t *testing.T) {
	svc, store := setupService()
	ctx := context.Background()
	reporter := store.addUser("alice")
	created, err := svc.Create(ctx, reporter, service.CreateIssueInput{Title: "Original"})
	require.NoError(t, err)

	rec, err := svc.Update(ctx, created.ID, service.IssuePatch{Title: service.Some("X")})

	require.NoError(t, err)
	assert.Equal(t, "X", rec.Title)
	assert.True(t, rec.UpdatedAt.After(created.UpdatedAt))
	assert.Equal(t, created.CreatedAt, rec.CreatedAt)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "X", got.Title)
}

func TestUpdate_EmptyPatchStillBumpsUpdatedAt(t *testing.T) {
	svc, store := setupService()
	ctx := context.Background()
	reporter := store.addUser("alice")
	created, err := svc.Create(ctx, reporter, service.CreateIssueInput{Title: "Original"})
	require.NoError(t, err)

	rec, err := svc.Update(ctx, created.ID, service.IssuePatch{})

	require.NoError(t, err)
	assert.Equal(t, "Original", rec.Title)
	assert.True(t, rec.UpdatedAt.After(created.UpdatedAt))
}

func TestUpdate_StatusAndPriority(t *testing.T) {
	svc, store := setupService()
	ctx := context.Background()
	reporter := store.addUser("alice")
	created, err := svc.Create(ctx, reporter, service.CreateIssueInput{Title: "x"})
	require.NoError(t, err)

	rec, err := svc.Update(ctx, created.ID, service.IssuePatch{
		Status:   service.Some(model.IssueStatusResolved),
		Priority: service.Some(model.IssuePriorityLow),
	})

	require.NoError(t, err)
	assert.Equal(t, model.IssueStatusResolved, rec.Status)
	assert.Equal(t, model.IssuePriorityLow, rec.Priority)

	_, err = svc.Update(ctx, created.ID, service.IssuePatch{Status: service.Some(model.IssueStatus("Done"))})
	assert.ErrorIs(t, err, service.ErrInvalidStatus)
}

func TestUpdate_UnknownAssigneeLeavesIssueUntouched(t *testing.T) {
	svc, store := setupService()
	ctx := context.Background()
	reporter := store.addUser("alice")
	assignee := store.addUser("bob")
	created, err := svc.Create(ctx, reporter, service.CreateIssueInput{Title: "x", AssigneeID: &assignee})
	require.NoError(t, err)

	ghost := uuid.New()
	rec, err := svc.Update(ctx, created.ID, service.IssuePatch{
		Title:      service.Some("renamed"),
		AssigneeID: service.Some(&ghost),
	})

	assert.ErrorIs(t, err, service.ErrAssigneeNotFound)
	assert.Nil(t, rec)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, &assignee, got.AssigneeID)
	assert.Equal(t, "bob", got.AssigneeName)
	assert.Equal(t, "x", got.Title)
	assert.Equal(t, created.UpdatedAt, got.UpdatedAt)
}

func TestUpdate_AssigneeChangeAndClear(t *testing.T) {
	svc, store := setupService()
	ctx := context.Background()
	reporter := store.addUser("alice")
	bob := store.addUser("bob")
	carol := store.addUser("carol")
	created, err := svc.Create(ctx, reporter, service.CreateIssueInput{Title: "x", AssigneeID: &bob})
	require.NoError(t, err)

	rec, err := svc.Update(ctx, created.ID, service.IssuePatch{AssigneeID: service.Some(&carol)})
	require.NoError(t, err)
	assert.Equal(t, &carol, rec.AssigneeID)
	assert.Equal(t, "carol", rec.AssigneeName)

	rec, err = svc.Update(ctx, created.ID, service.IssuePatch{AssigneeID: service.Some[*uuid.UUID](nil)})
	require.NoError(t, err)
	assert.Nil(t, rec.AssigneeID)
	assert.Empty(t, rec.AssigneeName)
	assert.Equal(t, reporter, rec.ReporterID)
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _ := setupService()

	rec, err := svc.Update(context.Background(), 404, service.IssuePatch{Title: service.Some("X")})

	assert.NoError(t, err)
	assert.Nil(t, rec)
}

func TestDelete_NotFound(t *testing.T) {
	svc, _ := setupService()

	deletion, err := svc.Delete(context.Background(), 404)

	assert.NoError(t, err)
	assert.Nil(t, deletion)
}

func TestDelete_ReturnsLastState(t *testing.T) {
	svc, store := setupService()
	ctx := context.Background()
	reporter := store.addUser("alice")
	created, err := svc.Create(ctx, reporter, service.CreateIssueInput{Title: "Flaky test"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, created.ID, service.IssuePatch{Status: service.Some(model.IssueStatusClosed)})
	require.NoError(t, err)

	deletion, err := svc.Delete(ctx, created.ID)

	require.NoError(t, err)
	require.NotNil(t, deletion)
	assert.Equal(t, created.ID, deletion.ID)
	assert.Equal(t, "Flaky test", deletion.Title)
	assert.Equal(t, model.IssueStatusClosed, deletion.Status)
	assert.Contains(t, deletion.Message, "Flaky test")
	assert.Contains(t, deletion.Message, "1")
	assert.False(t, deletion.DeletedAt.IsZero())

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	again, err := svc.Delete(ctx, created.ID)
	assert.NoError(t, err)
	assert.Nil(t, again)
}

func seedIssues(t *testing.T, svc *service.IssueService, store *memStore) (reporter, other uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	reporter = store.addUser("alice")
	other = store.addUser("bob")

	inputs := []service.CreateIssueInput{
		{Title: "Crash on startup", Status: model.IssueStatusOpen, Priority: model.IssuePriorityHigh},
		{Title: "Slow dashboard", Description: "the foo widget lags", Status: model.IssueStatusInProgress, AssigneeID: &other},
		{Title: "Fix FOO exporter", Status: model.IssueStatusResolved},
		{Title: "Typo in footer", Status: model.IssueStatusOpen, AssigneeID: &other},
	}
	for _, in := range inputs {
		_, err := svc.Create(ctx, reporter, in)
		require.NoError(t, err)
	}
	return reporter, other
}

func titles(recs []model.IssueRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Title
	}
	return out
}

func TestList_NewestFirst(t *testing.T) {
	svc, store := setupService()
	seedIssues(t, svc, store)

	all, err := svc.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"Typo in footer", "Fix FOO exporter", "Slow dashboard", "Crash on startup"}, titles(all))
}

func TestSearch(t *testing.T) {
	svc, store := setupService()
	reporter, other := seedIssues(t, svc, store)
	ctx := context.Background()

	t.Run("no filters returns everything newest first", func(t *testing.T) {
		got, err := svc.Search(ctx, service.SearchCriteria{})
		require.NoError(t, err)
		assert.Equal(t, []string{"Typo in footer", "Fix FOO exporter", "Slow dashboard", "Crash on startup"}, titles(got))
	})

	t.Run("status", func(t *testing.T) {
		got, err := svc.Search(ctx, service.SearchCriteria{Status: model.IssueStatusResolved})
		require.NoError(t, err)
		assert.Equal(t, []string{"Fix FOO exporter"}, titles(got))
	})

	t.Run("keywords match title or description", func(t *testing.T) {
		got, err := svc.Search(ctx, service.SearchCriteria{Keywords: "foo"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Typo in footer", "Fix FOO exporter", "Slow dashboard"}, titles(got))
	})

	t.Run("filters are combined", func(t *testing.T) {
		got, err := svc.Search(ctx, service.SearchCriteria{Keywords: "foo", AssigneeID: &other, Status: model.IssueStatusOpen})
		require.NoError(t, err)
		assert.Equal(t, []string{"Typo in footer"}, titles(got))
	})

	t.Run("title and reporter", func(t *testing.T) {
		got, err := svc.Search(ctx, service.SearchCriteria{Title: "crash", ReporterID: &reporter, Priority: model.IssuePriorityHigh})
		require.NoError(t, err)
		assert.Equal(t, []string{"Crash on startup"}, titles(got))
	})

	t.Run("unknown reporter matches nothing", func(t *testing.T) {
		stranger := uuid.New()
		got, err := svc.Search(ctx, service.SearchCriteria{ReporterID: &stranger})
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("invalid status", func(t *testing.T) {
		_, err := svc.Search(ctx, service.SearchCriteria{Status: "Pending"})
		assert.ErrorIs(t, err, service.ErrInvalidStatus)
	})
}

func TestStatusReport(t *testing.T) {
	svc, store := setupService()
	ctx := context.Background()
	reporter := store.addUser("alice")
	for _, status := range []model.IssueStatus{model.IssueStatusResolved, model.IssueStatusOpen, model.IssueStatusInProgress, model.IssueStatusOpen} {
		_, err := svc.Create(ctx, reporter, service.CreateIssueInput{Title: "x", Status: status})
		require.NoError(t, err)
	}

	rows, err := svc.StatusReport(ctx)

	require.NoError(t, err)
	assert.Equal(t, []model.StatusCount{
		{Status: model.IssueStatusOpen, Count: 2},
		{Status: model.IssueStatusInProgress, Count: 1},
		{Status: model.IssueStatusResolved, Count: 1},
	}, rows)
}

func TestStatusReport_Empty(t *testing.T) {
	svc, _ := setupService()

	rows, err := svc.StatusReport(context.Background())

	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestOptional_UnmarshalJSON(t *testing.T) {
	var payload struct {
		Title    service.Optional[string]  `json:"title"`
		Assignee service.Optional[*string] `json:"assignee"`
		Status   service.Optional[string]  `json:"status"`
	}

	err := json.Unmarshal([]byte(`{"title":"X","assignee":null}`), &payload)

	require.NoError(t, err)
	assert.True(t, payload.Title.Set)
	assert.Equal(t, "X", payload.Title.Value)
	assert.True(t, payload.Assignee.Set)
	assert.Nil(t, payload.Assignee.Value)
	assert.False(t, payload.Status.Set)
}
