package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"projecthub/internal/model"
	"projecthub/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		DriverName:           "postgres",
		Conn:                 db,
		PreferSimpleProtocol: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

var issueColumns = []string{
	"id", "title", "description", "status", "priority", "reporter_id", "assignee_id",
	"project_id", "project_task_id", "independent_task_id", "created_at", "updated_at",
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "users"`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})
	mock.ExpectRollback()

	err := userRepo.Create(context.Background(), &model.User{Email: "dup@example.com", Username: "dup", HashedPassword: "x"})

	assert.ErrorIs(t, err, repository.ErrEmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail_Found(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	userID := uuid.New()
	email := "test@example.com"

	// Ожидаем SQL запрос на поиск пользователя по email
	mock.ExpectQuery(`SELECT .* FROM "users" WHERE email = .* LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "hashed_password", "username", "role", "created_at"}).
			AddRow(userID.String(), email, "hashed_password", "Test User", model.RoleManager, time.Now()))

	user, err := userRepo.FindByEmail(context.Background(), email)

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, "Test User", user.Username)
	assert.Equal(t, model.RoleManager, user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	mock.ExpectQuery(`SELECT .* FROM "users" WHERE email = .* LIMIT`).
		WillReturnError(gorm.ErrRecordNotFound)

	user, err := userRepo.FindByEmail(context.Background(), "nonexistent@example.com")

	assert.NoError(t, err) // отсутствие записи не считается ошибкой
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail_Error(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	mock.ExpectQuery(`SELECT .* FROM "users" WHERE email = .* LIMIT`).
		WillReturnError(assert.AnError)

	user, err := userRepo.FindByEmail(context.Background(), "test@example.com")

	assert.Error(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Exists(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "users" WHERE id = `).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "users" WHERE id = `).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	ok, err := userRepo.Exists(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = userRepo.Exists(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueRepository_Create(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	issueRepo := repository.NewIssueRepository(gormDB)

	issue := &model.Issue{
		Title:      "Login fails",
		Status:     model.IssueStatusOpen,
		Priority:   model.IssuePriorityHigh,
		ReporterID: uuid.New(),
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "issues"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectCommit()

	err := issueRepo.Create(context.Background(), issue)

	require.NoError(t, err)
	assert.Equal(t, uint(42), issue.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueRepository_GetByID(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	issueRepo := repository.NewIssueRepository(gormDB)

	reporter := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT \* FROM "issues" WHERE id = `).
		WillReturnRows(sqlmock.NewRows(issueColumns).
			AddRow(7, "Crash on save", "", "InProgress", "Urgent", reporter.String(), nil, 3, nil, nil, now, now))

	issue, err := issueRepo.GetByID(context.Background(), 7)

	require.NoError(t, err)
	require.NotNil(t, issue)
	assert.Equal(t, uint(7), issue.ID)
	assert.Equal(t, model.IssueStatusInProgress, issue.Status)
	assert.Equal(t, model.IssuePriorityUrgent, issue.Priority)
	assert.Equal(t, reporter, issue.ReporterID)
	assert.Nil(t, issue.AssigneeID)
	require.NotNil(t, issue.ProjectID)
	assert.Equal(t, uint(3), *issue.ProjectID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueRepository_GetByID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	issueRepo := repository.NewIssueRepository(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "issues" WHERE id = `).
		WillReturnRows(sqlmock.NewRows(issueColumns))

	issue, err := issueRepo.GetByID(context.Background(), 404)

	assert.NoError(t, err)
	assert.Nil(t, issue)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueRepository_Search(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	issueRepo := repository.NewIssueRepository(gormDB)

	// "_" is a LIKE wildcard and must reach the database escaped
	mock.ExpectQuery(`SELECT \* FROM "issues" WHERE LOWER\(title\) LIKE .* AND status = .* ORDER BY created_at DESC,id DESC`).
		WithArgs(`%login\_bug%`, "Open").
		WillReturnRows(sqlmock.NewRows(issueColumns))

	issues, err := issueRepo.Search(context.Background(), repository.IssueFilter{
		Title:  "Login_Bug",
		Status: model.IssueStatusOpen,
	})

	require.NoError(t, err)
	assert.Empty(t, issues)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueRepository_Update_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	issueRepo := repository.NewIssueRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "issues" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := issueRepo.Update(context.Background(), &model.Issue{ID: 9, Title: "x", UpdatedAt: time.Now()})

	assert.ErrorIs(t, err, repository.ErrIssueNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueRepository_Delete(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	issueRepo := repository.NewIssueRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "issues" WHERE id = `).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "issues" WHERE id = `).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	assert.NoError(t, issueRepo.Delete(context.Background(), 1))
	assert.ErrorIs(t, issueRepo.Delete(context.Background(), 1), repository.ErrIssueNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueRepository_CountByStatus(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	issueRepo := repository.NewIssueRepository(gormDB)

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) AS count FROM "issues" GROUP BY`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("InProgress", 1).
			AddRow("Open", 2))

	rows, err := issueRepo.CountByStatus(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []model.StatusCount{
		{Status: model.IssueStatusInProgress, Count: 1},
		{Status: model.IssueStatusOpen, Count: 2},
	}, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_TransactionRollsBack(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	store := repository.NewStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "issues"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectRollback()

	failure := errors.New("assignee vanished")
	err := store.Transaction(context.Background(), func(tx repository.Store) error {
		if err := tx.Issues().Create(context.Background(), &model.Issue{
			Title:      "rolled back",
			Status:     model.IssueStatusOpen,
			Priority:   model.IssuePriorityLow,
			ReporterID: uuid.New(),
		}); err != nil {
			return err
		}
		return failure
	})

	assert.ErrorIs(t, err, failure)
	assert.NoError(t, mock.ExpectationsWereMet())
}
