package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"taskdesk/internal/model"
	"taskdesk/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupSQLiteRepository creates a file-backed SQLite database in a temp dir.
func setupSQLiteRepository(t *testing.T) (*repository.TaskRepository, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "tasks.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	repo := repository.NewTaskRepository(db)
	require.NoError(t, repo.Migrate(context.Background()))
	t.Cleanup(func() { _ = repo.Close() })
	return repo, db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		DriverName:           "postgres",
		Conn:                 db,
		PreferSimpleProtocol: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	assert.NoError(t, err)

	return gormDB, mock
}

func TestTaskRepository_SQLite(t *testing.T) {
	runStoreContract(t, func(t *testing.T) repository.TaskStore {
		repo, _ := setupSQLiteRepository(t)
		return repo
	})
}

func TestTaskRepository_List_OrdersByCreation(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupSQLiteRepository(t)
	base := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	// Вставляем более позднюю задачу первой
	second := newTask("second", model.ImportanceLow, 1)
	second.CreatedAt = base.Add(123450 * time.Microsecond)
	first := newTask("first", model.ImportanceLow, 1)
	first.CreatedAt = base.Add(123400 * time.Microsecond)
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, first))

	tasks, err := repo.List(ctx, repository.ListFilter{})

	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "first", tasks[0].Title)
	assert.Equal(t, "second", tasks[1].Title)
}

func TestTaskRepository_List_SkipsMalformedRows(t *testing.T) {
	// Arrange
	repo, db := setupSQLiteRepository(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newTask("good", model.ImportanceHigh, 1)))

	bad := repository.NewRecord(*newTask("bad", model.ImportanceLow, 1))
	bad.ID = "bad-row"
	bad.Fecha = "31/12/2026"
	require.NoError(t, db.Create(&bad).Error)

	// Act
	tasks, err := repo.List(ctx, repository.ListFilter{})

	// Assert
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "good", tasks[0].Title)

	_, err = repo.Get(ctx, "bad-row")
	assert.ErrorIs(t, err, repository.ErrRead)
}

func TestTaskRepository_UpdateStatus_NotFound(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	// Ожидаем UPDATE, который не затронул ни одной строки
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "tareas" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	// Act
	err := repo.UpdateStatus(context.Background(), "missing", true)

	// Assert
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_List_PushesDownCompleted(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "tareas" WHERE completada = .* ORDER BY creada`).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "titulo", "descripcion", "fecha", "importancia", "completada", "creada", "actualizada",
		}).AddRow("t1", "Buy milk", "", "2026-10-23", "Baja", true, "2026-10-18T10:00:00Z", "2026-10-18T11:00:00Z"))

	// Act
	done := true
	tasks, err := repo.List(context.Background(), repository.ListFilter{Completed: &done})

	// Assert
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Buy milk", tasks[0].Title)
	assert.Equal(t, model.ImportanceLow, tasks[0].Importance)
	assert.True(t, tasks[0].Completed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_List_Error(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "tareas"`).
		WillReturnError(assert.AnError)

	// Act
	tasks, err := repo.List(context.Background(), repository.ListFilter{})

	// Assert
	assert.ErrorIs(t, err, repository.ErrRead)
	assert.Nil(t, tasks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Create_Error(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "tareas"`).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	// Act
	err := repo.Create(context.Background(), newTask("rejected", model.ImportanceMedium, 1))

	// Assert
	assert.ErrorIs(t, err, repository.ErrWrite)
	assert.NoError(t, mock.ExpectationsWereMet())
}
