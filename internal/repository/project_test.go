package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskboard/taskboard-go/internal/model"
)

func TestProjectRepository_Save_New(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProjectRepository(db)
	repo.now = func() time.Time { return fixedNow }
	owner := ulid.Make()

	mock.ExpectExec(`INSERT INTO projects .* ON DUPLICATE KEY UPDATE`).
		WithArgs(sqlmock.AnyArg(), owner.String(), "Roadmap", fixedNow, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))

	project := model.NewProject(owner, "Roadmap")
	task := model.NewTask("t", "", nil, model.PriorityLow, fixedNow)
	project.AddTask(task)

	require.NoError(t, repo.Save(context.Background(), project))
	assert.False(t, project.ID.IsZero())
	assert.Equal(t, fixedNow, project.CreatedAt)
	assert.Equal(t, fixedNow, project.UpdatedAt)
	assert.Equal(t, project.ID, task.ProjectID, "tasks follow the assigned project id")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_Save_ExistingKeepsCreatedAt(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProjectRepository(db)
	repo.now = func() time.Time { return fixedNow }

	created := fixedNow.Add(-time.Hour)
	project := &model.Project{ID: ulid.Make(), OwnerID: ulid.Make(), Name: "Renamed", CreatedAt: created}

	mock.ExpectExec(`INSERT INTO projects`).
		WithArgs(project.ID.String(), project.OwnerID.String(), "Renamed", created, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.Save(context.Background(), project))
	assert.Equal(t, created, project.CreatedAt)
	assert.Equal(t, fixedNow, project.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_Save_UnknownOwner(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(`INSERT INTO projects`).
		WillReturnError(&mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"})

	err := NewProjectRepository(db).Save(context.Background(), model.NewProject(ulid.Make(), "x"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProjectRepository_ListByOwner(t *testing.T) {
	db, mock := newMock(t)
	owner := ulid.Make()
	first, second := ulid.Make(), ulid.Make()

	rows := sqlmock.NewRows([]string{"id", "owner_id", "name", "created_at", "updated_at"}).
		AddRow(first.String(), owner.String(), "one", fixedNow, fixedNow).
		AddRow(second.String(), owner.String(), "two", fixedNow, fixedNow)
	mock.ExpectQuery(`SELECT .* FROM projects WHERE owner_id = \? ORDER BY created_at, id`).
		WithArgs(owner.String()).
		WillReturnRows(rows)

	projects, err := NewProjectRepository(db).ListByOwner(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, first, projects[0].ID)
	assert.Equal(t, second, projects[1].ID)
	assert.Equal(t, owner, projects[1].OwnerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_ListByOwner_Empty(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`SELECT .* FROM projects`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "name", "created_at", "updated_at"}))

	projects, err := NewProjectRepository(db).ListByOwner(context.Background(), ulid.Make())
	require.NoError(t, err)
	assert.NotNil(t, projects)
	assert.Empty(t, projects)
}

func TestProjectRepository_Delete(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "deleted", affected: 1},
		{name: "missing", affected: 0, wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMock(t)
			id := ulid.Make()

			mock.ExpectExec(`DELETE FROM projects WHERE id = \?`).
				WithArgs(id.String()).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			err := NewProjectRepository(db).Delete(context.Background(), id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
