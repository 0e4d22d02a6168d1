package repository

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonsbeekmedia/competgrade-api/internal/models"
)

func TestListScriptsOrdered(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRubricRepository(db)

	rows := sqlmock.NewRows([]string{"id", "activity_id", "name", "sort_order"}).
		AddRow(int64(1), int64(1), "Anamnesis", 1).
		AddRow(int64(2), int64(1), "Examination", 2)
	mock.ExpectQuery("SELECT id, activity_id, name, sort_order FROM scripts").
		WithArgs(int64(1)).
		WillReturnRows(rows)

	scripts, err := repo.ListScripts(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, scripts, 2)
	assert.Equal(t, "Anamnesis", scripts[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertCriteriumReturnsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRubricRepository(db)

	mock.ExpectQuery("INSERT INTO criteria").
		WithArgs(int64(1), int64(2), "Thyroid palpation", 3).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(14)))

	criterium := &models.Criterium{ActivityID: 1, ScriptID: 2, Name: "Thyroid palpation", SortOrder: 3}
	id, err := repo.InsertCriterium(context.Background(), criterium)
	require.NoError(t, err)
	assert.Equal(t, int64(14), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteScriptMissingRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRubricRepository(db)

	mock.ExpectExec("DELETE FROM scripts WHERE id").
		WithArgs(int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteScript(context.Background(), 8)
	assert.Equal(t, sql.ErrNoRows, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCriteriaByScript(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRubricRepository(db)

	mock.ExpectExec("DELETE FROM criteria WHERE script_id").
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 4))

	err := repo.DeleteCriteriaByScript(context.Background(), 2)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
