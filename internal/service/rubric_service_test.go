package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonsbeekmedia/competgrade-api/internal/models"
	appErrors "github.com/sonsbeekmedia/competgrade-api/pkg/errors"
)

type fakeRubricRepo struct {
	scripts  map[int64]*models.Script
	criteria map[int64]*models.Criterium
	nextID   int64
	calls    []string
}

func newFakeRubricRepo() *fakeRubricRepo {
	return &fakeRubricRepo{scripts: map[int64]*models.Script{}, criteria: map[int64]*models.Criterium{}, nextID: 1}
}

func (f *fakeRubricRepo) FindScript(ctx context.Context, id int64) (*models.Script, error) {
	if script, ok := f.scripts[id]; ok {
		copied := *script
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRubricRepo) FindCriterium(ctx context.Context, id int64) (*models.Criterium, error) {
	if criterium, ok := f.criteria[id]; ok {
		copied := *criterium
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRubricRepo) ListScripts(ctx context.Context, activityID int64) ([]models.Script, error) {
	var result []models.Script
	for id := int64(1); id < f.nextID; id++ {
		if script, ok := f.scripts[id]; ok && script.ActivityID == activityID {
			result = append(result, *script)
		}
	}
	return result, nil
}

func (f *fakeRubricRepo) ListCriteria(ctx context.Context, activityID int64) ([]models.Criterium, error) {
	var result []models.Criterium
	for id := int64(1); id < f.nextID; id++ {
		if criterium, ok := f.criteria[id]; ok && criterium.ActivityID == activityID {
			result = append(result, *criterium)
		}
	}
	return result, nil
}

func (f *fakeRubricRepo) InsertScript(ctx context.Context, script *models.Script) (int64, error) {
	script.ID = f.nextID
	f.nextID++
	copied := *script
	f.scripts[script.ID] = &copied
	return script.ID, nil
}

func (f *fakeRubricRepo) UpdateScript(ctx context.Context, script *models.Script) error {
	if _, ok := f.scripts[script.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *script
	f.scripts[script.ID] = &copied
	return nil
}

func (f *fakeRubricRepo) DeleteScript(ctx context.Context, id int64) error {
	f.calls = append(f.calls, "delete_script")
	if _, ok := f.scripts[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.scripts, id)
	return nil
}

func (f *fakeRubricRepo) InsertCriterium(ctx context.Context, criterium *models.Criterium) (int64, error) {
	criterium.ID = f.nextID
	f.nextID++
	copied := *criterium
	f.criteria[criterium.ID] = &copied
	return criterium.ID, nil
}

func (f *fakeRubricRepo) UpdateCriterium(ctx context.Context, criterium *models.Criterium) error {
	if _, ok := f.criteria[criterium.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *criterium
	f.criteria[criterium.ID] = &copied
	return nil
}

func (f *fakeRubricRepo) DeleteCriterium(ctx context.Context, id int64) error {
	if _, ok := f.criteria[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.criteria, id)
	return nil
}

func (f *fakeRubricRepo) DeleteCriteriaByScript(ctx context.Context, scriptID int64) error {
	f.calls = append(f.calls, "delete_criteria")
	for id, criterium := range f.criteria {
		if criterium.ScriptID == scriptID {
			delete(f.criteria, id)
		}
	}
	return nil
}

func newRubricFixture() (*RubricService, *fakeRubricRepo) {
	rubric := newFakeRubricRepo()
	activities := &fakeActivityResolver{activities: map[int64]*models.Activity{
		1: {ID: 1, Name: "Clinical skills"},
	}}
	return NewRubricService(rubric, activities, nil, nil), rubric
}

func TestDeleteScriptCascadesCriteriaFirst(t *testing.T) {
	svc, rubric := newRubricFixture()

	scriptID, err := svc.SaveScript(context.Background(), 5, models.SaveScriptRequest{ActivityID: 1, Name: "Anamnesis", SortOrder: 1})
	require.NoError(t, err)
	_, err = svc.SaveCriterium(context.Background(), 5, models.SaveCriteriumRequest{ActivityID: 1, ScriptID: scriptID, Name: "Asks history", SortOrder: 1})
	require.NoError(t, err)
	_, err = svc.SaveCriterium(context.Background(), 5, models.SaveCriteriumRequest{ActivityID: 1, ScriptID: scriptID, Name: "Summarises", SortOrder: 2})
	require.NoError(t, err)

	rubric.calls = nil
	err = svc.DeleteScript(context.Background(), 5, scriptID)
	require.NoError(t, err)
	assert.Equal(t, []string{"delete_criteria", "delete_script"}, rubric.calls)
	assert.Empty(t, rubric.criteria)
	assert.Empty(t, rubric.scripts)
}

func TestDeleteMissingScriptFails(t *testing.T) {
	svc, _ := newRubricFixture()

	err := svc.DeleteScript(context.Background(), 5, 77)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestListRubricNestsAndOrders(t *testing.T) {
	svc, _ := newRubricFixture()

	scriptID, err := svc.SaveScript(context.Background(), 5, models.SaveScriptRequest{ActivityID: 1, Name: "Examination", SortOrder: 1})
	require.NoError(t, err)
	_, err = svc.SaveCriterium(context.Background(), 5, models.SaveCriteriumRequest{ActivityID: 1, ScriptID: scriptID, Name: "Palpation", SortOrder: 1})
	require.NoError(t, err)
	_, err = svc.SaveCriterium(context.Background(), 5, models.SaveCriteriumRequest{ActivityID: 1, Name: "Free-standing", SortOrder: 1})
	require.NoError(t, err)

	rubric, err := svc.ListRubric(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, rubric, 2)
	assert.Equal(t, "Examination", rubric[0].Name)
	require.Len(t, rubric[0].Criteria, 1)
	assert.Zero(t, rubric[1].ID)
	require.Len(t, rubric[1].Criteria, 1)
	assert.Equal(t, "Free-standing", rubric[1].Criteria[0].Name)
}

func TestSaveCriteriumScriptMustBelongToActivity(t *testing.T) {
	svc, rubric := newRubricFixture()

	rubric.scripts[50] = &models.Script{ID: 50, ActivityID: 2, Name: "Other activity"}
	rubric.nextID = 51

	_, err := svc.SaveCriterium(context.Background(), 5, models.SaveCriteriumRequest{ActivityID: 1, ScriptID: 50, Name: "Mismatch", SortOrder: 1})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
