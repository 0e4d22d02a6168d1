package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonsbeekmedia/competgrade-api/internal/middleware"
	"github.com/sonsbeekmedia/competgrade-api/internal/models"
	appErrors "github.com/sonsbeekmedia/competgrade-api/pkg/errors"
)

type fakeGradingSrv struct {
	savedID   int64
	saveErr   error
	lastActor int64
	lastSave  models.SaveGradeRequest
	deleteErr error
	roster    *models.Roster
	rosterErr error
}

func (f *fakeGradingSrv) SaveGrade(_ context.Context, actorID int64, req models.SaveGradeRequest) (int64, error) {
	f.lastActor = actorID
	f.lastSave = req
	return f.savedID, f.saveErr
}

func (f *fakeGradingSrv) DeleteGrade(_ context.Context, actorID int64, req models.DeleteGradeRequest) error {
	f.lastActor = actorID
	return f.deleteErr
}

func (f *fakeGradingSrv) Roster(context.Context, int64, int64) (*models.Roster, error) {
	return f.roster, f.rosterErr
}

func (f *fakeGradingSrv) ExportRoster(context.Context, int64, int64, string) ([]byte, string, error) {
	return []byte("id,grade\n"), "text/csv", nil
}

func testContext(t *testing.T, method, target string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	c.Request = httptest.NewRequest(method, target, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	return c, rec
}

func TestGradingHandlerUserlist(t *testing.T) {
	srv := &fakeGradingSrv{roster: &models.Roster{
		Success: 1,
		Userlist: []models.RosterEntry{
			{UserID: 42, FullName: "Anna Vries", GradeID: 3, Grade: 7},
		},
	}}
	handler := NewGradingHandler(srv, nil)

	c, rec := testContext(t, http.MethodGet, "/activities/1/userlist", nil)
	c.Params = gin.Params{{Key: "activityId", Value: "1"}}

	handler.Userlist(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, float64(1), envelope.Data["success"])
	users, ok := envelope.Data["userlist"].([]interface{})
	require.True(t, ok)
	require.Len(t, users, 1)
	entry := users[0].(map[string]interface{})
	assert.Equal(t, "Anna Vries", entry["fullname"])
	assert.Equal(t, float64(3), entry["gradeid"])
}

func TestGradingHandlerUserlistBadActivityID(t *testing.T) {
	handler := NewGradingHandler(&fakeGradingSrv{}, nil)

	c, rec := testContext(t, http.MethodGet, "/activities/abc/userlist", nil)
	c.Params = gin.Params{{Key: "activityId", Value: "abc"}}

	handler.Userlist(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGradingHandlerSaveGrade(t *testing.T) {
	srv := &fakeGradingSrv{savedID: 11}
	handler := NewGradingHandler(srv, nil)

	c, rec := testContext(t, http.MethodPost, "/activities/1/grade", models.SaveGradeRequest{UserID: 42, Value: 7})
	c.Params = gin.Params{{Key: "activityId", Value: "1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: 5, Role: models.RoleTeacher})

	handler.SaveGrade(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, float64(11), envelope.Data["gradeid"])
	assert.Equal(t, int64(5), srv.lastActor)
	assert.Equal(t, int64(1), srv.lastSave.ActivityID)
}

func TestGradingHandlerSaveGradeRequiresAuth(t *testing.T) {
	handler := NewGradingHandler(&fakeGradingSrv{}, nil)

	c, rec := testContext(t, http.MethodPost, "/activities/1/grade", models.SaveGradeRequest{UserID: 42})
	c.Params = gin.Params{{Key: "activityId", Value: "1"}}

	handler.SaveGrade(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGradingHandlerDeleteGrade(t *testing.T) {
	handler := NewGradingHandler(&fakeGradingSrv{}, nil)

	c, rec := testContext(t, http.MethodPost, "/activities/1/deletegrade", models.DeleteGradeRequest{UserID: 42})
	c.Params = gin.Params{{Key: "activityId", Value: "1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: 5, Role: models.RoleTeacher})

	handler.DeleteGrade(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	warnings, ok := envelope.Data["warnings"].([]interface{})
	require.True(t, ok)
	assert.Empty(t, warnings)
}

func TestGradingHandlerDeleteGradeNotFound(t *testing.T) {
	handler := NewGradingHandler(&fakeGradingSrv{deleteErr: appErrors.ErrNotFound}, nil)

	c, rec := testContext(t, http.MethodPost, "/activities/1/deletegrade", models.DeleteGradeRequest{UserID: 42})
	c.Params = gin.Params{{Key: "activityId", Value: "1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: 5, Role: models.RoleTeacher})

	handler.DeleteGrade(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGradingHandlerExport(t *testing.T) {
	handler := NewGradingHandler(&fakeGradingSrv{}, nil)

	c, rec := testContext(t, http.MethodGet, "/activities/1/export?format=csv", nil)
	c.Params = gin.Params{{Key: "activityId", Value: "1"}}

	handler.Export(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "roster-1.csv")
}

type fakeArchiver struct {
	lastFilename string
	lastPayload  []byte
}

func (f *fakeArchiver) Archive(filename string, payload []byte) (string, error) {
	f.lastFilename = filename
	f.lastPayload = payload
	return "signed-token", nil
}

func (f *fakeArchiver) Download(string) (*os.File, error) {
	return nil, appErrors.ErrNotFound
}

func TestGradingHandlerExportArchivesCopy(t *testing.T) {
	archiver := &fakeArchiver{}
	handler := NewGradingHandler(&fakeGradingSrv{}, archiver)

	c, rec := testContext(t, http.MethodGet, "/activities/1/export?format=csv", nil)
	c.Params = gin.Params{{Key: "activityId", Value: "1"}}

	handler.Export(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "signed-token", rec.Header().Get("X-Export-Token"))
	assert.Equal(t, "roster-1.csv", archiver.lastFilename)
	assert.NotEmpty(t, archiver.lastPayload)
}

type responseEnvelope struct {
	Data map[string]interface{} `json:"data"`
	Meta map[string]interface{} `json:"meta"`
}
