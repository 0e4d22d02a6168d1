package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonsbeekmedia/competgrade-api/internal/middleware"
	"github.com/sonsbeekmedia/competgrade-api/internal/models"
)

type fakeCommentSrv struct {
	savedID   int64
	lastSave  models.SaveCommentRequest
	deletedID int64
	single    *models.SingleComment
	lastType  int
	groups    *models.CommentGroups
}

func (f *fakeCommentSrv) SaveComment(_ context.Context, actorID int64, req models.SaveCommentRequest) (int64, error) {
	f.lastSave = req
	return f.savedID, nil
}

func (f *fakeCommentSrv) DeleteComment(_ context.Context, actorID, commentID int64) (int64, error) {
	f.deletedID = commentID
	return commentID, nil
}

func (f *fakeCommentSrv) GetSingle(_ context.Context, activityID, userID int64, commentType int) (*models.SingleComment, error) {
	f.lastType = commentType
	return f.single, nil
}

func (f *fakeCommentSrv) ListForUser(context.Context, int64, int64) (*models.CommentGroups, error) {
	return f.groups, nil
}

func TestCommentHandlerSave(t *testing.T) {
	srv := &fakeCommentSrv{savedID: 9}
	handler := NewCommentHandler(srv)

	c, rec := testContext(t, http.MethodPost, "/activities/1/comment", models.SaveCommentRequest{
		UserID: 42, Type: models.CommentTypeGlobal, Title: "Overall", Text: "Good",
	})
	c.Params = gin.Params{{Key: "activityId", Value: "1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: 7, Role: models.RoleTeacher})

	handler.Save(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, float64(9), envelope.Data["commentid"])
	assert.Equal(t, int64(1), srv.lastSave.ActivityID)
}

func TestCommentHandlerDelete(t *testing.T) {
	srv := &fakeCommentSrv{}
	handler := NewCommentHandler(srv)

	c, rec := testContext(t, http.MethodPost, "/comments/4/delete", nil)
	c.Params = gin.Params{{Key: "commentId", Value: "4"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: 7, Role: models.RoleTeacher})

	handler.Delete(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, float64(4), envelope.Data["commentid"])
	assert.Equal(t, int64(4), srv.deletedID)
}

func TestCommentHandlerGetSingleDefaultsToGlobal(t *testing.T) {
	srv := &fakeCommentSrv{single: &models.SingleComment{}}
	handler := NewCommentHandler(srv)

	c, rec := testContext(t, http.MethodGet, "/activities/1/users/42/comment", nil)
	c.Params = gin.Params{{Key: "activityId", Value: "1"}, {Key: "userId", Value: "42"}}

	handler.GetSingle(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.CommentTypeGlobal, srv.lastType)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, float64(0), envelope.Data["commentid"])
}

func TestCommentHandlerGetSingleRejectsUnknownType(t *testing.T) {
	handler := NewCommentHandler(&fakeCommentSrv{})

	c, rec := testContext(t, http.MethodGet, "/activities/1/users/42/comment?type=5", nil)
	c.Params = gin.Params{{Key: "activityId", Value: "1"}, {Key: "userId", Value: "42"}}

	handler.GetSingle(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCommentHandlerListForUser(t *testing.T) {
	srv := &fakeCommentSrv{groups: &models.CommentGroups{
		UserComments: []models.CommentBucket{
			{FullName: "Anna Vries", Comments: []models.Comment{{ID: 1, AuthorID: 42}}},
		},
		AppraiserComments: []models.CommentBucket{},
	}}
	handler := NewCommentHandler(srv)

	c, rec := testContext(t, http.MethodGet, "/activities/1/users/42/comments", nil)
	c.Params = gin.Params{{Key: "activityId", Value: "1"}, {Key: "userId", Value: "42"}}

	handler.ListForUser(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	self, ok := envelope.Data["usercomments"].([]interface{})
	require.True(t, ok)
	require.Len(t, self, 1)
	appraisers, ok := envelope.Data["appraisercomments"].([]interface{})
	require.True(t, ok)
	assert.Empty(t, appraisers)
}
