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

type fakeCommentRepo struct {
	comments map[int64]*models.Comment
	nextID   int64
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: map[int64]*models.Comment{}, nextID: 1}
}

func (f *fakeCommentRepo) FindByID(ctx context.Context, id int64) (*models.Comment, error) {
	if comment, ok := f.comments[id]; ok {
		copied := *comment
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeCommentRepo) FindSingle(ctx context.Context, activityID, userID int64, commentType int) (*models.Comment, error) {
	for id := int64(1); id < f.nextID; id++ {
		comment, ok := f.comments[id]
		if !ok {
			continue
		}
		if comment.ActivityID == activityID && comment.UserID == userID && comment.Type == commentType {
			copied := *comment
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeCommentRepo) ListByActivityUserType(ctx context.Context, activityID, userID int64, commentType int) ([]models.Comment, error) {
	var result []models.Comment
	for id := int64(1); id < f.nextID; id++ {
		comment, ok := f.comments[id]
		if !ok {
			continue
		}
		if comment.ActivityID == activityID && comment.UserID == userID && comment.Type == commentType {
			result = append(result, *comment)
		}
	}
	return result, nil
}

func (f *fakeCommentRepo) Insert(ctx context.Context, comment *models.Comment) (int64, error) {
	comment.ID = f.nextID
	f.nextID++
	copied := *comment
	f.comments[comment.ID] = &copied
	return comment.ID, nil
}

func (f *fakeCommentRepo) Update(ctx context.Context, comment *models.Comment) error {
	if _, ok := f.comments[comment.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *comment
	f.comments[comment.ID] = &copied
	return nil
}

func (f *fakeCommentRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.comments[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.comments, id)
	return nil
}

type fakeAuthorLookup struct {
	users map[int64]models.User
}

func (f *fakeAuthorLookup) FindByIDs(ctx context.Context, ids []int64) (map[int64]models.User, error) {
	result := make(map[int64]models.User, len(ids))
	for _, id := range ids {
		if user, ok := f.users[id]; ok {
			result[id] = user
		}
	}
	return result, nil
}

func newCommentFixture() (*CommentService, *fakeCommentRepo) {
	comments := newFakeCommentRepo()
	activities := &fakeActivityResolver{activities: map[int64]*models.Activity{
		1: {ID: 1, Name: "Clinical skills"},
	}}
	authors := &fakeAuthorLookup{users: map[int64]models.User{
		42: {ID: 42, FirstName: "Anna", LastName: "Vries", Picture: "https://cdn.example.com/42.png"},
		7:  {ID: 7, FirstName: "Pieter", LastName: "Bakker", Picture: "https://cdn.example.com/7.png"},
		9:  {ID: 9, FirstName: "Sofie", LastName: "Smit", Picture: "https://cdn.example.com/9.png"},
	}}
	svc := NewCommentService(comments, activities, authors, nil, nil)
	return svc, comments
}

func TestSaveCommentThenGetSingleRoundTrip(t *testing.T) {
	svc, _ := newCommentFixture()

	id, err := svc.SaveComment(context.Background(), 7, models.SaveCommentRequest{
		ActivityID: 1, UserID: 42, Type: models.CommentTypeGlobal, Title: "Overall", Text: "Good progress",
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	single, err := svc.GetSingle(context.Background(), 1, 42, models.CommentTypeGlobal)
	require.NoError(t, err)
	assert.Equal(t, id, single.CommentID)
	assert.Equal(t, "Overall", single.Title)
	assert.Equal(t, "Good progress", single.Text)
}

func TestGetSingleEmptySlotReturnsSentinel(t *testing.T) {
	svc, _ := newCommentFixture()

	single, err := svc.GetSingle(context.Background(), 1, 42, models.CommentTypeGlobal)
	require.NoError(t, err)
	assert.Zero(t, single.CommentID)
	assert.Empty(t, single.Title)
	assert.Empty(t, single.Text)
}

func TestDeleteCommentThenGetSingleReturnsSentinel(t *testing.T) {
	svc, _ := newCommentFixture()

	id, err := svc.SaveComment(context.Background(), 7, models.SaveCommentRequest{
		ActivityID: 1, UserID: 42, Type: models.CommentTypeGlobal, Text: "Good progress",
	})
	require.NoError(t, err)

	deleted, err := svc.DeleteComment(context.Background(), 7, id)
	require.NoError(t, err)
	assert.Equal(t, id, deleted)

	single, err := svc.GetSingle(context.Background(), 1, 42, models.CommentTypeGlobal)
	require.NoError(t, err)
	assert.Zero(t, single.CommentID)
}

func TestSaveCommentWithIDUpdatesSameRow(t *testing.T) {
	svc, comments := newCommentFixture()

	id, err := svc.SaveComment(context.Background(), 7, models.SaveCommentRequest{
		ActivityID: 1, UserID: 42, Type: models.CommentTypeAppraisal, Title: "First", Text: "draft",
	})
	require.NoError(t, err)

	second, err := svc.SaveComment(context.Background(), 7, models.SaveCommentRequest{
		CommentID: id, ActivityID: 1, UserID: 42, Type: models.CommentTypeAppraisal, Title: "Final", Text: "done",
	})
	require.NoError(t, err)
	assert.Equal(t, id, second)
	assert.Len(t, comments.comments, 1)
	assert.Equal(t, "Final", comments.comments[id].Title)
	// The original author is retained on update.
	assert.Equal(t, int64(7), comments.comments[id].AuthorID)
}

func TestDeleteMissingCommentFails(t *testing.T) {
	svc, _ := newCommentFixture()

	_, err := svc.DeleteComment(context.Background(), 7, 999)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestListForUserPartitionsByAuthor(t *testing.T) {
	svc, _ := newCommentFixture()

	save := func(actorID int64, title string) {
		_, err := svc.SaveComment(context.Background(), actorID, models.SaveCommentRequest{
			ActivityID: 1, UserID: 42, Type: models.CommentTypeAppraisal, Title: title, Text: "text",
		})
		require.NoError(t, err)
	}
	save(42, "self one")
	save(7, "appraiser a")
	save(42, "self two")
	save(9, "appraiser b")
	save(7, "appraiser c")

	groups, err := svc.ListForUser(context.Background(), 1, 42)
	require.NoError(t, err)

	require.Len(t, groups.UserComments, 1)
	assert.Equal(t, "Anna Vries", groups.UserComments[0].FullName)
	require.Len(t, groups.UserComments[0].Comments, 2)
	for _, comment := range groups.UserComments[0].Comments {
		assert.Equal(t, int64(42), comment.AuthorID)
	}

	require.Len(t, groups.AppraiserComments, 2)
	assert.Equal(t, "Pieter Bakker", groups.AppraiserComments[0].FullName)
	assert.Len(t, groups.AppraiserComments[0].Comments, 2)
	assert.Equal(t, "Sofie Smit", groups.AppraiserComments[1].FullName)
	assert.Len(t, groups.AppraiserComments[1].Comments, 1)
}

func TestListForUserEmptyBucketsAreNotNil(t *testing.T) {
	svc, _ := newCommentFixture()

	groups, err := svc.ListForUser(context.Background(), 1, 42)
	require.NoError(t, err)
	assert.NotNil(t, groups.UserComments)
	assert.NotNil(t, groups.AppraiserComments)
	assert.Empty(t, groups.UserComments)
	assert.Empty(t, groups.AppraiserComments)
}
