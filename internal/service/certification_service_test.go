package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonsbeekmedia/competgrade-api/internal/models"
)

type fakeCertificationRepo struct {
	items    []models.Certification
	comments map[int64][]models.CertificationCommentRow
}

func (f *fakeCertificationRepo) ListByActivityAndUser(ctx context.Context, activityID, userID int64) ([]models.Certification, error) {
	return f.items, nil
}

func (f *fakeCertificationRepo) ListComments(ctx context.Context, certificationIDs []int64) (map[int64][]models.CertificationCommentRow, error) {
	return f.comments, nil
}

func TestCertificationStatusGroupsCommentsByAuthor(t *testing.T) {
	repo := &fakeCertificationRepo{
		items: []models.Certification{
			{ID: 1, ActivityID: 1, UserID: 42, Description: "Thyroid examination", Confidence: 50, Realised: true, Verified: true},
		},
		comments: map[int64][]models.CertificationCommentRow{
			1: {
				{CertificationComment: models.CertificationComment{ID: 1, CertificationID: 1, AuthorID: 7, Note: "Approved subject", Title: "Well done", Text: "Good technique", TimeCreated: 1451606400}, AuthorFirstName: "Pieter", AuthorLastName: "Bakker", AuthorPicture: "p7.png"},
				{CertificationComment: models.CertificationComment{ID: 2, CertificationID: 1, AuthorID: 9, Title: "Keep going", Text: "Almost there", TimeCreated: 1451606400}, AuthorFirstName: "Sofie", AuthorLastName: "Smit", AuthorPicture: "p9.png"},
				{CertificationComment: models.CertificationComment{ID: 3, CertificationID: 1, AuthorID: 7, Title: "Second pass", Text: "Confirmed", TimeCreated: 1451692800}, AuthorFirstName: "Pieter", AuthorLastName: "Bakker", AuthorPicture: "p7.png"},
			},
		},
	}
	activities := &fakeActivityResolver{activities: map[int64]*models.Activity{1: {ID: 1}}}
	svc := NewCertificationService(repo, activities, nil)

	items, err := svc.Status(context.Background(), 1, 42)
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, "Thyroid examination", item.Description)
	assert.True(t, item.Realised)
	require.Len(t, item.AllComments, 2)
	assert.Equal(t, "Pieter Bakker", item.AllComments[0].FullName)
	assert.Equal(t, "Approved subject", item.AllComments[0].Note)
	assert.Len(t, item.AllComments[0].Comments, 2)
	assert.Equal(t, "Sofie Smit", item.AllComments[1].FullName)
	assert.Len(t, item.AllComments[1].Comments, 1)
}

func TestCertificationStatusEmptyChecklist(t *testing.T) {
	repo := &fakeCertificationRepo{comments: map[int64][]models.CertificationCommentRow{}}
	activities := &fakeActivityResolver{activities: map[int64]*models.Activity{1: {ID: 1}}}
	svc := NewCertificationService(repo, activities, nil)

	items, err := svc.Status(context.Background(), 1, 42)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}
