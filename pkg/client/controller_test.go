package client

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonsbeekmedia/competgrade-api/internal/models"
	appErrors "github.com/sonsbeekmedia/competgrade-api/pkg/errors"
)

type fakeAPI struct {
	mu sync.Mutex

	roster     *models.Roster
	rosterErr  error
	savedGrade int64
	saveErr    error
	deleteErr  error

	saveGradeCalls   []models.SaveGradeRequest
	deleteGradeCalls []models.DeleteGradeRequest
	saveComments     []models.SaveCommentRequest
	deletedComments  []int64
	single           *models.SingleComment

	commentsFn func(userID int64) (*models.CommentGroups, error)
	singleFn   func(userID int64) (*models.SingleComment, error)
}

func (f *fakeAPI) Roster(context.Context, int64, int64) (*models.Roster, error) {
	return f.roster, f.rosterErr
}

func (f *fakeAPI) SaveGrade(_ context.Context, req models.SaveGradeRequest) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveGradeCalls = append(f.saveGradeCalls, req)
	return f.savedGrade, f.saveErr
}

func (f *fakeAPI) DeleteGrade(_ context.Context, req models.DeleteGradeRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteGradeCalls = append(f.deleteGradeCalls, req)
	return f.deleteErr
}

func (f *fakeAPI) Comments(_ context.Context, _ int64, userID int64) (*models.CommentGroups, error) {
	if f.commentsFn != nil {
		return f.commentsFn(userID)
	}
	return &models.CommentGroups{UserComments: []models.CommentBucket{}, AppraiserComments: []models.CommentBucket{}}, nil
}

func (f *fakeAPI) SaveComment(_ context.Context, req models.SaveCommentRequest) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveComments = append(f.saveComments, req)
	if req.CommentID != 0 {
		return req.CommentID, nil
	}
	return int64(len(f.saveComments)) + 100, nil
}

func (f *fakeAPI) DeleteComment(_ context.Context, commentID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedComments = append(f.deletedComments, commentID)
	return commentID, nil
}

func (f *fakeAPI) SingleComment(_ context.Context, _ int64, userID int64, _ int) (*models.SingleComment, error) {
	if f.singleFn != nil {
		return f.singleFn(userID)
	}
	if f.single != nil {
		return f.single, nil
	}
	return &models.SingleComment{}, nil
}

func (f *fakeAPI) Certification(context.Context, int64, int64) ([]models.CertificationItem, error) {
	return []models.CertificationItem{}, nil
}

type fakeRenderer struct {
	mu sync.Mutex

	navEntries    []models.RosterEntry
	commentUsers  []int64
	certifRenders int
	globalRenders int
	savedShown    int
	savedHidden   int
	notified      []error
}

func (r *fakeRenderer) RenderNavigation(entry models.RosterEntry, position, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.navEntries = append(r.navEntries, entry)
}

func (r *fakeRenderer) RenderComments(groups *models.CommentGroups) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(groups.UserComments) > 0 {
		r.commentUsers = append(r.commentUsers, groups.UserComments[0].Comments[0].UserID)
	} else {
		r.commentUsers = append(r.commentUsers, 0)
	}
}

func (r *fakeRenderer) RenderCertification([]models.CertificationItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.certifRenders++
}

func (r *fakeRenderer) RenderGlobalComment(*models.SingleComment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.globalRenders++
}

func (r *fakeRenderer) ShowSaved() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.savedShown++
}

func (r *fakeRenderer) HideSaved() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.savedHidden++
}

func (r *fakeRenderer) Notify(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notified = append(r.notified, err)
}

func newControllerFixture(roster *models.Roster) (*Controller, *fakeAPI, *fakeRenderer) {
	api := &fakeAPI{roster: roster, savedGrade: 11}
	render := &fakeRenderer{}
	ctrl := New(api, render, nil, Config{
		ActivityID:      1,
		CommentDebounce: 10 * time.Millisecond,
		SavedTimeout:    20 * time.Millisecond,
	})
	return ctrl, api, render
}

func twoUserRoster() *models.Roster {
	return &models.Roster{Success: 1, Userlist: []models.RosterEntry{
		{UserID: 42, FullName: "Anna Vries"},
		{UserID: 43, FullName: "Bram Jansen", GradeID: 3, Grade: 7},
	}}
}

func TestLoadRendersAllPanels(t *testing.T) {
	ctrl, _, render := newControllerFixture(twoUserRoster())

	require.NoError(t, ctrl.Load(context.Background()))
	ctrl.inflight.Wait()

	require.Len(t, render.navEntries, 1)
	assert.Equal(t, int64(42), render.navEntries[0].UserID)
	assert.Equal(t, 1, render.certifRenders)
	assert.Equal(t, 1, render.globalRenders)
	assert.Len(t, render.commentUsers, 1)
}

func TestNavigationClampsAtBounds(t *testing.T) {
	ctrl, _, _ := newControllerFixture(twoUserRoster())
	require.NoError(t, ctrl.Load(context.Background()))
	ctrl.inflight.Wait()

	ctx := context.Background()
	ctrl.Prev(ctx)
	current, ok := ctrl.Current()
	require.True(t, ok)
	assert.Equal(t, int64(42), current.UserID)

	ctrl.Next(ctx)
	ctrl.Next(ctx)
	ctrl.Next(ctx)
	ctrl.inflight.Wait()
	current, ok = ctrl.Current()
	require.True(t, ok)
	assert.Equal(t, int64(43), current.UserID)
}

func TestGradeChangedSavesAndCachesID(t *testing.T) {
	ctrl, api, _ := newControllerFixture(twoUserRoster())
	require.NoError(t, ctrl.Load(context.Background()))
	ctrl.inflight.Wait()

	ctx := context.Background()
	ctrl.GradeChanged(ctx, "7")
	require.Len(t, api.saveGradeCalls, 1)
	assert.Zero(t, api.saveGradeCalls[0].GradeID)

	ctrl.GradeChanged(ctx, "9")
	require.Len(t, api.saveGradeCalls, 2)
	assert.Equal(t, int64(11), api.saveGradeCalls[1].GradeID)
}

func TestGradeChangedEmptyDeletes(t *testing.T) {
	ctrl, api, _ := newControllerFixture(twoUserRoster())
	require.NoError(t, ctrl.Load(context.Background()))
	ctrl.inflight.Wait()

	ctx := context.Background()
	ctrl.Next(ctx)
	ctrl.inflight.Wait()
	ctrl.GradeChanged(ctx, "")

	require.Len(t, api.deleteGradeCalls, 1)
	assert.Equal(t, int64(43), api.deleteGradeCalls[0].UserID)
	current, _ := ctrl.Current()
	assert.Zero(t, current.GradeID)
	assert.Zero(t, current.Grade)
}

func TestGradeChangedFailedDeleteReconciles(t *testing.T) {
	ctrl, api, render := newControllerFixture(twoUserRoster())
	require.NoError(t, ctrl.Load(context.Background()))
	ctrl.inflight.Wait()

	ctx := context.Background()
	ctrl.Next(ctx)
	ctrl.inflight.Wait()

	api.deleteErr = appErrors.ErrNotFound
	ctrl.GradeChanged(ctx, "")

	require.Len(t, render.notified, 1)
	// The slot is reconciled from the server instead of staying cleared.
	current, _ := ctrl.Current()
	assert.Equal(t, int64(3), current.GradeID)
	assert.Equal(t, 7, current.Grade)
}

func TestGradeChangedRejectsNonNumeric(t *testing.T) {
	ctrl, api, render := newControllerFixture(twoUserRoster())
	require.NoError(t, ctrl.Load(context.Background()))
	ctrl.inflight.Wait()

	ctrl.GradeChanged(context.Background(), "abc")

	assert.Empty(t, api.saveGradeCalls)
	require.Len(t, render.notified, 1)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(render.notified[0]).Code)
}

func TestCommentInputDebouncesToSingleSave(t *testing.T) {
	ctrl, api, render := newControllerFixture(twoUserRoster())
	require.NoError(t, ctrl.Load(context.Background()))
	ctrl.inflight.Wait()

	ctx := context.Background()
	ctrl.CommentInput(ctx, "d")
	ctrl.CommentInput(ctx, "dr")
	ctrl.CommentInput(ctx, "draft")

	time.Sleep(30 * time.Millisecond)

	api.mu.Lock()
	saves := append([]models.SaveCommentRequest(nil), api.saveComments...)
	api.mu.Unlock()
	require.Len(t, saves, 1)
	assert.Equal(t, "draft", saves[0].Text)
	assert.Equal(t, int64(42), saves[0].UserID)

	render.mu.Lock()
	shown := render.savedShown
	render.mu.Unlock()
	assert.Equal(t, 1, shown)
}

func TestCommentInputSavedNoticeAutoHides(t *testing.T) {
	ctrl, _, render := newControllerFixture(twoUserRoster())
	require.NoError(t, ctrl.Load(context.Background()))
	ctrl.inflight.Wait()

	ctrl.CommentInput(context.Background(), "note")
	time.Sleep(50 * time.Millisecond)

	render.mu.Lock()
	defer render.mu.Unlock()
	assert.Equal(t, 1, render.savedShown)
	assert.Equal(t, 1, render.savedHidden)
}

func TestCommentInputEmptyDeletesImmediately(t *testing.T) {
	ctrl, api, _ := newControllerFixture(twoUserRoster())
	api.single = &models.SingleComment{CommentID: 8, Text: "existing"}
	require.NoError(t, ctrl.Load(context.Background()))
	ctrl.inflight.Wait()

	ctrl.CommentInput(context.Background(), "")

	require.Len(t, api.deletedComments, 1)
	assert.Equal(t, int64(8), api.deletedComments[0])
	assert.Empty(t, api.saveComments)
}

func TestCommentInputEmptyWithoutExistingIsNoop(t *testing.T) {
	ctrl, api, _ := newControllerFixture(twoUserRoster())
	require.NoError(t, ctrl.Load(context.Background()))
	ctrl.inflight.Wait()

	ctrl.CommentInput(context.Background(), "  ")

	assert.Empty(t, api.deletedComments)
	assert.Empty(t, api.saveComments)
}

func TestFlushFiresPendingSave(t *testing.T) {
	ctrl, api, _ := newControllerFixture(twoUserRoster())
	require.NoError(t, ctrl.Load(context.Background()))
	ctrl.inflight.Wait()

	ctx := context.Background()
	ctrl.CommentInput(ctx, "pending text")
	ctrl.Flush(ctx)

	api.mu.Lock()
	defer api.mu.Unlock()
	require.Len(t, api.saveComments, 1)
	assert.Equal(t, "pending text", api.saveComments[0].Text)
}

func perUserSingleComments(api *fakeAPI) {
	api.singleFn = func(userID int64) (*models.SingleComment, error) {
		if userID == 42 {
			return &models.SingleComment{CommentID: 5, Text: "anna's comment"}, nil
		}
		return &models.SingleComment{CommentID: 77, Text: "bram's comment"}, nil
	}
}

func TestNavigationSavesDraftForPreviousUser(t *testing.T) {
	ctrl, api, _ := newControllerFixture(twoUserRoster())
	perUserSingleComments(api)
	require.NoError(t, ctrl.Load(context.Background()))
	ctrl.inflight.Wait()

	ctx := context.Background()
	ctrl.CommentInput(ctx, "draft for anna")
	ctrl.Next(ctx)
	ctrl.inflight.Wait()

	// The draft lands on the user the cursor left, against that user's
	// own comment row, not the one loaded for the next user.
	api.mu.Lock()
	saves := append([]models.SaveCommentRequest(nil), api.saveComments...)
	api.mu.Unlock()
	require.Len(t, saves, 1)
	assert.Equal(t, int64(42), saves[0].UserID)
	assert.Equal(t, int64(5), saves[0].CommentID)
	assert.Equal(t, "draft for anna", saves[0].Text)

	// And the next user's comment id survived the late save.
	ctrl.CommentInput(ctx, "draft for bram")
	time.Sleep(30 * time.Millisecond)

	api.mu.Lock()
	saves = append([]models.SaveCommentRequest(nil), api.saveComments...)
	api.mu.Unlock()
	require.Len(t, saves, 2)
	assert.Equal(t, int64(43), saves[1].UserID)
	assert.Equal(t, int64(77), saves[1].CommentID)
}

func TestLateSaveKeepsCurrentCommentID(t *testing.T) {
	ctrl, api, _ := newControllerFixture(twoUserRoster())
	perUserSingleComments(api)
	require.NoError(t, ctrl.Load(context.Background()))
	ctrl.inflight.Wait()

	ctx := context.Background()
	ctrl.Next(ctx)
	ctrl.inflight.Wait()

	// A save completing for user 42 while the cursor is on user 43 must
	// target 42's row and leave 43's cached comment id alone.
	ctrl.saveGlobalComment(ctx, 42, 5, "late draft")

	api.mu.Lock()
	saves := append([]models.SaveCommentRequest(nil), api.saveComments...)
	api.mu.Unlock()
	require.Len(t, saves, 1)
	assert.Equal(t, int64(5), saves[0].CommentID)

	ctrl.mu.Lock()
	current := ctrl.globalCommentID
	ctrl.mu.Unlock()
	assert.Equal(t, int64(77), current)
}

func TestStaleCommentsRenderIsDropped(t *testing.T) {
	roster := twoUserRoster()
	api := &fakeAPI{roster: roster, savedGrade: 11}
	render := &fakeRenderer{}

	release := make(chan struct{})
	var calls int
	var mu sync.Mutex
	api.commentsFn = func(userID int64) (*models.CommentGroups, error) {
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()
		if first {
			<-release
		}
		return &models.CommentGroups{
			UserComments: []models.CommentBucket{
				{Comments: []models.Comment{{UserID: userID, AuthorID: userID}}},
			},
			AppraiserComments: []models.CommentBucket{},
		}, nil
	}

	ctrl := New(api, render, nil, Config{ActivityID: 1, CommentDebounce: 10 * time.Millisecond, SavedTimeout: 20 * time.Millisecond})
	require.NoError(t, ctrl.Load(context.Background()))

	ctrl.Next(context.Background())
	// Let the second fetch land before releasing the first.
	time.Sleep(20 * time.Millisecond)
	close(release)
	ctrl.inflight.Wait()

	render.mu.Lock()
	defer render.mu.Unlock()
	require.Len(t, render.commentUsers, 1)
	assert.Equal(t, int64(43), render.commentUsers[0])
}
