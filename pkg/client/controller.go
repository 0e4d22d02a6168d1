package client

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sonsbeekmedia/competgrade-api/internal/models"
	appErrors "github.com/sonsbeekmedia/competgrade-api/pkg/errors"
)

// API is the remote surface the panel controller talks to.
type API interface {
	Roster(ctx context.Context, activityID, groupID int64) (*models.Roster, error)
	SaveGrade(ctx context.Context, req models.SaveGradeRequest) (int64, error)
	DeleteGrade(ctx context.Context, req models.DeleteGradeRequest) error
	Comments(ctx context.Context, activityID, userID int64) (*models.CommentGroups, error)
	SaveComment(ctx context.Context, req models.SaveCommentRequest) (int64, error)
	DeleteComment(ctx context.Context, commentID int64) (int64, error)
	SingleComment(ctx context.Context, activityID, userID int64, commentType int) (*models.SingleComment, error)
	Certification(ctx context.Context, activityID, userID int64) ([]models.CertificationItem, error)
}

// Renderer receives panel updates. Implementations draw the grading panel.
type Renderer interface {
	RenderNavigation(entry models.RosterEntry, position, total int)
	RenderComments(groups *models.CommentGroups)
	RenderCertification(items []models.CertificationItem)
	RenderGlobalComment(comment *models.SingleComment)
	ShowSaved()
	HideSaved()
	Notify(err error)
}

// Config tunes the controller's timers.
type Config struct {
	ActivityID      int64
	GroupID         int64
	CommentDebounce time.Duration
	SavedTimeout    time.Duration
}

// Controller drives a single grading panel: it owns the roster cursor,
// refreshes the sub-panels independently and autosaves the global comment.
type Controller struct {
	api    API
	render Renderer
	logger *zap.Logger

	activityID      int64
	groupID         int64
	commentDebounce time.Duration
	savedTimeout    time.Duration

	mu     sync.Mutex
	roster []models.RosterEntry
	cursor int

	// Each panel keeps its own sequence number so a stale response from a
	// superseded navigation never overdraws a newer one.
	commentsSeq uint64
	certifSeq   uint64
	globalSeq   uint64

	globalCommentID  int64
	pendingSave      *time.Timer
	pendingUserID    int64
	pendingCommentID int64
	pendingText      string
	savedHide        *time.Timer

	inflight sync.WaitGroup
}

// New builds a controller for one activity panel.
func New(api API, render Renderer, logger *zap.Logger, cfg Config) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CommentDebounce <= 0 {
		cfg.CommentDebounce = time.Second
	}
	if cfg.SavedTimeout <= 0 {
		cfg.SavedTimeout = 3 * time.Second
	}
	return &Controller{
		api:             api,
		render:          render,
		logger:          logger,
		activityID:      cfg.ActivityID,
		groupID:         cfg.GroupID,
		commentDebounce: cfg.CommentDebounce,
		savedTimeout:    cfg.SavedTimeout,
	}
}

// Load fetches the roster, points the cursor at the first user and renders
// every panel.
func (c *Controller) Load(ctx context.Context) error {
	roster, err := c.api.Roster(ctx, c.activityID, c.groupID)
	if err != nil {
		c.render.Notify(err)
		return err
	}

	c.mu.Lock()
	c.roster = roster.Userlist
	c.cursor = 0
	c.mu.Unlock()

	c.refreshPanels(ctx)
	return nil
}

// Next moves the cursor forward and re-renders. The cursor clamps at the
// last roster entry.
func (c *Controller) Next(ctx context.Context) {
	c.move(ctx, 1)
}

// Prev moves the cursor back and re-renders. The cursor clamps at zero.
func (c *Controller) Prev(ctx context.Context) {
	c.move(ctx, -1)
}

// Current returns the roster entry under the cursor.
func (c *Controller) Current() (models.RosterEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.roster) == 0 {
		return models.RosterEntry{}, false
	}
	return c.roster[c.cursor], true
}

func (c *Controller) move(ctx context.Context, delta int) {
	// A draft typed just before navigating still belongs to the user the
	// cursor is leaving; save it now rather than racing the panel refresh.
	c.Flush(ctx)

	c.mu.Lock()
	if len(c.roster) == 0 {
		c.mu.Unlock()
		return
	}
	next := c.cursor + delta
	if next < 0 {
		next = 0
	}
	if next > len(c.roster)-1 {
		next = len(c.roster) - 1
	}
	moved := next != c.cursor
	c.cursor = next
	c.mu.Unlock()

	if moved {
		c.refreshPanels(ctx)
	}
}

// refreshPanels re-renders the navigation header synchronously and the
// three data panels as independent round trips.
func (c *Controller) refreshPanels(ctx context.Context) {
	c.mu.Lock()
	if len(c.roster) == 0 {
		c.mu.Unlock()
		return
	}
	entry := c.roster[c.cursor]
	position := c.cursor + 1
	total := len(c.roster)
	c.commentsSeq++
	c.certifSeq++
	c.globalSeq++
	commentsSeq := c.commentsSeq
	certifSeq := c.certifSeq
	globalSeq := c.globalSeq
	c.mu.Unlock()

	c.render.RenderNavigation(entry, position, total)

	c.inflight.Add(3)
	go func() {
		defer c.inflight.Done()
		groups, err := c.api.Comments(ctx, c.activityID, entry.UserID)
		if err != nil {
			c.render.Notify(err)
			return
		}
		c.mu.Lock()
		stale := commentsSeq != c.commentsSeq
		c.mu.Unlock()
		if !stale {
			c.render.RenderComments(groups)
		}
	}()
	go func() {
		defer c.inflight.Done()
		items, err := c.api.Certification(ctx, c.activityID, entry.UserID)
		if err != nil {
			c.render.Notify(err)
			return
		}
		c.mu.Lock()
		stale := certifSeq != c.certifSeq
		c.mu.Unlock()
		if !stale {
			c.render.RenderCertification(items)
		}
	}()
	go func() {
		defer c.inflight.Done()
		single, err := c.api.SingleComment(ctx, c.activityID, entry.UserID, models.CommentTypeGlobal)
		if err != nil {
			c.render.Notify(err)
			return
		}
		c.mu.Lock()
		stale := globalSeq != c.globalSeq
		if !stale {
			c.globalCommentID = single.CommentID
		}
		c.mu.Unlock()
		if !stale {
			c.render.RenderGlobalComment(single)
		}
	}()
}

// GradeChanged handles a grade input change for the current user. An empty
// value deletes the grade; anything else saves it and caches the returned
// id so the next change updates the same row.
func (c *Controller) GradeChanged(ctx context.Context, raw string) {
	c.mu.Lock()
	if len(c.roster) == 0 {
		c.mu.Unlock()
		return
	}
	cursor := c.cursor
	entry := c.roster[cursor]
	c.mu.Unlock()

	raw = strings.TrimSpace(raw)
	if raw == "" {
		err := c.api.DeleteGrade(ctx, models.DeleteGradeRequest{
			ActivityID:  c.activityID,
			CriteriumID: 0,
			UserID:      entry.UserID,
		})
		if err != nil {
			c.render.Notify(err)
			c.reloadRosterEntry(ctx, cursor)
			return
		}
		c.mu.Lock()
		c.roster[cursor].GradeID = 0
		c.roster[cursor].Grade = 0
		c.mu.Unlock()
		return
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		c.render.Notify(appErrors.Clone(appErrors.ErrValidation, "grade must be a non-negative number"))
		return
	}

	gradeID, err := c.api.SaveGrade(ctx, models.SaveGradeRequest{
		ActivityID:  c.activityID,
		CriteriumID: 0,
		GradeID:     entry.GradeID,
		UserID:      entry.UserID,
		Value:       value,
	})
	if err != nil {
		c.render.Notify(err)
		return
	}

	c.mu.Lock()
	c.roster[cursor].GradeID = gradeID
	c.roster[cursor].Grade = value
	c.mu.Unlock()
}

// reloadRosterEntry reconciles one roster slot with the server after a
// failed mutation, so the panel does not keep locally cleared state.
func (c *Controller) reloadRosterEntry(ctx context.Context, cursor int) {
	roster, err := c.api.Roster(ctx, c.activityID, c.groupID)
	if err != nil {
		c.logger.Warn("roster reconcile failed", zap.Error(err))
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if cursor >= len(c.roster) {
		return
	}
	for _, fresh := range roster.Userlist {
		if fresh.UserID == c.roster[cursor].UserID {
			c.roster[cursor] = fresh
			return
		}
	}
}

// CommentInput handles a keystroke in the global comment field. Saves are
// debounced; only the most recent keystroke's timer survives. An empty
// field deletes immediately instead of scheduling a save.
func (c *Controller) CommentInput(ctx context.Context, text string) {
	c.mu.Lock()
	if c.pendingSave != nil {
		c.pendingSave.Stop()
		c.pendingSave = nil
	}
	if len(c.roster) == 0 {
		c.mu.Unlock()
		return
	}
	entry := c.roster[c.cursor]
	commentID := c.globalCommentID
	c.mu.Unlock()

	if strings.TrimSpace(text) == "" {
		if commentID == 0 {
			return
		}
		if _, err := c.api.DeleteComment(ctx, commentID); err != nil {
			c.render.Notify(err)
			return
		}
		c.mu.Lock()
		c.globalCommentID = 0
		c.mu.Unlock()
		return
	}

	// The comment id is captured now, not when the timer fires: by then a
	// navigation may have loaded another user's comment into the panel.
	c.mu.Lock()
	c.pendingUserID = entry.UserID
	c.pendingCommentID = commentID
	c.pendingText = text
	c.pendingSave = time.AfterFunc(c.commentDebounce, func() {
		c.saveGlobalComment(ctx, entry.UserID, commentID, text)
	})
	c.mu.Unlock()
}

// Flush fires a pending debounced save immediately. Used when the panel
// navigates away before the debounce interval elapses.
func (c *Controller) Flush(ctx context.Context) {
	c.mu.Lock()
	pending := c.pendingSave
	userID := c.pendingUserID
	commentID := c.pendingCommentID
	text := c.pendingText
	c.pendingSave = nil
	c.mu.Unlock()
	if pending != nil && pending.Stop() {
		c.saveGlobalComment(ctx, userID, commentID, text)
	}
}

// saveGlobalComment writes one user's global comment. The target row id
// travels with the save; c.globalCommentID only picks up the returned id
// when the cursor still points at that user.
func (c *Controller) saveGlobalComment(ctx context.Context, userID, commentID int64, text string) {
	saved, err := c.api.SaveComment(ctx, models.SaveCommentRequest{
		CommentID:  commentID,
		ActivityID: c.activityID,
		UserID:     userID,
		Type:       models.CommentTypeGlobal,
		Text:       text,
	})
	if err != nil {
		c.render.Notify(err)
		return
	}

	c.mu.Lock()
	if len(c.roster) > 0 && c.roster[c.cursor].UserID == userID {
		c.globalCommentID = saved
	}
	if c.savedHide != nil {
		c.savedHide.Stop()
	}
	c.savedHide = time.AfterFunc(c.savedTimeout, c.render.HideSaved)
	c.mu.Unlock()

	c.render.ShowSaved()
}
