package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sonsbeekmedia/competgrade-api/internal/models"
	appErrors "github.com/sonsbeekmedia/competgrade-api/pkg/errors"
)

type commentRepo interface {
	FindByID(ctx context.Context, id int64) (*models.Comment, error)
	FindSingle(ctx context.Context, activityID, userID int64, commentType int) (*models.Comment, error)
	ListByActivityUserType(ctx context.Context, activityID, userID int64, commentType int) ([]models.Comment, error)
	Insert(ctx context.Context, comment *models.Comment) (int64, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id int64) error
}

type authorLookup interface {
	FindByIDs(ctx context.Context, ids []int64) (map[int64]models.User, error)
}

// CommentService owns comment upsert/delete, the single global-comment slot
// and the self/appraiser partitioning.
type CommentService struct {
	comments   commentRepo
	activities activityResolver
	authors    authorLookup
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// NewCommentService constructs a CommentService.
func NewCommentService(comments commentRepo, activities activityResolver, authors authorLookup, validate *validator.Validate, logger *zap.Logger) *CommentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentService{
		comments:   comments,
		activities: activities,
		authors:    authors,
		validator:  validate,
		logger:     logger,
		now:        time.Now,
	}
}

// SaveComment inserts or updates a comment and returns its id. A zero
// CommentID inserts with the actor as author; a non-zero id overwrites that
// comment's title and text only.
func (s *CommentService) SaveComment(ctx context.Context, actorID int64, req models.SaveCommentRequest) (int64, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid comment payload")
	}

	activity, err := s.activities.Resolve(ctx, req.ActivityID)
	if err != nil {
		return 0, err
	}

	modified := s.now().Unix()

	if req.CommentID > 0 {
		comment, err := s.comments.FindByID(ctx, req.CommentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("comment %d not found", req.CommentID))
			}
			return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load comment")
		}
		if comment.ActivityID != activity.ID {
			return 0, appErrors.Clone(appErrors.ErrValidation, "comment does not belong to activity")
		}
		comment.Title = req.Title
		comment.Text = req.Text
		comment.TimeModified = modified
		if err := s.comments.Update(ctx, comment); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("comment %d not found", req.CommentID))
			}
			return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update comment")
		}
		return comment.ID, nil
	}

	comment := &models.Comment{
		ActivityID:   activity.ID,
		AuthorID:     actorID,
		UserID:       req.UserID,
		Title:        req.Title,
		Text:         req.Text,
		Type:         req.Type,
		TimeModified: modified,
	}
	id, err := s.comments.Insert(ctx, comment)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to insert comment")
	}
	return id, nil
}

// DeleteComment removes a comment by id. Deleting a missing comment is a
// hard failure, not a no-op.
func (s *CommentService) DeleteComment(ctx context.Context, actorID, commentID int64) (int64, error) {
	if commentID <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "comment id required")
	}

	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("comment %d not found", commentID))
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load comment")
	}

	// The owning activity must still resolve before the delete goes through.
	if _, err := s.activities.Resolve(ctx, comment.ActivityID); err != nil {
		return 0, err
	}

	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("comment %d not found", commentID))
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete comment")
	}

	s.logger.Info("comment deleted",
		zap.Int64("comment_id", comment.ID),
		zap.Int64("activity_id", comment.ActivityID),
		zap.Int64("actor_id", actorID),
	)
	return comment.ID, nil
}

// GetSingle returns the one comment in an (activity, user, type) slot. An
// empty slot yields the zero-id sentinel, not an error.
func (s *CommentService) GetSingle(ctx context.Context, activityID, userID int64, commentType int) (*models.SingleComment, error) {
	activity, err := s.activities.Resolve(ctx, activityID)
	if err != nil {
		return nil, err
	}

	comment, err := s.comments.FindSingle(ctx, activity.ID, userID, commentType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.SingleComment{}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load comment")
	}

	return &models.SingleComment{
		CommentID: comment.ID,
		Title:     comment.Title,
		Text:      comment.Text,
	}, nil
}

// ListForUser fetches all appraisal comments about a user and partitions
// them: comments the subject wrote about themselves versus per-author
// appraiser buckets, in first-appearance order.
func (s *CommentService) ListForUser(ctx context.Context, activityID, userID int64) (*models.CommentGroups, error) {
	activity, err := s.activities.Resolve(ctx, activityID)
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.ListByActivityUserType(ctx, activity.ID, userID, models.CommentTypeAppraisal)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list comments")
	}

	authorIDs := make([]int64, 0, len(comments))
	seen := make(map[int64]bool, len(comments))
	for _, comment := range comments {
		if !seen[comment.AuthorID] {
			seen[comment.AuthorID] = true
			authorIDs = append(authorIDs, comment.AuthorID)
		}
	}

	authors, err := s.authors.FindByIDs(ctx, authorIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load comment authors")
	}

	groups := &models.CommentGroups{
		UserComments:      []models.CommentBucket{},
		AppraiserComments: []models.CommentBucket{},
	}
	selfIndex := make(map[int64]int)
	appraiserIndex := make(map[int64]int)

	for _, comment := range comments {
		target := &groups.AppraiserComments
		index := appraiserIndex
		if comment.AuthorID == userID {
			target = &groups.UserComments
			index = selfIndex
		}
		pos, ok := index[comment.AuthorID]
		if !ok {
			author := authors[comment.AuthorID]
			*target = append(*target, models.CommentBucket{
				AuthorID: comment.AuthorID,
				FullName: author.FullName(),
				Picture:  author.Picture,
				Comments: []models.Comment{},
			})
			pos = len(*target) - 1
			index[comment.AuthorID] = pos
		}
		(*target)[pos].Comments = append((*target)[pos].Comments, comment)
	}

	return groups, nil
}
