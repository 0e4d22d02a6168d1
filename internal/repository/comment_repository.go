package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sonsbeekmedia/competgrade-api/internal/models"
)

// CommentRepository handles comment persistence.
type CommentRepository struct {
	db *sqlx.DB
}

// NewCommentRepository creates a new comment repository.
func NewCommentRepository(db *sqlx.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// FindByID returns a comment by identifier.
func (r *CommentRepository) FindByID(ctx context.Context, id int64) (*models.Comment, error) {
	const query = `SELECT id, activity_id, author_id, user_id, title, text, type, time_modified FROM comments WHERE id = $1 LIMIT 1`
	var comment models.Comment
	if err := r.db.GetContext(ctx, &comment, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find comment by id: %w", err)
	}
	return &comment, nil
}

// FindSingle returns the one comment occupying an (activity, user, type)
// slot. sql.ErrNoRows means nothing has been saved yet; callers treat that
// as an empty sentinel, not a failure.
func (r *CommentRepository) FindSingle(ctx context.Context, activityID, userID int64, commentType int) (*models.Comment, error) {
	const query = `SELECT id, activity_id, author_id, user_id, title, text, type, time_modified
        FROM comments
        WHERE activity_id = $1 AND user_id = $2 AND type = $3
        ORDER BY id ASC
        LIMIT 1`
	var comment models.Comment
	if err := r.db.GetContext(ctx, &comment, query, activityID, userID, commentType); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find single comment: %w", err)
	}
	return &comment, nil
}

// ListByActivityUserType returns all matching comments ordered by subject
// user id, the order the partitioning pass expects.
func (r *CommentRepository) ListByActivityUserType(ctx context.Context, activityID, userID int64, commentType int) ([]models.Comment, error) {
	const query = `SELECT id, activity_id, author_id, user_id, title, text, type, time_modified
        FROM comments
        WHERE activity_id = $1 AND user_id = $2 AND type = $3
        ORDER BY user_id ASC, id ASC`
	var comments []models.Comment
	if err := r.db.SelectContext(ctx, &comments, query, activityID, userID, commentType); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// Insert stores a new comment and returns its generated id.
func (r *CommentRepository) Insert(ctx context.Context, comment *models.Comment) (int64, error) {
	const query = `INSERT INTO comments (activity_id, author_id, user_id, title, text, type, time_modified)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id`
	var id int64
	err := r.db.GetContext(ctx, &id, query, comment.ActivityID, comment.AuthorID, comment.UserID, comment.Title, comment.Text, comment.Type, comment.TimeModified)
	if err != nil {
		return 0, fmt.Errorf("insert comment: %w", err)
	}
	comment.ID = id
	return id, nil
}

// Update overwrites the title, text and modification time of a comment.
func (r *CommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	const query = `UPDATE comments SET title = :title, text = :text, time_modified = :time_modified WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, comment)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update comment rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a comment by id. Deleting a missing row is an error.
func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM comments WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete comment rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteByActivity removes all comments for an activity.
func (r *CommentRepository) DeleteByActivity(ctx context.Context, activityID int64) error {
	const query = `DELETE FROM comments WHERE activity_id = $1`
	if _, err := r.db.ExecContext(ctx, query, activityID); err != nil {
		return fmt.Errorf("delete comments by activity: %w", err)
	}
	return nil
}
