package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sonsbeekmedia/competgrade-api/internal/models"
)

// EnrollmentRepository resolves which users appear on a grading roster.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository creates a new enrollment repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ListGradeable returns the users enrolled on an activity who may be graded,
// optionally restricted to one group. GroupID 0 means all groups.
func (r *EnrollmentRepository) ListGradeable(ctx context.Context, activityID, groupID int64) ([]models.User, error) {
	query := `SELECT u.id, u.email, u.password_hash, u.first_name, u.last_name, u.id_number, u.picture, u.picture_large, u.role, u.active, u.last_login, u.created_at, u.updated_at
        FROM users u
        JOIN enrollments e ON e.user_id = u.id
        WHERE e.activity_id = $1 AND e.gradeable = TRUE AND u.active = TRUE`
	args := []interface{}{activityID}
	if groupID > 0 {
		query += fmt.Sprintf(" AND e.group_id = $%d", len(args)+1)
		args = append(args, groupID)
	}
	query += " ORDER BY u.last_name ASC, u.first_name ASC, u.id ASC"

	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("list gradeable users: %w", err)
	}
	return users, nil
}

// DeleteByActivity removes all enrollments for an activity.
func (r *EnrollmentRepository) DeleteByActivity(ctx context.Context, activityID int64) error {
	const query = `DELETE FROM enrollments WHERE activity_id = $1`
	if _, err := r.db.ExecContext(ctx, query, activityID); err != nil {
		return fmt.Errorf("delete enrollments by activity: %w", err)
	}
	return nil
}
