package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sonsbeekmedia/competgrade-api/internal/models"
)

// ActivityRepository provides database access for grading activities.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository creates a new activity repository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// FindByID returns an activity by identifier.
func (r *ActivityRepository) FindByID(ctx context.Context, id int64) (*models.Activity, error) {
	const query = `SELECT id, course_id, name, intro, max_grade, time_created, time_modified FROM activities WHERE id = $1 LIMIT 1`
	var activity models.Activity
	if err := r.db.GetContext(ctx, &activity, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find activity by id: %w", err)
	}
	return &activity, nil
}

// Delete removes the activity row only. Dependent rows are removed by the
// service-level cascade before this is called.
func (r *ActivityRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM activities WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete activity rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
