package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sonsbeekmedia/competgrade-api/internal/models"
)

// GradeRepository handles grade persistence.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository creates a new grade repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// FindByID returns a grade by identifier.
func (r *GradeRepository) FindByID(ctx context.Context, id int64) (*models.Grade, error) {
	const query = `SELECT id, activity_id, criterium_id, user_id, grade, type, time_modified FROM grades WHERE id = $1 LIMIT 1`
	var grade models.Grade
	if err := r.db.GetContext(ctx, &grade, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find grade by id: %w", err)
	}
	return &grade, nil
}

// FindSlot returns the grade occupying one (activity, criterium, user, type)
// slot, or sql.ErrNoRows when the slot is empty.
func (r *GradeRepository) FindSlot(ctx context.Context, activityID, criteriumID, userID int64, gradeType int) (*models.Grade, error) {
	const query = `SELECT id, activity_id, criterium_id, user_id, grade, type, time_modified
        FROM grades
        WHERE activity_id = $1 AND criterium_id = $2 AND user_id = $3 AND type = $4
        ORDER BY time_modified DESC, id DESC
        LIMIT 1`
	var grade models.Grade
	if err := r.db.GetContext(ctx, &grade, query, activityID, criteriumID, userID, gradeType); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find grade slot: %w", err)
	}
	return &grade, nil
}

// Insert stores a new grade and returns its generated id.
func (r *GradeRepository) Insert(ctx context.Context, grade *models.Grade) (int64, error) {
	const query = `INSERT INTO grades (activity_id, criterium_id, user_id, grade, type, time_modified)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id`
	var id int64
	err := r.db.GetContext(ctx, &id, query, grade.ActivityID, grade.CriteriumID, grade.UserID, grade.Value, grade.Type, grade.TimeModified)
	if err != nil {
		return 0, fmt.Errorf("insert grade: %w", err)
	}
	grade.ID = id
	return id, nil
}

// Update overwrites the value and modification time of an existing grade.
func (r *GradeRepository) Update(ctx context.Context, grade *models.Grade) error {
	const query = `UPDATE grades SET grade = :grade, time_modified = :time_modified WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, grade)
	if err != nil {
		return fmt.Errorf("update grade: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update grade rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a grade by id. Deleting a missing row is an error, not a
// no-op.
func (r *GradeRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM grades WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete grade: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete grade rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListByActivityAndType returns all grades of one type for an activity,
// used for the roster join.
func (r *GradeRepository) ListByActivityAndType(ctx context.Context, activityID int64, gradeType int) ([]models.Grade, error) {
	const query = `SELECT id, activity_id, criterium_id, user_id, grade, type, time_modified
        FROM grades
        WHERE activity_id = $1 AND type = $2
        ORDER BY time_modified ASC, id ASC`
	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query, activityID, gradeType); err != nil {
		return nil, fmt.Errorf("list grades by activity: %w", err)
	}
	return grades, nil
}

// DeleteByActivity removes all grades for an activity.
func (r *GradeRepository) DeleteByActivity(ctx context.Context, activityID int64) error {
	const query = `DELETE FROM grades WHERE activity_id = $1`
	if _, err := r.db.ExecContext(ctx, query, activityID); err != nil {
		return fmt.Errorf("delete grades by activity: %w", err)
	}
	return nil
}
