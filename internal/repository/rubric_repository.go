package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sonsbeekmedia/competgrade-api/internal/models"
)

// RubricRepository handles script and criterium persistence.
type RubricRepository struct {
	db *sqlx.DB
}

// NewRubricRepository creates a new rubric repository.
func NewRubricRepository(db *sqlx.DB) *RubricRepository {
	return &RubricRepository{db: db}
}

// FindScript returns a script by identifier.
func (r *RubricRepository) FindScript(ctx context.Context, id int64) (*models.Script, error) {
	const query = `SELECT id, activity_id, name, sort_order FROM scripts WHERE id = $1 LIMIT 1`
	var script models.Script
	if err := r.db.GetContext(ctx, &script, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find script by id: %w", err)
	}
	return &script, nil
}

// FindCriterium returns a criterium by identifier.
func (r *RubricRepository) FindCriterium(ctx context.Context, id int64) (*models.Criterium, error) {
	const query = `SELECT id, activity_id, script_id, name, sort_order FROM criteria WHERE id = $1 LIMIT 1`
	var criterium models.Criterium
	if err := r.db.GetContext(ctx, &criterium, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find criterium by id: %w", err)
	}
	return &criterium, nil
}

// ListScripts returns an activity's scripts ordered by sort order.
func (r *RubricRepository) ListScripts(ctx context.Context, activityID int64) ([]models.Script, error) {
	const query = `SELECT id, activity_id, name, sort_order FROM scripts WHERE activity_id = $1 ORDER BY sort_order ASC, id ASC`
	var scripts []models.Script
	if err := r.db.SelectContext(ctx, &scripts, query, activityID); err != nil {
		return nil, fmt.Errorf("list scripts: %w", err)
	}
	return scripts, nil
}

// ListCriteria returns an activity's criteria ordered by sort order.
func (r *RubricRepository) ListCriteria(ctx context.Context, activityID int64) ([]models.Criterium, error) {
	const query = `SELECT id, activity_id, script_id, name, sort_order FROM criteria WHERE activity_id = $1 ORDER BY sort_order ASC, id ASC`
	var criteria []models.Criterium
	if err := r.db.SelectContext(ctx, &criteria, query, activityID); err != nil {
		return nil, fmt.Errorf("list criteria: %w", err)
	}
	return criteria, nil
}

// InsertScript stores a new script and returns its generated id.
func (r *RubricRepository) InsertScript(ctx context.Context, script *models.Script) (int64, error) {
	const query = `INSERT INTO scripts (activity_id, name, sort_order) VALUES ($1, $2, $3) RETURNING id`
	var id int64
	if err := r.db.GetContext(ctx, &id, query, script.ActivityID, script.Name, script.SortOrder); err != nil {
		return 0, fmt.Errorf("insert script: %w", err)
	}
	script.ID = id
	return id, nil
}

// UpdateScript overwrites a script's name and sort order.
func (r *RubricRepository) UpdateScript(ctx context.Context, script *models.Script) error {
	const query = `UPDATE scripts SET name = :name, sort_order = :sort_order WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, script)
	if err != nil {
		return fmt.Errorf("update script: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update script rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteScript removes the script row only; child criteria are removed by
// the service-level cascade first.
func (r *RubricRepository) DeleteScript(ctx context.Context, id int64) error {
	const query = `DELETE FROM scripts WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete script: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete script rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// InsertCriterium stores a new criterium and returns its generated id.
func (r *RubricRepository) InsertCriterium(ctx context.Context, criterium *models.Criterium) (int64, error) {
	const query = `INSERT INTO criteria (activity_id, script_id, name, sort_order) VALUES ($1, $2, $3, $4) RETURNING id`
	var id int64
	if err := r.db.GetContext(ctx, &id, query, criterium.ActivityID, criterium.ScriptID, criterium.Name, criterium.SortOrder); err != nil {
		return 0, fmt.Errorf("insert criterium: %w", err)
	}
	criterium.ID = id
	return id, nil
}

// UpdateCriterium overwrites a criterium's name, script and sort order.
func (r *RubricRepository) UpdateCriterium(ctx context.Context, criterium *models.Criterium) error {
	const query = `UPDATE criteria SET script_id = :script_id, name = :name, sort_order = :sort_order WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, criterium)
	if err != nil {
		return fmt.Errorf("update criterium: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update criterium rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteCriterium removes a criterium by id.
func (r *RubricRepository) DeleteCriterium(ctx context.Context, id int64) error {
	const query = `DELETE FROM criteria WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete criterium: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete criterium rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteCriteriaByScript removes all criteria attached to a script.
func (r *RubricRepository) DeleteCriteriaByScript(ctx context.Context, scriptID int64) error {
	const query = `DELETE FROM criteria WHERE script_id = $1`
	if _, err := r.db.ExecContext(ctx, query, scriptID); err != nil {
		return fmt.Errorf("delete criteria by script: %w", err)
	}
	return nil
}

// DeleteByActivity removes all criteria and scripts for an activity.
func (r *RubricRepository) DeleteByActivity(ctx context.Context, activityID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM criteria WHERE activity_id = $1`, activityID); err != nil {
		return fmt.Errorf("delete criteria by activity: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM scripts WHERE activity_id = $1`, activityID); err != nil {
		return fmt.Errorf("delete scripts by activity: %w", err)
	}
	return nil
}
