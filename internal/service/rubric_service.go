package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sonsbeekmedia/competgrade-api/internal/models"
	appErrors "github.com/sonsbeekmedia/competgrade-api/pkg/errors"
)

type rubricRepo interface {
	FindScript(ctx context.Context, id int64) (*models.Script, error)
	FindCriterium(ctx context.Context, id int64) (*models.Criterium, error)
	ListScripts(ctx context.Context, activityID int64) ([]models.Script, error)
	ListCriteria(ctx context.Context, activityID int64) ([]models.Criterium, error)
	InsertScript(ctx context.Context, script *models.Script) (int64, error)
	UpdateScript(ctx context.Context, script *models.Script) error
	DeleteScript(ctx context.Context, id int64) error
	InsertCriterium(ctx context.Context, criterium *models.Criterium) (int64, error)
	UpdateCriterium(ctx context.Context, criterium *models.Criterium) error
	DeleteCriterium(ctx context.Context, id int64) error
	DeleteCriteriaByScript(ctx context.Context, scriptID int64) error
}

// RubricService maintains the scripts and criteria an activity grades
// against.
type RubricService struct {
	rubric     rubricRepo
	activities activityResolver
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewRubricService constructs a RubricService.
func NewRubricService(rubric rubricRepo, activities activityResolver, validate *validator.Validate, logger *zap.Logger) *RubricService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RubricService{rubric: rubric, activities: activities, validator: validate, logger: logger}
}

// ListRubric returns an activity's scripts with their criteria nested, both
// ordered by sort order. Criteria not attached to any script come last under
// a zero-id script.
func (s *RubricService) ListRubric(ctx context.Context, activityID int64) ([]models.ScriptWithCriteria, error) {
	activity, err := s.activities.Resolve(ctx, activityID)
	if err != nil {
		return nil, err
	}

	scripts, err := s.rubric.ListScripts(ctx, activity.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list scripts")
	}
	criteria, err := s.rubric.ListCriteria(ctx, activity.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list criteria")
	}

	byScript := make(map[int64][]models.Criterium, len(scripts))
	for _, criterium := range criteria {
		byScript[criterium.ScriptID] = append(byScript[criterium.ScriptID], criterium)
	}

	result := make([]models.ScriptWithCriteria, 0, len(scripts)+1)
	for _, script := range scripts {
		entry := models.ScriptWithCriteria{Script: script, Criteria: byScript[script.ID]}
		if entry.Criteria == nil {
			entry.Criteria = []models.Criterium{}
		}
		result = append(result, entry)
	}
	if loose := byScript[0]; len(loose) > 0 {
		result = append(result, models.ScriptWithCriteria{
			Script:   models.Script{ActivityID: activity.ID},
			Criteria: loose,
		})
	}
	return result, nil
}

// SaveScript inserts or updates a script and returns its id.
func (s *RubricService) SaveScript(ctx context.Context, actorID int64, req models.SaveScriptRequest) (int64, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid script payload")
	}

	activity, err := s.activities.Resolve(ctx, req.ActivityID)
	if err != nil {
		return 0, err
	}

	if req.ScriptID > 0 {
		script, err := s.rubric.FindScript(ctx, req.ScriptID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("script %d not found", req.ScriptID))
			}
			return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load script")
		}
		if script.ActivityID != activity.ID {
			return 0, appErrors.Clone(appErrors.ErrValidation, "script does not belong to activity")
		}
		script.Name = req.Name
		script.SortOrder = req.SortOrder
		if err := s.rubric.UpdateScript(ctx, script); err != nil {
			return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update script")
		}
		return script.ID, nil
	}

	script := &models.Script{ActivityID: activity.ID, Name: req.Name, SortOrder: req.SortOrder}
	id, err := s.rubric.InsertScript(ctx, script)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to insert script")
	}
	return id, nil
}

// DeleteScript removes a script after removing its criteria. The cascade is
// deliberate application-level work, not a storage constraint.
func (s *RubricService) DeleteScript(ctx context.Context, actorID, scriptID int64) error {
	script, err := s.rubric.FindScript(ctx, scriptID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("script %d not found", scriptID))
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load script")
	}

	if err := s.rubric.DeleteCriteriaByScript(ctx, script.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete script criteria")
	}
	if err := s.rubric.DeleteScript(ctx, script.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("script %d not found", scriptID))
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete script")
	}

	s.logger.Info("script deleted",
		zap.Int64("script_id", script.ID),
		zap.Int64("activity_id", script.ActivityID),
		zap.Int64("actor_id", actorID),
	)
	return nil
}

// SaveCriterium inserts or updates a criterium and returns its id.
func (s *RubricService) SaveCriterium(ctx context.Context, actorID int64, req models.SaveCriteriumRequest) (int64, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid criterium payload")
	}

	activity, err := s.activities.Resolve(ctx, req.ActivityID)
	if err != nil {
		return 0, err
	}

	if req.ScriptID > 0 {
		script, err := s.rubric.FindScript(ctx, req.ScriptID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("script %d not found", req.ScriptID))
			}
			return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load script")
		}
		if script.ActivityID != activity.ID {
			return 0, appErrors.Clone(appErrors.ErrValidation, "script does not belong to activity")
		}
	}

	if req.CriteriumID > 0 {
		criterium, err := s.rubric.FindCriterium(ctx, req.CriteriumID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("criterium %d not found", req.CriteriumID))
			}
			return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load criterium")
		}
		if criterium.ActivityID != activity.ID {
			return 0, appErrors.Clone(appErrors.ErrValidation, "criterium does not belong to activity")
		}
		criterium.ScriptID = req.ScriptID
		criterium.Name = req.Name
		criterium.SortOrder = req.SortOrder
		if err := s.rubric.UpdateCriterium(ctx, criterium); err != nil {
			return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update criterium")
		}
		return criterium.ID, nil
	}

	criterium := &models.Criterium{ActivityID: activity.ID, ScriptID: req.ScriptID, Name: req.Name, SortOrder: req.SortOrder}
	id, err := s.rubric.InsertCriterium(ctx, criterium)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to insert criterium")
	}
	return id, nil
}

// DeleteCriterium removes one criterium.
func (s *RubricService) DeleteCriterium(ctx context.Context, actorID, criteriumID int64) error {
	criterium, err := s.rubric.FindCriterium(ctx, criteriumID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("criterium %d not found", criteriumID))
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load criterium")
	}
	if err := s.rubric.DeleteCriterium(ctx, criterium.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("criterium %d not found", criteriumID))
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete criterium")
	}

	s.logger.Info("criterium deleted",
		zap.Int64("criterium_id", criterium.ID),
		zap.Int64("activity_id", criterium.ActivityID),
		zap.Int64("actor_id", actorID),
	)
	return nil
}
