package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sonsbeekmedia/competgrade-api/internal/models"
	appErrors "github.com/sonsbeekmedia/competgrade-api/pkg/errors"
)

type activityRepo interface {
	FindByID(ctx context.Context, id int64) (*models.Activity, error)
	Delete(ctx context.Context, id int64) error
}

type activityCascadeRepo interface {
	DeleteByActivity(ctx context.Context, activityID int64) error
}

// ActivityService resolves activities and owns the activity-level cascade.
type ActivityService struct {
	activities     activityRepo
	grades         activityCascadeRepo
	comments       activityCascadeRepo
	certifications activityCascadeRepo
	rubric         activityCascadeRepo
	enrollments    activityCascadeRepo
	cache          *CacheService
	logger         *zap.Logger
}

// NewActivityService constructs an ActivityService.
func NewActivityService(activities activityRepo, grades, comments, certifications, rubric, enrollments activityCascadeRepo, cache *CacheService, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{
		activities:     activities,
		grades:         grades,
		comments:       comments,
		certifications: certifications,
		rubric:         rubric,
		enrollments:    enrollments,
		cache:          cache,
		logger:         logger,
	}
}

// Resolve loads an activity, failing with a not-found error before any
// operation that would otherwise touch orphaned records.
func (s *ActivityService) Resolve(ctx context.Context, activityID int64) (*models.Activity, error) {
	if activityID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "activity id required")
	}
	activity, err := s.activities.FindByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("activity %d not found", activityID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
	}
	return activity, nil
}

// DeleteActivity removes an activity and everything it owns. The cascade is
// explicit and ordered: grades, comments, certifications, criteria and
// scripts, enrollments, then the activity row itself.
func (s *ActivityService) DeleteActivity(ctx context.Context, actorID, activityID int64) error {
	activity, err := s.Resolve(ctx, activityID)
	if err != nil {
		return err
	}

	cascades := []struct {
		name string
		repo activityCascadeRepo
	}{
		{"grades", s.grades},
		{"comments", s.comments},
		{"certifications", s.certifications},
		{"rubric", s.rubric},
		{"enrollments", s.enrollments},
	}
	for _, step := range cascades {
		if err := step.repo.DeleteByActivity(ctx, activity.ID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to delete %s for activity", step.name))
		}
	}

	if err := s.activities.Delete(ctx, activity.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("activity %d not found", activityID))
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete activity")
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, rosterCachePattern(activity.ID)); err != nil {
			s.logger.Warn("failed to invalidate roster cache after activity delete", zap.Int64("activity_id", activity.ID), zap.Error(err))
		}
	}

	s.logger.Info("activity deleted",
		zap.Int64("activity_id", activity.ID),
		zap.Int64("actor_id", actorID),
	)
	return nil
}
