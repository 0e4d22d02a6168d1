package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sonsbeekmedia/competgrade-api/internal/models"
	appErrors "github.com/sonsbeekmedia/competgrade-api/pkg/errors"
	"github.com/sonsbeekmedia/competgrade-api/pkg/export"
)

type gradeRepo interface {
	FindByID(ctx context.Context, id int64) (*models.Grade, error)
	FindSlot(ctx context.Context, activityID, criteriumID, userID int64, gradeType int) (*models.Grade, error)
	Insert(ctx context.Context, grade *models.Grade) (int64, error)
	Update(ctx context.Context, grade *models.Grade) error
	Delete(ctx context.Context, id int64) error
	ListByActivityAndType(ctx context.Context, activityID int64, gradeType int) ([]models.Grade, error)
}

type activityResolver interface {
	Resolve(ctx context.Context, activityID int64) (*models.Activity, error)
}

type gradeableLister interface {
	ListGradeable(ctx context.Context, activityID, groupID int64) ([]models.User, error)
}

type criteriumReader interface {
	FindCriterium(ctx context.Context, id int64) (*models.Criterium, error)
}

type rosterExporter interface {
	Render(data export.Dataset) ([]byte, error)
}

type rosterPDFExporter interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// GradingService owns grade upsert/delete and roster assembly.
type GradingService struct {
	grades      gradeRepo
	activities  activityResolver
	enrollments gradeableLister
	criteria    criteriumReader
	cache       *CacheService
	csv         rosterExporter
	pdf         rosterPDFExporter
	validator   *validator.Validate
	logger      *zap.Logger
	cacheTTL    time.Duration
	now         func() time.Time
}

// NewGradingService constructs a GradingService.
func NewGradingService(grades gradeRepo, activities activityResolver, enrollments gradeableLister, criteria criteriumReader, cache *CacheService, csv rosterExporter, pdf rosterPDFExporter, validate *validator.Validate, logger *zap.Logger, cacheTTL time.Duration) *GradingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradingService{
		grades:      grades,
		activities:  activities,
		enrollments: enrollments,
		criteria:    criteria,
		cache:       cache,
		csv:         csv,
		pdf:         pdf,
		validator:   validate,
		logger:      logger,
		cacheTTL:    cacheTTL,
		now:         time.Now,
	}
}

func rosterCacheKey(activityID, groupID int64) string {
	return fmt.Sprintf("roster:activity:%d:group:%d", activityID, groupID)
}

func rosterCachePattern(activityID int64) string {
	return fmt.Sprintf("roster:activity:%d:*", activityID)
}

// SaveGrade inserts or updates one grade. A zero GradeID inserts a new row
// and returns its id; the caller echoes that id on the next save to target
// the same row.
func (s *GradingService) SaveGrade(ctx context.Context, actorID int64, req models.SaveGradeRequest) (int64, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}

	activity, err := s.activities.Resolve(ctx, req.ActivityID)
	if err != nil {
		return 0, err
	}

	if req.CriteriumID > 0 {
		criterium, err := s.criteria.FindCriterium(ctx, req.CriteriumID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("criterium %d not found", req.CriteriumID))
			}
			return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load criterium")
		}
		if criterium.ActivityID != activity.ID {
			return 0, appErrors.Clone(appErrors.ErrValidation, "criterium does not belong to activity")
		}
	}

	modified := s.now().Unix()

	var gradeID int64
	if req.GradeID == 0 {
		grade := &models.Grade{
			ActivityID:   activity.ID,
			CriteriumID:  req.CriteriumID,
			UserID:       req.UserID,
			Value:        req.Value,
			Type:         models.GradeTypeGlobal,
			TimeModified: modified,
		}
		gradeID, err = s.grades.Insert(ctx, grade)
		if err != nil {
			return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to insert grade")
		}
	} else {
		grade, err := s.grades.FindByID(ctx, req.GradeID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("grade %d not found", req.GradeID))
			}
			return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
		}
		if grade.ActivityID != activity.ID {
			return 0, appErrors.Clone(appErrors.ErrValidation, "grade does not belong to activity")
		}
		grade.Value = req.Value
		grade.TimeModified = modified
		if err := s.grades.Update(ctx, grade); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("grade %d not found", req.GradeID))
			}
			return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update grade")
		}
		gradeID = grade.ID
	}

	s.invalidateRoster(ctx, activity.ID)

	s.logger.Info("grade saved",
		zap.Int64("activity_id", activity.ID),
		zap.Int64("grade_id", gradeID),
		zap.Int64("user_id", req.UserID),
		zap.Int64("actor_id", actorID),
	)
	return gradeID, nil
}

// DeleteGrade removes one grade slot. The subject defaults to the actor when
// the request carries no user id. Deleting an empty slot is an error.
func (s *GradingService) DeleteGrade(ctx context.Context, actorID int64, req models.DeleteGradeRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid delete grade payload")
	}

	activity, err := s.activities.Resolve(ctx, req.ActivityID)
	if err != nil {
		return err
	}

	userID := req.UserID
	if userID == 0 {
		userID = actorID
	}

	grade, err := s.grades.FindSlot(ctx, activity.ID, req.CriteriumID, userID, models.GradeTypeGlobal)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}

	if err := s.grades.Delete(ctx, grade.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete grade")
	}

	s.invalidateRoster(ctx, activity.ID)

	s.logger.Info("grade deleted",
		zap.Int64("activity_id", activity.ID),
		zap.Int64("grade_id", grade.ID),
		zap.Int64("user_id", userID),
		zap.Int64("actor_id", actorID),
	)
	return nil
}

// Roster returns every gradeable user on an activity merged with their
// current global grade. Users without a grade get the 0/0 sentinel pair.
func (s *GradingService) Roster(ctx context.Context, activityID, groupID int64) (*models.Roster, error) {
	activity, err := s.activities.Resolve(ctx, activityID)
	if err != nil {
		return nil, err
	}

	cacheKey := rosterCacheKey(activity.ID, groupID)
	if s.cache != nil {
		var cached models.Roster
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	users, err := s.enrollments.ListGradeable(ctx, activity.ID, groupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrolled users")
	}

	grades, err := s.grades.ListByActivityAndType(ctx, activity.ID, models.GradeTypeGlobal)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}

	// Later rows overwrite earlier ones, so the most recent grade wins.
	byUser := make(map[int64]models.Grade, len(grades))
	for _, grade := range grades {
		byUser[grade.UserID] = grade
	}

	entries := make([]models.RosterEntry, 0, len(users))
	for _, user := range users {
		entry := models.RosterEntry{
			UserID:       user.ID,
			FirstName:    user.FirstName,
			LastName:     user.LastName,
			Email:        user.Email,
			IDNumber:     user.IDNumber,
			FullName:     user.FullName(),
			Picture:      user.Picture,
			PictureLarge: user.PictureLarge,
		}
		if grade, ok := byUser[user.ID]; ok {
			entry.GradeID = grade.ID
			entry.Grade = grade.Value
		}
		entries = append(entries, entry)
	}

	roster := &models.Roster{Success: 1, Userlist: entries}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, roster, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache roster", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return roster, nil
}

// ExportRoster renders the roster as CSV or PDF and returns the payload with
// its content type.
func (s *GradingService) ExportRoster(ctx context.Context, activityID, groupID int64, format string) ([]byte, string, error) {
	activity, err := s.activities.Resolve(ctx, activityID)
	if err != nil {
		return nil, "", err
	}

	roster, err := s.Roster(ctx, activityID, groupID)
	if err != nil {
		return nil, "", err
	}

	dataset := export.Dataset{
		Headers: []string{"ID", "Name", "Email", "ID Number", "Grade"},
	}
	for _, entry := range roster.Userlist {
		gradeValue := ""
		if entry.GradeID != 0 {
			gradeValue = strconv.Itoa(entry.Grade)
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"ID":        strconv.FormatInt(entry.UserID, 10),
			"Name":      entry.FullName,
			"Email":     entry.Email,
			"ID Number": entry.IDNumber,
			"Grade":     gradeValue,
		})
	}

	switch format {
	case "csv":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return payload, "text/csv", nil
	case "pdf":
		payload, err := s.pdf.Render(dataset, activity.Name)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

func (s *GradingService) invalidateRoster(ctx context.Context, activityID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, rosterCachePattern(activityID)); err != nil {
		s.logger.Warn("failed to invalidate roster cache", zap.Int64("activity_id", activityID), zap.Error(err))
	}
}
