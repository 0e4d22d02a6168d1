package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sonsbeekmedia/competgrade-api/internal/models"
	appErrors "github.com/sonsbeekmedia/competgrade-api/pkg/errors"
)

type certificationRepo interface {
	ListByActivityAndUser(ctx context.Context, activityID, userID int64) ([]models.Certification, error)
	ListComments(ctx context.Context, certificationIDs []int64) (map[int64][]models.CertificationCommentRow, error)
}

// CertificationService is the read model behind the certification panel.
type CertificationService struct {
	certifications certificationRepo
	activities     activityResolver
	logger         *zap.Logger
}

// NewCertificationService constructs a CertificationService.
func NewCertificationService(certifications certificationRepo, activities activityResolver, logger *zap.Logger) *CertificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CertificationService{certifications: certifications, activities: activities, logger: logger}
}

// Status returns a user's certification checklist with each item's comment
// thread grouped by author in first-appearance order.
func (s *CertificationService) Status(ctx context.Context, activityID, userID int64) ([]models.CertificationItem, error) {
	activity, err := s.activities.Resolve(ctx, activityID)
	if err != nil {
		return nil, err
	}

	certifications, err := s.certifications.ListByActivityAndUser(ctx, activity.ID, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list certifications")
	}
	if len(certifications) == 0 {
		return []models.CertificationItem{}, nil
	}

	ids := make([]int64, len(certifications))
	for i, certification := range certifications {
		ids[i] = certification.ID
	}
	commentRows, err := s.certifications.ListComments(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list certification comments")
	}

	items := make([]models.CertificationItem, 0, len(certifications))
	for _, certification := range certifications {
		item := models.CertificationItem{
			Description: certification.Description,
			Confidence:  certification.Confidence,
			Realised:    certification.Realised,
			Verified:    certification.Verified,
			AllComments: groupCertificationComments(commentRows[certification.ID]),
		}
		items = append(items, item)
	}
	return items, nil
}

func groupCertificationComments(rows []models.CertificationCommentRow) []models.CertificationBucket {
	buckets := []models.CertificationBucket{}
	index := make(map[int64]int)
	for _, row := range rows {
		pos, ok := index[row.AuthorID]
		if !ok {
			fullName := strings.TrimSpace(row.AuthorFirstName + " " + row.AuthorLastName)
			buckets = append(buckets, models.CertificationBucket{
				FullName: fullName,
				Picture:  row.AuthorPicture,
				Comments: []models.CertificationComment{},
			})
			pos = len(buckets) - 1
			index[row.AuthorID] = pos
		}
		if buckets[pos].Note == "" && row.Note != "" {
			buckets[pos].Note = row.Note
		}
		buckets[pos].Comments = append(buckets[pos].Comments, row.CertificationComment)
	}
	return buckets
}
