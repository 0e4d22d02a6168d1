package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/sonsbeekmedia/competgrade-api/internal/models"
)

// CertificationRepository reads the certification checklist and its comment
// threads.
type CertificationRepository struct {
	db *sqlx.DB
}

// NewCertificationRepository creates a new certification repository.
func NewCertificationRepository(db *sqlx.DB) *CertificationRepository {
	return &CertificationRepository{db: db}
}

// ListByActivityAndUser returns a user's checklist items in display order.
func (r *CertificationRepository) ListByActivityAndUser(ctx context.Context, activityID, userID int64) ([]models.Certification, error) {
	const query = `SELECT id, activity_id, user_id, description, confidence, realised, verified, sort_order
        FROM certifications
        WHERE activity_id = $1 AND user_id = $2
        ORDER BY sort_order ASC, id ASC`
	var items []models.Certification
	if err := r.db.SelectContext(ctx, &items, query, activityID, userID); err != nil {
		return nil, fmt.Errorf("list certifications: %w", err)
	}
	return items, nil
}

// ListComments returns the comment rows for a set of checklist items joined
// with author display info, keyed by certification id.
func (r *CertificationRepository) ListComments(ctx context.Context, certificationIDs []int64) (map[int64][]models.CertificationCommentRow, error) {
	if len(certificationIDs) == 0 {
		return map[int64][]models.CertificationCommentRow{}, nil
	}
	placeholders := make([]string, len(certificationIDs))
	args := make([]interface{}, len(certificationIDs))
	for i, id := range certificationIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT cc.id, cc.certification_id, cc.author_id, cc.note, cc.title, cc.text, cc.time_created,
            u.first_name AS author_first_name, u.last_name AS author_last_name, u.picture AS author_picture
        FROM certification_comments cc
        JOIN users u ON u.id = cc.author_id
        WHERE cc.certification_id IN (%s)
        ORDER BY cc.certification_id ASC, cc.id ASC`, strings.Join(placeholders, ","))

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list certification comments: %w", err)
	}
	defer rows.Close()

	result := make(map[int64][]models.CertificationCommentRow, len(certificationIDs))
	for rows.Next() {
		var row models.CertificationCommentRow
		if err := rows.StructScan(&row); err != nil {
			return nil, fmt.Errorf("scan certification comment: %w", err)
		}
		result[row.CertificationID] = append(result[row.CertificationID], row)
	}
	return result, nil
}

// DeleteByActivity removes all certification data for an activity.
func (r *CertificationRepository) DeleteByActivity(ctx context.Context, activityID int64) error {
	const commentsQuery = `DELETE FROM certification_comments WHERE certification_id IN (SELECT id FROM certifications WHERE activity_id = $1)`
	if _, err := r.db.ExecContext(ctx, commentsQuery, activityID); err != nil {
		return fmt.Errorf("delete certification comments by activity: %w", err)
	}
	const itemsQuery = `DELETE FROM certifications WHERE activity_id = $1`
	if _, err := r.db.ExecContext(ctx, itemsQuery, activityID); err != nil {
		return fmt.Errorf("delete certifications by activity: %w", err)
	}
	return nil
}
