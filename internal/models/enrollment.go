package models

import "time"

// Enrollment registers a user on an activity. Gradeable marks users that
// appear on the grading roster; GroupID 0 means no group.
type Enrollment struct {
	ID         int64     `db:"id" json:"id"`
	ActivityID int64     `db:"activity_id" json:"competgrade"`
	UserID     int64     `db:"user_id" json:"userid"`
	GroupID    int64     `db:"group_id" json:"groupid"`
	Gradeable  bool      `db:"gradeable" json:"gradeable"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
