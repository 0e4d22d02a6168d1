package models

// GradeTypeGlobal marks the single top-level grade slot per user, not tied
// to a specific criterium.
const GradeTypeGlobal = 1

// Grade is a numeric score for a user on an activity. CriteriumID 0 means
// the global grade slot.
type Grade struct {
	ID           int64 `db:"id" json:"id"`
	ActivityID   int64 `db:"activity_id" json:"competgrade"`
	CriteriumID  int64 `db:"criterium_id" json:"criterium"`
	UserID       int64 `db:"user_id" json:"userid"`
	Value        int   `db:"grade" json:"grade"`
	Type         int   `db:"type" json:"type"`
	TimeModified int64 `db:"time_modified" json:"timemodified"`
}

// SaveGradeRequest upserts a grade. GradeID 0 inserts a new row; a non-zero
// GradeID targets the existing row, whose id the caller received from the
// previous save.
type SaveGradeRequest struct {
	ActivityID  int64 `json:"competgrade" validate:"required,gt=0"`
	CriteriumID int64 `json:"criterium" validate:"gte=0"`
	GradeID     int64 `json:"gradeid" validate:"gte=0"`
	UserID      int64 `json:"userid" validate:"required,gt=0"`
	Value       int   `json:"grade" validate:"gte=0"`
}

// DeleteGradeRequest removes a grade slot. UserID 0 defaults to the actor.
type DeleteGradeRequest struct {
	ActivityID  int64 `json:"competgrade" validate:"required,gt=0"`
	CriteriumID int64 `json:"criterium" validate:"gte=0"`
	UserID      int64 `json:"userid" validate:"gte=0"`
}

// RosterEntry is an enrolled user joined with their current global grade.
// GradeID and Grade stay 0 until a grade is saved.
type RosterEntry struct {
	UserID       int64  `db:"user_id" json:"id"`
	FirstName    string `db:"first_name" json:"firstname"`
	LastName     string `db:"last_name" json:"lastname"`
	Email        string `db:"email" json:"email"`
	IDNumber     string `db:"id_number" json:"idnumber"`
	FullName     string `json:"fullname"`
	Picture      string `db:"picture" json:"picture"`
	PictureLarge string `db:"picture_large" json:"picturelarge"`
	GradeID      int64  `json:"gradeid"`
	Grade        int    `json:"grade"`
}

// Roster is the userlist wire shape.
type Roster struct {
	Success  int           `json:"success"`
	Userlist []RosterEntry `json:"userlist"`
}
