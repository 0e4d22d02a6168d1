package models

// Certification is one checklist item for a user on an activity.
type Certification struct {
	ID          int64  `db:"id" json:"id"`
	ActivityID  int64  `db:"activity_id" json:"competgrade"`
	UserID      int64  `db:"user_id" json:"userid"`
	Description string `db:"description" json:"description"`
	Confidence  int    `db:"confidence" json:"confidence"`
	Realised    bool   `db:"realised" json:"realised"`
	Verified    bool   `db:"verified" json:"verified"`
	SortOrder   int    `db:"sort_order" json:"sortorder"`
}

// CertificationComment is one remark on a certification item.
type CertificationComment struct {
	ID              int64  `db:"id" json:"-"`
	CertificationID int64  `db:"certification_id" json:"-"`
	AuthorID        int64  `db:"author_id" json:"-"`
	Note            string `db:"note" json:"-"`
	Title           string `db:"title" json:"commenttitle"`
	Text            string `db:"text" json:"commenttext"`
	TimeCreated     int64  `db:"time_created" json:"timecreated"`
}

// CertificationCommentRow joins a certification comment with author display
// info for the read model.
type CertificationCommentRow struct {
	CertificationComment
	AuthorFirstName string `db:"author_first_name"`
	AuthorLastName  string `db:"author_last_name"`
	AuthorPicture   string `db:"author_picture"`
}

// CertificationBucket groups one author's remarks on a certification item.
type CertificationBucket struct {
	FullName string                 `json:"fullname"`
	Note     string                 `json:"note"`
	Picture  string                 `json:"picture"`
	Comments []CertificationComment `json:"comments"`
}

// CertificationItem is the certification wire shape for one checklist entry.
type CertificationItem struct {
	Description string                `json:"description"`
	Confidence  int                   `json:"confidence"`
	Realised    bool                  `json:"realised"`
	Verified    bool                  `json:"verified"`
	AllComments []CertificationBucket `json:"allcomments"`
}
