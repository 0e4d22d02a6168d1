package models

// Comment type discriminator values.
const (
	// CommentTypeAppraisal is a per-criterium appraisal comment.
	CommentTypeAppraisal = 1
	// CommentTypeGlobal is the single global comment shown to the student.
	CommentTypeGlobal = 2
)

// Comment is free-text feedback about a user on an activity. AuthorID is the
// writer, UserID the subject; when they match the comment is a self comment.
type Comment struct {
	ID           int64  `db:"id" json:"id"`
	ActivityID   int64  `db:"activity_id" json:"competgrade"`
	AuthorID     int64  `db:"author_id" json:"authorid"`
	UserID       int64  `db:"user_id" json:"userid"`
	Title        string `db:"title" json:"commenttitle"`
	Text         string `db:"text" json:"commenttext"`
	Type         int    `db:"type" json:"type"`
	TimeModified int64  `db:"time_modified" json:"timemodified"`
}

// SaveCommentRequest upserts a comment. CommentID 0 inserts; a non-zero id
// overwrites that comment's title and text.
type SaveCommentRequest struct {
	CommentID  int64  `json:"commentid" validate:"gte=0"`
	ActivityID int64  `json:"competgrade" validate:"required,gt=0"`
	UserID     int64  `json:"userid" validate:"required,gt=0"`
	Type       int    `json:"type" validate:"required,oneof=1 2"`
	Title      string `json:"commenttitle"`
	Text       string `json:"commenttext"`
}

// SingleComment is the getcomment wire shape. CommentID 0 with empty strings
// is the "nothing saved yet" sentinel, not an error.
type SingleComment struct {
	CommentID int64  `json:"commentid"`
	Title     string `json:"commenttitle"`
	Text      string `json:"commenttext"`
}

// CommentBucket groups one author's comments with their display info.
type CommentBucket struct {
	AuthorID int64     `json:"-"`
	FullName string    `json:"fullname"`
	Note     string    `json:"note"`
	Picture  string    `json:"picture"`
	Comments []Comment `json:"comments"`
}

// CommentGroups partitions an activity's comments about one user into the
// subject's own comments and per-author appraiser buckets.
type CommentGroups struct {
	UserComments      []CommentBucket `json:"usercomments"`
	AppraiserComments []CommentBucket `json:"appraisercomments"`
}
