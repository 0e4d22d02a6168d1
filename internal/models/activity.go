package models

// Activity is one grading instance within a course. Every grade, comment,
// script and criterium belongs to exactly one activity.
type Activity struct {
	ID           int64  `db:"id" json:"id"`
	CourseID     int64  `db:"course_id" json:"course"`
	Name         string `db:"name" json:"name"`
	Intro        string `db:"intro" json:"intro"`
	MaxGrade     int    `db:"max_grade" json:"grade"`
	TimeCreated  int64  `db:"time_created" json:"timecreated"`
	TimeModified int64  `db:"time_modified" json:"timemodified"`
}
