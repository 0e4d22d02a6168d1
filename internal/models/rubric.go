package models

// Script is a named group of rubric criteria, ordered within an activity.
type Script struct {
	ID         int64  `db:"id" json:"id"`
	ActivityID int64  `db:"activity_id" json:"competgrade"`
	Name       string `db:"name" json:"name"`
	SortOrder  int    `db:"sort_order" json:"sortorder"`
}

// Criterium is one rubric line item belonging to a script. ScriptID 0 marks
// a free-standing criterium not attached to any script.
type Criterium struct {
	ID         int64  `db:"id" json:"id"`
	ActivityID int64  `db:"activity_id" json:"competgrade"`
	ScriptID   int64  `db:"script_id" json:"script"`
	Name       string `db:"name" json:"name"`
	SortOrder  int    `db:"sort_order" json:"sortorder"`
}

// ScriptWithCriteria nests a script's criteria for rubric listings.
type ScriptWithCriteria struct {
	Script
	Criteria []Criterium `json:"criteria"`
}

// SaveScriptRequest creates or updates a script. ScriptID 0 inserts.
type SaveScriptRequest struct {
	ScriptID   int64  `json:"id" validate:"gte=0"`
	ActivityID int64  `json:"competgrade" validate:"required,gt=0"`
	Name       string `json:"name" validate:"required"`
	SortOrder  int    `json:"sortorder" validate:"gte=0"`
}

// SaveCriteriumRequest creates or updates a criterium. CriteriumID 0 inserts.
type SaveCriteriumRequest struct {
	CriteriumID int64  `json:"id" validate:"gte=0"`
	ActivityID  int64  `json:"competgrade" validate:"required,gt=0"`
	ScriptID    int64  `json:"script" validate:"gte=0"`
	Name        string `json:"name" validate:"required"`
	SortOrder   int    `json:"sortorder" validate:"gte=0"`
}
