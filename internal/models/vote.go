package models

// Vote is a user's current selection for a question. QuestionID always
// matches the question of ChoiceID.
type Vote struct {
	ID         int `db:"id"`
	UserID     int `db:"user_id"`
	QuestionID int `db:"question_id"`
	ChoiceID   int `db:"choice_id"`
}

// VoteOutcome tells whether casting a vote created a new row or moved an
// existing one to another choice.
type VoteOutcome struct {
	VoteID  int  `db:"id"`
	Created bool `db:"created"`
}
