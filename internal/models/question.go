package models

import (
	"strings"
	"time"
)

// RecentWindow is how far back a question counts as recently published.
const RecentWindow = 24 * time.Hour

const (
	LimitMaxTextLen = 200
	LimitMinChoices = 2
)

type Question struct {
	ID           int        `db:"id"`
	QuestionText string     `db:"question_text"`
	PubDate      time.Time  `db:"pub_date"`
	EndDate      *time.Time `db:"end_date"` // nil means the poll never closes
}

// IsPublished reports whether the publish date has been reached.
func (q *Question) IsPublished(now time.Time) bool {
	return !now.Before(q.PubDate)
}

// CanVote reports whether the question is published and not past its end date.
func (q *Question) CanVote(now time.Time) bool {
	if !q.IsPublished(now) {
		return false
	}
	return q.EndDate == nil || !now.After(*q.EndDate)
}

func (q *Question) WasPublishedRecently(now time.Time) bool {
	return q.IsPublished(now) && now.Sub(q.PubDate) <= RecentWindow
}

func (q *Question) String() string {
	return q.QuestionText
}

// QuestionReq is what an administrator submits to create a poll.
type QuestionReq struct {
	QuestionText string
	PubDate      time.Time
	EndDate      *time.Time
	Choices      []string
}

func (req *QuestionReq) Validate() error {
	if !validText(req.QuestionText) {
		return ErrEmptyText
	}
	if req.EndDate != nil && req.EndDate.Before(req.PubDate) {
		return ErrEndBeforePub
	}
	if len(req.Choices) < LimitMinChoices {
		return ErrTooFewChoices
	}
	for _, c := range req.Choices {
		if !validText(c) {
			return ErrEmptyText
		}
	}
	return nil
}

func validText(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && len([]rune(s)) <= LimitMaxTextLen
}
