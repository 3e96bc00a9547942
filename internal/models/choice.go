package models

type Choice struct {
	ID         int    `db:"id"`
	QuestionID int    `db:"question_id"`
	ChoiceText string `db:"choice_text"`
}

func (c *Choice) String() string {
	return c.ChoiceText
}

// ChoiceTally is a choice together with the number of votes pointing at it.
type ChoiceTally struct {
	Choice
	Votes int `db:"votes"`
}

// Percent returns the share of total held by this choice, in [0, 100].
func (t ChoiceTally) Percent(total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(t.Votes) * 100 / float64(total)
}

func TotalVotes(tallies []ChoiceTally) int {
	total := 0
	for _, t := range tallies {
		total += t.Votes
	}
	return total
}
