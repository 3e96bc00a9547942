package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func mockQuestion(pub time.Time, end *time.Time) *Question {
	return &Question{ID: 1, QuestionText: "What's up?", PubDate: pub, EndDate: end}
}

func TestWasPublishedRecently(t *testing.T) {
	require := require.New(t)
	now := time.Now()

	recent := mockQuestion(now.Add(-(23*time.Hour + 59*time.Minute + 59*time.Second)), nil)
	require.True(recent.WasPublishedRecently(now))

	old := mockQuestion(now.Add(-(24*time.Hour + time.Second)), nil)
	require.False(old.WasPublishedRecently(now))

	future := mockQuestion(now.Add(time.Hour), nil)
	require.False(future.WasPublishedRecently(now))

	exact := mockQuestion(now, nil)
	require.True(exact.WasPublishedRecently(now))
}

func TestIsPublished(t *testing.T) {
	require := require.New(t)
	now := time.Now()

	require.False(mockQuestion(now.Add(time.Second), nil).IsPublished(now))
	require.True(mockQuestion(now, nil).IsPublished(now))
	require.True(mockQuestion(now.Add(-time.Hour), nil).IsPublished(now))
}

func TestCanVote(t *testing.T) {
	require := require.New(t)
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	ended := mockQuestion(now.Add(-2*time.Hour), &past)
	require.True(ended.IsPublished(now))
	require.False(ended.CanVote(now))

	require.True(mockQuestion(past, nil).CanVote(now))
	require.True(mockQuestion(past, &future).CanVote(now))
	require.True(mockQuestion(past, &now).CanVote(now))
	require.False(mockQuestion(future, nil).CanVote(now))

	// An end date before the publish date makes the poll never votable.
	before := now.Add(-3 * time.Hour)
	require.False(mockQuestion(past, &before).CanVote(now))
}

func TestQuestionReqValidate(t *testing.T) {
	now := time.Now()
	end := now.Add(-time.Minute)
	long := make([]rune, LimitMaxTextLen+1)
	for i := range long {
		long[i] = 'a'
	}

	entries := []struct {
		name string
		req  QuestionReq
		want error
	}{
		{"valid", QuestionReq{"Best fruit?", now, nil, []string{"banana", "apple"}}, nil},
		{"blank text", QuestionReq{"   ", now, nil, []string{"a", "b"}}, ErrEmptyText},
		{"long text", QuestionReq{string(long), now, nil, []string{"a", "b"}}, ErrEmptyText},
		{"end before pub", QuestionReq{"q", now, &end, []string{"a", "b"}}, ErrEndBeforePub},
		{"one choice", QuestionReq{"q", now, nil, []string{"a"}}, ErrTooFewChoices},
		{"blank choice", QuestionReq{"q", now, nil, []string{"a", ""}}, ErrEmptyText},
	}
	for _, e := range entries {
		t.Run(e.name, func(t *testing.T) {
			err := e.req.Validate()
			if e.want == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, e.want)
			}
		})
	}
}

func TestTallies(t *testing.T) {
	require := require.New(t)
	tallies := []ChoiceTally{
		{Choice: Choice{ID: 1, ChoiceText: "a"}, Votes: 3},
		{Choice: Choice{ID: 2, ChoiceText: "b"}, Votes: 1},
		{Choice: Choice{ID: 3, ChoiceText: "c"}, Votes: 0},
	}
	total := TotalVotes(tallies)
	require.Equal(4, total)
	require.Equal(75.0, tallies[0].Percent(total))
	require.Equal(0.0, tallies[2].Percent(total))
	require.Equal(0.0, tallies[0].Percent(0))
}

func TestValidateUsername(t *testing.T) {
	require := require.New(t)
	require.True(ValidateUsername("pippo"))
	require.True(ValidateUsername("pippo.baudo@rai"))
	require.False(ValidateUsername(""))
	require.False(ValidateUsername("has space"))
}

func TestUserString(t *testing.T) {
	var u *User
	require.Equal(t, "AnonymousUser", u.String())
	require.Equal(t, "pippo", (&User{Username: "pippo"}).String())
}
