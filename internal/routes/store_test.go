package routes

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gitlab.com/ranfdev/polls/internal/models"
)

type fakeAccount struct {
	user   models.User
	passwd string
}

// fakeStore is an in-memory Store with the same not-found and upsert
// semantics as the postgres implementation.
type fakeStore struct {
	mu        sync.Mutex
	nextID    int
	questions map[int]*models.Question
	choices   []models.Choice
	votes     []models.Vote
	accounts  map[string]*fakeAccount
	tokens    map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		questions: map[int]*models.Question{},
		accounts:  map[string]*fakeAccount{},
		tokens:    map[string]int{},
	}
}

func (s *fakeStore) id() int {
	s.nextID++
	return s.nextID
}

func (s *fakeStore) addQuestion(text string, pub time.Time, end *time.Time, choices ...string) (*models.Question, []models.Choice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := &models.Question{ID: s.id(), QuestionText: text, PubDate: pub, EndDate: end}
	s.questions[q.ID] = q
	added := []models.Choice{}
	for _, c := range choices {
		choice := models.Choice{ID: s.id(), QuestionID: q.ID, ChoiceText: c}
		s.choices = append(s.choices, choice)
		added = append(added, choice)
	}
	return q, added
}

func (s *fakeStore) addUser(username, passwd string) (*models.User, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := &fakeAccount{user: models.User{ID: s.id(), Username: username}, passwd: passwd}
	s.accounts[username] = acc
	token := fmt.Sprintf("token-%d", acc.user.ID)
	s.tokens[token] = acc.user.ID
	return &acc.user, token
}

func (s *fakeStore) userVotes(userID, questionID int) []models.Vote {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := []models.Vote{}
	for _, v := range s.votes {
		if v.UserID == userID && v.QuestionID == questionID {
			res = append(res, v)
		}
	}
	return res
}

func (s *fakeStore) ListRecentQuestions(ctx context.Context, now time.Time, limit int) ([]models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := []models.Question{}
	for _, q := range s.questions {
		if !q.PubDate.After(now) {
			res = append(res, *q)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].PubDate.After(res[j].PubDate) })
	if len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (s *fakeStore) GetQuestion(ctx context.Context, id int) (*models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.questions[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *q
	return &copied, nil
}

func (s *fakeStore) ListChoices(ctx context.Context, questionID int) ([]models.Choice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := []models.Choice{}
	for _, c := range s.choices {
		if c.QuestionID == questionID {
			res = append(res, c)
		}
	}
	return res, nil
}

func (s *fakeStore) GetChoice(ctx context.Context, questionID, choiceID int) (*models.Choice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.choices {
		if c.ID == choiceID && c.QuestionID == questionID {
			copied := c
			return &copied, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *fakeStore) ListTallies(ctx context.Context, questionID int) ([]models.ChoiceTally, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := []models.ChoiceTally{}
	for _, c := range s.choices {
		if c.QuestionID != questionID {
			continue
		}
		t := models.ChoiceTally{Choice: c}
		for _, v := range s.votes {
			if v.ChoiceID == c.ID {
				t.Votes++
			}
		}
		res = append(res, t)
	}
	return res, nil
}

func (s *fakeStore) CastVote(ctx context.Context, userID, questionID, choiceID int) (*models.VoteOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	for _, c := range s.choices {
		if c.ID == choiceID && c.QuestionID == questionID {
			found = true
		}
	}
	if !found {
		return nil, models.ErrNotFound
	}
	for i, v := range s.votes {
		if v.UserID == userID && v.QuestionID == questionID {
			s.votes[i].ChoiceID = choiceID
			return &models.VoteOutcome{VoteID: v.ID, Created: false}, nil
		}
	}
	v := models.Vote{ID: s.id(), UserID: userID, QuestionID: questionID, ChoiceID: choiceID}
	s.votes = append(s.votes, v)
	return &models.VoteOutcome{VoteID: v.ID, Created: true}, nil
}

func (s *fakeStore) GetUserVote(ctx context.Context, userID, questionID int) (*models.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.votes {
		if v.UserID == userID && v.QuestionID == questionID {
			copied := v
			return &copied, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *fakeStore) Login(ctx context.Context, username string, passwd string) (string, *models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[username]
	if !ok || acc.passwd != passwd {
		return "", nil, models.ErrBadCredentials
	}
	token := fmt.Sprintf("token-%d-%d", acc.user.ID, s.id())
	s.tokens[token] = acc.user.ID
	user := acc.user
	return token, &user, nil
}

func (s *fakeStore) Signout(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}

func (s *fakeStore) GetUserByToken(ctx context.Context, token string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.tokens[token]
	if !ok {
		return nil, models.ErrNotFound
	}
	for _, acc := range s.accounts {
		if acc.user.ID == userID {
			user := acc.user
			return &user, nil
		}
	}
	return nil, models.ErrNotFound
}
