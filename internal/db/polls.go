package db

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/pgxscan"
	"gitlab.com/ranfdev/polls/internal/models"
)

var selectQuestion = psql.
	Select("id", "question_text", "pub_date", "end_date").
	From("questions")

// ListRecentQuestions returns at most limit questions published at or
// before now, newest first.
func (sdb *SharedDB) ListRecentQuestions(ctx context.Context, now time.Time, limit int) ([]models.Question, error) {
	sql, args, _ := selectQuestion.
		Where(sq.LtOrEq{"pub_date": now}).
		OrderBy("pub_date DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()

	questions := []models.Question{}
	err := pgxscan.Select(ctx, sdb.db, &questions, sql, args...)
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func (sdb *SharedDB) GetQuestion(ctx context.Context, id int) (*models.Question, error) {
	sql, args, _ := selectQuestion.
		Where(sq.Eq{"id": id}).
		ToSql()

	q := &models.Question{}
	err := pgxscan.Get(ctx, sdb.db, q, sql, args...)
	if pgxscan.NotFound(err) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (sdb *SharedDB) ListChoices(ctx context.Context, questionID int) ([]models.Choice, error) {
	sql, args, _ := psql.
		Select("id", "question_id", "choice_text").
		From("choices").
		Where(sq.Eq{"question_id": questionID}).
		OrderBy("id").
		ToSql()

	choices := []models.Choice{}
	err := pgxscan.Select(ctx, sdb.db, &choices, sql, args...)
	if err != nil {
		return nil, err
	}
	return choices, nil
}

// GetChoice looks the choice up under questionID only, so a choice of
// another question is reported as not found.
func (sdb *SharedDB) GetChoice(ctx context.Context, questionID, choiceID int) (*models.Choice, error) {
	sql, args, _ := psql.
		Select("id", "question_id", "choice_text").
		From("choices").
		Where(sq.Eq{"id": choiceID, "question_id": questionID}).
		ToSql()

	c := &models.Choice{}
	err := pgxscan.Get(ctx, sdb.db, c, sql, args...)
	if pgxscan.NotFound(err) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (sdb *SharedDB) ListTallies(ctx context.Context, questionID int) ([]models.ChoiceTally, error) {
	sql, args, _ := psql.
		Select(
			"choices.id",
			"choices.question_id",
			"choices.choice_text",
			"COUNT(votes.id) AS votes",
		).
		From("choices").
		LeftJoin("votes ON votes.choice_id = choices.id").
		Where(sq.Eq{"choices.question_id": questionID}).
		GroupBy("choices.id").
		OrderBy("choices.id").
		ToSql()

	tallies := []models.ChoiceTally{}
	err := pgxscan.Select(ctx, sdb.db, &tallies, sql, args...)
	if err != nil {
		return nil, err
	}
	return tallies, nil
}

// CastVote records choiceID as the user's vote on questionID. The first call
// inserts a row; later calls move that same row to the new choice.
func (sdb *SharedDB) CastVote(ctx context.Context, userID, questionID, choiceID int) (*models.VoteOutcome, error) {
	sql, args, _ := psql.
		Insert("votes").
		Columns("user_id", "question_id", "choice_id").
		Values(userID, questionID, choiceID).
		Suffix(`ON CONFLICT ON CONSTRAINT votes_user_question_key
			DO UPDATE SET choice_id = EXCLUDED.choice_id
			RETURNING id, (xmax = 0) AS created`).
		ToSql()

	outcome := &models.VoteOutcome{}
	err := pgxscan.Get(ctx, sdb.db, outcome, sql, args...)
	if code, _ := pgErrCode(err); code == codeForeignKeyViolation {
		return nil, fmt.Errorf("choice %d of question %d: %w", choiceID, questionID, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

func (sdb *SharedDB) GetUserVote(ctx context.Context, userID, questionID int) (*models.Vote, error) {
	sql, args, _ := psql.
		Select("id", "user_id", "question_id", "choice_id").
		From("votes").
		Where(sq.Eq{"user_id": userID, "question_id": questionID}).
		ToSql()

	v := &models.Vote{}
	err := pgxscan.Get(ctx, sdb.db, v, sql, args...)
	if pgxscan.NotFound(err) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// CreateQuestion inserts the question and its choices in one transaction.
func (sdb *SharedDB) CreateQuestion(ctx context.Context, req *models.QuestionReq) (*models.Question, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	q := &models.Question{
		QuestionText: req.QuestionText,
		PubDate:      req.PubDate,
		EndDate:      req.EndDate,
	}
	err := execTx(ctx, sdb.db, func(ctx context.Context, tx DBTX) error {
		sql, args, _ := psql.
			Insert("questions").
			Columns("question_text", "pub_date", "end_date").
			Values(q.QuestionText, q.PubDate, q.EndDate).
			Suffix("RETURNING id").
			ToSql()
		if err := tx.QueryRow(ctx, sql, args...).Scan(&q.ID); err != nil {
			return err
		}

		insert := psql.Insert("choices").Columns("question_id", "choice_text")
		for _, text := range req.Choices {
			insert = insert.Values(q.ID, text)
		}
		sql, args, _ = insert.ToSql()
		_, err := tx.Exec(ctx, sql, args...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}
