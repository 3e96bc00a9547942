package routes

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/hlog"
	"gitlab.com/ranfdev/polls/internal/models"
)

const (
	msgPollClosed = "This poll is closed."
	msgNoChoice   = "You didn't select a choice."
)

type detailData struct {
	Layout
	Question         *models.Question
	Choices          []models.Choice
	SelectedChoiceID int
	ErrorMessage     string
}

func (routes *Routes) GetIndex(w http.ResponseWriter, r *http.Request) AppError {
	now := routes.now()
	questions, err := routes.db.ListRecentQuestions(r.Context(), now, LatestLimit)
	if err != nil {
		return &ErrInternal{Msg: "Can't list polls", Cause: err}
	}

	data := struct {
		Layout
		Questions []models.Question
		Now       time.Time
	}{
		Layout:    routes.layout(w, r, ""),
		Questions: questions,
		Now:       now,
	}
	routes.tmpls.RenderHTML(w, "index", data)
	return nil
}

func (routes *Routes) GetDetail(w http.ResponseWriter, r *http.Request) AppError {
	now := routes.now()
	id, rawID, err := questionID(r)
	if err != nil {
		return routes.redirectIndex(w, r, FlashError, fmt.Sprintf("Poll number %s does not exist.", rawID))
	}
	q, err := routes.db.GetQuestion(r.Context(), id)
	if errors.Is(err, models.ErrNotFound) || (err == nil && !q.IsPublished(now)) {
		return routes.redirectIndex(w, r, FlashError, fmt.Sprintf("Poll number %s does not exist.", rawID))
	} else if err != nil {
		return &ErrInternal{Cause: err}
	}
	if !q.CanVote(now) {
		return routes.redirectIndex(w, r, FlashError, msgPollClosed)
	}
	return routes.renderDetail(w, r, q, "")
}

// renderDetail shows the voting form, preselecting the caller's current vote.
func (routes *Routes) renderDetail(w http.ResponseWriter, r *http.Request, q *models.Question, errorMessage string) AppError {
	choices, err := routes.db.ListChoices(r.Context(), q.ID)
	if err != nil {
		return &ErrInternal{Msg: "Can't list choices", Cause: err}
	}

	selected := 0
	if user := GetUser(r); user != nil {
		vote, err := routes.db.GetUserVote(r.Context(), user.ID, q.ID)
		if err == nil {
			selected = vote.ChoiceID
		} else if !errors.Is(err, models.ErrNotFound) {
			return &ErrInternal{Cause: err}
		}
	}

	data := detailData{
		Layout:           routes.layout(w, r, q.QuestionText),
		Question:         q,
		Choices:          choices,
		SelectedChoiceID: selected,
		ErrorMessage:     errorMessage,
	}
	routes.tmpls.RenderHTML(w, "detail", data)
	return nil
}

func (routes *Routes) GetResults(w http.ResponseWriter, r *http.Request) AppError {
	now := routes.now()
	id, rawID, err := questionID(r)
	if err != nil {
		return routes.redirectIndex(w, r, FlashError, fmt.Sprintf("Poll number %s does not exist.", rawID))
	}
	q, err := routes.db.GetQuestion(r.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		return routes.redirectIndex(w, r, FlashError, fmt.Sprintf("Poll number %s does not exist.", rawID))
	} else if err != nil {
		return &ErrInternal{Cause: err}
	}
	if !q.IsPublished(now) {
		return routes.redirectIndex(w, r, FlashError, fmt.Sprintf("Poll number %d already closed.", q.ID))
	}

	tallies, err := routes.db.ListTallies(r.Context(), q.ID)
	if err != nil {
		return &ErrInternal{Msg: "Can't count votes", Cause: err}
	}

	data := struct {
		Layout
		Question *models.Question
		Tallies  []models.ChoiceTally
		Total    int
		CanVote  bool
	}{
		Layout:   routes.layout(w, r, q.QuestionText),
		Question: q,
		Tallies:  tallies,
		Total:    models.TotalVotes(tallies),
		CanVote:  q.CanVote(now),
	}
	routes.tmpls.RenderHTML(w, "results", data)
	return nil
}

// PostVote records the caller's choice. A second submission for the same
// question moves the existing vote instead of adding one.
func (routes *Routes) PostVote(w http.ResponseWriter, r *http.Request) AppError {
	log := hlog.FromRequest(r)
	user := GetUser(r)

	id, rawID, err := questionID(r)
	if err != nil {
		log.Error().Err(err).Msgf("Non-existent question %s", rawID)
		return &ErrNotFound{Thing: "question", Cause: err}
	}
	q, err := routes.db.GetQuestion(r.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		log.Error().Err(err).Msgf("Non-existent question %d", id)
		return &ErrNotFound{Thing: "question", Cause: err}
	} else if err != nil {
		return &ErrInternal{Cause: err}
	}
	if !q.CanVote(routes.now()) {
		log.Warn().Int("question_id", q.ID).Msgf("%s submits vote on closed question %d", user, q.ID)
		return routes.redirectIndex(w, r, FlashError, msgPollClosed)
	}

	choice, err := routes.selectedChoice(r, q.ID)
	if errors.Is(err, models.ErrNotFound) {
		log.Warn().Err(err).Int("question_id", q.ID).
			Msgf("%s submits vote without selecting a choice on question %s", user, q)
		return routes.renderDetail(w, r, q, msgNoChoice)
	} else if err != nil {
		return &ErrInternal{Cause: err}
	}

	log.Info().Int("choice_id", choice.ID).Int("question_id", q.ID).
		Msgf("%s submits vote on choice id: %d on question id: %d", user, choice.ID, q.ID)

	outcome, err := routes.db.CastVote(r.Context(), user.ID, q.ID, choice.ID)
	if errors.Is(err, models.ErrNotFound) {
		// The choice went away between the lookup and the vote.
		return routes.renderDetail(w, r, q, msgNoChoice)
	} else if err != nil {
		return &ErrInternal{Msg: "Can't record the vote", Cause: err}
	}
	log.Debug().Int("vote_id", outcome.VoteID).Bool("created", outcome.Created).Msg("vote stored")

	routes.addFlash(w, r, FlashSuccess, fmt.Sprintf("Your vote for '%s' has been recorded.", choice))
	http.Redirect(w, r, fmt.Sprintf("/polls/%d/results/", q.ID), http.StatusSeeOther)
	return nil
}

// selectedChoice reads the "choice" form field. A missing, malformed or
// foreign choice is reported as models.ErrNotFound.
func (routes *Routes) selectedChoice(r *http.Request, questionID int) (*models.Choice, error) {
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parsing form: %v: %w", err, models.ErrNotFound)
	}
	values, ok := r.PostForm["choice"]
	if !ok || len(values) == 0 {
		return nil, fmt.Errorf("missing choice field: %w", models.ErrNotFound)
	}
	choiceID, err := parseID(values[0])
	if err != nil {
		return nil, fmt.Errorf("choice %q: %w", values[0], models.ErrNotFound)
	}
	return routes.db.GetChoice(r.Context(), questionID, choiceID)
}

func (routes *Routes) redirectIndex(w http.ResponseWriter, r *http.Request, level FlashLevel, msg string) AppError {
	routes.addFlash(w, r, level, msg)
	http.Redirect(w, r, "/polls/", http.StatusFound)
	return nil
}
