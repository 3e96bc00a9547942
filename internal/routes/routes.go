package routes

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"gitlab.com/ranfdev/polls/internal/audit"
	"gitlab.com/ranfdev/polls/internal/models"
	"gitlab.com/ranfdev/polls/internal/render"
)

const (
	sessionCookie = "polls_session"
	// LatestLimit is how many questions the index lists.
	LatestLimit = 5
)

type ctxKey int

const (
	UserCtxKey ctxKey = iota
	TokenCtxKey
)

// Store is the persistence the handlers need. *db.SharedDB implements it.
type Store interface {
	ListRecentQuestions(ctx context.Context, now time.Time, limit int) ([]models.Question, error)
	GetQuestion(ctx context.Context, id int) (*models.Question, error)
	ListChoices(ctx context.Context, questionID int) ([]models.Choice, error)
	GetChoice(ctx context.Context, questionID, choiceID int) (*models.Choice, error)
	ListTallies(ctx context.Context, questionID int) ([]models.ChoiceTally, error)
	CastVote(ctx context.Context, userID, questionID, choiceID int) (*models.VoteOutcome, error)
	GetUserVote(ctx context.Context, userID, questionID int) (*models.Vote, error)

	Login(ctx context.Context, username string, passwd string) (string, *models.User, error)
	Signout(ctx context.Context, token string) error
	GetUserByToken(ctx context.Context, token string) (*models.User, error)
}

type Routes struct {
	envConfig *models.EnvConfig
	db        Store
	log       zerolog.Logger
	tmpls     *render.Templates
	audit     *audit.Logger
	static    fs.FS
	now       func() time.Time
}

// Layout is the data every page shares.
type Layout struct {
	Title   string
	User    *models.User
	Flashes []Flash
}

func NewRouter(envConfig *models.EnvConfig, db Store, log zerolog.Logger, tmpls *render.Templates, static fs.FS) chi.Router {
	routes := &Routes{
		envConfig: envConfig,
		db:        db,
		log:       log.With().Str("logger", "polls.views").Logger(),
		tmpls:     tmpls,
		audit:     audit.New(log),
		static:    static,
		now:       time.Now,
	}
	return routes.router()
}

func (routes *Routes) router() chi.Router {
	r := chi.NewRouter()

	r.Use(hlog.NewHandler(routes.log))
	r.Use(hlog.RequestIDHandler("request_id", "X-Request-Id"))
	r.Use(hlog.RemoteAddrHandler("remote_addr"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("")
	}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	if routes.static != nil {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(routes.static)))
		r.Get("/static/*", fileServer.ServeHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(routes.UserCtx)
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/polls/", http.StatusFound)
		})
		r.Route("/polls", routes.PollsRouter)
		r.Get("/login", routes.AppHandler(routes.GetLogin))
		r.Post("/login", routes.AppHandler(routes.PostLogin))
		r.Post("/logout", routes.AppHandler(routes.PostLogout))
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		routes.tmpls.RenderHTMLStatus(w, http.StatusNotFound, "404", nil)
	})
	return r
}

func (routes *Routes) PollsRouter(r chi.Router) {
	r.Get("/", routes.AppHandler(routes.GetIndex))
	r.Route("/{questionID}", func(r chi.Router) {
		r.Get("/", routes.AppHandler(routes.GetDetail))
		r.Get("/results/", routes.AppHandler(routes.GetResults))
		r.Get("/vote/", routes.redirectToDetail)
		r.With(routes.EnforceUser).Post("/vote/", routes.AppHandler(routes.PostVote))
	})
}

// UserCtx resolves the session cookie, if any, to the logged in user.
func (routes *Routes) UserCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(sessionCookie)
		if err != nil || c.Value == "" {
			next.ServeHTTP(w, r)
			return
		}
		user, err := routes.db.GetUserByToken(r.Context(), c.Value)
		if errors.Is(err, models.ErrNotFound) {
			routes.clearSession(w)
			next.ServeHTTP(w, r)
			return
		} else if err != nil {
			routes.HandleErr(w, r, &ErrInternal{Msg: "Can't read session", Cause: err})
			return
		}
		ctx := context.WithValue(r.Context(), UserCtxKey, user)
		ctx = context.WithValue(ctx, TokenCtxKey, c.Value)
		hlog.FromRequest(r).UpdateContext(func(zc zerolog.Context) zerolog.Context {
			return zc.Str("user", user.Username)
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// EnforceUser sends anonymous callers to the login page.
func (routes *Routes) EnforceUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUser(r) == nil {
			http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(UserCtxKey).(*models.User)
	return user
}

func getToken(r *http.Request) string {
	token, _ := r.Context().Value(TokenCtxKey).(string)
	return token
}

func (routes *Routes) layout(w http.ResponseWriter, r *http.Request, title string) Layout {
	return Layout{
		Title:   title,
		User:    GetUser(r),
		Flashes: routes.popFlashes(w, r),
	}
}

// maxShownID bounds how much of a user supplied id is echoed in messages.
const maxShownID = 32

// parseID parses a database id. Ids stored as INT are 32 bit, so anything
// wider cannot match a row.
func parseID(raw string) (int, error) {
	id, err := strconv.ParseInt(raw, 10, 32)
	return int(id), err
}

// questionID returns the parsed questionID URL param and its raw value,
// shortened for display.
func questionID(r *http.Request) (int, string, error) {
	raw := chi.URLParam(r, "questionID")
	id, err := parseID(raw)
	shown := raw
	if len(shown) > maxShownID {
		shown = shown[:maxShownID] + "..."
	}
	return id, shown, err
}

func (routes *Routes) redirectToDetail(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/polls/"+url.PathEscape(chi.URLParam(r, "questionID"))+"/", http.StatusFound)
}

func (routes *Routes) setSession(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   routes.envConfig.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  routes.now().Add(models.SessionMaxAge),
	})
}

func (routes *Routes) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   routes.envConfig.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
