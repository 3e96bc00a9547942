package routes

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"
	"gitlab.com/ranfdev/polls/internal/models"
	"gitlab.com/ranfdev/polls/internal/utils"
)

const msgBadLogin = "Please enter a correct username and password."

type loginData struct {
	Layout
	Next         string
	Username     string
	ErrorMessage string
}

func (routes *Routes) GetLogin(w http.ResponseWriter, r *http.Request) AppError {
	next := utils.SafeRedirect(r.URL.Query().Get("next"), "/polls/")
	if GetUser(r) != nil {
		http.Redirect(w, r, next, http.StatusFound)
		return nil
	}
	routes.tmpls.RenderHTML(w, "login", loginData{
		Layout: routes.layout(w, r, "Log in"),
		Next:   next,
	})
	return nil
}

func (routes *Routes) PostLogin(w http.ResponseWriter, r *http.Request) AppError {
	if err := r.ParseForm(); err != nil {
		return &ErrBadRequest{Motivation: "Malformed login form", Cause: err}
	}
	username := r.FormValue("username")
	next := utils.SafeRedirect(r.FormValue("next"), "/polls/")

	token, user, err := routes.db.Login(r.Context(), username, r.FormValue("password"))
	if errors.Is(err, models.ErrBadCredentials) {
		routes.audit.LoginFailed(r, username)
		routes.tmpls.RenderHTML(w, "login", loginData{
			Layout:       routes.layout(w, r, "Log in"),
			Next:         next,
			Username:     username,
			ErrorMessage: msgBadLogin,
		})
		return nil
	} else if err != nil {
		return &ErrInternal{Msg: "Can't log in", Cause: err}
	}

	// Replace any session the browser already had.
	if old := getToken(r); old != "" {
		if err := routes.db.Signout(r.Context(), old); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Msg("dropping previous session")
		}
	}
	routes.setSession(w, token)
	routes.audit.LoggedIn(r, user.Username)
	http.Redirect(w, r, next, http.StatusSeeOther)
	return nil
}

func (routes *Routes) PostLogout(w http.ResponseWriter, r *http.Request) AppError {
	if token := getToken(r); token != "" {
		if err := routes.db.Signout(r.Context(), token); err != nil {
			return &ErrInternal{Msg: "Can't log out", Cause: err}
		}
	}
	routes.clearSession(w)
	routes.audit.LoggedOut(r, GetUser(r).String())
	http.Redirect(w, r, "/polls/", http.StatusSeeOther)
	return nil
}
