package routes

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/hlog"
	"gitlab.com/ranfdev/polls/internal/models"
)

type AppError interface {
	error
	Status() int
	Message() string
}

type ErrNotFound struct {
	Thing string
	Cause error
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %v", e.Thing, e.Cause)
}
func (e *ErrNotFound) Unwrap() error   { return e.Cause }
func (e *ErrNotFound) Status() int     { return http.StatusNotFound }
func (e *ErrNotFound) Message() string { return fmt.Sprintf("No %s matches the given query.", e.Thing) }

type ErrBadRequest struct {
	Motivation string
	Cause      error
}

func (e *ErrBadRequest) Error() string {
	return fmt.Sprintf("bad request: %s: %v", e.Motivation, e.Cause)
}
func (e *ErrBadRequest) Unwrap() error { return e.Cause }
func (e *ErrBadRequest) Status() int   { return http.StatusBadRequest }
func (e *ErrBadRequest) Message() string {
	if e.Motivation == "" {
		return "Bad request"
	}
	return e.Motivation
}

type ErrInternal struct {
	Msg   string
	Cause error
}

func (e *ErrInternal) Error() string {
	return fmt.Sprintf("internal error: %s: %v", e.Msg, e.Cause)
}
func (e *ErrInternal) Unwrap() error { return e.Cause }
func (e *ErrInternal) Status() int   { return http.StatusInternalServerError }
func (e *ErrInternal) Message() string {
	if e.Msg == "" {
		return "Internal server error"
	}
	return e.Msg
}

func (routes *Routes) AppHandler(handler func(w http.ResponseWriter, r *http.Request) AppError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := handler(w, r); err != nil {
			routes.HandleErr(w, r, err)
		}
	}
}

// HandleErr logs err and renders the error page. Errors that are not an
// AppError become 404 when they wrap models.ErrNotFound and 500 otherwise.
func (routes *Routes) HandleErr(w http.ResponseWriter, r *http.Request, err error) {
	var appErr AppError
	if !errors.As(err, &appErr) {
		if errors.Is(err, models.ErrNotFound) {
			appErr = &ErrNotFound{Thing: "object", Cause: err}
		} else {
			appErr = &ErrInternal{Cause: err}
		}
	}

	logEvent := hlog.FromRequest(r).Error()
	if appErr.Status() < http.StatusInternalServerError {
		logEvent = hlog.FromRequest(r).Warn()
	}
	logEvent.
		Err(err).
		Int("status", appErr.Status()).
		Msg(appErr.Message())

	data := struct {
		Layout
		Status  int
		Message string
	}{
		Layout:  routes.layout(w, r, http.StatusText(appErr.Status())),
		Status:  appErr.Status(),
		Message: appErr.Message(),
	}
	routes.tmpls.RenderHTMLStatus(w, appErr.Status(), "error", data)
}
