// Package audit logs authentication events together with the client address.
package audit

import (
	"net"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

const LoggerName = "polls.audit"

type Logger struct {
	log zerolog.Logger
}

func New(log zerolog.Logger) *Logger {
	return &Logger{log: log.With().Str("logger", LoggerName).Logger()}
}

// ClientIP prefers the first X-Forwarded-For entry and falls back to the
// address of the direct connection.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.Split(fwd, ",")[0])
		if first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (l *Logger) LoggedIn(r *http.Request, username string) {
	l.log.Info().
		Str("event", "login").
		Str("user", username).
		Str("ip", ClientIP(r)).
		Msgf("Login user: %s via ip: %s", username, ClientIP(r))
}

func (l *Logger) LoggedOut(r *http.Request, username string) {
	l.log.Info().
		Str("event", "logout").
		Str("user", username).
		Str("ip", ClientIP(r)).
		Msgf("Logout user: %s via ip: %s", username, ClientIP(r))
}

// LoginFailed logs the submitted username only, never the password.
func (l *Logger) LoginFailed(r *http.Request, username string) {
	l.log.Warn().
		Str("event", "login_failed").
		Str("user", username).
		Str("ip", ClientIP(r)).
		Msgf("Login failed for: %s via ip: %s", username, ClientIP(r))
}
