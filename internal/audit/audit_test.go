package audit

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestClientIP(t *testing.T) {
	entries := []struct {
		name       string
		forwarded  string
		remoteAddr string
		expect     string
	}{
		{"direct", "", "10.0.0.7:51234", "10.0.0.7"},
		{"forwarded single", "203.0.113.9", "10.0.0.7:51234", "203.0.113.9"},
		{"forwarded chain", "203.0.113.9, 198.51.100.2, 10.0.0.1", "10.0.0.7:51234", "203.0.113.9"},
		{"forwarded blank first", " , 198.51.100.2", "10.0.0.7:51234", "10.0.0.7"},
		{"no port", "", "10.0.0.7", "10.0.0.7"},
		{"ipv6", "", "[::1]:8080", "::1"},
	}
	for _, e := range entries {
		t.Run(e.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/login", nil)
			r.RemoteAddr = e.remoteAddr
			if e.forwarded != "" {
				r.Header.Set("X-Forwarded-For", e.forwarded)
			}
			require.Equal(t, e.expect, ClientIP(r))
		})
	}
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	line := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	buf.Reset()
	return line
}

func TestEvents(t *testing.T) {
	require := require.New(t)
	buf := &bytes.Buffer{}
	l := New(zerolog.New(buf))

	r := httptest.NewRequest("POST", "/login", nil)
	r.RemoteAddr = "10.0.0.7:51234"
	r.Header.Set("X-Forwarded-For", "203.0.113.9")

	l.LoggedIn(r, "pippo")
	line := decodeLine(t, buf)
	require.Equal("info", line["level"])
	require.Equal(LoggerName, line["logger"])
	require.Equal("login", line["event"])
	require.Equal("pippo", line["user"])
	require.Equal("203.0.113.9", line["ip"])

	l.LoggedOut(r, "pippo")
	line = decodeLine(t, buf)
	require.Equal("info", line["level"])
	require.Equal("logout", line["event"])

	l.LoginFailed(r, "pluto")
	line = decodeLine(t, buf)
	require.Equal("warn", line["level"])
	require.Equal("login_failed", line["event"])
	require.Equal("pluto", line["user"])
}
