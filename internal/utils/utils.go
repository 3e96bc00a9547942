package utils

import (
	"crypto/rand"
	"encoding/base64"
	"net/url"
	"strings"
)

// GenToken returns n random bytes encoded as url-safe base64.
func GenToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// SafeRedirect returns next when it is a path on this site, fallback otherwise.
func SafeRedirect(next string, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return fallback
	}
	return next
}
