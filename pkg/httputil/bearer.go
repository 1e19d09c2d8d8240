package httputil

import (
	"errors"
	"net/http"
	"strings"
)

var ErrNoToken = errors.New("no bearer token in authorization header")

// TokenFromHeader returns the second space-delimited field of an
// Authorization header value ("Bearer <token>").
func TokenFromHeader(header string) (string, error) {
	fields := strings.Fields(header)
	if len(fields) < 2 || fields[1] == "" {
		return "", ErrNoToken
	}
	return fields[1], nil
}

func GetTokenFromRequest(r *http.Request) (string, error) {
	return TokenFromHeader(r.Header.Get("Authorization"))
}
