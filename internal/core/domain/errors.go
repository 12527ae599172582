package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrAuthentication   = errors.New("incorrect username and/or password")
	ErrSignInInProgress = errors.New("sign-in already in progress")
	ErrSessionNotFound  = errors.New("session not found")
	ErrAccountNotFound  = errors.New("account not found")
	ErrForbidden        = errors.New("access forbidden")
)

// ValidationError reports missing or malformed credential fields. It is
// raised before any network call is made.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, "; ")
}
