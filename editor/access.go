package editor

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
)

var ErrAccessDenied = errors.New("access denied")

// Access decides whether a request holds a permission.
type Access interface {
	HasPermission(r *http.Request, permission string) bool
}

// TokenAccess grants every permission to requests carrying the bearer token.
// An empty token grants nothing.
type TokenAccess struct {
	Token string
}

func (a TokenAccess) HasPermission(r *http.Request, permission string) bool {
	if a.Token == "" {
		return false
	}
	token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return found && subtle.ConstantTimeCompare([]byte(token), []byte(a.Token)) == 1
}
