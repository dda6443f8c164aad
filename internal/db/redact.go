package db

import (
	"net/url"
	"regexp"
)

var keywordPassword = regexp.MustCompile(`(?i)(password\s*=\s*)('[^']*'|\S+)`)

// Redact hides the password of a database URL or keyword/value
// connection string so it can be logged.
func Redact(connStr string) string {
	if u, err := url.Parse(connStr); err == nil && u.Scheme != "" && u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), "xxxxx")
		}
		return u.String()
	}
	return keywordPassword.ReplaceAllString(connStr, "${1}xxxxx")
}
