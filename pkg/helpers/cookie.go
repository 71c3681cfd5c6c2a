package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const AccessTokenCookie = "access_token"

// SessionCookie writes the session token cookie. It is HttpOnly and scoped to
// the whole site; Domain and Secure come from configuration.
type SessionCookie struct {
	Domain string
	Secure bool
}

func NewSessionCookie(domain string, secure bool) *SessionCookie {
	return &SessionCookie{Domain: domain, Secure: secure}
}

// Set stores token so that the cookie expires together with it. An already
// expired token removes the cookie instead.
func (s *SessionCookie) Set(c *gin.Context, token string, exp time.Time) {
	s.write(c, token, secondsUntil(exp))
}

// Clear expires the cookie in the browser.
func (s *SessionCookie) Clear(c *gin.Context) {
	s.write(c, "", -1)
}

func (s *SessionCookie) write(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, value, maxAge, "/", s.Domain, s.Secure, true)
}

func secondsUntil(exp time.Time) int {
	if sec := int(time.Until(exp).Seconds()); sec > 0 {
		return sec
	}
	return -1
}
