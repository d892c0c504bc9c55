package flash

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// cookieName holds the encoded message for CookieStore.
const cookieName = "flash"

// CookieStore keeps the flash message in a short-lived HTTP-only cookie.
type CookieStore struct {
	TTL    time.Duration
	Secure bool
}

// NewCookieStore constructs a CookieStore.
func NewCookieStore(ttl time.Duration, secure bool) *CookieStore {
	return &CookieStore{TTL: ttl, Secure: secure}
}

// Set stores msg in the response cookie.
func (s *CookieStore) Set(c *gin.Context, msg Message) error {
	value, err := encodeMessage(msg)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookieName, value, int(s.TTL/time.Second), "/", "", s.Secure, true)
	return nil
}

// Pop reads the message from the request and expires the cookie.
func (s *CookieStore) Pop(c *gin.Context) (Message, bool) {
	value, errCookie := c.Cookie(cookieName)
	if errCookie != nil || value == "" {
		return Message{}, false
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookieName, "", -1, "/", "", s.Secure, true)
	return decodeMessage(value)
}
