package engagement

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const (
	// SessionName is the cookie session engagement ids are kept in.
	SessionName = "folio_session"
	sessionKey  = "sid"
)

// SessionID derives an anonymous session id from the client IP and
// User-Agent, salted per installation so it cannot be reversed.
func (s *Store) SessionID(ip, userAgent string) string {
	h := sha256.New()
	h.Write([]byte(s.salt + ip + "|" + userAgent))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// sessionID returns the id kept in the session cookie. On first contact it
// derives one and stores it in the cookie. Without session middleware the
// derived id is used as is.
func (h *Handler) sessionID(c echo.Context) string {
	sess, err := session.Get(SessionName, c)
	if err == nil {
		if sid, ok := sess.Values[sessionKey].(string); ok && sid != "" {
			return sid
		}
	}
	sid := h.store.SessionID(c.RealIP(), c.Request().UserAgent())
	if err == nil {
		sess.Values[sessionKey] = sid
		if err := sess.Save(c.Request(), c.Response()); err != nil {
			c.Logger().Warnf("Failed to save engagement session: %v", err)
		}
	}
	return sid
}
