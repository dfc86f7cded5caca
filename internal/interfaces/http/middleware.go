package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	HeaderUserID    = "X-User-Id"
	HeaderUserEmail = "X-User-Email"
)

type identity struct {
	UserID    string
	UserEmail string
}

const identityContextKey = "quickshow.identity"

// RequireIdentity rejects requests that do not carry the caller's
// identity headers. Authentication itself happens at the edge; the
// service trusts whatever the gateway forwarded.
func RequireIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID := c.Request().Header.Get(HeaderUserID)
		userEmail := c.Request().Header.Get(HeaderUserEmail)

		if userID == "" || userEmail == "" {
			return c.JSON(http.StatusUnauthorized, map[string]any{
				"success": false,
				"message": "Missing user identity.",
			})
		}

		c.Set(identityContextKey, identity{
			UserID:    userID,
			UserEmail: userEmail,
		})

		return next(c)
	}
}

func identityFrom(c echo.Context) identity {
	id, _ := c.Get(identityContextKey).(identity)
	return id
}
