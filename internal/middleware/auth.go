// Package middleware carries the cross-cutting echo middleware: admin
// token auth, request logging and HTTP metrics.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vinsight/vinsight/internal/domain"
	"github.com/vinsight/vinsight/internal/service"
)

const adminUserKey = "admin_user"

// AdminAuth gates a route group behind the admin bearer token. On success
// the administrator's username is stored on the request context.
func AdminAuth(auth *service.AuthService, logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request().Header.Get("Authorization"))
			if token == "" {
				return unauthorized(c, "authentication required")
			}

			user, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				logger.Debug().Err(err).Str("path", c.Request().URL.Path).Msg("admin auth rejected")
				if domain.IsCode(err, domain.EFORBIDDEN) {
					return c.JSON(http.StatusForbidden, map[string]string{"error": domain.ErrorMessage(err)})
				}
				return unauthorized(c, "invalid or expired token")
			}

			c.Set(adminUserKey, user.Username)
			return next(c)
		}
	}
}

// AdminUsername returns the authenticated administrator's username, empty
// outside an authenticated admin request.
func AdminUsername(c echo.Context) string {
	username, _ := c.Get(adminUserKey).(string)
	return username
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{"error": msg})
}
