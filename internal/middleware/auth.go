package middleware

import (
	"net/http"
	"strings"

	"agency-backend/internal/repository"
	"agency-backend/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const actorContextKey = "actor"

// AdminAuth parses the bearer token and resolves the caller's role from the
// user_roles table. Requests without an admin or super_admin role are
// rejected before any handler runs.
func AdminAuth(jwtSecret string, roleRepo repository.UserRoleRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authorization header must be a bearer token")
			}

			token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
			}
			userID, _ := claims["sub"].(string)
			if userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token has no subject")
			}

			role, err := roleRepo.RoleFor(c.Request().Context(), userID)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "resolve role")
			}
			if role != service.RoleAdmin && role != service.RoleSuperAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "admin role required")
			}

			SetActor(c, service.Actor{UserID: userID, Role: role})
			return next(c)
		}
	}
}

// SetActor stores the authenticated admin on the request context.
func SetActor(c echo.Context, actor service.Actor) {
	c.Set(actorContextKey, actor)
}

// ActorFrom returns the authenticated admin stored by AdminAuth.
func ActorFrom(c echo.Context) (service.Actor, bool) {
	actor, ok := c.Get(actorContextKey).(service.Actor)
	return actor, ok
}
