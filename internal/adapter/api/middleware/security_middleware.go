package middleware

import (
	"net/http"

	"campusfind/internal/domain/repository"

	"github.com/labstack/echo/v4"
)

type SecurityMiddleware struct {
	userRepo repository.UserRepository
}

func NewSecurityMiddleware(userRepo repository.UserRepository) *SecurityMiddleware {
	return &SecurityMiddleware{
		userRepo: userRepo,
	}
}

// SecurityOnly restricts a route to accounts holding the campus security
// role. Must run after Authenticate.
func (m *SecurityMiddleware) SecurityOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		uid, ok := c.Get("uid").(string)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
		}

		user, err := m.userRepo.GetByID(c.Request().Context(), uid)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to verify security privileges")
		}

		if !user.IsSecurity() {
			return echo.NewHTTPError(http.StatusForbidden, "Security privileges required")
		}

		return next(c)
	}
}
