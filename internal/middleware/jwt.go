// Package middleware holds the echo middleware shared by the API routes.
package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dorm-booking/internal/model"
	"github.com/iliyamo/dorm-booking/internal/utils"
)

// Context keys set by JWTAuth.
const (
	KeyUserID = "user_id"
	KeyRole   = "role"
)

// JWTAuth validates an HS256 Bearer token and stores the resident id
// (uint64) and role (string) in the context. Tokens without a role claim
// are treated as residents.
func JWTAuth(secret string) echo.MiddlewareFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	keyFunc := func(*jwt.Token) (interface{}, error) { return []byte(secret), nil }

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

			claims := jwt.MapClaims{}
			tok, err := parser.ParseWithClaims(raw, claims, keyFunc)
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			id, err := utils.SubjectID(claims)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid subject"})
			}
			role, _ := claims["role"].(string)
			switch role {
			case "":
				role = model.RoleResident
			case model.RoleResident, model.RoleAdmin:
			default:
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unknown role"})
			}

			c.Set(KeyUserID, id)
			c.Set(KeyRole, role)
			return next(c)
		}
	}
}
