package middleware

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/tempo-go-api/internal/utils"
)

const (
	localUserID   = "user_id"
	localUserRole = "user_role"
)

// JWTProtected validates HMAC bearer tokens issued by the identity provider and stores the
// subject and role claims in request locals.
func JWTProtected(secret string) fiber.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))

	return func(c *fiber.Ctx) error {
		authorization := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if authorization == "" {
			return utils.SendErrorCode(c, fiber.StatusUnauthorized, "unauthorized", "authorization header missing")
		}

		const bearer = "bearer "
		if len(authorization) <= len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
			return utils.SendErrorCode(c, fiber.StatusUnauthorized, "unauthorized", "invalid authorization header")
		}

		claims := jwt.MapClaims{}
		token, err := parser.ParseWithClaims(strings.TrimSpace(authorization[len(bearer):]), claims, func(*jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendErrorCode(c, fiber.StatusUnauthorized, "unauthorized", "invalid token")
		}

		userID, err := subjectFromClaims(claims)
		if err != nil {
			return utils.SendErrorCode(c, fiber.StatusUnauthorized, "unauthorized", "invalid token subject")
		}

		c.Locals(localUserID, userID)
		c.Locals(localUserRole, roleFromClaims(claims))

		return c.Next()
	}
}

func subjectFromClaims(claims jwt.MapClaims) (uint, error) {
	for _, key := range []string{"sub", "user_id"} {
		value, ok := claims[key]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case float64:
			if v <= 0 || v != math.Trunc(v) {
				return 0, fmt.Errorf("invalid subject")
			}
			return uint(v), nil
		case string:
			parsed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
			if err != nil || parsed == 0 {
				return 0, fmt.Errorf("invalid subject")
			}
			return uint(parsed), nil
		}
	}
	return 0, fmt.Errorf("subject missing")
}

func roleFromClaims(claims jwt.MapClaims) string {
	switch v := claims["role"].(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case []interface{}:
		for _, item := range v {
			if str, ok := item.(string); ok && strings.TrimSpace(str) != "" {
				return strings.ToLower(strings.TrimSpace(str))
			}
		}
	}
	return ""
}
