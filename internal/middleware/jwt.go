package middleware

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/gema-results-api/internal/utils"
)

var errInvalidSubject = errors.New("invalid subject")

// Claims is the token payload accepted by the results API.
type Claims struct {
	UserID interface{} `json:"user_id,omitempty"`
	Role   interface{} `json:"role,omitempty"`
	Roles  interface{} `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// JWTProtected returns a middleware that validates HMAC-signed bearer tokens
// and stores user_id and user_role in the request locals.
func JWTProtected(secret string) fiber.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{
		jwt.SigningMethodHS256.Alg(),
		jwt.SigningMethodHS384.Alg(),
		jwt.SigningMethodHS512.Alg(),
	}))
	key := []byte(secret)

	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		claims := &Claims{}
		token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
			return key, nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		userID, err := claims.userID()
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token subject")
		}
		c.Locals("user_id", userID)
		if role := claims.role(); role != "" {
			c.Locals("user_role", role)
		}

		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func (c *Claims) userID() (uint, error) {
	if c.Subject != "" {
		return parseSubject(c.Subject)
	}
	return parseSubject(c.UserID)
}

func parseSubject(value interface{}) (uint, error) {
	switch v := value.(type) {
	case float64:
		if v <= 0 {
			return 0, errInvalidSubject
		}
		return uint(v), nil
	case string:
		parsed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil || parsed == 0 {
			return 0, errInvalidSubject
		}
		return uint(parsed), nil
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", errInvalidSubject, value)
	}
}

func (c *Claims) role() string {
	if role := firstRole(c.Role); role != "" {
		return role
	}
	return firstRole(c.Roles)
}

func firstRole(value interface{}) string {
	switch v := value.(type) {
	case string:
		return normalizeRoleValue(v)
	case []interface{}:
		for _, item := range v {
			if str, ok := item.(string); ok {
				if role := normalizeRoleValue(str); role != "" {
					return role
				}
			}
		}
	}
	return ""
}
