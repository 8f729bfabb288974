package middleware

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/teamhub-go-api/internal/dto"
	"github.com/noah-isme/teamhub-go-api/internal/utils"
)

// Locals populated by JWTProtected.
const (
	LocalMemberID   = "member_id"
	LocalMemberRole = "member_role"
	LocalMemberName = "member_name"
)

// IssueToken signs a session token for profile.
func IssueToken(secret string, profile dto.SessionProfile, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(profile.ID, 10),
		"role": profile.Role,
		"name": profile.Name,
		"iat":  now.Unix(),
	}
	if ttl > 0 {
		claims["exp"] = now.Add(ttl).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// JWTProtected validates bearer tokens issued by IssueToken.
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "Bearer "
		if len(authorization) < len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		memberID, err := memberIDFromClaims(claims)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token subject")
		}

		c.Locals(LocalMemberID, memberID)
		if role, ok := claims["role"].(string); ok {
			c.Locals(LocalMemberRole, role)
		}
		if name, ok := claims["name"].(string); ok {
			c.Locals(LocalMemberName, name)
		}

		return c.Next()
	}
}

// SessionReader exposes the signed in member to middleware.
type SessionReader interface {
	Current() (dto.SessionProfile, bool)
}

// RequireSession rejects tokens that do not belong to the member currently
// signed in to this session.
func RequireSession(session SessionReader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		profile, ok := session.Current()
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "no active session")
		}
		if id, _ := c.Locals(LocalMemberID).(int64); id != profile.ID {
			return utils.SendError(c, fiber.StatusUnauthorized, "token does not match active session")
		}
		c.Locals(LocalMemberRole, profile.Role)
		c.Locals(LocalMemberName, profile.Name)
		return c.Next()
	}
}

func memberIDFromClaims(claims jwt.MapClaims) (int64, error) {
	switch v := claims["sub"].(type) {
	case string:
		return strconv.ParseInt(v, 10, 64)
	case float64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("unsupported subject type")
	}
}
