package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Config holds the accepted credentials. When both are empty every request passes.
type Config struct {
	// ApiKey is compared with the X-API-Key header.
	ApiKey string
	// JWTSecret verifies HMAC-signed bearer tokens.
	JWTSecret string
}

// Claims are the operator claims carried by CRM-issued tokens.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Operator returns the identity recorded on confirmed mappings.
func (c *Claims) Operator() string {
	if c.Email != "" {
		return c.Email
	}
	return c.Subject
}

// New returns a middleware accepting either a valid API key or a valid bearer
// token. The authenticated operator is stored in Locals("operator").
func New(cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.ApiKey == "" && cfg.JWTSecret == "" {
			return c.Next()
		}

		if cfg.ApiKey != "" {
			if key := c.Get("X-API-Key"); key != "" && subtle.ConstantTimeCompare([]byte(key), []byte(cfg.ApiKey)) == 1 {
				c.Locals("operator", strings.TrimSpace(c.Get("X-Operator")))
				return c.Next()
			}
		}

		if cfg.JWTSecret != "" {
			if claims, ok := parseBearer(c.Get("Authorization"), cfg.JWTSecret); ok {
				c.Locals("operator", claims.Operator())
				return c.Next()
			}
		}

		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	}
}

func parseBearer(header, secret string) (*Claims, bool) {
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, false
	}
	tokenString := strings.TrimPrefix(header, "Bearer ")

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "invalid signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, false
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, false
	}
	return claims, true
}
