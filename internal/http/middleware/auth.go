package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// UserIDLocalKey holds the authenticated user ID in Fiber's context locals.
	UserIDLocalKey = "user_id"
	// TokenCookie is the cookie checked when no Authorization header is sent.
	TokenCookie = "token"

	tokenLeeway = 30 * time.Second
)

var errNoSubject = errors.New("token has no subject")

// TokenVerifier validates HS256 session tokens and extracts the user ID.
type TokenVerifier struct {
	secret []byte
	issuer string
}

// NewTokenVerifier creates a verifier for tokens signed with secret. When issuer
// is non-empty, tokens must carry a matching iss claim.
func NewTokenVerifier(secret, issuer string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), issuer: issuer}
}

// Verify checks the signature and expiry of raw and returns its subject.
func (v *TokenVerifier) Verify(raw string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(tokenLeeway),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	if _, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...); err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errNoSubject
	}
	return claims.Subject, nil
}

// Issue signs a token for userID valid for ttl.
func (v *TokenVerifier) Issue(userID string, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", errNoSubject
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    v.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// Authenticate rejects requests without a valid token and stores the token's
// subject under UserIDLocalKey. User IDs supplied by the client any other way
// are never trusted.
func Authenticate(v *TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := bearerToken(c.Get(fiber.HeaderAuthorization))
		if raw == "" {
			raw = c.Cookies(TokenCookie)
		}
		if raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing credentials")
		}

		uid, err := v.Verify(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		c.Locals(UserIDLocalKey, uid)
		return c.Next()
	}
}

// UserID returns the authenticated user ID, or "" outside Authenticate.
func UserID(c *fiber.Ctx) string {
	uid, _ := c.Locals(UserIDLocalKey).(string)
	return uid
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
