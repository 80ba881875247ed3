package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a service token fails signature or
// claim validation.
var ErrInvalidToken = errors.New("invalid service token")

// NewServiceToken builds and signs an HS256 JWT for a trusted caller
// such as the Telegram bot.  The subject carries the caller's Telegram
// id and the handle claim its username, so a verified service token
// yields the same Identity shape as verified initData.
func NewServiceToken(secret string, telegramID int64, handle string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":    telegramID,
		"handle": handle,
		"exp":    now.Add(ttl).Unix(),
		"iat":    now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// ParseServiceToken validates a raw HS256 token and extracts the caller
// identity.  Tokens signed with any other method are rejected.
func ParseServiceToken(secret, raw string) (*Identity, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, ok := claims["sub"].(float64)
	if !ok || sub == 0 {
		return nil, ErrInvalidToken
	}
	handle, _ := claims["handle"].(string)
	return &Identity{TelegramID: int64(sub), Username: handle}, nil
}
