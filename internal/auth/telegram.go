// Package auth verifies caller credentials.  Two kinds are accepted:
// Telegram WebApp initData signed by the bot token (mini-app clients) and
// HS256 service tokens (the bot and backoffice tooling).  Both resolve to
// the same Identity; admin privilege is decided separately against the
// admin_users table.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Identity is a verified caller.  TelegramID is the only stable key;
// Username may be empty for accounts without a public handle.
type Identity struct {
	TelegramID int64
	Username   string
}

// Errors returned by Verify.  All of them map to AUTH_ERROR on the wire;
// the distinctions exist for logs and tests.
var (
	ErrMissingInitData = errors.New("missing telegram init data")
	ErrBadSignature    = errors.New("invalid init data signature")
	ErrExpired         = errors.New("init data expired")
	ErrMalformed       = errors.New("malformed init data")
)

// TelegramVerifier validates Telegram WebApp initData strings.  The
// scheme is fixed by Telegram: the secret key is HMAC-SHA256 of the bot
// token keyed with the literal "WebAppData", and the hash field must
// equal HMAC-SHA256 of the sorted key=value lines keyed with that secret.
type TelegramVerifier struct {
	botToken string
	maxAge   time.Duration
}

// NewTelegramVerifier constructs a verifier.  maxAge bounds how old the
// auth_date of accepted initData may be; pass 0 for the 24h default.
func NewTelegramVerifier(botToken string, maxAge time.Duration) *TelegramVerifier {
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	return &TelegramVerifier{botToken: botToken, maxAge: maxAge}
}

// Verify checks the signature and freshness of raw initData and returns
// the identity embedded in its user field.
func (v *TelegramVerifier) Verify(initData string) (*Identity, error) {
	if strings.TrimSpace(initData) == "" {
		return nil, ErrMissingInitData
	}
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, ErrMalformed
	}
	hash := values.Get("hash")
	if hash == "" {
		return nil, ErrMalformed
	}
	values.Del("hash")

	// auth_date must be recent; stolen initData should not stay usable.
	if ad := values.Get("auth_date"); ad != "" {
		ts, err := strconv.ParseInt(ad, 10, 64)
		if err != nil {
			return nil, ErrMalformed
		}
		if time.Since(time.Unix(ts, 0)) > v.maxAge {
			return nil, ErrExpired
		}
	}

	if !hmac.Equal([]byte(computeHash(v.botToken, values)), []byte(hash)) {
		return nil, ErrBadSignature
	}

	userParam := values.Get("user")
	if userParam == "" {
		return nil, ErrMalformed
	}
	var user struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal([]byte(userParam), &user); err != nil || user.ID == 0 {
		return nil, ErrMalformed
	}
	return &Identity{TelegramID: user.ID, Username: user.Username}, nil
}

// computeHash builds the data-check-string (sorted key=value lines joined
// by newlines, hash excluded) and signs it the way Telegram specifies.
func computeHash(botToken string, values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+values.Get(k))
	}
	dataCheckString := strings.Join(lines, "\n")

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(dataCheckString))
	return hex.EncodeToString(mac.Sum(nil))
}
