package auth

import (
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBotToken = "123456:TEST-TOKEN"

// signedInitData builds an initData string the way a Telegram client
// would: query parameters plus a hash over the sorted key=value lines.
func signedInitData(t *testing.T, botToken string, authDate time.Time) string {
	t.Helper()
	v := url.Values{}
	v.Set("query_id", "AAH9mQ")
	v.Set("user", `{"id":42,"username":"maria","first_name":"Maria"}`)
	v.Set("auth_date", strconv.FormatInt(authDate.Unix(), 10))
	v.Set("hash", computeHash(botToken, v))
	return v.Encode()
}

func TestVerifyAcceptsValidInitData(t *testing.T) {
	v := NewTelegramVerifier(testBotToken, 0)

	id, err := v.Verify(signedInitData(t, testBotToken, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, int64(42), id.TelegramID)
	assert.Equal(t, "maria", id.Username)
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	v := NewTelegramVerifier(testBotToken, 0)

	raw := signedInitData(t, testBotToken, time.Now())
	parsed, err := url.ParseQuery(raw)
	require.NoError(t, err)
	// swap in a different user while keeping the original signature
	parsed.Set("user", `{"id":43,"username":"mallory"}`)

	_, err = v.Verify(parsed.Encode())
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyRejectsWrongBotToken(t *testing.T) {
	v := NewTelegramVerifier(testBotToken, 0)

	_, err := v.Verify(signedInitData(t, "999999:OTHER-TOKEN", time.Now()))
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyRejectsStaleInitData(t *testing.T) {
	v := NewTelegramVerifier(testBotToken, time.Hour)

	_, err := v.Verify(signedInitData(t, testBotToken, time.Now().Add(-2*time.Hour)))
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerifyRejectsMissingOrMalformedData(t *testing.T) {
	v := NewTelegramVerifier(testBotToken, 0)

	_, err := v.Verify("")
	assert.ErrorIs(t, err, ErrMissingInitData)

	_, err = v.Verify("auth_date=123&user=%7B%7D")
	assert.ErrorIs(t, err, ErrMalformed, "hash field is required")

	// correctly signed but the user payload is not JSON
	vals := url.Values{}
	vals.Set("user", "not-json")
	vals.Set("auth_date", strconv.FormatInt(time.Now().Unix(), 10))
	vals.Set("hash", computeHash(testBotToken, vals))
	_, err = v.Verify(vals.Encode())
	assert.ErrorIs(t, err, ErrMalformed)
}
