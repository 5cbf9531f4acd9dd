package tokenizer

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/layer-3/tipgate/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wallet = "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestJWTTokenizer_IssueAndValidate(t *testing.T) {
	tok := NewJWTTokenizer([]byte("test-secret"))

	token, issued, err := tok.Issue(wallet)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, wallet, issued.WalletAddress)
	assert.Equal(t, DefaultTTL, issued.ExpiresAt.Sub(issued.IssuedAt))

	session, err := tok.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, wallet, session.WalletAddress)
	assert.Equal(t, issued.ID, session.ID)
}

func TestJWTTokenizer_InvalidTokens(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tok := NewJWTTokenizer([]byte("test-secret"), WithClock(fixedClock(start)))

	valid, _, err := tok.Issue(wallet)
	require.NoError(t, err)

	otherSecret, _, err := NewJWTTokenizer([]byte("other-secret"), WithClock(fixedClock(start))).Issue(wallet)
	require.NoError(t, err)

	noWallet := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{AudienceSession},
			ExpiresAt: jwt.NewNumericDate(start.Add(time.Hour)),
		},
	})
	noWalletStr, err := noWallet.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	noneAlg := jwt.NewWithClaims(jwt.SigningMethodNone, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{AudienceSession},
			ExpiresAt: jwt.NewNumericDate(start.Add(time.Hour)),
		},
		WalletAddress: wallet,
	})
	noneAlgStr, err := noneAlg.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		clock time.Time
	}{
		{name: "empty", token: "", clock: start},
		{name: "garbage", token: "not-a-jwt", clock: start},
		{name: "different secret", token: otherSecret, clock: start},
		{name: "tampered", token: tamper(t, valid), clock: start},
		{name: "missing wallet claim", token: noWalletStr, clock: start},
		{name: "none algorithm", token: noneAlgStr, clock: start},
		{name: "expired", token: valid, clock: start.Add(DefaultTTL + time.Second)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewJWTTokenizer([]byte("test-secret"), WithClock(fixedClock(tt.clock)))
			session, err := v.Validate(tt.token)
			assert.Nil(t, session)
			assert.ErrorIs(t, err, core.ErrInvalidToken)
		})
	}
}

func TestJWTTokenizer_ValidJustBeforeExpiry(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	token, _, err := NewJWTTokenizer([]byte("s"), WithClock(fixedClock(start))).Issue(wallet)
	require.NoError(t, err)

	v := NewJWTTokenizer([]byte("s"), WithClock(fixedClock(start.Add(DefaultTTL-time.Second))))
	session, err := v.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, wallet, session.WalletAddress)
}

func TestJWTTokenizer_WithTTL(t *testing.T) {
	tok := NewJWTTokenizer([]byte("s"), WithTTL(time.Minute))
	_, session, err := tok.Issue(wallet)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, session.ExpiresAt.Sub(session.IssuedAt))
}

// tamper flips one bit of the decoded signature so the token no longer verifies.
func tamper(t *testing.T, token string) string {
	t.Helper()
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	require.NoError(t, err)
	sig[0] ^= 0x01

	parts[2] = base64.RawURLEncoding.EncodeToString(sig)
	return strings.Join(parts, ".")
}
