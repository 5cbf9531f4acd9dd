package tokenizer

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/layer-3/tipgate/core"
	"github.com/layer-3/tipgate/ports"
)

// DefaultTTL is the lifetime of a session token
const DefaultTTL = 1800 * time.Second

const AudienceSession = "tipgate:session"

// JWTTokenizer implements the Tokenizer interface using HS256 JWTs signed
// with a process-wide shared secret. Tokens are never looked up in storage
// and cannot be revoked before they expire.
type JWTTokenizer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option configures a JWTTokenizer
type Option func(*JWTTokenizer)

// WithTTL overrides the token lifetime
func WithTTL(ttl time.Duration) Option {
	return func(j *JWTTokenizer) {
		if ttl > 0 {
			j.ttl = ttl
		}
	}
}

// WithClock overrides the time source used for issuing and validating
func WithClock(now func() time.Time) Option {
	return func(j *JWTTokenizer) {
		j.now = now
	}
}

// NewJWTTokenizer creates a new JWT tokenizer
func NewJWTTokenizer(secret []byte, opts ...Option) ports.Tokenizer {
	j := &JWTTokenizer{
		secret: secret,
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Issue converts a wallet address to a signed session token
func (j *JWTTokenizer) Issue(walletAddress string) (string, *core.Session, error) {
	now := j.now().Truncate(time.Second)
	session := &core.Session{
		ID:            uuid.New().String(),
		WalletAddress: walletAddress,
		IssuedAt:      now,
		ExpiresAt:     now.Add(j.ttl),
	}

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   walletAddress,
			ID:        session.ID,
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			Audience:  jwt.ClaimStrings{AudienceSession},
		},
		WalletAddress: walletAddress,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(j.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return signedToken, session, nil
}

// Validate parses a session token. Every failure is reported as
// core.ErrInvalidToken so callers cannot tell which check failed.
func (j *JWTTokenizer) Validate(tokenStr string) (*core.Session, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	},
		jwt.WithAudience(AudienceSession),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil || !token.Valid {
		return nil, core.ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || claims.WalletAddress == "" {
		return nil, core.ErrInvalidToken
	}

	session := &core.Session{
		ID:            claims.ID,
		WalletAddress: claims.WalletAddress,
		ExpiresAt:     claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}

	return session, nil
}
