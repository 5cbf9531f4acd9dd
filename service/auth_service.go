package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/layer-3/tipgate/core"
	"github.com/layer-3/tipgate/ports"
)

// Stage names a step of the authenticate flow. The flow runs the stages in
// order and stops at the first rejection.
type Stage string

const (
	StageRateChecked       Stage = "rate_checked"
	StageBodyValidated     Stage = "body_validated"
	StageSignatureChecked  Stage = "signature_checked"
	StageChallengeConsumed Stage = "challenge_consumed"
	StageProvisioned       Stage = "provisioned"
	StageTokenIssued       Stage = "token_issued"
)

// DefaultChallengeTTL is how long a login challenge stays valid
const DefaultChallengeTTL = 5 * time.Minute

// AuthResult is returned to a wallet that authenticated successfully
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	Account   *core.Account
}

// AuthService handles authentication business logic
type AuthService struct {
	limiter     ports.RateLimiter
	verifier    ports.SignatureVerifier
	provisioner *Provisioner
	tokenizer   ports.Tokenizer
	challenges  ports.ChallengeStore
	logger      *slog.Logger

	requireChallenge bool
	challengeTTL     time.Duration
	now              func() time.Time
}

// AuthOption configures an AuthService
type AuthOption func(*AuthService)

// WithRequiredChallenge makes every login consume a challenge issued by
// CreateChallenge, so a captured signature cannot be replayed.
func WithRequiredChallenge(required bool) AuthOption {
	return func(s *AuthService) {
		s.requireChallenge = required
	}
}

// WithChallengeTTL overrides the lifetime of login challenges
func WithChallengeTTL(ttl time.Duration) AuthOption {
	return func(s *AuthService) {
		if ttl > 0 {
			s.challengeTTL = ttl
		}
	}
}

// NewAuthService creates a new authentication service
func NewAuthService(
	limiter ports.RateLimiter,
	verifier ports.SignatureVerifier,
	provisioner *Provisioner,
	tokenizer ports.Tokenizer,
	challenges ports.ChallengeStore,
	logger *slog.Logger,
	opts ...AuthOption,
) *AuthService {
	s := &AuthService{
		limiter:      limiter,
		verifier:     verifier,
		provisioner:  provisioner,
		tokenizer:    tokenizer,
		challenges:   challenges,
		logger:       logger.With("component", "auth"),
		challengeTTL: DefaultChallengeTTL,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ChallengeRequired reports whether logins must consume a challenge
func (s *AuthService) ChallengeRequired() bool {
	return s.requireChallenge
}

// CreateChallenge issues a single-use message for the wallet to sign. A new
// challenge replaces any earlier one for the same wallet.
func (s *AuthService) CreateChallenge(ctx context.Context, sourceID, walletAddress string) (*core.Challenge, error) {
	if err := s.limiter.Admit("challenge:" + sourceID); err != nil {
		return nil, err
	}
	if walletAddress == "" {
		return nil, core.MissingField("walletAddress")
	}

	now := s.now().UTC()
	challenge := &core.Challenge{
		ID:        uuid.New().String(),
		Address:   walletAddress,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.challengeTTL),
	}
	challenge.Message = core.ChallengeMessage(walletAddress, challenge.ID, challenge.ExpiresAt)

	if err := s.challenges.SaveChallenge(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to save challenge: %w", err)
	}

	return challenge, nil
}

// Authenticate exchanges a wallet signature for a session token
func (s *AuthService) Authenticate(ctx context.Context, sourceID string, creds core.Credentials) (*AuthResult, error) {
	if err := s.limiter.Admit("authenticate:" + sourceID); err != nil {
		s.reject(StageRateChecked, creds.WalletAddress, err)
		return nil, err
	}

	if err := creds.Validate(); err != nil {
		s.reject(StageBodyValidated, creds.WalletAddress, err)
		return nil, err
	}

	if !s.verifier.Verify(creds.WalletAddress, creds.Message, creds.Signature) {
		s.reject(StageSignatureChecked, creds.WalletAddress, core.ErrInvalidSignature)
		return nil, core.ErrInvalidSignature
	}

	if s.requireChallenge {
		ok, err := s.challenges.ConsumeChallenge(ctx, creds.WalletAddress, creds.Message)
		if err != nil {
			return nil, fmt.Errorf("failed to consume challenge: %w", err)
		}
		if !ok {
			s.reject(StageChallengeConsumed, creds.WalletAddress, core.ErrInvalidChallenge)
			return nil, core.ErrInvalidChallenge
		}
	}

	account, err := s.provisioner.GetOrCreate(ctx, creds.WalletAddress)
	if err != nil {
		s.logger.Error("provisioning failed", "stage", StageProvisioned, "wallet", creds.WalletAddress, "error", err)
		return nil, fmt.Errorf("failed to provision account: %w", err)
	}

	token, session, err := s.tokenizer.Issue(account.WalletAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Debug("authenticated", "stage", StageTokenIssued, "wallet", account.WalletAddress)

	return &AuthResult{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		Account:   account,
	}, nil
}

// ValidateToken returns the session carried by a bearer token
func (s *AuthService) ValidateToken(token string) (*core.Session, error) {
	if token == "" {
		return nil, core.ErrMissingToken
	}
	return s.tokenizer.Validate(token)
}

func (s *AuthService) reject(stage Stage, walletAddress string, err error) {
	s.logger.Info("authentication rejected", "stage", stage, "wallet", walletAddress, "reason", err)
}
