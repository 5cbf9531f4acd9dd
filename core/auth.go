package core

import (
	"fmt"
	"time"
)

// Account is the identity record of a wallet. It is written once and never updated.
type Account struct {
	WalletAddress string    `json:"walletAddress"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Challenge is a single-use message a wallet has to sign to log in.
type Challenge struct {
	ID        string    // Unique identifier, embedded in the message as the nonce
	Address   string    // Wallet the challenge was issued to
	Message   string    // Exact text the wallet signs
	IssuedAt  time.Time // When the challenge was created
	ExpiresAt time.Time // When the challenge stops being accepted
}

// ChallengeMessage renders the text a wallet is asked to sign.
func ChallengeMessage(address, nonce string, expiresAt time.Time) string {
	return fmt.Sprintf("Sign in to tip page\nWallet: %s\nNonce: %s\nExpires: %s",
		address, nonce, expiresAt.UTC().Format(time.RFC3339))
}

// Session is the decoded content of a session token.
type Session struct {
	ID            string    // Token identifier (jti)
	WalletAddress string    // Authenticated wallet
	IssuedAt      time.Time // When the token was minted
	ExpiresAt     time.Time // When the token stops validating
}

// Credentials is the body of an authenticate request.
type Credentials struct {
	WalletAddress string `json:"walletAddress"`
	Message       string `json:"message"`
	Signature     string `json:"signature"`
}

// Validate checks that every credential field is present.
func (c Credentials) Validate() error {
	if c.WalletAddress == "" || c.Message == "" || c.Signature == "" {
		return &ValidationError{Reason: "Missing required fields."}
	}
	return nil
}
