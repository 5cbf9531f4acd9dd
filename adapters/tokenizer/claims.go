package tokenizer

import "github.com/golang-jwt/jwt/v5"

// SessionClaims combines standard claims with the wallet claim
type SessionClaims struct {
	jwt.RegisteredClaims
	WalletAddress string `json:"walletAddress"`
}
