package ports

import "github.com/layer-3/tipgate/core"

// Tokenizer converts between sessions and signed session tokens
type Tokenizer interface {
	// Issue mints a token asserting the wallet address
	Issue(walletAddress string) (string, *core.Session, error)

	// Validate returns core.ErrInvalidToken for any bad, malformed or expired token
	Validate(token string) (*core.Session, error)
}
