package signature

import (
	"crypto/ed25519"
	"encoding/base64"

	"github.com/mr-tron/base58"
)

// Ed25519Verifier verifies detached Ed25519 signatures from wallets whose
// address is the base58 encoding of the 32-byte public key (Solana style).
// Signatures are standard base64.
type Ed25519Verifier struct{}

// Verify implements ports.SignatureVerifier.
func (Ed25519Verifier) Verify(walletAddress, message, signature string) bool {
	pub, err := base58.Decode(walletAddress)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return false
	}

	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}

	return ed25519.Verify(ed25519.PublicKey(pub), []byte(message), sig)
}
