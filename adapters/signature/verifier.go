package signature

import "github.com/layer-3/tipgate/ports"

// WalletVerifier dispatches to the scheme matching the address format:
// EVM addresses use personal_sign, everything else Ed25519.
type WalletVerifier struct {
	ed25519  Ed25519Verifier
	ethereum EthereumVerifier
}

// NewWalletVerifier creates a verifier accepting both wallet families
func NewWalletVerifier() ports.SignatureVerifier {
	return &WalletVerifier{}
}

// Verify implements ports.SignatureVerifier.
func (v *WalletVerifier) Verify(walletAddress, message, signature string) bool {
	if IsEthereumAddress(walletAddress) {
		return v.ethereum.Verify(walletAddress, message, signature)
	}
	return v.ed25519.Verify(walletAddress, message, signature)
}
