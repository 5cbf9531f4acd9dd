package ports

// SignatureVerifier checks a detached signature over a message. It never
// fails loudly: malformed input and bad signatures both yield false.
type SignatureVerifier interface {
	Verify(walletAddress, message, signature string) bool
}
