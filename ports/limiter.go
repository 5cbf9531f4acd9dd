package ports

// RateLimiter admits or rejects a request from an identity. Rejections are
// *core.RateLimitError values.
type RateLimiter interface {
	Admit(identity string) error
}
