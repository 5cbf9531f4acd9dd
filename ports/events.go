package ports

import (
	"context"

	"github.com/layer-3/tipgate/core"
)

// EventPublisher publishes account lifecycle events to other services
type EventPublisher interface {
	PublishAccountCreated(ctx context.Context, account *core.Account, pageProvisioned bool) error
}
