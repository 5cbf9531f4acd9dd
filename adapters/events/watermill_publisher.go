package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/layer-3/tipgate/core"
	"github.com/layer-3/tipgate/ports"
)

// AccountCreatedTopic is the topic account creation events are published to
const AccountCreatedTopic = "tipgate.account.created"

// AccountCreatedEvent represents the first login of a wallet
type AccountCreatedEvent struct {
	WalletAddress   string    `json:"wallet_address"`
	CreatedAt       time.Time `json:"created_at"`
	PageProvisioned bool      `json:"page_provisioned"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{
		publisher: publisher,
		topic:     AccountCreatedTopic,
	}
}

// PublishAccountCreated publishes an account creation event
func (p *WatermillPublisher) PublishAccountCreated(ctx context.Context, account *core.Account, pageProvisioned bool) error {
	event := AccountCreatedEvent{
		WalletAddress:   account.WalletAddress,
		CreatedAt:       account.CreatedAt,
		PageProvisioned: pageProvisioned,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// NopPublisher discards events; used when event publishing is disabled
type NopPublisher struct{}

// PublishAccountCreated implements ports.EventPublisher
func (NopPublisher) PublishAccountCreated(context.Context, *core.Account, bool) error {
	return nil
}
