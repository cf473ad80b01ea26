package events

import (
	"context"
	"encoding/json"
	"fmt"

	aws_pkg "github.com/codmenta/Merify/pkg/aws"
)

// Publisher delivers domain events to whatever sink is configured. Callers
// treat publish failures as non-fatal.
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
	Close() error
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, string, string, any) error { return nil }
func (Noop) Close() error                                       { return nil }

// SNSPublisher sends events to a single SNS topic.
type SNSPublisher struct {
	client   aws_pkg.SNSPublisher
	topicArn string
}

func NewSNSPublisher(client aws_pkg.SNSPublisher, topicArn string) *SNSPublisher {
	return &SNSPublisher{client: client, topicArn: topicArn}
}

func (p *SNSPublisher) Publish(ctx context.Context, eventType, _ string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", eventType, err)
	}
	return p.client.Publish(ctx, p.topicArn, eventType, data)
}

func (p *SNSPublisher) Close() error { return nil }
