package publishers

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

type pubsubPublisher struct {
	id     string
	client *pubsub.Client
	topic  *pubsub.Topic
	log    Logger
}

func newPubSubPublisher(ctx context.Context, cfg Config, log Logger) (Publisher, error) {
	if cfg.PubSub == nil {
		return nil, fmt.Errorf("publisher %q has no pubsub block", cfg.ID)
	}
	client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID, cfg.PubSub.clientOptions()...)
	if err != nil {
		return nil, fmt.Errorf("pubsub client: %w", err)
	}
	topic := client.Topic(cfg.PubSub.Topic)
	topic.EnableMessageOrdering = true
	return &pubsubPublisher{id: cfg.ID, client: client, topic: topic, log: orNop(log)}, nil
}

func (p PubSubConfig) clientOptions() []option.ClientOption {
	var opts []option.ClientOption
	if p.Endpoint != "" {
		return append(opts,
			option.WithEndpoint(p.Endpoint),
			option.WithoutAuthentication(),
			option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		)
	}
	if p.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(p.CredentialsFile))
	}
	return opts
}

func (p *pubsubPublisher) ID() string   { return p.id }
func (p *pubsubPublisher) Type() string { return TypePubSub }

// Publish blocks until the server acknowledges the message. Events for one
// example share an ordering key.
func (p *pubsubPublisher) Publish(ctx context.Context, evt Event) error {
	body, err := evt.payload()
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	key := evt.groupKey()
	msgID, err := p.topic.Publish(ctx, &pubsub.Message{
		Data:        body,
		Attributes:  evt.Attributes(),
		OrderingKey: key,
	}).Get(ctx)
	if err != nil {
		// A failed ordered publish pauses the key until resumed.
		p.topic.ResumePublish(key)
		p.log.ErrorObj("pubsub publish failed", "publisher_error", map[string]any{
			"publisher_id": p.id,
			"event_id":     evt.ID,
			"error":        err.Error(),
		})
		return fmt.Errorf("pubsub publish: %w", err)
	}
	p.log.DebugObj("event sent to pubsub", "publisher_delivery", map[string]any{
		"publisher_id": p.id,
		"event_id":     evt.ID,
		"message_id":   msgID,
	})
	return nil
}

func (p *pubsubPublisher) Close() error {
	p.topic.Stop()
	return p.client.Close()
}
