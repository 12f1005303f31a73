package publishers

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type snsPublisher struct {
	id       string
	topicARN string
	api      snsAPI
	log      Logger
}

func newSNSPublisher(ctx context.Context, cfg Config, log Logger) (Publisher, error) {
	if cfg.SNS == nil {
		return nil, fmt.Errorf("publisher %q has no sns block", cfg.ID)
	}
	awsCfg, err := cfg.SNS.load(ctx)
	if err != nil {
		return nil, err
	}
	api := sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		o.BaseEndpoint = cfg.SNS.baseEndpoint()
	})
	return &snsPublisher{id: cfg.ID, topicARN: cfg.SNS.TopicARN, api: api, log: orNop(log)}, nil
}

func (p *snsPublisher) ID() string   { return p.id }
func (p *snsPublisher) Type() string { return TypeSNS }

func (p *snsPublisher) Publish(ctx context.Context, evt Event) error {
	body, err := evt.payload()
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	in := &sns.PublishInput{
		TopicArn:          aws.String(p.topicARN),
		Message:           aws.String(string(body)),
		Subject:           aws.String("example " + evt.Action),
		MessageAttributes: make(map[string]types.MessageAttributeValue),
	}
	for k, v := range evt.Attributes() {
		in.MessageAttributes[k] = types.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(v)}
	}
	if isFIFO(p.topicARN) {
		in.MessageGroupId = aws.String(evt.groupKey())
		in.MessageDeduplicationId = aws.String(evt.ID)
	}

	out, err := p.api.Publish(ctx, in)
	if err != nil {
		p.log.ErrorObj("sns publish failed", "publisher_error", map[string]any{
			"publisher_id": p.id,
			"event_id":     evt.ID,
			"error":        err.Error(),
		})
		return fmt.Errorf("sns publish: %w", err)
	}
	p.log.DebugObj("event sent to sns", "publisher_delivery", map[string]any{
		"publisher_id": p.id,
		"event_id":     evt.ID,
		"message_id":   aws.ToString(out.MessageId),
	})
	return nil
}
