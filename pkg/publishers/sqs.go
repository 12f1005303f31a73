package publishers

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

type sqsPublisher struct {
	id       string
	queueURL string
	api      sqsAPI
	log      Logger
}

func newSQSPublisher(ctx context.Context, cfg Config, log Logger) (Publisher, error) {
	if cfg.SQS == nil {
		return nil, fmt.Errorf("publisher %q has no sqs block", cfg.ID)
	}
	awsCfg, err := cfg.SQS.load(ctx)
	if err != nil {
		return nil, err
	}
	api := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		o.BaseEndpoint = cfg.SQS.baseEndpoint()
	})
	return &sqsPublisher{id: cfg.ID, queueURL: cfg.SQS.QueueURL, api: api, log: orNop(log)}, nil
}

func (p *sqsPublisher) ID() string   { return p.id }
func (p *sqsPublisher) Type() string { return TypeSQS }

func (p *sqsPublisher) Publish(ctx context.Context, evt Event) error {
	body, err := evt.payload()
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	in := &sqs.SendMessageInput{
		QueueUrl:          aws.String(p.queueURL),
		MessageBody:       aws.String(string(body)),
		MessageAttributes: make(map[string]types.MessageAttributeValue),
	}
	for k, v := range evt.Attributes() {
		in.MessageAttributes[k] = types.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(v)}
	}
	if isFIFO(p.queueURL) {
		in.MessageGroupId = aws.String(evt.groupKey())
		in.MessageDeduplicationId = aws.String(evt.ID)
	}

	out, err := p.api.SendMessage(ctx, in)
	if err != nil {
		p.log.ErrorObj("sqs send failed", "publisher_error", map[string]any{
			"publisher_id": p.id,
			"event_id":     evt.ID,
			"error":        err.Error(),
		})
		return fmt.Errorf("sqs send message: %w", err)
	}
	p.log.DebugObj("event sent to sqs", "publisher_delivery", map[string]any{
		"publisher_id": p.id,
		"event_id":     evt.ID,
		"message_id":   aws.ToString(out.MessageId),
	})
	return nil
}
