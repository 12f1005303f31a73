package publishers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/samvad-hq/jsonfetch/internal/domain"
)

type fakeSQS struct {
	in  *sqs.SendMessageInput
	err error
}

func (f *fakeSQS) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

type fakeSNS struct {
	in  *sns.PublishInput
	err error
}

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("m-1")}, nil
}

func TestSQSPublisherStandardQueue(t *testing.T) {
	api := &fakeSQS{}
	p := &sqsPublisher{id: "q", queueURL: "https://sqs.eu-west-1.amazonaws.com/1/events", api: api, log: nopLogger{}}
	evt := NewEvent(ActionUpdated, domain.Example{ID: 12})

	if err := p.Publish(context.Background(), evt); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if aws.ToString(api.in.QueueUrl) != p.queueURL {
		t.Fatalf("QueueUrl = %s", aws.ToString(api.in.QueueUrl))
	}
	attr := api.in.MessageAttributes["action"]
	if aws.ToString(attr.DataType) != "String" || aws.ToString(attr.StringValue) != ActionUpdated {
		t.Fatalf("action attribute = %#v", attr)
	}
	if aws.ToString(api.in.MessageAttributes["example_id"].StringValue) != "12" {
		t.Fatalf("example_id attribute missing")
	}
	if !strings.Contains(aws.ToString(api.in.MessageBody), evt.ID) {
		t.Fatalf("body does not carry the event: %s", aws.ToString(api.in.MessageBody))
	}
	if api.in.MessageGroupId != nil || api.in.MessageDeduplicationId != nil {
		t.Fatalf("standard queues must not get FIFO fields")
	}
}

func TestSQSPublisherFIFOQueue(t *testing.T) {
	api := &fakeSQS{}
	p := &sqsPublisher{id: "q", queueURL: "https://sqs.eu-west-1.amazonaws.com/1/events.fifo", api: api, log: nopLogger{}}
	evt := NewEvent(ActionCreated, domain.Example{ID: 7})

	if err := p.Publish(context.Background(), evt); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if aws.ToString(api.in.MessageGroupId) != "example-7" || aws.ToString(api.in.MessageDeduplicationId) != evt.ID {
		t.Fatalf("FIFO fields = %v %v", aws.ToString(api.in.MessageGroupId), aws.ToString(api.in.MessageDeduplicationId))
	}
}

func TestSQSPublisherError(t *testing.T) {
	p := &sqsPublisher{id: "q", queueURL: "u", api: &fakeSQS{err: errors.New("boom")}, log: nopLogger{}}
	if err := p.Publish(context.Background(), Event{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSNSPublisher(t *testing.T) {
	api := &fakeSNS{}
	p := &snsPublisher{id: "t", topicARN: "arn:aws:sns:eu-west-1:1:events.fifo", api: api, log: nopLogger{}}
	evt := NewEvent(ActionDeleted, domain.Example{ID: 5})

	if err := p.Publish(context.Background(), evt); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if aws.ToString(api.in.TopicArn) != p.topicARN || aws.ToString(api.in.Subject) != "example deleted" {
		t.Fatalf("unexpected input %#v", api.in)
	}
	if aws.ToString(api.in.MessageAttributes["event_id"].StringValue) != evt.ID {
		t.Fatalf("event_id attribute missing")
	}
	if aws.ToString(api.in.MessageGroupId) != "example-5" {
		t.Fatalf("FIFO topic needs a group id")
	}

	p.api = &fakeSNS{err: errors.New("boom")}
	if err := p.Publish(context.Background(), evt); err == nil {
		t.Fatalf("expected error")
	}
}

func TestAWSConfigLoadWithStaticKeys(t *testing.T) {
	cfg, err := AWSConfig{Region: "eu-west-1", AccessKeyID: "id", SecretAccessKey: "secret"}.load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	creds, err := cfg.Credentials.Retrieve(context.Background())
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if cfg.Region != "eu-west-1" || creds.AccessKeyID != "id" {
		t.Fatalf("unexpected aws config: region=%s key=%s", cfg.Region, creds.AccessKeyID)
	}
}
