package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSPublisher is the subset of the SNS client used by SNSNotifier.
type SNSPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSNotifier publishes alerts as JSON messages to an SNS topic.
type SNSNotifier struct {
	client   SNSPublisher
	topicARN string
}

// NewSNSNotifier wraps an existing publisher.
func NewSNSNotifier(client SNSPublisher, topicARN string) (*SNSNotifier, error) {
	if topicARN == "" {
		return nil, ErrMissingTopic
	}
	return &SNSNotifier{client: client, topicARN: topicARN}, nil
}

// NewSNSNotifierFromRegion loads the default AWS config for region and
// returns a notifier backed by a real SNS client.
func NewSNSNotifierFromRegion(ctx context.Context, region, topicARN string) (*SNSNotifier, error) {
	if topicARN == "" {
		return nil, ErrMissingTopic
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewSNSNotifier(sns.NewFromConfig(cfg), topicARN)
}

// Notify implements Notifier.
func (n *SNSNotifier) Notify(ctx context.Context, a Alert) error {
	body, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	input := &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String(fmt.Sprintf("Wellbeing alert: %s risk", a.PredictedLabel)),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"predicted_label": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(a.PredictedLabel)),
			},
			"subject_id": {
				DataType:    aws.String("String"),
				StringValue: aws.String(a.SubjectID),
			},
		},
	}
	if _, err := n.client.Publish(ctx, input); err != nil {
		return fmt.Errorf("publish alert %s: %w", a.RecordID, err)
	}
	return nil
}
