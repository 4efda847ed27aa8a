package notifications

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type SMSSender interface {
	Send(ctx context.Context, phone, text string) error
}

type snsSender struct {
	client *sns.Client
}

// NewSNSSender publishes SMS directly to a phone number via SNS.
func NewSNSSender(ctx context.Context, region string) (SMSSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &snsSender{client: sns.NewFromConfig(cfg)}, nil
}

func (s *snsSender) Send(ctx context.Context, phone, text string) error {
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: &phone,
		Message:     &text,
	})
	if err != nil {
		return fmt.Errorf("sns publish to %s: %w", phone, err)
	}
	return nil
}
