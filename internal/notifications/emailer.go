package notifications

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"
)

type EmailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type sesSender struct {
	client *sesv2.Client
	sender string
}

// NewSESSender sends through SESv2.
func NewSESSender(ctx context.Context, region, sender string) (EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &sesSender{
		client: sesv2.NewFromConfig(cfg),
		sender: sender,
	}, nil
}

func (s *sesSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &s.sender,
		Destination: &sestypes.Destination{
			ToAddresses: []string{to},
		},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: &subject},
				Body: &sestypes.Body{
					Html: &sestypes.Content{Data: &htmlBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send to %s: %w", to, err)
	}
	return nil
}

// simulatedSender logs instead of delivering. Used when no sender address is
// configured so development environments never need SES credentials.
type simulatedSender struct {
	logger *zap.Logger
}

func NewSimulatedSender(logger *zap.Logger) EmailSender {
	return &simulatedSender{logger: logger}
}

func (s *simulatedSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	s.logger.Info("simulated email send",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(htmlBody)))
	return nil
}
