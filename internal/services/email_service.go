package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/models"
)

// EmailService defines the interface for sending notification emails
type EmailService interface {
	SendLeaveDecisionEmail(ctx context.Context, email string, req *models.LeaveRequest) error
}

// AWSSESEmailService sends emails using AWS SES
type AWSSESEmailService struct {
	sesClient   *ses.Client
	fromAddress string
	logger      *slog.Logger
}

// NewAWSSESEmailService creates a new AWS SES email service
func NewAWSSESEmailService(region, fromAddress string, logger *slog.Logger) (*AWSSESEmailService, error) {
	cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESEmailService{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		logger:      logger,
	}, nil
}

// SendLeaveDecisionEmail notifies the requester that their leave request
// has been approved or rejected
func (s *AWSSESEmailService) SendLeaveDecisionEmail(ctx context.Context, email string, req *models.LeaveRequest) error {
	subject := fmt.Sprintf("Your leave request has been %s", req.Status)

	dateRange := req.StartDate.Format("2 Jan 2006")
	if !req.EndDate.Equal(req.StartDate) {
		dateRange = fmt.Sprintf("%s – %s", dateRange, req.EndDate.Format("2 Jan 2006"))
	}

	textBody := fmt.Sprintf(`Leave Request Update

Your %s leave request for %s (%.1f day(s)) has been %s.

Request ID: %s

This is an automated message. Please do not reply to this email.
`, req.Category, dateRange, req.TotalDays, req.Status, req.ID)

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #f8f9fa; padding: 20px; text-align: center; border-radius: 4px; }
        .content { padding: 20px 0; }
        .footer { color: #666; font-size: 12px; margin-top: 20px; padding-top: 20px; border-top: 1px solid #eee; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Leave Request Update</h1>
        </div>
        <div class="content">
            <p>Your <strong>%s</strong> leave request for <strong>%s</strong> (%.1f day(s)) has been <strong>%s</strong>.</p>
            <p>Request ID: <code>%s</code></p>
        </div>
        <div class="footer">
            <p>This is an automated message. Please do not reply to this email.</p>
        </div>
    </div>
</body>
</html>
`, req.Category, dateRange, req.TotalDays, req.Status, req.ID)

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{email},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data: aws.String(htmlBody),
				},
				Text: &types.Content{
					Data: aws.String(textBody),
				},
			},
		},
	}

	result, err := s.sesClient.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send leave decision email via SES",
			slog.String("email", email),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("leave decision email sent",
		slog.String("email", email),
		slog.String("message_id", *result.MessageId))

	return nil
}
