package dispatch

import (
	"context"
	"fmt"
	"time"

	"tablenotify/internal/common/logger"
	"tablenotify/internal/common/metrics"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

const sesProvider = "ses"

// SESAPI is the subset of the SES client the dispatcher needs; defined here
// for mocking.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESDispatcher is the alternate provider behind the same Dispatcher
// interface, selected by configuration.
type SESDispatcher struct {
	client SESAPI
	logger logger.Logger
}

func NewSESDispatcher(client SESAPI, log logger.Logger) *SESDispatcher {
	return &SESDispatcher{
		client: client,
		logger: log.WithFields(map[string]interface{}{"provider": sesProvider}),
	}
}

func (d *SESDispatcher) Provider() string {
	return sesProvider
}

func (d *SESDispatcher) Send(ctx context.Context, email OutboundEmail) Result {
	if d.client == nil {
		return Result{Success: false, Error: "configuration error: SES client is not configured"}
	}

	source := email.SenderEmail
	if email.SenderName != "" {
		source = fmt.Sprintf("%s <%s>", email.SenderName, email.SenderEmail)
	}

	start := time.Now()
	out, err := d.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{email.To},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(email.Subject)},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(email.HTMLContent)},
			},
		},
		Source: aws.String(source),
	})
	metrics.DispatchDuration.WithLabelValues(sesProvider).Observe(time.Since(start).Seconds())
	if err != nil {
		d.logger.Error("email dispatch failed", map[string]interface{}{
			"to":    email.To,
			"error": err.Error(),
		})
		return Result{Success: false, Error: transportErrorMessage(err)}
	}

	messageID := ""
	if out.MessageId != nil {
		messageID = *out.MessageId
	}
	d.logger.Info("email dispatched", map[string]interface{}{
		"to":        email.To,
		"messageId": messageID,
	})
	return Result{Success: true, MessageID: messageID}
}
