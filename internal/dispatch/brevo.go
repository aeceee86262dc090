package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"tablenotify/internal/common/httpclient"
	"tablenotify/internal/common/logger"
	"tablenotify/internal/common/metrics"
)

const brevoProvider = "brevo"

// BrevoDispatcher sends transactional email through the Brevo REST API:
// one POST per send, api-key header, JSON payload
// {sender:{name,email}, to:[{email}], subject, htmlContent}.
type BrevoDispatcher struct {
	apiKey   string
	endpoint string
	client   *httpclient.Client
	logger   logger.Logger
}

func NewBrevoDispatcher(apiKey, endpoint string, timeout time.Duration, log logger.Logger) *BrevoDispatcher {
	return &BrevoDispatcher{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   httpclient.NewClient(timeout),
		logger:   log.WithFields(map[string]interface{}{"provider": brevoProvider}),
	}
}

func (d *BrevoDispatcher) Provider() string {
	return brevoProvider
}

type brevoRecipient struct {
	Email string `json:"email"`
}

type brevoSender struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type brevoPayload struct {
	Sender      brevoSender      `json:"sender"`
	To          []brevoRecipient `json:"to"`
	Subject     string           `json:"subject"`
	HTMLContent string           `json:"htmlContent"`
}

// Send performs exactly one HTTP POST. A missing API key fails closed before
// any network call.
func (d *BrevoDispatcher) Send(ctx context.Context, email OutboundEmail) Result {
	if d.apiKey == "" {
		d.logger.Error("email dispatch refused", map[string]interface{}{
			"reason": "missing API key",
		})
		return Result{Success: false, Error: "configuration error: email provider API key is missing"}
	}

	payload := brevoPayload{
		Sender:      brevoSender{Name: email.SenderName, Email: email.SenderEmail},
		To:          []brevoRecipient{{Email: email.To}},
		Subject:     email.Subject,
		HTMLContent: email.HTMLContent,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Result{Success: false, Error: err.Error()}
	}

	req, err := http.NewRequest(http.MethodPost, d.endpoint, bytes.NewBuffer(body))
	if err != nil {
		return Result{Success: false, Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", d.apiKey)

	start := time.Now()
	resp, err := d.client.DoWithContext(ctx, req)
	metrics.DispatchDuration.WithLabelValues(brevoProvider).Observe(time.Since(start).Seconds())
	if err != nil {
		d.logger.Error("email dispatch transport failure", map[string]interface{}{
			"to":    email.To,
			"error": err.Error(),
		})
		return Result{Success: false, Error: transportErrorMessage(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{Success: false, Error: d.providerErrorMessage(resp)}
	}

	var success struct {
		MessageID string `json:"messageId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&success); err != nil {
		return Result{Success: false, Error: transportErrorMessage(err)}
	}

	d.logger.Info("email dispatched", map[string]interface{}{
		"to":        email.To,
		"messageId": success.MessageID,
	})
	return Result{Success: true, MessageID: success.MessageID}
}

// providerErrorMessage extracts the human-readable message from a non-2xx
// provider body, degrading to a generic status-coded message.
func (d *BrevoDispatcher) providerErrorMessage(resp *http.Response) string {
	var apiErr struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
		return apiErr.Message
	}
	return fmt.Sprintf("request failed with status %d", resp.StatusCode)
}

func transportErrorMessage(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
