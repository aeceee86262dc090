package waitlist

import (
	"bytes"
	"context"
	"encoding/json"
	goerrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tablenotify/internal/common/errors"
	"tablenotify/internal/common/logger"
)

var (
	errAdvisorTimeout = goerrors.New("advisor timeout")
	errAdvisorFailed  = goerrors.New("advisor request failed")
)

// Request carries the three JSON blobs the model reasons over, passed through
// opaquely. The service performs no scheduling logic of its own.
type Request struct {
	Bookings json.RawMessage `json:"bookings"`
	Tables   json.RawMessage `json:"tables"`
	Schedule json.RawMessage `json:"schedule"`
}

// Advice is the model's structured answer.
type Advice struct {
	Suggestions json.RawMessage `json:"suggestions"`
	Summary     string          `json:"summary"`
	Confidence  float64         `json:"confidence"`
}

type Config struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	MaxRetries  int
	MaxTokens   int
	Temperature float64
}

// Advisor forwards waitlist context to a hosted generative model and parses
// the structured answer back.
type Advisor struct {
	config Config
	client *http.Client
	logger logger.Logger
}

func NewAdvisor(config Config, log logger.Logger) *Advisor {
	return &Advisor{
		config: config,
		// No client timeout; the request deadline comes from the context.
		client: &http.Client{},
		logger: log.WithFields(map[string]interface{}{"component": "waitlist-advisor"}),
	}
}

// Optimize performs one model call with bounded retry and exponential backoff.
func (a *Advisor) Optimize(ctx context.Context, req Request) (*Advice, error) {
	if a.config.BaseURL == "" {
		return nil, errors.NewConfigurationError("advisor base URL is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	advice, err := a.execute(ctx, req)
	if err != nil {
		if goerrors.Is(err, errAdvisorTimeout) {
			return nil, errors.NewAdvisorTimeoutError()
		}
		return nil, errors.NewAdvisorFailedError(err)
	}
	return advice, nil
}

func (a *Advisor) execute(ctx context.Context, req Request) (*Advice, error) {
	requestBody := map[string]interface{}{
		"prompt": a.buildPrompt(req),
		"context": map[string]interface{}{
			"bookings": req.Bookings,
			"tables":   req.Tables,
			"schedule": req.Schedule,
		},
		"max_tokens":  a.config.MaxTokens,
		"temperature": a.config.Temperature,
	}

	body, _ := json.Marshal(requestBody)

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= a.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, errAdvisorTimeout
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+"/api/ai/generate", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errAdvisorFailed, err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if a.config.APIKey != "" {
			httpReq.Header.Set("Authorization", "Bearer "+a.config.APIKey)
		}

		resp, lastErr = a.client.Do(httpReq)
		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}

		if ctx.Err() != nil {
			return nil, errAdvisorTimeout
		}
	}

	if lastErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errAdvisorTimeout
		}
		return nil, fmt.Errorf("%w: %v", errAdvisorFailed, lastErr)
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: no successful response after retries", errAdvisorFailed)
	}
	defer resp.Body.Close()

	var apiResponse struct {
		Suggestions json.RawMessage `json:"suggestions"`
		Summary     string          `json:"summary"`
		Confidence  float64         `json:"confidence"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", errAdvisorFailed, err)
	}

	if strings.TrimSpace(apiResponse.Summary) == "" {
		apiResponse.Summary = "The model returned no usable suggestion for this waitlist."
		apiResponse.Confidence = 0.1
	}
	if apiResponse.Confidence < 0.0 || apiResponse.Confidence > 1.0 {
		apiResponse.Confidence = 0.5
	}

	a.logger.Info("waitlist optimization completed", map[string]interface{}{
		"confidence": apiResponse.Confidence,
	})

	return &Advice{
		Suggestions: apiResponse.Suggestions,
		Summary:     apiResponse.Summary,
		Confidence:  apiResponse.Confidence,
	}, nil
}

func (a *Advisor) buildPrompt(req Request) string {
	var parts []string

	parts = append(parts, "You are a restaurant seating advisor. Suggest how to seat waitlisted parties based ONLY on the provided data.")

	if len(req.Bookings) > 0 {
		parts = append(parts, "\nCurrent Bookings:")
		parts = append(parts, string(req.Bookings))
	}
	if len(req.Tables) > 0 {
		parts = append(parts, "\nTables:")
		parts = append(parts, string(req.Tables))
	}
	if len(req.Schedule) > 0 {
		parts = append(parts, "\nSchedule:")
		parts = append(parts, string(req.Schedule))
	}

	parts = append(parts, "\nInstructions:")
	parts = append(parts, "- Return suggestions as structured JSON")
	parts = append(parts, "- If data is insufficient, say so clearly")
	parts = append(parts, "- Keep the summary concise and professional")
	parts = append(parts, "- Return confidence score between 0.0 and 1.0")

	parts = append(parts, "\nAnswer:")

	return strings.Join(parts, "\n")
}
