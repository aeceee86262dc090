package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"tablenotify/internal/common/logger"

	"github.com/elastic/go-elasticsearch/v8"
)

// DeliveryRecord is one send attempt, successful or not, as stored in the
// delivery audit index.
type DeliveryRecord struct {
	ID        string    `json:"id"`
	OwnerKey  string    `json:"ownerKey,omitempty"`
	Kind      string    `json:"kind"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Provider  string    `json:"provider"`
	Success   bool      `json:"success"`
	MessageID string    `json:"messageId,omitempty"`
	Error     string    `json:"error,omitempty"`
	SentAt    time.Time `json:"sentAt"`
}

// Recorder persists delivery records. Recording is best-effort: failures are
// logged and never affect the send outcome.
type Recorder interface {
	Record(ctx context.Context, record DeliveryRecord)
}

// ElasticsearchRecorder indexes delivery records into Elasticsearch.
type ElasticsearchRecorder struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewElasticsearchRecorder(client *elasticsearch.Client, index string, log logger.Logger) *ElasticsearchRecorder {
	return &ElasticsearchRecorder{
		client: client,
		index:  index,
		logger: log,
	}
}

func (r *ElasticsearchRecorder) Record(ctx context.Context, record DeliveryRecord) {
	body, err := json.Marshal(record)
	if err != nil {
		r.logger.Warn("failed to marshal delivery record", map[string]interface{}{
			"id":    record.ID,
			"error": err.Error(),
		})
		return
	}

	res, err := r.client.Index(
		r.index,
		bytes.NewReader(body),
		r.client.Index.WithContext(ctx),
		r.client.Index.WithDocumentID(record.ID),
	)
	if err != nil {
		r.logger.Warn("failed to index delivery record", map[string]interface{}{
			"id":    record.ID,
			"error": err.Error(),
		})
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		r.logger.Warn("delivery record rejected by index", map[string]interface{}{
			"id":     record.ID,
			"status": res.StatusCode,
		})
	}
}

// NoOpRecorder is used when the audit index is disabled.
type NoOpRecorder struct{}

func (NoOpRecorder) Record(context.Context, DeliveryRecord) {}
