// internal/querylog/querylog.go
package querylog

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"sales-assistant/internal/common/config"
	"sales-assistant/internal/common/logger"
	"sales-assistant/internal/common/metrics"
	"sales-assistant/internal/models"
)

// Entry is one answered (or refused) chat query.
type Entry struct {
	Query     string      `json:"query"`
	Resolved  string      `json:"resolved_query,omitempty"`
	Intent    string      `json:"intent"`
	Outcome   string      `json:"outcome"`
	Role      models.Role `json:"role"`
	SessionID string      `json:"session_id"`
	Answer    string      `json:"answer"`
	Timestamp time.Time   `json:"timestamp"`
}

// Logger writes an audit trail of chat queries to Elasticsearch. Audit
// writes are fire and forget: a failed write is logged and dropped,
// never surfaced to the user.
type Logger struct {
	client  *elasticsearch.Client
	index   string
	enabled bool
	log     logger.Logger
}

func New(client *elasticsearch.Client, cfg config.ElasticsearchConfig, log logger.Logger) *Logger {
	return &Logger{
		client:  client,
		index:   cfg.QueryIndex,
		enabled: cfg.Enabled && client != nil,
		log:     log,
	}
}

// Disabled returns a no-op audit logger.
func Disabled() *Logger {
	return &Logger{enabled: false}
}

// Record indexes the entry asynchronously.
func (l *Logger) Record(entry Entry) {
	if !l.enabled {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	go l.write(entry)
}

func (l *Logger) write(entry Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	body, err := json.Marshal(entry)
	if err != nil {
		return
	}

	res, err := l.client.Index(l.index,
		bytes.NewReader(body),
		l.client.Index.WithContext(ctx),
	)
	if err != nil {
		metrics.ExternalCallFailures.WithLabelValues("elasticsearch").Inc()
		l.log.Warn("query audit write failed", map[string]interface{}{"error": err.Error()})
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		metrics.ExternalCallFailures.WithLabelValues("elasticsearch").Inc()
		l.log.Warn("query audit write rejected", map[string]interface{}{"status": res.Status()})
	}
}
