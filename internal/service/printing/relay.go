package printing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const relayRequestTimeout = 10 * time.Second

// RelayError — отказ, который relay вернул явно: HTTP-статус и тело ответа.
type RelayError struct {
	Status int
	Body   string
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("relay rejected job: status=%d body=%q", e.Status, e.Body)
}

// IsRelayRejection отличает отказ relay от транспортной ошибки.
func IsRelayRejection(err error) bool {
	var relayErr *RelayError
	return errors.As(err, &relayErr)
}

// HTTPRelay отправляет задания печати POST-запросом на endpoint relay.
type HTTPRelay struct {
	endpoint string
	client   *http.Client
}

// NewHTTPRelay создаёт клиент print-relay.
func NewHTTPRelay(endpoint string) *HTTPRelay {
	return &HTTPRelay{
		endpoint: endpoint,
		client:   &http.Client{Timeout: relayRequestTimeout},
	}
}

type relayRequest struct {
	PrinterID   string `json:"printer_id"`
	Title       string `json:"title"`
	ContentType string `json:"content_type"`
	Content     string `json:"content"`
	Source      string `json:"source"`
}

// Submit выполняет один POST на принтер. Любой не-2xx статус — отказ relay
// с захваченным телом ответа; ошибки сети и контекста — транспортные.
func (r *HTTPRelay) Submit(ctx context.Context, job RelayJob) error {
	payload, err := json.Marshal(relayRequest{
		PrinterID:   job.PrinterID,
		Title:       job.Title,
		ContentType: job.ContentType,
		Content:     job.Content,
		Source:      job.Source,
	})
	if err != nil {
		return fmt.Errorf("marshal relay job: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// Ключ передаётся заголовком и никогда не входит в тело задания.
	req.Header.Set("Authorization", "Bearer "+job.APIKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("submit relay job: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &RelayError{Status: resp.StatusCode, Body: string(body)}
	}
	return nil
}

var _ Relay = (*HTTPRelay)(nil)
