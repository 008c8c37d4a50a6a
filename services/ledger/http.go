package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPLedger posts entries to the ledger service. The idempotency key is
// forwarded as a header; the ledger deduplicates on it, so retried
// transitions never double-post.
type HTTPLedger struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPLedger constructs a ledger client with a bounded-timeout client.
func NewHTTPLedger(baseURL string) *HTTPLedger {
	return &HTTPLedger{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 5 * time.Second},
	}
}

type entryRequest struct {
	PartyID string  `json:"partyId"`
	Amount  float64 `json:"amount"`
}

func (l *HTTPLedger) post(ctx context.Context, kind, partyID string, amount float64, idemKey string) error {
	body, err := json.Marshal(entryRequest{PartyID: partyID, Amount: amount})
	if err != nil {
		return fmt.Errorf("failed to marshal ledger entry: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.BaseURL+"/v1/entries/"+kind, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build ledger request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", idemKey)

	resp, err := l.Client.Do(req)
	if err != nil {
		return fmt.Errorf("ledger request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusConflict {
		// 409 means the key was already processed, which is success for us.
		return fmt.Errorf("ledger %s rejected: status %d", kind, resp.StatusCode)
	}
	return nil
}

func (l *HTTPLedger) Debit(ctx context.Context, partyID string, amount float64, idemKey string) error {
	return l.post(ctx, "debit", partyID, amount, idemKey)
}

func (l *HTTPLedger) Credit(ctx context.Context, partyID string, amount float64, idemKey string) error {
	return l.post(ctx, "credit", partyID, amount, idemKey)
}

func (l *HTTPLedger) Refund(ctx context.Context, partyID string, amount float64, idemKey string) error {
	return l.post(ctx, "refund", partyID, amount, idemKey)
}
