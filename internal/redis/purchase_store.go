package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"fuelmeter/internal/domain"
	"fuelmeter/internal/repository"
)

// purchaseHistoryKey is the single well-known key the serialized purchase
// history lives under.
const purchaseHistoryKey = "fuelmeter:purchase_history"

// PurchaseStore persists the purchase history in Redis as one JSON document.
type PurchaseStore struct {
	client *redis.Client
}

// NewPurchaseStore creates a new PurchaseStore.
func NewPurchaseStore(client *redis.Client) *PurchaseStore {
	return &PurchaseStore{client: client}
}

var _ repository.PurchaseStore = (*PurchaseStore)(nil)

// Load reads the persisted history. A missing key is an empty history.
func (s *PurchaseStore) Load(ctx context.Context) ([]domain.PurchaseRecord, error) {
	data, err := s.client.Get(ctx, purchaseHistoryKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("load purchase history: %w", err)
	}

	var records []domain.PurchaseRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode purchase history: %w", err)
	}
	return records, nil
}

// Save replaces the persisted history. No TTL: the history is durable until
// the user clears it.
func (s *PurchaseStore) Save(ctx context.Context, records []domain.PurchaseRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode purchase history: %w", err)
	}
	if err := s.client.Set(ctx, purchaseHistoryKey, data, 0).Err(); err != nil {
		return fmt.Errorf("save purchase history: %w", err)
	}
	return nil
}

// Clear removes the persisted history.
func (s *PurchaseStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, purchaseHistoryKey).Err(); err != nil {
		return fmt.Errorf("clear purchase history: %w", err)
	}
	return nil
}
