package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"eseva-portal/internal/core/domain"
	"eseva-portal/internal/core/ports"

	goredis "github.com/redis/go-redis/v9"
)

// StagedUploadStore implements ports.StagedUploadStore. Records expire with
// the Redis TTL; form fields are sealed with AES-GCM before they are written.
type StagedUploadStore struct {
	client *goredis.Client
	enc    ports.EncryptionService
	prefix string
}

// NewStagedUploadStore creates a new Redis-backed staged upload store.
func NewStagedUploadStore(client *goredis.Client, enc ports.EncryptionService) *StagedUploadStore {
	return &StagedUploadStore{
		client: client,
		enc:    enc,
		prefix: "staged:",
	}
}

type stagedRecord struct {
	*domain.StagedUpload
	SealedFields string `json:"sealed_fields"`
}

// Save stores the record under staged:{orderId} for ttl.
func (s *StagedUploadStore) Save(ctx context.Context, upload *domain.StagedUpload, ttl time.Duration) error {
	fields, err := json.Marshal(upload.Fields)
	if err != nil {
		return fmt.Errorf("marshal staged fields: %w", err)
	}
	sealed, err := s.enc.Seal(upload.OrderID, fields)
	if err != nil {
		return fmt.Errorf("seal staged fields: %w", err)
	}

	bare := *upload
	bare.Fields = nil
	data, err := json.Marshal(stagedRecord{StagedUpload: &bare, SealedFields: sealed})
	if err != nil {
		return fmt.Errorf("marshal staged upload: %w", err)
	}

	if err := s.client.Set(ctx, s.prefix+upload.OrderID, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis staged set: %w", err)
	}
	return nil
}

// Get returns nil, nil when the record is absent or has expired.
func (s *StagedUploadStore) Get(ctx context.Context, orderID string) (*domain.StagedUpload, error) {
	data, err := s.client.Get(ctx, s.prefix+orderID).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis staged get: %w", err)
	}

	rec := stagedRecord{StagedUpload: &domain.StagedUpload{}}
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode staged upload: %w", err)
	}
	plain, err := s.enc.Open(orderID, rec.SealedFields)
	if err != nil {
		return nil, fmt.Errorf("open staged fields: %w", err)
	}
	if err := json.Unmarshal(plain, &rec.Fields); err != nil {
		return nil, fmt.Errorf("decode staged fields: %w", err)
	}

	upload := rec.StagedUpload
	if upload.IsExpired(time.Now()) {
		return nil, nil
	}
	return upload, nil
}

// Delete removes the record; deleting a missing record is not an error.
func (s *StagedUploadStore) Delete(ctx context.Context, orderID string) error {
	if err := s.client.Del(ctx, s.prefix+orderID).Err(); err != nil {
		return fmt.Errorf("redis staged delete: %w", err)
	}
	return nil
}

// Exists reports whether a live record is held for orderID.
func (s *StagedUploadStore) Exists(ctx context.Context, orderID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.prefix+orderID).Result()
	if err != nil {
		return false, fmt.Errorf("redis staged exists: %w", err)
	}
	return n > 0, nil
}
