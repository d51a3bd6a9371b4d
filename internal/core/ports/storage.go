package ports

//go:generate mockgen -source=storage.go -destination=mocks/mock_storage.go -package=mocks

import (
	"context"
	"io"
	"time"

	"eseva-portal/internal/core/domain"
)

// StagedUploadStore keeps StagedUpload records with a passive expiry.
type StagedUploadStore interface {
	Save(ctx context.Context, upload *domain.StagedUpload, ttl time.Duration) error
	// Get returns nil, nil when the record is absent or expired.
	Get(ctx context.Context, orderID string) (*domain.StagedUpload, error)
	Delete(ctx context.Context, orderID string) error
	Exists(ctx context.Context, orderID string) (bool, error)
}

// CompletionClaimStore guarantees a staged order is completed at most once.
type CompletionClaimStore interface {
	// Claim returns true for the first caller only.
	Claim(ctx context.Context, orderID string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, orderID string) error
}

// StagingArea holds uploaded files in a per-order temporary directory.
type StagingArea interface {
	Stage(orderID, field, filename string, r io.Reader) (string, error)
	Discard(orderID string) error
	// Sweep removes order directories older than olderThan for which keep returns false.
	Sweep(ctx context.Context, olderThan time.Duration, keep func(orderID string) bool) (int, error)
}

// DocumentStore is permanent storage for submitted documents.
// Paths returned are public-facing, e.g. /uploads/itr/aadhar_1700000000000.pdf.
type DocumentStore interface {
	Promote(ctx context.Context, tempPath, dir string) (string, error)
	Save(ctx context.Context, dir, filename string, r io.Reader) (string, error)
	Remove(ctx context.Context, publicPath string) error
}

// UploadedFile is a file received with a multipart submission.
type UploadedFile struct {
	Field    string
	Filename string
	Open     func() (io.ReadCloser, error)
}

// QRGenerator renders a PNG QR code for a payment URL.
type QRGenerator interface {
	PNG(content string) ([]byte, error)
}
